package engine

import "testing"

func TestParseMenuState(t *testing.T) {
	tests := []struct {
		token string
		want  MenuState
		ok    bool
	}{
		{"main", MenuMain, true},
		{"MAIN", MenuMain, true},
		{"home", MenuMain, false},
		{"hosts", MenuMain, false},
		{"jump", MenuJumphosts, true},
		{"jumphosts", MenuJumphosts, true},
		{"scan", MenuServerScan, true},
		{"server", MenuServerScan, true},
		{"server_scan", MenuServerScan, true},
		{"web_scan", MenuWebScan, true},
		{"web", MenuWebScan, true},
		{"config", MenuConfig, true},
		{"settings", MenuConfig, true},
		{"executing", MenuMain, false},
		{"", MenuMain, false},
		{"bogus", MenuMain, false},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, ok := ParseMenuState(tt.token)
			if ok != tt.ok || (ok && got != tt.want) {
				t.Fatalf("ParseMenuState(%q) = %v,%v want %v,%v", tt.token, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestMenuSetAndBack(t *testing.T) {
	m := NewMenu()
	if m.State() != MenuMain {
		t.Fatalf("expected MAIN initially, got %v", m.State())
	}
	m.Set(MenuConfig)
	if m.State() != MenuConfig {
		t.Fatalf("expected CONFIG, got %v", m.State())
	}
	m.Back()
	if m.State() != MenuMain {
		t.Fatalf("expected MAIN after Back, got %v", m.State())
	}
}

func TestMenuStateString(t *testing.T) {
	if MenuServerScan.String() != "SERVER_SCAN" || MenuExecuting.String() != "EXECUTING" {
		t.Fatalf("unexpected names: %s %s", MenuServerScan, MenuExecuting)
	}
}
