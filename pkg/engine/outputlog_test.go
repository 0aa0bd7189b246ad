package engine

import "testing"

func TestOutputLogAppendStampsAndOrders(t *testing.T) {
	l := NewOutputLog()
	l.SetClock(fixedClock)

	l.Info("one")
	l.Error("two")
	l.Output("three")

	lines := l.Lines()
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0].Text != "one" || lines[1].Type != LineError || lines[2].Type != LineOutput {
		t.Fatalf("unexpected lines: %#v", lines)
	}
	for _, ln := range lines {
		if ln.Timestamp != "09:26:53" {
			t.Fatalf("expected 24h timestamp, got %q", ln.Timestamp)
		}
	}
}

func TestOutputLogLinesIsACopy(t *testing.T) {
	l := NewOutputLog()
	l.Info("keep")
	got := l.Lines()
	got[0].Text = "changed"
	if l.Lines()[0].Text != "keep" {
		t.Fatalf("Lines must not alias the log")
	}
}

func TestOutputLogClearAndObservers(t *testing.T) {
	l := NewOutputLog()
	var events []LogEvent
	l.Observe(func(ev LogEvent) { events = append(events, ev) })

	l.Success("a")
	l.Command("b")
	l.Clear()
	l.Info("c")

	if l.Len() != 1 || l.Lines()[0].Text != "c" {
		t.Fatalf("expected only post-clear line, got %#v", l.Lines())
	}
	if len(events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(events))
	}
	if !events[2].Cleared || events[2].Line != nil {
		t.Fatalf("expected clear event, got %#v", events[2])
	}
	if events[3].Line == nil || events[3].Line.Text != "c" {
		t.Fatalf("expected append event for c, got %#v", events[3])
	}
}

func TestOutputLogSince(t *testing.T) {
	l := NewOutputLog()
	for _, s := range []string{"a", "b", "c"} {
		l.Info(s)
	}
	if got := l.Since(1); len(got) != 2 || got[0].Text != "b" {
		t.Fatalf("Since(1) = %#v", got)
	}
	if got := l.Since(3); got != nil {
		t.Fatalf("Since(3) expected nil, got %#v", got)
	}
	if got := l.Since(-4); len(got) != 3 {
		t.Fatalf("Since(-4) expected all lines, got %d", len(got))
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"only newlines", "\n\n", nil},
		{"single", "ok", []string{"ok"}},
		{"crlf", "a\r\nb\r\n", []string{"a", "b"}},
		{"inner blank kept", "a\n\nb", []string{"a", "", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitLines(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("SplitLines(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("SplitLines(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
				}
			}
		})
	}
}
