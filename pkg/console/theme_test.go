package console

import (
	"testing"

	"nucleus-console/pkg/engine"
)

func TestThemeByName(t *testing.T) {
	cases := map[string]string{
		"":        "dark",
		"dark":    "dark",
		" LIGHT ": "light",
		"none":    "none",
		"off":     "none",
		"neon":    "dark",
	}
	for in, want := range cases {
		if got := ThemeByName(in).Name; got != want {
			t.Fatalf("ThemeByName(%q) = %q, want %q", in, got, want)
		}
	}
	if ThemeByName("none").Enabled {
		t.Fatalf("none theme should be disabled")
	}
}

func TestFormatLinePlain(t *testing.T) {
	th := NoTheme()
	cmd := engine.Line{Text: "$ ssh admin@10.0.0.1", Type: engine.LineCommand, Timestamp: "09:26:53"}
	if got := th.FormatLine(cmd); got != "[09:26:53] > $ ssh admin@10.0.0.1" {
		t.Fatalf("command line: %q", got)
	}
	info := engine.Line{Text: "ok", Type: engine.LineInfo, Timestamp: "09:26:53"}
	if got := th.FormatLine(info); got != "[09:26:53] ok" {
		t.Fatalf("info line: %q", got)
	}
}
