package console

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"nucleus-console/pkg/engine"
)

// Theme holds the lipgloss styles used by the TUI. All styles are safe to use
// when theming is disabled; they render plain text.
//
// Themes are selected by name: dark (default), light or none. The name comes
// from the config file or $NUCLEUS_CONSOLE_THEME.
type Theme struct {
	Name    string
	Enabled bool

	Header    lipgloss.Style
	Accent    lipgloss.Style
	Selected  lipgloss.Style
	Dim       lipgloss.Style
	Separator lipgloss.Style
	Help      lipgloss.Style
	Busy      lipgloss.Style
	Online    lipgloss.Style
	Offline   lipgloss.Style
	Panel     lipgloss.Style

	Info    lipgloss.Style
	Error   lipgloss.Style
	Success lipgloss.Style
	Command lipgloss.Style
	Output  lipgloss.Style
}

// ThemeByName resolves a theme; unknown names fall back to dark.
func ThemeByName(name string) Theme {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "none", "off", "disabled":
		return NoTheme()
	case "light":
		return LightTheme()
	}
	return DarkTheme()
}

// NoTheme disables all styling.
func NoTheme() Theme {
	plain := lipgloss.NewStyle()
	return Theme{
		Name:      "none",
		Header:    plain,
		Accent:    plain,
		Selected:  plain,
		Dim:       plain,
		Separator: plain,
		Help:      plain,
		Busy:      plain,
		Online:    plain,
		Offline:   plain,
		Panel:     plain,
		Info:      plain,
		Error:     plain,
		Success:   plain,
		Command:   plain,
		Output:    plain,
	}
}

// DarkTheme is the green-on-black console palette.
func DarkTheme() Theme {
	return Theme{
		Name:      "dark",
		Enabled:   true,
		Header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#22c55e")),
		Accent:    lipgloss.NewStyle().Foreground(lipgloss.Color("#4ade80")),
		Selected:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#22c55e")),
		Dim:       lipgloss.NewStyle().Faint(true),
		Separator: lipgloss.NewStyle().Foreground(lipgloss.Color("#14532d")),
		Help:      lipgloss.NewStyle().Foreground(lipgloss.Color("#15803d")),
		Busy:      lipgloss.NewStyle().Foreground(lipgloss.Color("#4ade80")),
		Online:    lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e")),
		Offline:   lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")),
		Panel:     lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("#14532d")).Padding(0, 1),
		Info:      lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e")),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")),
		Success:   lipgloss.NewStyle().Foreground(lipgloss.Color("#60a5fa")),
		Command:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#facc15")),
		Output:    lipgloss.NewStyle().Foreground(lipgloss.Color("#d1d5db")),
	}
}

// LightTheme keeps the same roles with colors readable on light terminals.
func LightTheme() Theme {
	return Theme{
		Name:      "light",
		Enabled:   true,
		Header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#166534")),
		Accent:    lipgloss.NewStyle().Foreground(lipgloss.Color("#1d4ed8")),
		Selected:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff")).Background(lipgloss.Color("#166534")),
		Dim:       lipgloss.NewStyle().Faint(true),
		Separator: lipgloss.NewStyle().Foreground(lipgloss.Color("#9ca3af")),
		Help:      lipgloss.NewStyle().Foreground(lipgloss.Color("#1d4ed8")),
		Busy:      lipgloss.NewStyle().Foreground(lipgloss.Color("#166534")),
		Online:    lipgloss.NewStyle().Foreground(lipgloss.Color("#15803d")),
		Offline:   lipgloss.NewStyle().Foreground(lipgloss.Color("#b91c1c")),
		Panel:     lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("#9ca3af")).Padding(0, 1),
		Info:      lipgloss.NewStyle().Foreground(lipgloss.Color("#166534")),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("#b91c1c")),
		Success:   lipgloss.NewStyle().Foreground(lipgloss.Color("#1d4ed8")),
		Command:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#a16207")),
		Output:    lipgloss.NewStyle().Foreground(lipgloss.Color("#374151")),
	}
}

// LineStyle picks the style for a console line.
func (t Theme) LineStyle(typ engine.LineType) lipgloss.Style {
	switch typ {
	case engine.LineError:
		return t.Error
	case engine.LineSuccess:
		return t.Success
	case engine.LineCommand:
		return t.Command
	case engine.LineOutput:
		return t.Output
	}
	return t.Info
}

// StatusStyle picks the style for a host status badge.
func (t Theme) StatusStyle(s engine.HostStatus) lipgloss.Style {
	if s == engine.StatusOnline {
		return t.Online
	}
	return t.Offline
}

// FormatLine renders one console line: "[hh:mm:ss] text", commands prefixed
// with an arrow.
func (t Theme) FormatLine(l engine.Line) string {
	text := l.Text
	if l.Type == engine.LineCommand {
		text = "> " + text
	}
	return t.Dim.Render("["+l.Timestamp+"]") + " " + t.LineStyle(l.Type).Render(text)
}
