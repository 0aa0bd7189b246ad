package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"nucleus-console/pkg/engine"
)

// panelRows caps how many rows a panel shows around the cursor.
const panelRows = 8

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.busyView())
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.panelView())
	b.WriteString("\n")
	b.WriteString(m.helpView())
	return b.String()
}

func (m Model) headerView() string {
	op := strings.ToUpper(m.session.Operator())
	title := m.theme.Header.Render(op + "_OPS@NUCLEUS")
	sub := m.theme.Dim.Render("Secure Shell Environment // Identity: Verified")
	stats := m.theme.Accent.Render(fmt.Sprintf("NODE_COUNT: %d // SESSION: %d // VIEW: %s",
		m.session.Hosts.Len(), m.session.ID(), m.session.MenuState()))
	sep := m.theme.Separator.Render(strings.Repeat("─", maxInt(10, m.width)))
	return lipgloss.JoinVertical(lipgloss.Left, title+"  "+sub, stats, sep)
}

func (m Model) busyView() string {
	if !m.session.Busy() {
		return ""
	}
	return m.spinner.View() + " " + m.theme.Busy.Render("SYSTEM BUSY...")
}

func (m Model) helpView() string {
	var help string
	switch {
	case m.edit != nil:
		help = "enter: save  esc: cancel"
	case m.editingURL:
		help = "enter/esc: done"
	case m.focus == focusInput:
		help = "enter: run  esc: panel  pgup/pgdn: scroll  ctrl+c: abort/quit"
	default:
		switch m.session.MenuState() {
		case engine.MenuMain:
			help = "1: jumphosts  2: server scan  3: web scan  s: config  u: operator  esc: input"
		case engine.MenuJumphosts:
			help = "enter: expand/ping  p: ping  d: disk  l: logs  b: back  esc: input"
		case engine.MenuServerScan:
			help = "enter: expand/scan  t: tool  v: verbose  b: back  esc: input"
		case engine.MenuWebScan:
			help = "up/down: tool  u: edit url  enter: scan  b: back  esc: input"
		case engine.MenuConfig:
			help = "a: add  x: remove  t: status  r: region  e: name  p: ip  b: back  esc: input"
		default:
			help = "ctrl+c: abort"
		}
	}
	return m.theme.Help.Render(help)
}

func (m Model) panelView() string {
	var title string
	var body []string
	switch m.session.MenuState() {
	case engine.MenuMain:
		title = "MAIN MENU"
		body = []string{
			"[1] Jumphost Troubleshooting",
			"[2] Server Scan Tools",
			"[3] Web Application Scan",
			"[s] System Configuration",
			"[u] Switch Operator (" + m.session.Operator() + ")",
		}
	case engine.MenuJumphosts:
		title = "JUMPHOST TROUBLESHOOTING"
		body = m.regionPanel("")
	case engine.MenuServerScan:
		verbose := "off"
		if m.scanVerbose {
			verbose = "on"
		}
		title = fmt.Sprintf("SERVER SCAN // TOOL: %s // VERBOSE: %s", engine.ServerTools[m.scanTool], verbose)
		body = m.regionPanel("scan-")
	case engine.MenuWebScan:
		title = "WEB APPLICATION SCAN"
		body = m.webPanel()
	case engine.MenuConfig:
		title = "SYSTEM CONFIGURATION // HOST REGISTRY"
		body = m.configPanel()
	case engine.MenuExecuting:
		title = "EXECUTING"
		body = []string{m.spinner.View() + " Executing Remote Payload..."}
	}
	if m.focus == focusPanel {
		title = m.theme.Header.Render(title)
	} else {
		title = m.theme.Dim.Render(title)
	}
	return lipgloss.JoinVertical(lipgloss.Left, append([]string{title}, body...)...)
}

// window returns the slice bounds of at most panelRows rows around cursor.
func window(n, cursor int) (int, int) {
	if n <= panelRows {
		return 0, n
	}
	start := cursor - panelRows/2
	if start < 0 {
		start = 0
	}
	if start+panelRows > n {
		start = n - panelRows
	}
	return start, start + panelRows
}

func (m Model) mark(i int, s string) string {
	if m.focus == focusPanel && i == m.cursor {
		return m.theme.Selected.Render("> " + s)
	}
	return "  " + s
}

func (m Model) regionPanel(prefix string) []string {
	rows := m.regionRows(prefix)
	if len(rows) == 0 {
		return []string{m.theme.Dim.Render("  (no hosts registered)")}
	}
	start, end := window(len(rows), m.cursor)
	out := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		r := rows[i]
		if r.host == nil {
			arrow := "▸"
			if m.expanded[prefix+r.region] {
				arrow = "▾"
			}
			out = append(out, m.mark(i, fmt.Sprintf("%s %s (%d nodes)", arrow, r.region, r.count)))
			continue
		}
		badge := m.theme.StatusStyle(r.host.Status).Render("[" + string(r.host.Status) + "]")
		out = append(out, m.mark(i, fmt.Sprintf("    %-20s %-15s ", r.host.Name, r.host.IP))+badge)
	}
	return out
}

func (m Model) webPanel() []string {
	out := []string{"  " + m.webURL.View()}
	start, end := window(len(engine.WebTools), m.cursor)
	for i := start; i < end; i++ {
		tool := engine.WebTools[i]
		if i == m.webTool {
			tool += " *"
		}
		out = append(out, m.mark(i, tool))
	}
	return out
}

func (m Model) configPanel() []string {
	hosts := m.session.Hosts.List()
	if len(hosts) == 0 {
		return []string{m.theme.Dim.Render("  (registry empty, press a to add)")}
	}
	start, end := window(len(hosts), m.cursor)
	out := make([]string, 0, end-start+1)
	for i := start; i < end; i++ {
		h := hosts[i]
		name, ip := h.Name, h.IP
		if m.edit != nil && m.edit.id == h.ID {
			if m.edit.field == "ip" {
				ip = m.edit.input.View()
			} else {
				name = m.edit.input.View()
			}
		}
		badge := m.theme.StatusStyle(h.Status).Render("[" + string(h.Status) + "]")
		out = append(out, m.mark(i, fmt.Sprintf("%-20s %-15s %-12s ", name, ip, h.Region))+badge)
	}
	return out
}
