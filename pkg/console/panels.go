package console

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"nucleus-console/pkg/engine"
)

// panelRow is one selectable line of a region-grouped host panel: either a
// region header (host nil) or a host.
type panelRow struct {
	region string
	count  int
	host   *engine.Host
}

// regionRows flattens the registry into region headers, listing hosts of the
// regions expanded under keyPrefix+region.
func (m Model) regionRows(keyPrefix string) []panelRow {
	var rows []panelRow
	for _, g := range m.session.Hosts.ByRegion() {
		rows = append(rows, panelRow{region: g.Region, count: len(g.Hosts)})
		if !m.expanded[keyPrefix+g.Region] {
			continue
		}
		for i := range g.Hosts {
			h := g.Hosts[i]
			rows = append(rows, panelRow{region: g.Region, host: &h})
		}
	}
	return rows
}

// panelLen is the number of selectable rows in the active panel.
func (m Model) panelLen() int {
	switch m.session.MenuState() {
	case engine.MenuJumphosts:
		return len(m.regionRows(""))
	case engine.MenuServerScan:
		return len(m.regionRows("scan-"))
	case engine.MenuWebScan:
		return len(engine.WebTools)
	case engine.MenuConfig:
		return m.session.Hosts.Len()
	}
	return 0
}

func (m *Model) moveCursor(delta int) {
	n := m.panelLen()
	if n == 0 {
		m.cursor = 0
		return
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= n {
		m.cursor = n - 1
	}
}

func (m Model) handlePanelKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.edit != nil {
		return m.handleEditKey(msg)
	}
	if m.editingURL {
		return m.handleURLKey(msg)
	}

	key := msg.String()
	switch key {
	case "esc", "i":
		return m, m.focusInput()
	case "up", "k":
		m.moveCursor(-1)
		return m, nil
	case "down", "j":
		m.moveCursor(1)
		return m, nil
	case "b", "backspace":
		if m.session.MenuState() != engine.MenuExecuting {
			m.session.Back()
		}
		return m, nil
	}

	switch m.session.MenuState() {
	case engine.MenuMain:
		m.mainKey(key)
	case engine.MenuJumphosts:
		cmd := m.jumphostKey(key)
		return m, cmd
	case engine.MenuServerScan:
		cmd := m.serverScanKey(key)
		return m, cmd
	case engine.MenuWebScan:
		return m.webScanKey(key)
	case engine.MenuConfig:
		return m.configKey(key)
	}
	return m, nil
}

func (m *Model) mainKey(key string) {
	switch key {
	case "1":
		m.session.SetMenu(engine.MenuJumphosts)
	case "2":
		m.session.SetMenu(engine.MenuServerScan)
	case "3":
		m.session.SetMenu(engine.MenuWebScan)
	case "s":
		m.session.SetMenu(engine.MenuConfig)
	case "u":
		if err := m.session.SwitchOperator(nextOperator(m.session.Operator())); err != nil {
			m.logger.Warn("operator switch failed", "error", err)
		}
	}
	m.syncLog()
}

func nextOperator(cur string) string {
	for i, op := range engine.Operators {
		if op == cur {
			return engine.Operators[(i+1)%len(engine.Operators)]
		}
	}
	return engine.DefaultOperator
}

func (m *Model) selectedRow(prefix string) (panelRow, bool) {
	rows := m.regionRows(prefix)
	if m.cursor < 0 || m.cursor >= len(rows) {
		return panelRow{}, false
	}
	return rows[m.cursor], true
}

func (m *Model) jumphostKey(key string) tea.Cmd {
	row, ok := m.selectedRow("")
	if !ok {
		return nil
	}
	if row.host == nil {
		if key == "enter" || key == " " {
			m.expanded[row.region] = !m.expanded[row.region]
		}
		return nil
	}
	var command string
	switch key {
	case "p", "enter":
		command = engine.PingCommand
	case "d":
		command = engine.DiskCommand
	case "l":
		command = engine.LogsCommand
	default:
		return nil
	}
	return m.startRun(m.interp.Troubleshoot(m.ctx, *row.host, command))
}

func (m *Model) serverScanKey(key string) tea.Cmd {
	switch key {
	case "t", "tab":
		m.scanTool = (m.scanTool + 1) % len(engine.ServerTools)
		return nil
	case "v":
		m.scanVerbose = !m.scanVerbose
		return nil
	}
	row, ok := m.selectedRow("scan-")
	if !ok || (key != "enter" && key != " ") {
		return nil
	}
	if row.host == nil {
		k := "scan-" + row.region
		m.expanded[k] = !m.expanded[k]
		return nil
	}
	return m.startRun(m.interp.Scan(m.ctx, *row.host, engine.ServerTools[m.scanTool], m.scanVerbose))
}

func (m Model) webScanKey(key string) (Model, tea.Cmd) {
	switch key {
	case "u", "/":
		m.editingURL = true
		return m, m.webURL.Focus()
	case "enter", " ":
		if m.cursor >= 0 && m.cursor < len(engine.WebTools) {
			m.webTool = m.cursor
		}
		cmd := m.startRun(m.interp.WebScan(m.ctx, m.webURL.Value(), engine.WebTools[m.webTool]))
		return m, cmd
	}
	return m, nil
}

func (m Model) handleURLKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc:
		m.editingURL = false
		m.webURL.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.webURL, cmd = m.webURL.Update(msg)
	return m, cmd
}

func (m Model) configKey(key string) (Model, tea.Cmd) {
	hosts := m.session.Hosts.List()
	if key == "a" {
		m.interp.AddHost(engine.HostPatch{})
		m.cursor = len(hosts)
		m.syncLog()
		return m, nil
	}
	if m.cursor < 0 || m.cursor >= len(hosts) {
		return m, nil
	}
	h := hosts[m.cursor]
	switch key {
	case "x", "delete":
		_ = m.interp.RemoveHost(h.ID)
		m.moveCursor(0)
	case "t":
		m.session.Hosts.Update(h.ID, engine.HostPatch{Status: engine.StatusField(h.Status.Toggle())})
	case "r":
		m.session.Hosts.Update(h.ID, engine.HostPatch{Region: engine.StringField(nextRegion(h.Region))})
	case "e", "n":
		return m, m.beginEdit(h, "name")
	case "p":
		return m, m.beginEdit(h, "ip")
	}
	m.syncLog()
	return m, nil
}

func nextRegion(cur string) string {
	for i, r := range engine.Regions {
		if r == cur {
			return engine.Regions[(i+1)%len(engine.Regions)]
		}
	}
	return engine.Regions[0]
}

func (m *Model) beginEdit(h engine.Host, field string) tea.Cmd {
	ti := textinput.New()
	ti.CharLimit = 255
	ti.Prompt = field + ": "
	if field == "ip" {
		ti.SetValue(h.IP)
	} else {
		ti.SetValue(h.Name)
	}
	ti.CursorEnd()
	m.edit = &hostEdit{id: h.ID, field: field, input: ti}
	return m.edit.input.Focus()
}

func (m Model) handleEditKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.edit = nil
		return m, nil
	case tea.KeyEnter:
		val := m.edit.input.Value()
		p := engine.HostPatch{Name: engine.StringField(val)}
		if m.edit.field == "ip" {
			p = engine.HostPatch{IP: engine.StringField(val)}
		}
		m.session.Hosts.Update(m.edit.id, p)
		m.edit = nil
		m.syncLog()
		return m, nil
	}
	edit := *m.edit
	var cmd tea.Cmd
	edit.input, cmd = edit.input.Update(msg)
	m.edit = &edit
	return m, cmd
}

// startRun reports pipeline start failures to the debug log; the engine has
// already written the operator-facing line.
func (m *Model) startRun(_ *engine.Run, err error) tea.Cmd {
	if err != nil {
		m.logger.Debug("action not started", "error", err)
	}
	return m.syncLog()
}
