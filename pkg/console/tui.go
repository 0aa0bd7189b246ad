// Package console renders the Nucleus ops console: a bubbletea TUI for
// terminals and a plain line-mode REPL for pipes.
package console

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"nucleus-console/pkg/engine"
)

// Options configures the interactive front ends.
type Options struct {
	Theme  Theme
	Logger *slog.Logger
}

type focus int

const (
	focusInput focus = iota
	focusPanel
)

// hostEdit is an in-progress CONFIG table edit of one field.
type hostEdit struct {
	id    string
	field string // name | ip
	input textinput.Model
}

// Model is the bubbletea model of the console.
type Model struct {
	ctx     context.Context
	session *engine.Session
	interp  *engine.Interpreter
	theme   Theme
	logger  *slog.Logger
	bridge  *bridge

	width    int
	height   int
	ready    bool
	quitting bool
	focus    focus

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	lineCount   int
	settledSeen uint64
	lastMenu    engine.MenuState

	// Panel state.
	cursor      int
	expanded    map[string]bool
	scanTool    int
	scanVerbose bool
	webURL      textinput.Model
	webTool     int
	editingURL  bool
	edit        *hostEdit
}

// NewModel builds the TUI model for an interpreter and its session.
func NewModel(ctx context.Context, in *engine.Interpreter, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Theme.Name == "" {
		opts.Theme = DarkTheme()
	}
	s := in.Session()

	ti := textinput.New()
	ti.Prompt = s.Prompt() + " "
	ti.CharLimit = 512
	ti.Focus()

	url := textinput.New()
	url.Prompt = "URL: "
	url.Placeholder = "https://target-domain.internal"
	url.CharLimit = 2048

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = opts.Theme.Busy

	m := Model{
		ctx:      ctx,
		session:  s,
		interp:   in,
		theme:    opts.Theme,
		logger:   opts.Logger,
		bridge:   newBridge(s),
		input:    ti,
		viewport: viewport.New(0, 0),
		spinner:  sp,
		webURL:   url,
		lastMenu: s.MenuState(),
		expanded: map[string]bool{
			"us-east-1":      true,
			"scan-us-east-1": true,
		},
	}
	m.viewport.MouseWheelEnabled = true
	m.syncLog()
	return m
}

// Run starts the full-screen TUI and blocks until the operator quits or ctx
// is cancelled.
func Run(ctx context.Context, in *engine.Interpreter, opts Options) error {
	m := NewModel(ctx, in, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, waitRefresh(m.bridge.ch))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.layout()
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.syncLog()
		return m, nil

	case refreshMsg:
		focus := m.syncLog()
		return m, tea.Batch(focus, waitRefresh(m.bridge.ch))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		if m.session.Busy() {
			m.interp.Abort()
			return m, nil
		}
		return m.quit()
	case "pgup":
		m.viewport.LineUp(maxInt(1, m.viewport.Height/2))
		return m, nil
	case "pgdown":
		m.viewport.LineDown(maxInt(1, m.viewport.Height/2))
		return m, nil
	}
	if m.focus == focusInput {
		return m.handleInputKey(msg)
	}
	return m.handlePanelKey(msg)
}

func (m Model) handleInputKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.focusPanel()
		return m, nil
	case tea.KeyEnter:
		raw := m.input.Value()
		m.input.Reset()
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "exit", "quit":
			return m.quit()
		}
		if _, err := m.interp.Submit(m.ctx, raw); err != nil {
			m.logger.Debug("command rejected", "input", raw, "error", err)
		}
		cmd := m.syncLog()
		return m, cmd
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) focusPanel() {
	m.focus = focusPanel
	m.input.Blur()
}

func (m *Model) focusInput() tea.Cmd {
	m.focus = focusInput
	m.editingURL = false
	m.webURL.Blur()
	m.edit = nil
	return m.input.Focus()
}

func (m Model) quit() (Model, tea.Cmd) {
	m.quitting = true
	return m, tea.Quit
}

// syncLog re-renders the output log into the viewport and picks up session
// changes made by other goroutines. The viewport follows new lines only when
// it was already at the bottom or the log was cleared. The returned command
// restarts the input cursor when a settled run hands focus back.
func (m *Model) syncLog() tea.Cmd {
	lines := m.session.Log.Lines()
	follow := m.viewport.AtBottom() || len(lines) < m.lineCount
	rendered := make([]string, len(lines))
	for i, l := range lines {
		rendered[i] = m.theme.FormatLine(l)
	}
	m.viewport.SetContent(strings.Join(rendered, "\n"))
	m.lineCount = len(lines)
	if follow {
		m.viewport.GotoBottom()
	}

	m.input.Prompt = m.session.Prompt() + " "

	if st := m.session.MenuState(); st != m.lastMenu {
		m.lastMenu = st
		m.cursor = 0
		m.edit = nil
		m.editingURL = false
		m.webURL.Blur()
	}
	if n := m.bridge.settled.Load(); n != m.settledSeen {
		m.settledSeen = n
		return m.focusInput()
	}
	return nil
}

// layout sizes the viewport to whatever the chrome around it leaves.
func (m *Model) layout() {
	if !m.ready {
		return
	}
	chrome := lipgloss.Height(m.headerView()) + 1 + // busy line
		1 + // input
		lipgloss.Height(m.panelView()) +
		1 // help
	follow := m.viewport.AtBottom()
	m.viewport.Width = maxInt(10, m.width)
	m.viewport.Height = maxInt(3, m.height-chrome)
	if follow {
		m.viewport.GotoBottom()
	}
	m.input.Width = maxInt(10, m.width-lipgloss.Width(m.input.Prompt)-1)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
