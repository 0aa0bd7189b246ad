package engine

import "strings"

// MenuState is the active navigational view of the console.
type MenuState int

const (
	MenuMain MenuState = iota
	MenuJumphosts
	MenuServerScan
	MenuWebScan
	MenuConfig
	// MenuExecuting is transient: only the pipeline enters it, and the
	// pipeline always leaves it for MenuMain when a run settles.
	MenuExecuting
)

// MenuUsage is the error text for an unrecognized menu token.
const MenuUsage = "Usage: menu [main|jump|scan|web|config]"

func (s MenuState) String() string {
	switch s {
	case MenuMain:
		return "MAIN"
	case MenuJumphosts:
		return "JUMPHOSTS"
	case MenuServerScan:
		return "SERVER_SCAN"
	case MenuWebScan:
		return "WEB_SCAN"
	case MenuConfig:
		return "CONFIG"
	case MenuExecuting:
		return "EXECUTING"
	}
	return "UNKNOWN"
}

// ParseMenuState maps an operator token to a selectable state. EXECUTING is
// never selectable.
func ParseMenuState(token string) (MenuState, bool) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "main":
		return MenuMain, true
	case "jump", "jumphosts":
		return MenuJumphosts, true
	case "scan", "server", "server_scan":
		return MenuServerScan, true
	case "web", "web_scan":
		return MenuWebScan, true
	case "config", "settings":
		return MenuConfig, true
	}
	return MenuMain, false
}

// Menu holds the current MenuState. It is not synchronized; Session guards it.
type Menu struct {
	state MenuState
}

// NewMenu starts in MenuMain.
func NewMenu() *Menu { return &Menu{state: MenuMain} }

// State returns the active state.
func (m *Menu) State() MenuState { return m.state }

// Set moves to s.
func (m *Menu) Set(s MenuState) { m.state = s }

// Back returns to MenuMain.
func (m *Menu) Back() { m.state = MenuMain }
