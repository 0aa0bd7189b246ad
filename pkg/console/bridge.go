package console

import (
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"nucleus-console/pkg/engine"
)

// refreshMsg tells the model that log or session state changed.
type refreshMsg struct{}

// bridge turns engine notifications into a coalesced wake-up channel. Sends
// never block: engine observers run under engine locks and the UI goroutine
// may itself be the one appending.
type bridge struct {
	ch      chan struct{}
	settled atomic.Uint64
}

func newBridge(s *engine.Session) *bridge {
	b := &bridge{ch: make(chan struct{}, 1)}
	s.Log.Observe(func(engine.LogEvent) { b.poke() })
	s.Subscribe(func(ev engine.Event) {
		if ev.Kind == engine.EventSettled {
			b.settled.Add(1)
		}
		b.poke()
	})
	return b
}

func (b *bridge) poke() {
	select {
	case b.ch <- struct{}{}:
	default:
	}
}

func waitRefresh(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return refreshMsg{}
	}
}
