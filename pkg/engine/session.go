package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"nucleus-console/pkg/kvstore"
)

// Keys of the two independent persisted records.
const (
	KeyHosts    = "nucleus_hosts"
	KeyOperator = "nucleus_user"
)

// persistTimeout bounds each fire-and-forget store write.
const persistTimeout = 2 * time.Second

// EventKind distinguishes session notifications.
type EventKind int

const (
	// EventChanged fires after menu, busy, operator or host changes.
	EventChanged EventKind = iota
	// EventSettled fires once per pipeline run after cleanup. Presentation
	// layers use it to give input focus back to the operator.
	EventSettled
)

// Event is delivered to session listeners.
type Event struct {
	Kind EventKind
	Err  error
}

// Session is the explicit console state: operator identity, host registry,
// output log, menu and the busy flag. Interpreter and Pipeline operate on a
// Session instead of ambient state.
//
// Lock order: the session mutex is never held while appending to Log.
type Session struct {
	Hosts *Registry
	Log   *OutputLog

	mu        sync.Mutex
	store     kvstore.Store
	logger    *slog.Logger
	operator  string
	menu      *Menu
	busy      bool
	id        int
	listeners []func(Event)
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock sets the clock used for line timestamps and host IDs.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) {
		s.Log.SetClock(now)
		s.Hosts.SetClock(now)
	}
}

// NewSession creates a session seeded with defaults. Call Hydrate to load
// persisted state and Init to print the boot banner.
func NewSession(store kvstore.Store, opts ...SessionOption) *Session {
	if store == nil {
		store = kvstore.NewMemoryStore()
	}
	s := &Session{
		Hosts:    NewRegistry(DefaultHosts()),
		Log:      NewOutputLog(),
		store:    store,
		logger:   slog.New(slog.DiscardHandler),
		operator: DefaultOperator,
		menu:     NewMenu(),
		id:       rand.IntN(10000),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Hosts.SetPersistHook(s.persistHosts)
	return s
}

// Hydrate reads both records from the store. Absent or unparsable values
// fall back to the static defaults.
func (s *Session) Hydrate(ctx context.Context) {
	hosts := DefaultHosts()
	if raw, err := s.store.Get(ctx, KeyHosts); err == nil {
		var stored []Host
		if jerr := json.Unmarshal([]byte(raw), &stored); jerr != nil {
			s.logger.Warn("stored hosts unreadable, using defaults", "error", jerr)
		} else if stored != nil {
			hosts = stored
		}
	} else if !errors.Is(err, kvstore.ErrNotFound) {
		s.logger.Warn("load hosts failed, using defaults", "error", err)
	}
	s.Hosts.Replace(hosts)

	op := DefaultOperator
	if raw, err := s.store.Get(ctx, KeyOperator); err == nil {
		if parsed, ok := ParseOperator(raw); ok {
			op = parsed
		} else {
			s.logger.Warn("stored operator unknown, using default", "operator", raw)
		}
	} else if !errors.Is(err, kvstore.ErrNotFound) {
		s.logger.Warn("load operator failed, using default", "error", err)
	}
	s.mu.Lock()
	s.operator = op
	s.mu.Unlock()

	s.logger.Info("session hydrated", "hosts", s.Hosts.Len(), "operator", op)
	s.emit(Event{Kind: EventChanged})
}

// Init prints the boot banner.
func (s *Session) Init() {
	op := s.Operator()
	s.Log.Success("SYSTEM INITIALIZED. NUCLEUS OPS CONSOLE v" + Version)
	s.Log.Info("AUTHENTICATED AS: " + strings.ToUpper(op))
	s.Log.Info("Type 'help' for available commands or use the menu below.")
}

// Persist writes both records in full.
func (s *Session) Persist(ctx context.Context) error {
	payload, err := json.Marshal(s.Hosts.List())
	if err != nil {
		return fmt.Errorf("encode hosts: %w", err)
	}
	if err := s.store.Set(ctx, KeyHosts, string(payload)); err != nil {
		return err
	}
	return s.store.Set(ctx, KeyOperator, s.Operator())
}

func (s *Session) persistHosts(hosts []Host) {
	payload, err := json.Marshal(hosts)
	if err != nil {
		s.logger.Error("encode hosts", "error", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.store.Set(ctx, KeyHosts, string(payload)); err != nil {
		s.logger.Error("persist hosts", "error", err)
	}
	s.emit(Event{Kind: EventChanged})
}

func (s *Session) persistOperator(op string) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.store.Set(ctx, KeyOperator, op); err != nil {
		s.logger.Error("persist operator", "error", err)
	}
}

// ID is a random display number chosen per process.
func (s *Session) ID() int { return s.id }

// Operator returns the active identity.
func (s *Session) Operator() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.operator
}

// Prompt is the synthetic shell prompt for the active identity.
func (s *Session) Prompt() string {
	return fmt.Sprintf("[%s@nucleus ~]$", s.Operator())
}

// SwitchOperator changes identity. Switching to the active identity is a no-op.
func (s *Session) SwitchOperator(name string) error {
	op, ok := ParseOperator(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownOperator, name)
	}
	s.mu.Lock()
	prev := s.operator
	if prev == op {
		s.mu.Unlock()
		return nil
	}
	s.operator = op
	s.mu.Unlock()

	s.Log.Error("LOGOUT: Session ended for " + prev)
	s.Log.Success("LOGIN: Initializing secure context for " + op + "...")
	s.Log.Info("AUTHENTICATED AS: " + strings.ToUpper(op))
	s.persistOperator(op)
	s.logger.Info("operator switched", "from", prev, "to", op)
	s.emit(Event{Kind: EventChanged})
	return nil
}

// MenuState returns the active view.
func (s *Session) MenuState() MenuState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.menu.State()
}

// SetMenu moves to st. Operator navigation is allowed during a run; the
// pipeline still forces MenuMain when it settles.
func (s *Session) SetMenu(st MenuState) {
	s.mu.Lock()
	s.menu.Set(st)
	s.mu.Unlock()
	s.emit(Event{Kind: EventChanged})
}

// Back returns to MenuMain.
func (s *Session) Back() {
	s.mu.Lock()
	s.menu.Back()
	s.mu.Unlock()
	s.emit(Event{Kind: EventChanged})
}

// Busy reports whether a pipeline run is active.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Subscribe registers fn for session events. fn runs on the goroutine that
// caused the event.
func (s *Session) Subscribe(fn func(Event)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// acquire marks the session busy. When executing is true the menu enters
// MenuExecuting in the same critical section.
func (s *Session) acquire(executing bool) bool {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return false
	}
	s.busy = true
	if executing {
		s.menu.Set(MenuExecuting)
	}
	s.mu.Unlock()
	s.emit(Event{Kind: EventChanged})
	return true
}

// release clears the busy flag and, if the run entered MenuExecuting,
// returns to MenuMain.
func (s *Session) release(executing bool, runErr error) {
	s.mu.Lock()
	s.busy = false
	if executing {
		s.menu.Set(MenuMain)
	}
	s.mu.Unlock()
	s.emit(Event{Kind: EventChanged})
	s.emit(Event{Kind: EventSettled, Err: runErr})
}

func (s *Session) emit(ev Event) {
	s.mu.Lock()
	ls := make([]func(Event), len(s.listeners))
	copy(ls, s.listeners)
	s.mu.Unlock()
	for _, fn := range ls {
		fn(ev)
	}
}
