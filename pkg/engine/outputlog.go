package engine

import (
	"sync"
	"time"
)

// LineType classifies a console line for rendering.
type LineType string

const (
	LineInfo    LineType = "info"
	LineError   LineType = "error"
	LineSuccess LineType = "success"
	LineCommand LineType = "command"
	LineOutput  LineType = "output"
)

// TimestampLayout is the 24h wall-clock format stamped on each line.
const TimestampLayout = "15:04:05"

// Line is one displayed console line. Lines are immutable once appended.
type Line struct {
	Text      string   `json:"text"`
	Type      LineType `json:"type"`
	Timestamp string   `json:"timestamp"`
}

// LogEvent is delivered to observers for every append and clear. Line is nil
// for a clear.
type LogEvent struct {
	Line    *Line
	Cleared bool
}

// OutputLog is the ordered, append-only record of console lines. The only
// destructive operation is Clear, which empties it.
//
// Observers run synchronously while the log is locked so they see events in
// log order; they must not call back into the log.
type OutputLog struct {
	mu        sync.RWMutex
	lines     []Line
	now       func() time.Time
	observers []func(LogEvent)
}

// NewOutputLog returns an empty log stamped with the local clock.
func NewOutputLog() *OutputLog {
	return &OutputLog{now: time.Now}
}

// SetClock overrides the timestamp source.
func (l *OutputLog) SetClock(now func() time.Time) {
	l.mu.Lock()
	l.now = now
	l.mu.Unlock()
}

// Observe registers fn for future events.
func (l *OutputLog) Observe(fn func(LogEvent)) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	l.observers = append(l.observers, fn)
	l.mu.Unlock()
}

// Append stamps and appends a line, returning it.
func (l *OutputLog) Append(text string, typ LineType) Line {
	l.mu.Lock()
	defer l.mu.Unlock()
	line := Line{Text: text, Type: typ, Timestamp: l.now().Format(TimestampLayout)}
	l.lines = append(l.lines, line)
	for _, fn := range l.observers {
		ln := line
		fn(LogEvent{Line: &ln})
	}
	return line
}

// Info, Error, Success, Command and Output are Append shorthands.
func (l *OutputLog) Info(text string) Line    { return l.Append(text, LineInfo) }
func (l *OutputLog) Error(text string) Line   { return l.Append(text, LineError) }
func (l *OutputLog) Success(text string) Line { return l.Append(text, LineSuccess) }
func (l *OutputLog) Command(text string) Line { return l.Append(text, LineCommand) }
func (l *OutputLog) Output(text string) Line  { return l.Append(text, LineOutput) }

// Clear replaces the sequence with an empty one.
func (l *OutputLog) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = nil
	for _, fn := range l.observers {
		fn(LogEvent{Cleared: true})
	}
}

// Lines returns a copy of all lines.
func (l *OutputLog) Lines() []Line {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Line, len(l.lines))
	copy(out, l.lines)
	return out
}

// Len returns the number of lines.
func (l *OutputLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.lines)
}

// Since returns a copy of lines from index n onward (empty if n is past the end).
func (l *OutputLog) Since(n int) []Line {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if n < 0 {
		n = 0
	}
	if n >= len(l.lines) {
		return nil
	}
	out := make([]Line, len(l.lines)-n)
	copy(out, l.lines[n:])
	return out
}
