// Package transcript writes per-operator daily transcripts of console output.
//
// Transcripts live under <base>/<operator>/YYYY-MM-DD.log, one record per
// console line: "[hh:mm:ss] TYPE text".
package transcript

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"nucleus-console/pkg/engine"
)

const (
	// DefaultExt is the extension used for daily transcripts.
	DefaultExt = ".log"

	// DefaultDayFormat controls the transcript filename date format.
	DefaultDayFormat = "2006-01-02"
)

// Options controls where transcripts are written.
type Options struct {
	// BaseDir is the transcript root. Required.
	BaseDir string

	// Timezone controls what "day" means for file rotation. If nil, local time is used.
	Timezone *time.Location

	// FilePerm defaults to 0600, DirPerm to 0700.
	FilePerm os.FileMode
	DirPerm  os.FileMode
}

func (o Options) normalize() Options {
	if o.FilePerm == 0 {
		o.FilePerm = 0o600
	}
	if o.DirPerm == 0 {
		o.DirPerm = 0o700
	}
	if o.Timezone == nil {
		o.Timezone = time.Local
	}
	return o
}

// Writer appends console lines to the active operator's daily transcript.
type Writer struct {
	opts   Options
	now    func() time.Time
	logger *slog.Logger

	mu sync.Mutex
}

// NewWriter validates opts.
func NewWriter(opts Options, logger *slog.Logger) (*Writer, error) {
	if strings.TrimSpace(opts.BaseDir) == "" {
		return nil, errors.New("transcript base dir is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Writer{opts: opts.normalize(), now: time.Now, logger: logger}, nil
}

// Dir returns the directory for one operator.
func (w *Writer) Dir(operator string) (string, error) {
	operator = strings.TrimSpace(operator)
	if operator == "" {
		return "", errors.New("operator is required")
	}
	return filepath.Join(w.opts.BaseDir, sanitizeKey(operator)), nil
}

// DailyPath returns the transcript path for operator on the day of t.
// If t is zero, the current time is used.
func (w *Writer) DailyPath(operator string, t time.Time) (string, error) {
	if t.IsZero() {
		t = w.now()
	}
	dir, err := w.Dir(operator)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, t.In(w.opts.Timezone).Format(DefaultDayFormat)+DefaultExt), nil
}

// Record appends one console line to operator's transcript for today.
func (w *Writer) Record(operator string, line engine.Line) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	p, err := w.DailyPath(operator, w.now())
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), w.opts.DirPerm); err != nil {
		return fmt.Errorf("mkdir transcript dir: %w", err)
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_APPEND|os.O_WRONLY, w.opts.FilePerm)
	if err != nil {
		return fmt.Errorf("open transcript for append: %w", err)
	}
	defer f.Close()

	text := strings.TrimRight(line.Text, "\r\n")
	record := fmt.Sprintf("[%s] %s %s\n", line.Timestamp, strings.ToUpper(string(line.Type)), text)
	if _, err := io.WriteString(f, record); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	return nil
}

// Observer adapts the writer to engine.OutputLog.Observe. operator is asked
// for the active identity on every line. Clears are not recorded.
func (w *Writer) Observer(operator func() string) func(engine.LogEvent) {
	return func(ev engine.LogEvent) {
		if ev.Line == nil {
			return
		}
		if err := w.Record(operator(), *ev.Line); err != nil {
			w.logger.Warn("transcript write failed", "error", err)
		}
	}
}

// List returns operator's transcript files, newest-first.
func (w *Writer) List(operator string) ([]string, error) {
	dir, err := w.Dir(operator)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}
	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), DefaultExt) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	// YYYY-MM-DD.log sorts lexicographically.
	sort.Sort(sort.Reverse(sort.StringSlice(paths)))
	return paths, nil
}

// Tail returns the last n lines of path in file order.
func Tail(path string, n int) ([]string, error) {
	if n <= 0 {
		return []string{}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	ring := make([]string, 0, n)
	for sc.Scan() {
		if len(ring) == n {
			ring = append(ring[:0], ring[1:]...)
		}
		ring = append(ring, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return ring, nil
}

// sanitizeKey maps an operator name to a filesystem-safe directory name.
func sanitizeKey(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "_"
	}
	return out
}
