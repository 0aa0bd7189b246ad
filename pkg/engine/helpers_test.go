package engine

import (
	"context"
	"testing"
	"time"

	"nucleus-console/pkg/collab"
	"nucleus-console/pkg/kvstore"
)

var fixedNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

type harness struct {
	store    *kvstore.MemoryStore
	session  *Session
	pipeline *Pipeline
	interp   *Interpreter
}

func newHarness(t *testing.T, c collab.Collaborator, opts ...PipelineOption) *harness {
	t.Helper()
	store := kvstore.NewMemoryStore()
	s := NewSession(store, WithClock(fixedClock))
	opts = append([]PipelineOption{WithPacing(0)}, opts...)
	p := NewPipeline(s, c, opts...)
	return &harness{store: store, session: s, pipeline: p, interp: NewInterpreter(s, p)}
}

func (h *harness) submit(t *testing.T, input string) error {
	t.Helper()
	run, err := h.interp.Submit(context.Background(), input)
	if run != nil {
		select {
		case <-run.Done():
		case <-time.After(5 * time.Second):
			t.Fatalf("run for %q did not settle", input)
		}
		if rerr := run.Err(); rerr != nil && err == nil {
			err = rerr
		}
	}
	return err
}

func echo(text string) collab.Func {
	return func(ctx context.Context, req collab.Request) (string, error) { return text, nil }
}

func linesOfType(lines []Line, typ LineType) []Line {
	var out []Line
	for _, l := range lines {
		if l.Type == typ {
			out = append(out, l)
		}
	}
	return out
}
