package console

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/muesli/termenv"

	"nucleus-console/pkg/engine"
)

// LineOptions configures the line-oriented front end.
type LineOptions struct {
	// Color enables ANSI colors detected from the writer's terminal.
	Color bool
	// Prompt prints the operator prompt before each read.
	Prompt bool
	// Replay prints lines already in the log before reading input.
	Replay bool
	Logger *slog.Logger
}

// linePrinter serializes writes from the log observer and the read loop.
type linePrinter struct {
	mu  sync.Mutex
	out *termenv.Output
}

func (p *linePrinter) color(typ engine.LineType) termenv.Color {
	switch typ {
	case engine.LineError:
		return p.out.Color("#ef4444")
	case engine.LineSuccess:
		return p.out.Color("#60a5fa")
	case engine.LineCommand:
		return p.out.Color("#facc15")
	case engine.LineOutput:
		return p.out.Color("#d1d5db")
	}
	return p.out.Color("#22c55e")
}

func (p *linePrinter) line(l engine.Line) {
	text := l.Text
	if l.Type == engine.LineCommand {
		text = "> " + text
	}
	ts := p.out.String("[" + l.Timestamp + "]").Faint()
	body := p.out.String(text).Foreground(p.color(l.Type))
	if l.Type == engine.LineCommand {
		body = body.Bold()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = io.WriteString(p.out, ts.String()+" "+body.String()+"\n")
}

func (p *linePrinter) cleared() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.out.Profile == termenv.Ascii {
		_, _ = io.WriteString(p.out, "--- console cleared ---\n")
		return
	}
	p.out.ClearScreen()
}

func (p *linePrinter) prompt(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = io.WriteString(p.out, s)
}

// RunLines reads commands from r one line at a time and streams log lines to
// w as they are appended. Each command's run settles before the next line is
// read. "exit" and "quit" end the loop, as does EOF.
func RunLines(ctx context.Context, in *engine.Interpreter, r io.Reader, w io.Writer, opts LineOptions) error {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	out := termenv.NewOutput(w, termenv.WithProfile(termenv.Ascii))
	if opts.Color {
		out = termenv.NewOutput(w)
	}
	p := &linePrinter{out: out}
	s := in.Session()

	if opts.Replay {
		for _, l := range s.Log.Lines() {
			p.line(l)
		}
	}
	s.Log.Observe(func(ev engine.LogEvent) {
		if ev.Cleared {
			p.cleared()
			return
		}
		p.line(*ev.Line)
	})

	sc := bufio.NewScanner(r)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if opts.Prompt {
			p.prompt(s.Prompt() + " ")
		}
		if !sc.Scan() {
			return sc.Err()
		}
		raw := sc.Text()
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "exit", "quit":
			return nil
		}
		run, err := in.Submit(ctx, raw)
		if err != nil {
			opts.Logger.Debug("command rejected", "input", raw, "error", err)
		}
		if run == nil {
			continue
		}
		select {
		case <-run.Done():
		case <-ctx.Done():
			in.Abort()
			<-run.Done()
			return ctx.Err()
		}
	}
}
