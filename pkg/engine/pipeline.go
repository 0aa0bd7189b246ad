package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"nucleus-console/pkg/collab"
)

// Family groups actions that share rendering and menu behavior.
type Family int

const (
	// FamilyTroubleshoot is a single remote command: no pacing, no menu change.
	FamilyTroubleshoot Family = iota
	// FamilyServerScan and FamilyWebScan stream paced output inside an
	// EXECUTING bracket.
	FamilyServerScan
	FamilyWebScan
)

func (f Family) String() string {
	switch f {
	case FamilyTroubleshoot:
		return "troubleshoot"
	case FamilyServerScan:
		return "server_scan"
	case FamilyWebScan:
		return "web_scan"
	}
	return "unknown"
}

func (f Family) executing() bool { return f != FamilyTroubleshoot }

// Action is one simulated remote action.
type Action struct {
	Family  Family
	Host    Host
	Command string // troubleshooting command
	URL     string // web scans
	Tool    string // server and web scans
	Verbose bool   // server scans
}

// Troubleshoot builds a single-command action against h.
func Troubleshoot(h Host, command string) Action {
	return Action{Family: FamilyTroubleshoot, Host: h, Command: command}
}

// ServerScan builds a full-scan action against h.
func ServerScan(h Host, tool string, verbose bool) Action {
	return Action{Family: FamilyServerScan, Host: h, Tool: tool, Verbose: verbose}
}

// WebScan builds a web-scan action against url.
func WebScan(url, tool string) Action {
	return Action{Family: FamilyWebScan, URL: url, Tool: tool}
}

// Label is a short operator-facing description.
func (a Action) Label() string {
	switch a.Family {
	case FamilyServerScan:
		return "scan " + a.Host.Name
	case FamilyWebScan:
		return "web " + a.URL
	}
	return a.Command + " on " + a.Host.Name
}

// Defaults for Pipeline timing.
const (
	DefaultPacing  = 100 * time.Millisecond
	DefaultTimeout = 90 * time.Second
)

// Pipeline runs remote actions one at a time and guarantees the session is
// usable again afterwards: busy cleared, MenuMain restored, a Settled event
// emitted, whatever the outcome.
type Pipeline struct {
	session  *Session
	collab   collab.Collaborator
	pacing   time.Duration
	timeout  time.Duration
	logger   *slog.Logger
	recorder Recorder
	sleep    func(ctx context.Context, d time.Duration) error

	mu     sync.Mutex
	cancel context.CancelFunc
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithPacing sets the delay between streamed scan lines (0 disables).
func WithPacing(d time.Duration) PipelineOption {
	return func(p *Pipeline) {
		if d >= 0 {
			p.pacing = d
		}
	}
}

// WithTimeout bounds each collaborator call (0 disables).
func WithTimeout(d time.Duration) PipelineOption {
	return func(p *Pipeline) {
		if d >= 0 {
			p.timeout = d
		}
	}
}

// WithPipelineLogger sets the structured logger.
func WithPipelineLogger(l *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithRecorder sets the metrics sink.
func WithRecorder(r Recorder) PipelineOption {
	return func(p *Pipeline) {
		if r != nil {
			p.recorder = r
		}
	}
}

// NewPipeline binds a pipeline to a session and collaborator.
func NewPipeline(s *Session, c collab.Collaborator, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		session:  s,
		collab:   c,
		pacing:   DefaultPacing,
		timeout:  DefaultTimeout,
		logger:   slog.New(slog.DiscardHandler),
		recorder: nopRecorder{},
		sleep:    sleepCtx,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run is the handle of one started action.
type Run struct {
	Action Action
	done   chan struct{}
	err    error
}

// Done is closed once the run has settled.
func (r *Run) Done() <-chan struct{} { return r.done }

// Wait blocks until the run settles and returns its error.
func (r *Run) Wait() error {
	<-r.done
	return r.err
}

// Err returns the outcome; only meaningful after Done is closed.
func (r *Run) Err() error {
	select {
	case <-r.done:
		return r.err
	default:
		return nil
	}
}

// Start runs the guard, marks the session busy and emits the synthetic
// command line synchronously, then continues on its own goroutine. A second
// Start while a run is active is rejected with ErrBusy.
func (p *Pipeline) Start(ctx context.Context, a Action) (*Run, error) {
	log := p.session.Log
	if !p.session.acquire(a.Family.executing()) {
		log.Error(fmt.Sprintf("SYSTEM BUSY: '%s' rejected, another action is still running.", a.Label()))
		p.recorder.PipelineRejected(a.Family.String())
		p.logger.Warn("pipeline rejected", "family", a.Family.String(), "action", a.Label())
		return nil, ErrBusy
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	p.cancel = cancel
	p.mu.Unlock()

	op := p.session.Operator()
	switch a.Family {
	case FamilyTroubleshoot:
		log.Command(fmt.Sprintf("$ ssh %s@%s %q", op, a.Host.IP, a.Command))
	case FamilyServerScan:
		cmd := fmt.Sprintf("$ curl -sSL https://nucleus.internal/scripts/scan.sh | bash -s -- --user %s --host %s", op, a.Host.Name)
		if a.Verbose {
			cmd += " --verbose"
		}
		log.Command(cmd)
		log.Info(fmt.Sprintf("Establishing encrypted tunnel to %s...", a.Host.IP))
	case FamilyWebScan:
		log.Command(fmt.Sprintf("$ %s --target %s --operator %s", toolBinary(a.Tool), a.URL, op))
	}

	run := &Run{Action: a, done: make(chan struct{})}
	req := collab.Request{
		HostName: a.Host.Name,
		HostIP:   a.Host.IP,
		URL:      a.URL,
		Action:   a.Command,
		Tool:     a.Tool,
		Verbose:  a.Verbose,
		Operator: op,
	}
	switch a.Family {
	case FamilyTroubleshoot:
		req.Kind = collab.KindTroubleshoot
	case FamilyServerScan:
		req.Kind = collab.KindServerScan
	case FamilyWebScan:
		req.Kind = collab.KindWebScan
	}
	p.logger.Info("pipeline started", "family", a.Family.String(), "action", a.Label(), "operator", op)
	go p.run(runCtx, cancel, req, run)
	return run, nil
}

// Abort cancels the active run. It reports whether one was active.
func (p *Pipeline) Abort() bool {
	p.mu.Lock()
	cancel := p.cancel
	p.mu.Unlock()
	if cancel == nil || !p.session.Busy() {
		return false
	}
	cancel()
	return true
}

func (p *Pipeline) run(ctx context.Context, cancel context.CancelFunc, req collab.Request, run *Run) {
	defer close(run.done)
	started := time.Now()
	a := run.Action

	err := p.execute(ctx, req, a)
	if err != nil {
		p.session.Log.Error("CRITICAL ERROR: " + describeFailure(err))
	}

	p.mu.Lock()
	p.cancel = nil
	p.mu.Unlock()
	cancel()

	outcome := "success"
	switch {
	case errors.Is(err, ErrAborted):
		outcome = "aborted"
	case err != nil:
		outcome = "error"
	}
	p.recorder.PipelineFinished(a.Family.String(), outcome, time.Since(started))
	if err != nil {
		p.logger.Error("pipeline failed", "family", a.Family.String(), "action", a.Label(), "error", err)
	} else {
		p.logger.Info("pipeline finished", "family", a.Family.String(), "action", a.Label(), "elapsed", time.Since(started))
	}

	run.err = err
	p.session.release(a.Family.executing(), err)
}

func (p *Pipeline) execute(ctx context.Context, req collab.Request, a Action) error {
	text, err := p.generate(ctx, req)
	if err != nil {
		return err
	}

	log := p.session.Log
	paced := a.Family.executing() && p.pacing > 0
	for i, line := range SplitLines(text) {
		if paced && i > 0 {
			if err := p.sleep(ctx, p.pacing); err != nil {
				return classifyCtxErr(err)
			}
		}
		log.Output(line)
	}

	if a.Family == FamilyServerScan {
		log.Success(fmt.Sprintf("Scan script /tmp/nucleus_scan_%s.sh removed successfully.", a.Host.ID))
		log.Info(fmt.Sprintf("Connection to %s closed.", a.Host.Name))
	}
	return nil
}

// generate calls the collaborator under the timeout, converting panics and
// context errors into classified errors.
func (p *Pipeline) generate(ctx context.Context, req collab.Request) (text string, err error) {
	callCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", ErrCollaborator, r)
		}
	}()

	if p.collab == nil {
		return "", fmt.Errorf("%w: no collaborator configured", ErrCollaborator)
	}
	text, err = p.collab.Generate(callCtx, req)
	if err != nil {
		if ctx.Err() != nil {
			return "", classifyCtxErr(ctx.Err())
		}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: timed out after %s", ErrCollaborator, p.timeout)
		}
		return "", fmt.Errorf("%w: %w", ErrCollaborator, err)
	}
	return text, nil
}

// SplitLines breaks collaborator text into display lines. CRLF is normalized
// and trailing newlines are dropped; empty text yields no lines.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func toolBinary(tool string) string {
	return strings.ReplaceAll(strings.ToLower(tool), " ", "_")
}

func classifyCtxErr(err error) error {
	if errors.Is(err, context.Canceled) {
		return ErrAborted
	}
	return err
}

func describeFailure(err error) string {
	if errors.Is(err, ErrAborted) {
		return ErrAborted.Error()
	}
	if errors.Is(err, ErrCollaborator) {
		return strings.TrimPrefix(err.Error(), ErrCollaborator.Error()+": ")
	}
	return err.Error()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
