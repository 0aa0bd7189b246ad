package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"nucleus-console/pkg/collab"
)

type recordedRun struct {
	family, outcome string
}

type fakeRecorder struct {
	mu       sync.Mutex
	commands []string
	runs     []recordedRun
	rejected []string
}

func (r *fakeRecorder) CommandHandled(command, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, command+":"+outcome)
}

func (r *fakeRecorder) PipelineFinished(family, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, recordedRun{family, outcome})
}

func (r *fakeRecorder) PipelineRejected(family string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejected = append(r.rejected, family)
}

func waitRun(t *testing.T, run *Run) error {
	t.Helper()
	select {
	case <-run.Done():
		return run.Err()
	case <-time.After(5 * time.Second):
		t.Fatalf("run did not settle")
	}
	return nil
}

func testHost() Host {
	return Host{ID: "h1", Name: "edge-01", IP: "10.1.2.3", Status: StatusOnline, Region: "eu-west-1"}
}

func TestPipelineTroubleshootSuccess(t *testing.T) {
	var got collab.Request
	h := newHarness(t, collab.Func(func(ctx context.Context, req collab.Request) (string, error) {
		got = req
		return "PING ok\r\n4 packets\n", nil
	}))

	run, err := h.pipeline.Start(context.Background(), Troubleshoot(testHost(), PingCommand))
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if h.session.MenuState() != MenuMain {
		t.Fatalf("troubleshooting must not enter EXECUTING")
	}
	if err := waitRun(t, run); err != nil {
		t.Fatalf("run: %v", err)
	}

	lines := h.session.Log.Lines()
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %#v", lines)
	}
	if lines[0].Type != LineCommand || lines[0].Text != `$ ssh admin@10.1.2.3 "ping -c 4 8.8.8.8"` {
		t.Fatalf("unexpected command line %#v", lines[0])
	}
	if lines[1].Text != "PING ok" || lines[2].Text != "4 packets" || lines[2].Type != LineOutput {
		t.Fatalf("unexpected output lines %#v", lines[1:])
	}
	if got.Kind != collab.KindTroubleshoot || got.HostIP != "10.1.2.3" || got.Action != PingCommand || got.Operator != "admin" {
		t.Fatalf("unexpected request %#v", got)
	}
	if h.session.Busy() {
		t.Fatalf("busy after settle")
	}
}

func TestPipelineServerScanBracketsExecuting(t *testing.T) {
	release := make(chan struct{})
	var seen MenuState
	h := newHarness(t, nil)
	h.pipeline.collab = collab.Func(func(ctx context.Context, req collab.Request) (string, error) {
		seen = h.session.MenuState()
		<-release
		return "line1\nline2", nil
	})

	run, err := h.pipeline.Start(context.Background(), ServerScan(testHost(), "Rootkit Hunter", true))
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if h.session.MenuState() != MenuExecuting {
		t.Fatalf("expected EXECUTING synchronously, got %v", h.session.MenuState())
	}
	close(release)
	if err := waitRun(t, run); err != nil {
		t.Fatalf("run: %v", err)
	}
	if seen != MenuExecuting {
		t.Fatalf("collaborator saw %v", seen)
	}
	if h.session.MenuState() != MenuMain {
		t.Fatalf("expected MAIN after settle, got %v", h.session.MenuState())
	}

	lines := h.session.Log.Lines()
	want := []struct {
		typ  LineType
		text string
	}{
		{LineCommand, "$ curl -sSL https://nucleus.internal/scripts/scan.sh | bash -s -- --user admin --host edge-01 --verbose"},
		{LineInfo, "Establishing encrypted tunnel to 10.1.2.3..."},
		{LineOutput, "line1"},
		{LineOutput, "line2"},
		{LineSuccess, "Scan script /tmp/nucleus_scan_h1.sh removed successfully."},
		{LineInfo, "Connection to edge-01 closed."},
	}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %#v", len(want), lines)
	}
	for i, w := range want {
		if lines[i].Type != w.typ || lines[i].Text != w.text {
			t.Fatalf("line %d = %#v, want %v %q", i, lines[i], w.typ, w.text)
		}
	}
}

func TestPipelineWebScanCommandLine(t *testing.T) {
	h := newHarness(t, echo("finding"))
	run, err := h.pipeline.Start(context.Background(), WebScan("https://example.test", "Sqlmap (Automated)"))
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	_ = waitRun(t, run)

	lines := h.session.Log.Lines()
	if lines[0].Text != "$ sqlmap_(automated) --target https://example.test --operator admin" {
		t.Fatalf("unexpected web command line %q", lines[0].Text)
	}
	if len(lines) != 2 || lines[1].Text != "finding" {
		t.Fatalf("unexpected lines %#v", lines)
	}
	if h.session.MenuState() != MenuMain {
		t.Fatalf("expected MAIN after web scan")
	}
}

func TestPipelineFailureEmitsOneCriticalLine(t *testing.T) {
	rec := &fakeRecorder{}
	var settled []Event
	h := newHarness(t, collab.Func(func(ctx context.Context, req collab.Request) (string, error) {
		return "", errors.New("boom")
	}), WithRecorder(rec))
	h.session.Subscribe(func(ev Event) {
		if ev.Kind == EventSettled {
			settled = append(settled, ev)
		}
	})

	run, _ := h.pipeline.Start(context.Background(), ServerScan(testHost(), ServerTools[0], false))
	err := waitRun(t, run)
	if !errors.Is(err, ErrCollaborator) {
		t.Fatalf("expected ErrCollaborator, got %v", err)
	}

	errs := linesOfType(h.session.Log.Lines(), LineError)
	if len(errs) != 1 || errs[0].Text != "CRITICAL ERROR: boom" {
		t.Fatalf("expected one critical line, got %#v", errs)
	}
	for _, l := range h.session.Log.Lines() {
		if strings.HasPrefix(l.Text, "Scan script") {
			t.Fatalf("closers must not appear on failure")
		}
	}
	if h.session.Busy() || h.session.MenuState() != MenuMain {
		t.Fatalf("session not restored after failure")
	}
	if len(settled) != 1 {
		t.Fatalf("expected one settled event, got %d", len(settled))
	}
	if len(rec.runs) != 1 || rec.runs[0] != (recordedRun{"server_scan", "error"}) {
		t.Fatalf("unexpected recorder runs %#v", rec.runs)
	}
}

func TestPipelineRecoversCollaboratorPanic(t *testing.T) {
	h := newHarness(t, collab.Func(func(ctx context.Context, req collab.Request) (string, error) {
		panic("kaboom")
	}))
	run, _ := h.pipeline.Start(context.Background(), WebScan("http://x", WebTools[0]))
	if err := waitRun(t, run); !errors.Is(err, ErrCollaborator) {
		t.Fatalf("expected ErrCollaborator, got %v", err)
	}
	errs := linesOfType(h.session.Log.Lines(), LineError)
	if len(errs) != 1 || !strings.Contains(errs[0].Text, "kaboom") {
		t.Fatalf("unexpected error lines %#v", errs)
	}
	if h.session.Busy() {
		t.Fatalf("busy after panic")
	}
}

func TestPipelineRejectsWhileBusy(t *testing.T) {
	release := make(chan struct{})
	rec := &fakeRecorder{}
	h := newHarness(t, collab.Func(func(ctx context.Context, req collab.Request) (string, error) {
		<-release
		return "done", nil
	}), WithRecorder(rec))

	first, err := h.pipeline.Start(context.Background(), Troubleshoot(testHost(), DiskCommand))
	if err != nil {
		t.Fatalf("first start: %v", err)
	}
	before := h.session.Log.Len()

	second, err := h.pipeline.Start(context.Background(), ServerScan(testHost(), ServerTools[0], false))
	if !errors.Is(err, ErrBusy) || second != nil {
		t.Fatalf("expected ErrBusy, got %v %v", second, err)
	}
	added := h.session.Log.Since(before)
	if len(added) != 1 || added[0].Type != LineError || !strings.HasPrefix(added[0].Text, "SYSTEM BUSY: 'scan edge-01'") {
		t.Fatalf("expected one busy line, got %#v", added)
	}
	if h.session.MenuState() != MenuMain {
		t.Fatalf("rejected scan must not enter EXECUTING")
	}

	close(release)
	if err := waitRun(t, first); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if len(rec.rejected) != 1 || rec.rejected[0] != "server_scan" {
		t.Fatalf("unexpected rejections %#v", rec.rejected)
	}
}

func TestPipelineAbort(t *testing.T) {
	started := make(chan struct{})
	h := newHarness(t, collab.Func(func(ctx context.Context, req collab.Request) (string, error) {
		close(started)
		<-ctx.Done()
		return "", ctx.Err()
	}))

	if h.pipeline.Abort() {
		t.Fatalf("abort with nothing running must report false")
	}
	run, _ := h.pipeline.Start(context.Background(), ServerScan(testHost(), ServerTools[0], false))
	<-started
	if !h.pipeline.Abort() {
		t.Fatalf("expected abort to report true")
	}
	if err := waitRun(t, run); !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
	errs := linesOfType(h.session.Log.Lines(), LineError)
	if len(errs) != 1 || errs[0].Text != "CRITICAL ERROR: action aborted by operator" {
		t.Fatalf("unexpected error lines %#v", errs)
	}
	if h.session.Busy() || h.session.MenuState() != MenuMain {
		t.Fatalf("session not restored after abort")
	}
}

func TestPipelineAbortMidStreamKeepsPartialOutput(t *testing.T) {
	h := newHarness(t, echo("a\nb\nc\nd"), WithPacing(time.Millisecond))
	var sleeps int
	h.pipeline.sleep = func(ctx context.Context, d time.Duration) error {
		sleeps++
		if sleeps == 2 {
			h.pipeline.Abort()
			<-ctx.Done()
			return ctx.Err()
		}
		return nil
	}

	run, err := h.pipeline.Start(context.Background(), ServerScan(testHost(), ServerTools[0], false))
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := waitRun(t, run); !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}

	lines := h.session.Log.Lines()
	out := linesOfType(lines, LineOutput)
	if len(out) != 2 || out[0].Text != "a" || out[1].Text != "b" {
		t.Fatalf("expected partial output a, b; got %#v", out)
	}
	errs := linesOfType(lines, LineError)
	if len(errs) != 1 {
		t.Fatalf("expected one error line, got %#v", errs)
	}
	if last := lines[len(lines)-1]; last.Type != LineError || last.Text != "CRITICAL ERROR: action aborted by operator" {
		t.Fatalf("error line must come last, got %#v", last)
	}
	if len(linesOfType(lines, LineSuccess)) != 0 {
		t.Fatalf("cleanup lines must not follow a failed scan")
	}
	if h.session.Busy() || h.session.MenuState() != MenuMain {
		t.Fatalf("session not restored: busy=%v menu=%v", h.session.Busy(), h.session.MenuState())
	}
}

func TestPipelineTimeout(t *testing.T) {
	h := newHarness(t, collab.Func(func(ctx context.Context, req collab.Request) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}), WithTimeout(20*time.Millisecond))

	run, _ := h.pipeline.Start(context.Background(), Troubleshoot(testHost(), LogsCommand))
	if err := waitRun(t, run); !errors.Is(err, ErrCollaborator) {
		t.Fatalf("expected ErrCollaborator, got %v", err)
	}
	errs := linesOfType(h.session.Log.Lines(), LineError)
	if len(errs) != 1 || errs[0].Text != "CRITICAL ERROR: timed out after 20ms" {
		t.Fatalf("unexpected error lines %#v", errs)
	}
}

func TestPipelinePacingOnlyForScans(t *testing.T) {
	h := newHarness(t, echo("a\nb\nc"), WithPacing(time.Millisecond))
	var sleeps int
	h.pipeline.sleep = func(ctx context.Context, d time.Duration) error {
		sleeps++
		return nil
	}

	run, _ := h.pipeline.Start(context.Background(), Troubleshoot(testHost(), PingCommand))
	_ = waitRun(t, run)
	if sleeps != 0 {
		t.Fatalf("troubleshooting must not be paced, slept %d", sleeps)
	}

	run, _ = h.pipeline.Start(context.Background(), WebScan("http://x", WebTools[1]))
	_ = waitRun(t, run)
	if sleeps != 2 {
		t.Fatalf("expected 2 pauses between 3 lines, got %d", sleeps)
	}
}

func TestPipelineEmptyResultYieldsNoOutput(t *testing.T) {
	h := newHarness(t, echo(""))
	run, _ := h.pipeline.Start(context.Background(), ServerScan(testHost(), ServerTools[0], false))
	if err := waitRun(t, run); err != nil {
		t.Fatalf("run: %v", err)
	}
	if out := linesOfType(h.session.Log.Lines(), LineOutput); len(out) != 0 {
		t.Fatalf("expected no output lines, got %#v", out)
	}
	if h.session.Log.Len() != 4 {
		t.Fatalf("expected command, tunnel and two closers, got %d lines", h.session.Log.Len())
	}
}

func TestToolBinary(t *testing.T) {
	if got := toolBinary("ZAP Aggressive Scanner"); got != "zap_aggressive_scanner" {
		t.Fatalf("unexpected binary %q", got)
	}
}
