package collab_test

import (
	"context"
	"os/exec"
	"runtime"
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nucleus-console/pkg/collab"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestCommand_ReadsRequestFromStdin(t *testing.T) {
	requireShell(t)
	c, err := collab.NewCommand(collab.CommandOptions{
		Command: "sh",
		Args:    []string{"-c", `read line; echo "got: $line"`},
	})
	require.NoError(t, err)

	out, err := c.Generate(context.Background(), collab.Request{Kind: collab.KindWebScan, URL: "http://x"})
	require.NoError(t, err)
	assert.Contains(t, out, `"kind":"web_scan"`)
	assert.Contains(t, out, `"url":"http://x"`)
}

func TestCommand_ExportsRequestEnv(t *testing.T) {
	requireShell(t)
	c, err := collab.NewCommand(collab.CommandOptions{
		Command: "sh",
		Args:    []string{"-c", `printf '%s' "$NUCLEUS_REQUEST"`},
	})
	require.NoError(t, err)

	out, err := c.Generate(context.Background(), collab.Request{Kind: collab.KindTroubleshoot, HostName: "edge-01"})
	require.NoError(t, err)
	assert.Contains(t, out, `"host_name":"edge-01"`)
}

func TestCommand_FailureIncludesStderr(t *testing.T) {
	requireShell(t)
	c, err := collab.NewCommand(collab.CommandOptions{
		Command: "sh",
		Args:    []string{"-c", "echo 'generator offline' >&2; exit 3"},
	})
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), collab.Request{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generator offline")
}

func TestCommand_EmptyOutput(t *testing.T) {
	requireShell(t)
	c, err := collab.NewCommand(collab.CommandOptions{Command: "sh", Args: []string{"-c", "true"}})
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), collab.Request{})
	assert.ErrorIs(t, err, collab.ErrEmptyResponse)
}

func TestCommand_ContextTimeout(t *testing.T) {
	requireShell(t)
	c, err := collab.NewCommand(collab.CommandOptions{Command: "sh", Args: []string{"-c", "exec sleep 5"}})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.Generate(ctx, collab.Request{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCommand_UnderPTY(t *testing.T) {
	requireShell(t)
	master, tty, err := pty.Open()
	if err != nil {
		t.Skipf("pty unavailable: %v", err)
	}
	_ = master.Close()
	_ = tty.Close()

	c, err := collab.NewCommand(collab.CommandOptions{
		Command: "sh",
		Args:    []string{"-c", `if [ -t 1 ]; then echo tty; else echo pipe; fi`},
		PTY:     true,
	})
	require.NoError(t, err)

	out, err := c.Generate(context.Background(), collab.Request{})
	require.NoError(t, err)
	assert.Equal(t, "tty\n", out)
}

func TestNewCommand_RequiresCommand(t *testing.T) {
	_, err := collab.NewCommand(collab.CommandOptions{})
	assert.Error(t, err)
}
