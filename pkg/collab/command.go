package collab

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/creack/pty"
)

// RequestEnv carries the JSON request to command collaborators.
const RequestEnv = "NUCLEUS_REQUEST"

// waitDelay bounds how long a killed program's inherited pipes may stay open.
const waitDelay = 2 * time.Second

// CommandOptions configures the external-program backend.
type CommandOptions struct {
	Command string   `mapstructure:"command"`
	Args    []string `mapstructure:"args"`

	// PTY runs the program under a pseudo-terminal, for generators that only
	// produce their full (colored, unbuffered) output when attached to a tty.
	// The request is then available only via $NUCLEUS_REQUEST.
	PTY bool `mapstructure:"pty"`
}

// Command runs an external program per request. The JSON request is written
// to stdin and exported as $NUCLEUS_REQUEST; stdout is the generated text.
type Command struct {
	opts CommandOptions
}

// NewCommand validates opts.
func NewCommand(opts CommandOptions) (*Command, error) {
	if strings.TrimSpace(opts.Command) == "" {
		return nil, errors.New("command collaborator requires a command")
	}
	return &Command{opts: opts}, nil
}

func (c *Command) Generate(ctx context.Context, req Request) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	cmd := exec.CommandContext(ctx, c.opts.Command, c.opts.Args...)
	cmd.Env = append(os.Environ(), RequestEnv+"="+string(payload))
	cmd.WaitDelay = waitDelay

	var out string
	if c.opts.PTY {
		out, err = runUnderPTY(cmd)
	} else {
		out, err = runPiped(cmd, payload)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", ctxErr
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}

func runPiped(cmd *exec.Cmd, payload []byte) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd.Stdin = bytes.NewReader(append(payload, '\n'))
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := compactSingleLine(stderr.String(), 240)
		if detail == "" {
			return "", fmt.Errorf("collaborator command failed: %w", err)
		}
		return "", fmt.Errorf("collaborator command failed: %w: %s", err, detail)
	}
	return stdout.String(), nil
}

func runUnderPTY(cmd *exec.Cmd) (string, error) {
	f, err := pty.Start(cmd)
	if err != nil {
		return "", fmt.Errorf("start collaborator under pty: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	// Linux reports EIO on the master once the child side closes.
	if _, err := io.Copy(&buf, f); err != nil && !errors.Is(err, syscall.EIO) {
		_ = cmd.Wait()
		return "", fmt.Errorf("read collaborator pty: %w", err)
	}
	if err := cmd.Wait(); err != nil {
		return "", fmt.Errorf("collaborator command failed: %w", err)
	}
	return strings.ReplaceAll(buf.String(), "\r\n", "\n"), nil
}
