// Package handlers contains the built-in tool handler implementations.
package handlers

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"

	"github.com/agentloop/agentloop/internal/execenv"
	"github.com/agentloop/agentloop/internal/tools"
)

// ShellTool executes shell commands with bash -c. Spawned commands get
// an environment derived through the configured execenv policy, so the
// worker's own credentials stay out of tool subprocesses.
type ShellTool struct {
	env execenv.Policy
}

// NewShellTool creates a shell tool handler with the default
// environment policy.
func NewShellTool() *ShellTool {
	return NewShellToolWithEnv(execenv.DefaultPolicy())
}

// NewShellToolWithEnv creates a shell tool handler with an explicit
// environment policy.
func NewShellToolWithEnv(env execenv.Policy) *ShellTool {
	return &ShellTool{env: env}
}

// Name returns the tool's name.
func (t *ShellTool) Name() string {
	return "shell"
}

// Handle runs the command. The timeout is enforced by the activity's
// StartToCloseTimeout; the context is cancelled when it fires.
func (t *ShellTool) Handle(ctx context.Context, invocation *tools.Invocation) (*tools.Output, error) {
	command, err := tools.StringArg(invocation.Arguments, "command")
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, "bash", "-c", command)
	cmd.Env = execenv.Derive(t.env)
	if invocation.Cwd != "" {
		cmd.Dir = invocation.Cwd
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	duration := time.Since(start)

	if ctx.Err() != nil {
		// Cancelled or timed out; let the engine retry per policy.
		return nil, ctx.Err()
	}

	exitCode := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			// Could not start the process at all.
			return nil, runErr
		}
	}

	return &tools.Output{
		ExitCode:   exitCode,
		Stdout:     stdout.String(),
		Stderr:     stderr.String(),
		DurationMs: duration.Milliseconds(),
	}, nil
}
