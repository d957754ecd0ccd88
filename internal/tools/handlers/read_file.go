package handlers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/agentloop/agentloop/internal/tools"
)

// ReadFileTool reads a file and returns its content with line numbers.
type ReadFileTool struct{}

// NewReadFileTool creates a read_file tool handler.
func NewReadFileTool() *ReadFileTool {
	return &ReadFileTool{}
}

// Name returns the tool's name.
func (t *ReadFileTool) Name() string {
	return "read_file"
}

// Handle reads the requested file slice. A missing or unreadable file is
// reported as a failed run (exit code 1) rather than a handler error so the
// model sees the reason.
func (t *ReadFileTool) Handle(_ context.Context, invocation *tools.Invocation) (*tools.Output, error) {
	path, err := tools.StringArg(invocation.Arguments, "path")
	if err != nil {
		return nil, err
	}
	offset, err := tools.IntArg(invocation.Arguments, "offset", 0)
	if err != nil {
		return nil, err
	}
	limit, err := tools.IntArg(invocation.Arguments, "limit", 0)
	if err != nil {
		return nil, err
	}
	if offset < 0 {
		return nil, tools.NewValidationError("offset must be >= 0")
	}

	if !filepath.IsAbs(path) && invocation.Cwd != "" {
		path = filepath.Join(invocation.Cwd, path)
	}

	start := time.Now()
	data, readErr := os.ReadFile(path)
	if readErr != nil {
		return &tools.Output{
			ExitCode:   1,
			Stderr:     readErr.Error(),
			DurationMs: time.Since(start).Milliseconds(),
		}, nil
	}

	lines := strings.Split(string(data), "\n")
	if offset >= len(lines) {
		return &tools.Output{
			ExitCode:   1,
			Stderr:     fmt.Sprintf("offset %d is past the end of the file (%d lines)", offset, len(lines)),
			DurationMs: time.Since(start).Milliseconds(),
		}, nil
	}

	end := len(lines)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	var b strings.Builder
	for i := offset; i < end; i++ {
		fmt.Fprintf(&b, "%6d\t%s\n", i+1, lines[i])
	}

	return &tools.Output{
		ExitCode:   0,
		Stdout:     b.String(),
		DurationMs: time.Since(start).Milliseconds(),
	}, nil
}
