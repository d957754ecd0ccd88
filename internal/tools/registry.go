package tools

import (
	"context"
	"fmt"
)

// Invocation is one tool call ready for execution.
type Invocation struct {
	CallID    string
	Arguments map[string]interface{}
	Cwd       string
}

// Output is the result of executing one tool call. Stdout and Stderr are
// raw; the tool activity applies the output limiter before anything leaves
// the worker.
type Output struct {
	ExitCode   int    `json:"exit_code"`
	Stdout     string `json:"stdout"`
	Stderr     string `json:"stderr"`
	DurationMs int64  `json:"duration_ms"`
}

// ToolHandler is the interface for tool implementations.
type ToolHandler interface {
	// Name returns the tool's name.
	Name() string

	// Handle executes the tool. It returns an error only for invalid
	// invocations or environment failures; a command that ran and failed
	// is a successful Handle with a non-zero ExitCode.
	Handle(ctx context.Context, invocation *Invocation) (*Output, error)
}

// Registry stores tool handlers by name.
type Registry struct {
	handlers map[string]ToolHandler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]ToolHandler)}
}

// Register adds a handler, replacing any existing one with the same name.
func (r *Registry) Register(handler ToolHandler) {
	r.handlers[handler.Name()] = handler
}

// GetHandler returns the handler for name.
func (r *Registry) GetHandler(name string) (ToolHandler, error) {
	handler, ok := r.handlers[name]
	if !ok {
		return nil, fmt.Errorf("tool not found: %s", name)
	}
	return handler, nil
}

// HasTool reports whether name is registered.
func (r *Registry) HasTool(name string) bool {
	_, ok := r.handlers[name]
	return ok
}

// ToolCount returns the number of registered tools.
func (r *Registry) ToolCount() int {
	return len(r.handlers)
}
