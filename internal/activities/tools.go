package activities

import (
	"context"

	"go.temporal.io/sdk/activity"

	"github.com/agentloop/agentloop/internal/exec"
	"github.com/agentloop/agentloop/internal/models"
	"github.com/agentloop/agentloop/internal/storage"
	"github.com/agentloop/agentloop/internal/tools"
)

// ToolExecInput is the input for one tool execution.
type ToolExecInput struct {
	CallID    string                 `json:"call_id"`
	ToolName  string                 `json:"tool_name"`
	Arguments map[string]interface{} `json:"arguments"`
	Cwd       string                 `json:"cwd,omitempty"`
}

// ToolExecOutput is the bounded result of one tool execution. When Truncated
// is set, the full output is retained in storage under the call ID.
type ToolExecOutput struct {
	CallID     string `json:"call_id"`
	ExitCode   int    `json:"exit_code"`
	Stdout     string `json:"stdout"`
	Stderr     string `json:"stderr"`
	Truncated  bool   `json:"truncated"`
	DurationMs int64  `json:"duration_ms"`
}

// ToolActivities contains the tool-related activities.
type ToolActivities struct {
	registry *tools.Registry
	store    storage.Store
}

// NewToolActivities creates a ToolActivities with the given registry and
// storage backend.
func NewToolActivities(registry *tools.Registry, store storage.Store) *ToolActivities {
	return &ToolActivities{registry: registry, store: store}
}

// ToolExec executes a single tool call. Malformed invocations and unknown
// tools fail with a non-retryable ToolFailure so the workflow converts them
// to failed tool results; a command that ran and exited non-zero is a
// successful execution.
func (a *ToolActivities) ToolExec(ctx context.Context, input ToolExecInput) (ToolExecOutput, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Executing tool", "tool", input.ToolName, "call_id", input.CallID)

	handler, err := a.registry.GetHandler(input.ToolName)
	if err != nil {
		return ToolExecOutput{}, models.WrapActivityError(
			models.NewToolFailureError("tool not found: " + input.ToolName))
	}

	output, err := handler.Handle(ctx, &tools.Invocation{
		CallID:    input.CallID,
		Arguments: input.Arguments,
		Cwd:       input.Cwd,
	})
	if err != nil {
		if ctx.Err() != nil {
			// Timeout or cancellation; the engine handles retry.
			return ToolExecOutput{}, ctx.Err()
		}
		return ToolExecOutput{}, models.WrapActivityError(
			models.NewToolFailureError(err.Error()))
	}

	stdout, stdoutTruncated := exec.LimitOutput([]byte(output.Stdout))
	stderr, stderrTruncated := exec.LimitOutput([]byte(output.Stderr))
	truncated := stdoutTruncated || stderrTruncated

	if truncated && a.store != nil {
		// Retain the full output out-of-band; best-effort.
		full := exec.AggregateOutput([]byte(output.Stdout), []byte(output.Stderr))
		if putErr := a.store.Put(ctx, storage.ToolOutputKey(input.CallID), full); putErr != nil {
			logger.Warn("Failed to store full tool output", "call_id", input.CallID, "error", putErr)
		}
	}

	logger.Info("Tool execution completed", "tool", input.ToolName,
		"exit_code", output.ExitCode, "duration_ms", output.DurationMs)

	return ToolExecOutput{
		CallID:     input.CallID,
		ExitCode:   output.ExitCode,
		Stdout:     string(stdout),
		Stderr:     string(stderr),
		Truncated:  truncated,
		DurationMs: output.DurationMs,
	}, nil
}
