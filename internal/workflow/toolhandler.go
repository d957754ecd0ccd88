// toolhandler.go gates a single tool call on the approval policy and runs
// the ToolExec activity once the call is allowed.
package workflow

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.temporal.io/sdk/log"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/agentloop/agentloop/internal/activities"
	"github.com/agentloop/agentloop/internal/command_safety"
	"github.com/agentloop/agentloop/internal/events"
	"github.com/agentloop/agentloop/internal/exec"
	"github.com/agentloop/agentloop/internal/execpolicy"
	"github.com/agentloop/agentloop/internal/models"
	"github.com/agentloop/agentloop/internal/tools"
)

// deniedOutputText is the synthesised tool output for a denied call.
const deniedOutputText = "Tool execution was denied by the user."

// gateAction is the outcome of the approval gate.
type gateAction int

const (
	gateExec gateAction = iota
	gateDeny
	gatePrompt
)

// handleToolCall runs one tool call through the approval gate and, when
// allowed, through the ToolExec activity. It returns interrupted=true when
// a cancel or shutdown arrived while waiting for approval; the call has
// then already been recorded as denied.
func handleToolCall(ctx workflow.Context, state *SessionState, ctrl *LoopControl, turnID, cwd string, fc models.ConversationItem) (interrupted bool, err error) {
	logger := workflow.GetLogger(ctx)

	action, cacheKey := gateDecision(state, fc)

	if action == gatePrompt {
		command := shellCommand(fc)
		ctrl.AddPendingApproval(PendingApproval{
			CallID:   fc.CallID,
			ToolName: fc.Name,
			Command:  command,
			Cwd:      cwd,
		})
		ctrl.SetPhase(PhaseAwaitingApproval)
		state.emit(events.Event{
			Kind:    events.KindExecApprovalRequest,
			CallID:  fc.CallID,
			Command: command,
			Cwd:     cwd,
		})
		logger.Info("Awaiting approval", "call_id", fc.CallID, "tool", fc.Name)

		awaitErr := workflow.Await(ctx, func() bool {
			return ctrl.ApprovalResolved(fc.CallID) || ctrl.CancelRequested() || ctrl.ShutdownRequested()
		})
		if awaitErr != nil {
			return false, awaitErr
		}
		ctrl.SetPhase(PhaseRunning)

		if ctrl.CancelRequested() || ctrl.ShutdownRequested() {
			ctrl.DropApproval(fc.CallID)
			recordDenied(state, turnID, fc)
			return true, nil
		}

		approved := ctrl.TakeApproval(fc.CallID)
		if cacheKey != "" {
			state.ApprovalCache[cacheKey] = approved
		}
		if approved {
			action = gateExec
		} else {
			action = gateDeny
		}
	}

	if action == gateDeny {
		logger.Info("Tool call denied", "call_id", fc.CallID, "tool", fc.Name)
		recordDenied(state, turnID, fc)
		return false, nil
	}

	return false, executeTool(ctx, state, ctrl, turnID, cwd, fc)
}

// gateDecision applies the approval policy. It returns the action and,
// under on_request, the cache key to store the user's decision under.
func gateDecision(state *SessionState, fc models.ConversationItem) (gateAction, string) {
	switch state.Config.ApprovalPolicy {
	case models.ApprovalNever:
		return gateDeny, ""
	case models.ApprovalAlways:
		// Every call asks, and decisions are never cached.
		return gatePrompt, ""
	}

	// on_request and unless_trusted: policy rules, then the cache, then
	// the prompt. Only unless_trusted lets trusted calls skip it.
	command := shellCommand(fc)

	if state.policy != nil && command != "" {
		if decision, matched := evaluateScript(state.policy, command); matched {
			switch decision {
			case execpolicy.DecisionForbidden:
				return gateDeny, ""
			case execpolicy.DecisionAllow:
				return gateExec, ""
			}
		}
	}

	key := approvalCacheKey(fc)
	if approved, ok := state.ApprovalCache[key]; ok {
		if approved {
			return gateExec, ""
		}
		return gateDeny, ""
	}

	if state.Config.ApprovalPolicy == models.ApprovalUnlessTrusted {
		if command != "" && command_safety.IsKnownSafeScript(command) {
			return gateExec, ""
		}
		if fc.Name == "read_file" {
			return gateExec, ""
		}
	}

	return gatePrompt, key
}

// evaluateScript evaluates every plain command of the script against the
// policy. The strictest decision wins; a script that cannot be parsed into
// plain commands never matches.
func evaluateScript(policy *execpolicy.Policy, script string) (execpolicy.Decision, bool) {
	commands := command_safety.ParsePlainCommands(script)
	if len(commands) == 0 {
		return execpolicy.DecisionPrompt, false
	}

	worst := execpolicy.DecisionAllow
	matchedAny := false
	for _, command := range commands {
		decision, matched := policy.Evaluate(command)
		if !matched {
			// An unmatched segment falls through to the prompt.
			if worst < execpolicy.DecisionPrompt {
				worst = execpolicy.DecisionPrompt
			}
			continue
		}
		matchedAny = true
		if decision > worst {
			worst = decision
		}
	}
	return worst, matchedAny
}

// executeTool emits ToolCallBegin/ToolCallEnd around the ToolExec activity
// and records the result into history. Activity failures become failed
// tool outputs; they never abort the turn.
func executeTool(ctx workflow.Context, state *SessionState, ctrl *LoopControl, turnID, cwd string, fc models.ConversationItem) error {
	logger := workflow.GetLogger(ctx)

	ctrl.SetPhase(PhaseExecutingTool)
	defer ctrl.SetPhase(PhaseRunning)

	state.emit(events.Event{Kind: events.KindToolCallBegin, CallID: fc.CallID, Name: fc.Name})

	args := parseArguments(fc.Arguments)
	toolCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: resolveToolTimeout(state.ToolSpecs, fc.Name, args),
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    5,
		},
	})

	var result activities.ToolExecOutput
	err := workflow.ExecuteActivity(toolCtx, "ToolExec", activities.ToolExecInput{
		CallID:    fc.CallID,
		ToolName:  fc.Name,
		Arguments: args,
		Cwd:       cwd,
	}).Get(ctx, &result)

	var content string
	var exitCode int
	success := err == nil && result.ExitCode == 0

	if err != nil {
		content = toolFailureReason(logger, fc.Name, err)
		exitCode = -1
	} else {
		content = formatToolOutput(result)
		exitCode = result.ExitCode
	}

	if addErr := state.History.AddItem(models.ConversationItem{
		Type:   models.ItemTypeFunctionCallOutput,
		CallID: fc.CallID,
		TurnID: turnID,
		Output: &models.FunctionCallOutputPayload{Content: content, Success: &success},
	}); addErr != nil {
		return fmt.Errorf("failed to add tool result: %w", addErr)
	}

	state.ToolCallsExecuted = append(state.ToolCallsExecuted, fc.Name)
	state.emit(events.Event{
		Kind:          events.KindToolCallEnd,
		CallID:        fc.CallID,
		ExitCode:      &exitCode,
		OutputExcerpt: exec.Excerpt(content),
	})
	logger.Info("Tool call finished", "call_id", fc.CallID, "tool", fc.Name, "exit_code", exitCode)
	return nil
}

// recordDenied synthesises the denied output for one call.
func recordDenied(state *SessionState, turnID string, fc models.ConversationItem) {
	denyCalls(state, turnID, []models.ConversationItem{fc}, deniedOutputText)
}

// toolFailureReason extracts the failure reason from a tool activity error
// using the structured Details, never the message text.
func toolFailureReason(logger log.Logger, toolName string, err error) string {
	reason := "tool execution failed"
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) {
		logger.Warn("Tool activity failed",
			"tool", toolName,
			"error_type", appErr.Type(),
			"non_retryable", appErr.NonRetryable())
		var details models.ToolErrorDetails
		if appErr.HasDetails() {
			if detailsErr := appErr.Details(&details); detailsErr == nil && details.Reason != "" {
				reason = details.Reason
			}
		}
	} else {
		logger.Warn("Tool activity failed", "tool", toolName, "error", err)
	}
	return reason
}

// formatToolOutput renders a tool result as the content the model sees.
func formatToolOutput(result activities.ToolExecOutput) string {
	var b strings.Builder
	b.WriteString(result.Stdout)
	if result.Stderr != "" {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("stderr:\n")
		b.WriteString(result.Stderr)
	}
	if result.ExitCode != 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "exit code: %d", result.ExitCode)
	}
	if result.Truncated {
		b.WriteString("\n[output truncated]")
	}
	return b.String()
}

// shellCommand extracts the command string of a shell call, or "" for
// other tools.
func shellCommand(fc models.ConversationItem) string {
	if fc.Name != "shell" {
		return ""
	}
	args := parseArguments(fc.Arguments)
	command, _ := args["command"].(string)
	return command
}

// parseArguments decodes the raw JSON argument string. Malformed JSON is
// preserved under "_raw" so the tool handler can report it.
func parseArguments(raw string) map[string]interface{} {
	if raw == "" {
		return nil
	}
	var args map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return map[string]interface{}{"_raw": raw}
	}
	return args
}

// approvalCacheKey derives the canonical key for the approval cache: the
// tool name plus the argument JSON re-marshalled with sorted keys, so
// formatting differences in the model's output do not defeat the cache.
func approvalCacheKey(fc models.ConversationItem) string {
	args := parseArguments(fc.Arguments)
	if args == nil {
		return fc.Name
	}
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(fc.Name)
	for _, k := range keys {
		encoded, err := json.Marshal(args[k])
		if err != nil {
			continue
		}
		b.WriteString("\x00")
		b.WriteString(k)
		b.WriteString("=")
		b.Write(encoded)
	}
	return b.String()
}

// resolveToolTimeout picks the activity timeout: an explicit timeout_ms
// argument wins, then the tool spec's default, then the global fallback.
func resolveToolTimeout(specs []tools.ToolSpec, toolName string, args map[string]interface{}) time.Duration {
	if raw, ok := args["timeout_ms"]; ok {
		if ms, ok := raw.(float64); ok && ms > 0 {
			return time.Duration(int64(ms)) * time.Millisecond
		}
	}
	for _, spec := range specs {
		if spec.Name == toolName && spec.DefaultTimeoutMs > 0 {
			return time.Duration(spec.DefaultTimeoutMs) * time.Millisecond
		}
	}
	return time.Duration(tools.DefaultToolTimeoutMs) * time.Millisecond
}
