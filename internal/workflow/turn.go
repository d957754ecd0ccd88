// turn.go runs one conversation turn: repeated model calls with tool
// execution in between, until the model answers without tool calls or the
// turn is aborted.
package workflow

import (
	"errors"
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/agentloop/agentloop/internal/activities"
	"github.com/agentloop/agentloop/internal/events"
	"github.com/agentloop/agentloop/internal/instructions"
	"github.com/agentloop/agentloop/internal/models"
)

const defaultModelCallTimeout = 10 * time.Minute

// maxIterationsNote is appended as an assistant message when a turn hits
// its iteration cap.
const maxIterationsNote = "I stopped this turn because it reached the maximum number of model calls. Send another message to continue."

// repeatedCallLimit aborts a turn after this many identical consecutive
// tool-call batches.
const repeatedCallLimit = 3

// runTurn executes one user turn to completion. It never returns an error
// for activity failures; those surface as Error events and abort the turn
// while the session stays alive.
func runTurn(ctx workflow.Context, state *SessionState, ctrl *LoopControl, turn UserTurnPayload) error {
	logger := workflow.GetLogger(ctx)

	turnID := state.nextTurnID()
	ctrl.SetCurrentTurnID(turnID)
	ctrl.SetPhase(PhaseRunning)
	defer func() {
		ctrl.SetCurrentTurnID("")
		ctrl.SetPhase(PhaseIdle)
	}()

	cwd := turn.Cwd
	if cwd == "" {
		cwd = state.Config.Cwd
	}
	systemPrompt := instructions.Build(instructions.Params{
		Cwd:              cwd,
		ApprovalPolicy:   string(state.Config.ApprovalPolicy),
		ToolsEnabled:     state.Config.ToolsEnabled,
		BaseOverride:     state.Config.BaseInstructions,
		UserInstructions: state.Config.UserInstructions,
	})

	state.emit(events.Event{Kind: events.KindTurnStarted, TurnID: turnID})
	logger.Info("Turn started", "turn_id", turnID, "items", len(turn.Items))

	for _, input := range turn.Items {
		if err := state.History.AddItem(models.ConversationItem{
			Type:    models.ItemTypeUserMessage,
			Content: input.Text,
			TurnID:  turnID,
		}); err != nil {
			return fmt.Errorf("failed to add user message: %w", err)
		}
	}

	maxIterations := state.Config.MaxIterations
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}

	lastBatchKey := ""
	repeatCount := 0

	for iteration := 0; iteration < maxIterations; iteration++ {
		if ctrl.CancelRequested() || ctrl.ShutdownRequested() {
			abortTurn(state, ctrl, turnID, "cancelled")
			return nil
		}

		historyItems, err := state.History.GetForPrompt()
		if err != nil {
			return fmt.Errorf("failed to get history: %w", err)
		}

		modelCtx := workflow.WithActivityOptions(ctx, modelActivityOptions(state.Config))
		var result activities.ModelCallOutput
		err = workflow.ExecuteActivity(modelCtx, "ModelCall", activities.ModelCallInput{
			Instructions: systemPrompt,
			History:      historyItems,
			ToolSpecs:    state.ToolSpecs,
			ModelConfig:  state.Config.Model,
		}).Get(ctx, &result)
		if err != nil {
			failTurn(ctx, state, ctrl, turnID, err)
			return nil
		}

		state.TotalTokens += result.TokenUsage.TotalTokens
		logger.Info("Model call completed",
			"turn_id", turnID,
			"iteration", iteration,
			"finish_reason", result.FinishReason,
			"tokens", result.TokenUsage.TotalTokens)

		var functionCalls []models.ConversationItem
		for _, item := range result.Items {
			item.TurnID = turnID
			if err := state.History.AddItem(item); err != nil {
				return fmt.Errorf("failed to add response item: %w", err)
			}
			switch item.Type {
			case models.ItemTypeAssistantMessage:
				if item.Content != "" {
					state.emit(events.Event{
						Kind:   events.KindAgentMessage,
						TurnID: turnID,
						Text:   item.Content,
					})
				}
			case models.ItemTypeFunctionCall:
				functionCalls = append(functionCalls, item)
			}
		}

		if len(functionCalls) == 0 {
			state.TurnCount++
			state.emit(events.Event{
				Kind:        events.KindTurnComplete,
				TurnID:      turnID,
				LastMessage: state.History.LastAssistantMessage(),
			})
			logger.Info("Turn complete", "turn_id", turnID, "iterations", iteration+1)
			return nil
		}

		// Abort a turn stuck repeating the exact same tool-call batch.
		batchKey := toolBatchKey(functionCalls)
		if batchKey == lastBatchKey {
			repeatCount++
		} else {
			lastBatchKey = batchKey
			repeatCount = 1
		}
		if repeatCount >= repeatedCallLimit {
			logger.Warn("Repeated identical tool calls, aborting turn", "turn_id", turnID)
			denyCalls(state, turnID, functionCalls, "aborted: repeated identical tool call")
			abortTurn(state, ctrl, turnID, "repeated identical tool calls")
			return nil
		}

		// Tools run sequentially: one pending approval and one activity
		// at a time keeps the state machine simple.
		for i, fc := range functionCalls {
			interrupted, err := handleToolCall(ctx, state, ctrl, turnID, cwd, fc)
			if err != nil {
				return err
			}
			if interrupted {
				denyCalls(state, turnID, functionCalls[i+1:], deniedOutputText)
				abortTurn(state, ctrl, turnID, "cancelled")
				return nil
			}
		}
	}

	// Iteration cap reached. Close the turn with an explanatory note so
	// the conversation remains well-formed.
	if err := state.History.AddItem(models.ConversationItem{
		Type:    models.ItemTypeAssistantMessage,
		Content: maxIterationsNote,
		TurnID:  turnID,
	}); err != nil {
		return fmt.Errorf("failed to add iteration note: %w", err)
	}
	state.emit(events.Event{Kind: events.KindAgentMessage, TurnID: turnID, Text: maxIterationsNote})
	state.TurnCount++
	state.emit(events.Event{
		Kind:        events.KindTurnComplete,
		TurnID:      turnID,
		LastMessage: maxIterationsNote,
	})
	logger.Warn("Turn hit iteration cap", "turn_id", turnID, "max_iterations", maxIterations)
	return nil
}

// modelActivityOptions builds the options for the ModelCall activity. The
// non-retryable classification is carried by the ApplicationError itself.
func modelActivityOptions(config models.SessionConfig) workflow.ActivityOptions {
	timeout := defaultModelCallTimeout
	if config.ModelCallTimeoutSeconds > 0 {
		timeout = time.Duration(config.ModelCallTimeoutSeconds) * time.Second
	}
	return workflow.ActivityOptions{
		StartToCloseTimeout: timeout,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    30 * time.Second,
			MaximumAttempts:    3,
		},
	}
}

// failTurn converts a failed model activity into an Error event and a turn
// abort. Classification uses ApplicationError.Type(), never the message.
func failTurn(ctx workflow.Context, state *SessionState, ctrl *LoopControl, turnID string, err error) {
	logger := workflow.GetLogger(ctx)

	message := "model call failed"
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) {
		logger.Warn("Model activity failed",
			"turn_id", turnID,
			"error_type", appErr.Type(),
			"non_retryable", appErr.NonRetryable())
		switch appErr.Type() {
		case models.ErrorTypeContextOverflow.String():
			message = "model context window exceeded"
		case models.ErrorTypeAPILimit.String():
			message = "model API rate limit exhausted"
		default:
			message = "model call failed: " + appErr.Error()
		}
	} else {
		logger.Error("Model activity failed", "turn_id", turnID, "error", err)
	}

	state.emit(events.Event{Kind: events.KindError, Message: message, Recoverable: true})
	abortTurn(state, ctrl, turnID, message)
}

// abortTurn emits TurnAborted and resets the cancel flag.
func abortTurn(state *SessionState, ctrl *LoopControl, turnID, reason string) {
	ctrl.ClearCancel()
	state.emit(events.Event{Kind: events.KindTurnAborted, TurnID: turnID, Message: reason})
}

// denyCalls records a synthesised failed output for each call so the
// history stays well-formed for the next model call.
func denyCalls(state *SessionState, turnID string, calls []models.ConversationItem, reason string) {
	success := false
	for _, fc := range calls {
		_ = state.History.AddItem(models.ConversationItem{
			Type:   models.ItemTypeFunctionCallOutput,
			CallID: fc.CallID,
			TurnID: turnID,
			Output: &models.FunctionCallOutputPayload{Content: reason, Success: &success},
		})
	}
}

// toolBatchKey is the canonical key of one batch of tool calls, used by
// the repeated-call guard.
func toolBatchKey(calls []models.ConversationItem) string {
	key := ""
	for _, fc := range calls {
		key += fc.Name + "\x00" + fc.Arguments + "\x01"
	}
	return key
}
