// handlers.go registers the signal drain goroutines and query handlers.
// Signals only touch LoopControl through typed methods; queries read
// SessionState and LoopControl without mutating either.
package workflow

import (
	"go.temporal.io/sdk/workflow"

	"github.com/agentloop/agentloop/internal/events"
	"github.com/agentloop/agentloop/internal/version"
)

// registerHandlers wires the four signals and two queries. The drain
// goroutines run for the lifetime of the workflow; they are cooperative
// with the main loop, so no locking is needed.
func registerHandlers(ctx workflow.Context, state *SessionState, ctrl *LoopControl) {
	logger := workflow.GetLogger(ctx)

	// Query: get_events_since
	err := workflow.SetQueryHandler(ctx, QueryGetEventsSince, func(from uint64) (events.Slice, error) {
		return state.Sink.EventsSince(from), nil
	})
	if err != nil {
		logger.Error("Failed to register get_events_since query handler", "error", err)
	}

	// Query: get_state
	err = workflow.SetQueryHandler(ctx, QueryGetState, func() (StateSnapshot, error) {
		return StateSnapshot{
			Phase:            ctrl.Phase(),
			ActiveTurnID:     ctrl.CurrentTurnID(),
			PendingApprovals: ctrl.PendingApprovals(),
			QueuedTurns:      ctrl.QueuedTurns(),
			TurnCount:        state.TurnCount,
			TotalTokens:      state.TotalTokens,
			NextEventIndex:   state.Sink.Next,
			StartedAt:        state.StartedAt,
			WorkerVersion:    version.GitCommit,
		}, nil
	})
	if err != nil {
		logger.Error("Failed to register get_state query handler", "error", err)
	}

	// Signal: user_turn. Turns queue FIFO; the loop drains them when idle.
	userTurnCh := workflow.GetSignalChannel(ctx, SignalUserTurn)
	workflow.Go(ctx, func(gCtx workflow.Context) {
		for {
			var payload UserTurnPayload
			if !userTurnCh.Receive(gCtx, &payload) {
				return
			}
			if ctrl.ShutdownRequested() {
				logger.Warn("Dropping user turn received after shutdown")
				continue
			}
			if len(payload.Items) == 0 {
				logger.Warn("Ignoring user turn with no items")
				continue
			}
			ctrl.PushUserTurn(payload)
		}
	})

	// Signal: approval. Applied to the pending table immediately; an
	// unknown call_id is logged and ignored rather than erroring.
	approvalCh := workflow.GetSignalChannel(ctx, SignalApproval)
	workflow.Go(ctx, func(gCtx workflow.Context) {
		for {
			var payload ApprovalPayload
			if !approvalCh.Receive(gCtx, &payload) {
				return
			}
			approved := payload.Decision == DecisionApprove
			if !ctrl.ResolveApproval(payload.CallID, approved) {
				logger.Warn("Approval for unknown call_id ignored", "call_id", payload.CallID)
			}
		}
	})

	// Signal: cancel. Aborts the current turn at its next suspension.
	cancelCh := workflow.GetSignalChannel(ctx, SignalCancel)
	workflow.Go(ctx, func(gCtx workflow.Context) {
		for {
			var payload CancelPayload
			if !cancelCh.Receive(gCtx, &payload) {
				return
			}
			if ctrl.Phase() == PhaseIdle {
				logger.Info("Cancel received while idle, nothing to abort")
				continue
			}
			ctrl.RequestCancel()
		}
	})

	// Signal: shutdown.
	shutdownCh := workflow.GetSignalChannel(ctx, SignalShutdown)
	workflow.Go(ctx, func(gCtx workflow.Context) {
		var payload ShutdownPayload
		if !shutdownCh.Receive(gCtx, &payload) {
			return
		}
		ctrl.RequestShutdown()
	})
}
