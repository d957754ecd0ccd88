// session.go is the workflow entry point and the idle loop that drains
// queued user turns.
package workflow

import (
	"fmt"

	"go.temporal.io/sdk/workflow"

	"github.com/agentloop/agentloop/internal/entropy"
	"github.com/agentloop/agentloop/internal/events"
	"github.com/agentloop/agentloop/internal/execpolicy"
	"github.com/agentloop/agentloop/internal/models"
	"github.com/agentloop/agentloop/internal/tools"
)

// DefaultMaxIterations caps model calls per turn when the config does not
// set a limit.
const DefaultMaxIterations = 20

// SessionWorkflow drives a durable multi-turn agent session. It loops
// between an idle wait and turn execution until a shutdown signal arrives.
func SessionWorkflow(ctx workflow.Context, config models.SessionConfig) (SessionResult, error) {
	logger := workflow.GetLogger(ctx)

	if config.ApprovalPolicy == "" {
		config.ApprovalPolicy = models.ApprovalOnRequest
	}
	if !config.ApprovalPolicy.Valid() {
		return SessionResult{}, fmt.Errorf("invalid approval policy: %s", config.ApprovalPolicy)
	}

	state := &SessionState{
		Config:        config,
		Sink:          events.NewSink(),
		ToolSpecs:     tools.SpecsFor(config.ToolsEnabled),
		ApprovalCache: make(map[string]bool),
		Rand:          entropy.NewXorshift64(sessionSeed(ctx, config.ConversationID)),
		clock:         workflowClock{ctx: ctx},
	}
	state.initHistory()
	state.StartedAt = state.clock.Now()

	if config.ExecPolicyRules != "" {
		policy, err := execpolicy.ParsePolicy("exec_policy.star", config.ExecPolicyRules)
		if err != nil {
			return SessionResult{}, fmt.Errorf("invalid exec policy rules: %w", err)
		}
		state.policy = policy
	}

	ctrl := NewLoopControl()
	registerHandlers(ctx, state, ctrl)

	state.emit(events.Event{
		Kind:           events.KindSessionConfigured,
		Model:          config.Model.Model,
		ConversationID: config.ConversationID,
	})
	logger.Info("Session configured",
		"conversation_id", config.ConversationID, "model", config.Model.Model)

	if config.InitialPrompt != "" {
		ctrl.PushUserTurn(UserTurnPayload{Items: []UserInput{{Text: config.InitialPrompt}}})
	}

	for {
		err := workflow.Await(ctx, func() bool {
			return ctrl.HasPendingTurn() || ctrl.ShutdownRequested()
		})
		if err != nil {
			return SessionResult{}, err
		}
		if ctrl.ShutdownRequested() {
			break
		}

		turn := ctrl.PopUserTurn()
		if err := runTurn(ctx, state, ctrl, turn); err != nil {
			return SessionResult{}, err
		}
	}

	ctrl.SetPhase(PhaseShuttingDown)
	state.emit(events.Event{Kind: events.KindShutdown})
	logger.Info("Session shut down",
		"turns", state.TurnCount, "total_tokens", state.TotalTokens)

	return SessionResult{
		ConversationID:    config.ConversationID,
		TurnsCompleted:    state.TurnCount,
		TotalTokens:       state.TotalTokens,
		ToolCallsExecuted: state.ToolCallsExecuted,
		EndReason:         "shutdown",
	}, nil
}
