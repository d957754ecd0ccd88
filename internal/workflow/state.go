// Package workflow contains the Temporal workflow that drives a durable
// multi-turn agent session.
//
// state.go holds the serialisable session state and the signal/query
// protocol types, separated from the loop logic.
package workflow

import (
	"time"

	"github.com/agentloop/agentloop/internal/entropy"
	"github.com/agentloop/agentloop/internal/events"
	"github.com/agentloop/agentloop/internal/execpolicy"
	"github.com/agentloop/agentloop/internal/history"
	"github.com/agentloop/agentloop/internal/models"
	"github.com/agentloop/agentloop/internal/tools"
)

// Signal and query names.
const (
	// SignalUserTurn submits a user turn. Turns arriving while another
	// turn is running are queued FIFO.
	SignalUserTurn = "user_turn"

	// SignalApproval resolves a pending tool approval by call ID.
	SignalApproval = "approval"

	// SignalCancel aborts the current turn at its next suspension point
	// without ending the session.
	SignalCancel = "cancel"

	// SignalShutdown ends the session. A running turn finishes first;
	// a turn blocked on approval is aborted with the call denied.
	SignalShutdown = "shutdown"

	// QueryGetEventsSince returns indexed events at or after a watermark.
	QueryGetEventsSince = "get_events_since"

	// QueryGetState returns a snapshot of the session for clients.
	QueryGetState = "get_state"
)

// Phase indicates what the session loop is currently doing.
type Phase string

const (
	PhaseIdle             Phase = "idle"
	PhaseRunning          Phase = "running"
	PhaseAwaitingApproval Phase = "awaiting_approval"
	PhaseExecutingTool    Phase = "executing_tool"
	PhaseShuttingDown     Phase = "shutting_down"
)

// UserInput is a single input item within a user turn.
type UserInput struct {
	Text string `json:"text"`
}

// UserTurnPayload is the payload of the user_turn signal.
type UserTurnPayload struct {
	Items []UserInput `json:"items"`
	// Cwd overrides the session working directory for tool calls made
	// during this turn. Empty keeps the session default.
	Cwd string `json:"cwd,omitempty"`
}

// ApprovalDecision is the user's verdict on a pending tool call.
type ApprovalDecision string

const (
	DecisionApprove ApprovalDecision = "approve"
	DecisionDeny    ApprovalDecision = "deny"
)

// ApprovalPayload is the payload of the approval signal.
type ApprovalPayload struct {
	CallID   string           `json:"call_id"`
	Decision ApprovalDecision `json:"decision"`
}

// CancelPayload is the payload of the cancel signal.
type CancelPayload struct {
	Reason string `json:"reason,omitempty"`
}

// ShutdownPayload is the payload of the shutdown signal.
type ShutdownPayload struct {
	Reason string `json:"reason,omitempty"`
}

// PendingApproval describes a tool call awaiting the user's decision.
type PendingApproval struct {
	CallID   string `json:"call_id"`
	ToolName string `json:"tool_name"`
	Command  string `json:"command,omitempty"`
	Cwd      string `json:"cwd,omitempty"`
}

// StateSnapshot is the response of the get_state query.
type StateSnapshot struct {
	Phase            Phase             `json:"phase"`
	ActiveTurnID     string            `json:"active_turn_id,omitempty"`
	PendingApprovals []PendingApproval `json:"pending_approvals,omitempty"`
	QueuedTurns      int               `json:"queued_turns"`
	TurnCount        int               `json:"turn_count"`
	TotalTokens      int               `json:"total_tokens"`
	NextEventIndex   uint64            `json:"next_event_index"`
	StartedAt        time.Time         `json:"started_at"`
	WorkerVersion    string            `json:"worker_version,omitempty"`
}

// SessionResult is the final result of the session workflow.
type SessionResult struct {
	ConversationID    string   `json:"conversation_id"`
	TurnsCompleted    int      `json:"turns_completed"`
	TotalTokens       int      `json:"total_tokens"`
	ToolCallsExecuted []string `json:"tool_calls_executed,omitempty"`
	EndReason         string   `json:"end_reason,omitempty"` // "shutdown"
}

// SessionState is the workflow's canonical state. Transient coordination
// state (queues, flags, slots) lives in LoopControl instead and is rebuilt
// fresh each run.
type SessionState struct {
	Config models.SessionConfig `json:"config"`

	History history.ContextManager `json:"-"`

	ToolSpecs []tools.ToolSpec `json:"tool_specs"`

	// Sink is the append-only event buffer served by get_events_since.
	Sink *events.Sink `json:"sink"`

	// ApprovalCache maps a canonical call key to a prior decision so
	// repeated identical calls in one session do not re-prompt.
	ApprovalCache map[string]bool `json:"approval_cache,omitempty"`

	// Rand seeds all workflow-side randomness (turn and call IDs).
	Rand *entropy.Xorshift64 `json:"rand"`

	// StartedAt is read from the bound Clock capability at entry.
	StartedAt time.Time `json:"started_at"`

	// Cumulative stats.
	TurnCount         int      `json:"turn_count"`
	TotalTokens       int      `json:"total_tokens"`
	ToolCallsExecuted []string `json:"tool_calls_executed,omitempty"`

	// policy is parsed from Config.ExecPolicyRules at entry. Parsing is
	// pure, so rebuilding it on replay is deterministic.
	policy *execpolicy.Policy

	clock entropy.Clock
}

// initHistory attaches a fresh conversation history.
func (s *SessionState) initHistory() {
	s.History = history.NewInMemoryHistory()
}

// emit appends an event to the sink.
func (s *SessionState) emit(event events.Event) uint64 {
	return s.Sink.Emit(event)
}

// nextTurnID draws a fresh turn identifier from the deterministic source.
func (s *SessionState) nextTurnID() string {
	return "turn-" + s.Rand.UUID()
}
