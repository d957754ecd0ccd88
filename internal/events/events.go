// Package events defines the observable events a session workflow emits and
// the append-only indexed sink clients read via queries.
package events

// Kind discriminates the variants of Event.
type Kind string

const (
	KindSessionConfigured   Kind = "session_configured"
	KindTurnStarted         Kind = "turn_started"
	KindAgentMessage        Kind = "agent_message"
	KindAgentMessageDelta   Kind = "agent_message_delta"
	KindExecApprovalRequest Kind = "exec_approval_request"
	KindToolCallBegin       Kind = "tool_call_begin"
	KindToolCallEnd         Kind = "tool_call_end"
	KindTurnComplete        Kind = "turn_complete"
	KindTurnAborted         Kind = "turn_aborted"
	KindError               Kind = "error"
	KindShutdown            Kind = "shutdown"
)

// Event is one observable fact. Different fields are populated depending on
// Kind:
//
//	SessionConfigured:   Model, ConversationID
//	TurnStarted:         TurnID
//	AgentMessage(Delta): TurnID, Text
//	ExecApprovalRequest: CallID, Command, Cwd
//	ToolCallBegin:       CallID, Name
//	ToolCallEnd:         CallID, ExitCode, OutputExcerpt
//	TurnComplete:        TurnID, LastMessage
//	TurnAborted:         TurnID, Message
//	Error:               Message, Recoverable
//	Shutdown:            (no fields)
type Event struct {
	Kind Kind `json:"kind"`

	Model          string `json:"model,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`

	TurnID string `json:"turn_id,omitempty"`
	Text   string `json:"text,omitempty"`

	CallID        string `json:"call_id,omitempty"`
	Command       string `json:"command,omitempty"`
	Cwd           string `json:"cwd,omitempty"`
	Name          string `json:"name,omitempty"`
	ExitCode      *int   `json:"exit_code,omitempty"`
	OutputExcerpt string `json:"output_excerpt,omitempty"`

	LastMessage string `json:"last_message,omitempty"`

	Message     string `json:"message,omitempty"`
	Recoverable bool   `json:"recoverable,omitempty"`
}

// Indexed pairs an event with the index the sink assigned to it.
type Indexed struct {
	Index uint64 `json:"index"`
	Event Event  `json:"event"`
}

// Slice is the result of an events_since query.
type Slice struct {
	Events []Indexed `json:"events"`
	// NextIndex is the index the next emitted event will receive. Clients
	// use it as their new watermark after draining Events.
	NextIndex uint64 `json:"next_index"`
	// FirstAvailableIndex is the lowest index still retained. When it is
	// greater than the requested from, older entries were compacted and
	// the client must treat the response as a gap and resync.
	FirstAvailableIndex uint64 `json:"first_available_index"`
}
