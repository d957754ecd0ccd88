package cli

import "github.com/agentloop/agentloop/internal/events"

// eventMsg delivers one session event to the bubbletea loop.
type eventMsg struct {
	event events.Event
}

// streamClosedMsg is sent when the event pump stops.
type streamClosedMsg struct {
	err error
}

// submitErrMsg reports a failed signal send.
type submitErrMsg struct {
	err error
}
