package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentloop/agentloop/internal/events"
)

func plainRenderer() *EventRenderer {
	return NewEventRenderer(80, true, true, PlainStyles())
}

func TestRenderAgentMessagePlain(t *testing.T) {
	r := plainRenderer()
	out := r.RenderEvent(events.Event{Kind: events.KindAgentMessage, Text: "The answer is 4."})
	assert.Equal(t, "The answer is 4.", out)
}

func TestRenderToolCallEnd(t *testing.T) {
	r := plainRenderer()

	code := 0
	out := r.RenderEvent(events.Event{Kind: events.KindToolCallEnd, ExitCode: &code, OutputExcerpt: "hello\n"})
	assert.Contains(t, out, "ok")
	assert.Contains(t, out, "hello")

	code = 7
	out = r.RenderEvent(events.Event{Kind: events.KindToolCallEnd, ExitCode: &code})
	assert.Contains(t, out, "exit 7")
}

func TestRenderApprovalRequestShowsCommand(t *testing.T) {
	r := plainRenderer()
	out := r.RenderEvent(events.Event{Kind: events.KindExecApprovalRequest, Command: "rm -r scratch"})
	assert.Contains(t, out, "rm -r scratch")
}

func TestRenderErrorAndAbort(t *testing.T) {
	r := plainRenderer()
	assert.Contains(t, r.RenderEvent(events.Event{Kind: events.KindError, Message: "boom"}), "boom")
	assert.Contains(t, r.RenderEvent(events.Event{Kind: events.KindTurnAborted, Message: "cancelled"}), "cancelled")
}

func TestTurnCompleteRendersNothing(t *testing.T) {
	r := plainRenderer()
	assert.Empty(t, r.RenderEvent(events.Event{Kind: events.KindTurnComplete}))
}
