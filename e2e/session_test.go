// E2E tests against real services:
// - Real model API (requires OPENAI_API_KEY)
// - Real Temporal server (requires 'temporal server start-dev')
// - Real worker (must be running)
//
// Prerequisites:
// 1. Terminal 1: temporal server start-dev
// 2. Terminal 2: export OPENAI_API_KEY=sk-... && go run ./cmd/worker
// 3. Terminal 3: go test -v ./e2e/...
package e2e

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/client"

	"github.com/agentloop/agentloop/internal/events"
	"github.com/agentloop/agentloop/internal/models"
	"github.com/agentloop/agentloop/internal/session"
	"github.com/agentloop/agentloop/internal/workflow"
)

const (
	taskQueue        = "agentloop"
	temporalHostPort = "localhost:7233"
	sessionTimeout   = 3 * time.Minute
)

func dialTemporal(t *testing.T) client.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}
	if os.Getenv("OPENAI_API_KEY") == "" {
		t.Skip("OPENAI_API_KEY not set, skipping E2E test")
	}
	c, err := client.Dial(client.Options{HostPort: temporalHostPort})
	require.NoError(t, err, "Failed to connect to Temporal server. Is it running?")
	return c
}

func startSession(t *testing.T, c client.Client, config models.SessionConfig) client.WorkflowRun {
	t.Helper()
	run, err := c.ExecuteWorkflow(context.Background(), client.StartWorkflowOptions{
		ID:        "e2e-" + config.ConversationID,
		TaskQueue: taskQueue,
	}, workflow.SessionWorkflow, config)
	require.NoError(t, err)
	return run
}

func testConfig() models.SessionConfig {
	config := models.DefaultSessionConfig("e2e-" + uuid.New().String()[:8])
	config.Model.Temperature = 0
	config.Model.MaxTokens = 512
	return config
}

// collectUntil drains the event stream until stop returns true or the
// context expires, returning everything seen.
func collectUntil(ctx context.Context, t *testing.T, s *session.Session, stop func(events.Event) bool) []events.Event {
	t.Helper()
	var seen []events.Event
	for {
		event, err := s.NextEvent(ctx)
		require.NoError(t, err)
		seen = append(seen, event)
		if stop(event) {
			return seen
		}
	}
}

func TestSimpleQuestionAnswer(t *testing.T) {
	c := dialTemporal(t)
	defer c.Close()

	config := testConfig()
	config.InitialPrompt = "What is 2+2? Reply with just the number."
	run := startSession(t, c, config)

	ctx, cancel := context.WithTimeout(context.Background(), sessionTimeout)
	defer cancel()

	s := session.New(c, run.GetID(), "")
	seen := collectUntil(ctx, t, s, func(e events.Event) bool {
		return e.Kind == events.KindTurnComplete
	})

	var answer string
	for _, e := range seen {
		if e.Kind == events.KindAgentMessage {
			answer = e.Text
		}
	}
	assert.Contains(t, answer, "4")

	require.NoError(t, s.Submit(ctx, session.ShutdownOp{}))

	var result workflow.SessionResult
	require.NoError(t, run.Get(ctx, &result))
	assert.Equal(t, 1, result.TurnsCompleted)
	assert.Greater(t, result.TotalTokens, 0)
}

func TestToolCallWithApproval(t *testing.T) {
	c := dialTemporal(t)
	defer c.Close()

	dir := t.TempDir()
	config := testConfig()
	config.Cwd = dir
	run := startSession(t, c, config)

	ctx, cancel := context.WithTimeout(context.Background(), sessionTimeout)
	defer cancel()

	s := session.New(c, run.GetID(), "")
	require.NoError(t, s.Submit(ctx, session.UserInputOp{
		Text: "Create an empty file named probe.txt in the current directory using the shell, then tell me you are done.",
	}))

	approved := false
	collectUntil(ctx, t, s, func(e events.Event) bool {
		if e.Kind == events.KindExecApprovalRequest {
			approved = true
			require.NoError(t, s.Submit(ctx, session.ApprovalOp{CallID: e.CallID, Approve: true}))
		}
		return e.Kind == events.KindTurnComplete || e.Kind == events.KindTurnAborted
	})

	assert.True(t, approved, "every shell call prompts under the default policy")

	_, err := os.Stat(dir + "/probe.txt")
	assert.NoError(t, err, "expected the agent to create probe.txt")

	require.NoError(t, s.Submit(ctx, session.ShutdownOp{}))
	require.NoError(t, run.Get(ctx, &workflow.SessionResult{}))
}

func TestMultiTurnConversation(t *testing.T) {
	c := dialTemporal(t)
	defer c.Close()

	config := testConfig()
	run := startSession(t, c, config)

	ctx, cancel := context.WithTimeout(context.Background(), sessionTimeout)
	defer cancel()

	s := session.New(c, run.GetID(), "")

	require.NoError(t, s.Submit(ctx, session.UserInputOp{Text: "Remember the number 37. Just acknowledge."}))
	collectUntil(ctx, t, s, func(e events.Event) bool { return e.Kind == events.KindTurnComplete })

	require.NoError(t, s.Submit(ctx, session.UserInputOp{Text: "What number did I ask you to remember? Reply with just the number."}))
	seen := collectUntil(ctx, t, s, func(e events.Event) bool { return e.Kind == events.KindTurnComplete })

	var answer string
	for _, e := range seen {
		if e.Kind == events.KindAgentMessage {
			answer = e.Text
		}
	}
	assert.Contains(t, answer, "37")

	require.NoError(t, s.Submit(ctx, session.ShutdownOp{}))

	var result workflow.SessionResult
	require.NoError(t, run.Get(ctx, &result))
	assert.Equal(t, 2, result.TurnsCompleted)
}
