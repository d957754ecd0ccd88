package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationItemRoundTrip(t *testing.T) {
	success := true
	items := []ConversationItem{
		{Type: ItemTypeUserMessage, Seq: 0, Content: "hello", TurnID: "turn-1"},
		{Type: ItemTypeAssistantMessage, Seq: 1, Content: "hi there", TurnID: "turn-1"},
		{Type: ItemTypeFunctionCall, Seq: 2, CallID: "call-1", Name: "shell",
			Arguments: `{"command":"ls -la"}`},
		{Type: ItemTypeFunctionCallOutput, Seq: 3, CallID: "call-1",
			Output: &FunctionCallOutputPayload{Content: "total 0", Success: &success}},
		{Type: ItemTypeReasoning, Seq: 4, Content: "thinking..."},
	}

	for _, item := range items {
		data, err := json.Marshal(item)
		require.NoError(t, err)

		var decoded ConversationItem
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, item, decoded)
	}
}

func TestSessionConfigRoundTrip(t *testing.T) {
	cfg := SessionConfig{
		ConversationID: "conv-1",
		Model: ModelConfig{
			Model:       "gpt-4o",
			Provider:    ModelProvider{Name: "openai", BaseURL: "https://example.test/v1", APIKeyEnvVar: "OPENAI_API_KEY"},
			Temperature: 0.2,
			MaxTokens:   1024,
		},
		InitialPrompt:  "What is 2+2?",
		ApprovalPolicy: ApprovalOnRequest,
		ToolsEnabled:   []string{"shell"},
		Cwd:            "/tmp",
		MaxIterations:  5,
	}

	data, err := json.Marshal(cfg)
	require.NoError(t, err)

	var decoded SessionConfig
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, cfg, decoded)
}

func TestApprovalPolicyValid(t *testing.T) {
	assert.True(t, ApprovalNever.Valid())
	assert.True(t, ApprovalOnRequest.Valid())
	assert.True(t, ApprovalUnlessTrusted.Valid())
	assert.True(t, ApprovalAlways.Valid())
	assert.False(t, ApprovalPolicy("sometimes").Valid())
	assert.False(t, ApprovalPolicy("").Valid())
}

func TestActivityErrorMessage(t *testing.T) {
	err := NewAPILimitError("rate limited")
	assert.Equal(t, "[APILimit] rate limited", err.Error())
	assert.True(t, err.Retryable)

	fatal := NewFatalError("bad request")
	assert.False(t, fatal.Retryable)
	assert.Equal(t, "Fatal", fatal.Type.String())
}
