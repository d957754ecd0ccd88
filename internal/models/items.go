// Package models contains the shared serialisable types for the agentloop
// project: conversation items, session configuration, and activity errors.
// Everything here crosses a workflow, signal, or activity boundary and must
// round-trip through JSON without loss.
package models

// ItemType discriminates the variants of ConversationItem.
type ItemType string

const (
	ItemTypeUserMessage        ItemType = "user_message"
	ItemTypeAssistantMessage   ItemType = "assistant_message"
	ItemTypeFunctionCall       ItemType = "function_call"
	ItemTypeFunctionCallOutput ItemType = "function_call_output"
	ItemTypeReasoning          ItemType = "reasoning"
)

// FunctionCallOutputPayload is the result of a tool call as seen by the model.
type FunctionCallOutputPayload struct {
	Content string `json:"content"`
	Success *bool  `json:"success,omitempty"`
}

// ConversationItem is one entry of conversation history. Different fields are
// populated depending on Type:
//
//	UserMessage:        Content
//	AssistantMessage:   Content
//	Reasoning:          Content (opaque trace, passed through untouched)
//	FunctionCall:       CallID, Name, Arguments
//	FunctionCallOutput: CallID, Output
type ConversationItem struct {
	Type ItemType `json:"type"`

	// Seq is a monotonically increasing sequence number assigned by history.
	Seq int `json:"seq"`

	Content string `json:"content,omitempty"`

	CallID    string `json:"call_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"` // raw JSON string

	Output *FunctionCallOutputPayload `json:"output,omitempty"`

	// TurnID identifies the turn this item was produced in.
	TurnID string `json:"turn_id,omitempty"`
}

// FinishReason indicates why the model stopped generating.
type FinishReason string

const (
	FinishReasonStop          FinishReason = "stop"
	FinishReasonToolCalls     FinishReason = "tool_calls"
	FinishReasonLength        FinishReason = "length"
	FinishReasonContentFilter FinishReason = "content_filter"
)

// TokenUsage tracks token consumption of one model call.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
	CachedTokens     int `json:"cached_tokens"`
}
