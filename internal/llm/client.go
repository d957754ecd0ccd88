// Package llm provides the model provider clients used by the model
// activity. The workflow never imports this package; it sees providers only
// through activity results.
package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/agentloop/agentloop/internal/models"
	"github.com/agentloop/agentloop/internal/tools"
)

// Request is one inference request.
type Request struct {
	History     []models.ConversationItem `json:"history"`
	ModelConfig models.ModelConfig        `json:"model_config"`
	ToolSpecs   []tools.ToolSpec          `json:"tool_specs"`

	// Instructions is the system prompt, if any.
	Instructions string `json:"instructions,omitempty"`
}

// Response is the complete buffered result of one inference.
type Response struct {
	Items        []models.ConversationItem `json:"items"`
	FinishReason models.FinishReason       `json:"finish_reason"`
	TokenUsage   models.TokenUsage         `json:"token_usage"`
}

// Client is the interface for model providers.
type Client interface {
	Call(ctx context.Context, request Request) (Response, error)
}

// classifyByStatusCode maps an HTTP status code to the appropriate
// ActivityError. Shared by all provider error classifiers.
//
//   - 429: rate limit, retryable with delay
//   - 408, 409: transient, retryable
//   - other 4xx: fatal client error, non-retryable
//   - 5xx: transient server error, retryable
func classifyByStatusCode(statusCode int, err error) *models.ActivityError {
	switch {
	case statusCode == http.StatusTooManyRequests:
		return models.NewAPILimitError(fmt.Sprintf("rate limit (%d): %v", statusCode, err))
	case statusCode == http.StatusRequestTimeout || statusCode == http.StatusConflict:
		return models.NewTransientError(fmt.Sprintf("retryable error (%d): %v", statusCode, err))
	case statusCode >= 400 && statusCode < 500:
		return models.NewFatalError(fmt.Sprintf("client error (%d): %v", statusCode, err))
	case statusCode >= 500:
		return models.NewTransientError(fmt.Sprintf("server error (%d): %v", statusCode, err))
	default:
		return models.NewTransientError(fmt.Sprintf("unexpected status (%d): %v", statusCode, err))
	}
}
