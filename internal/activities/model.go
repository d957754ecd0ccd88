// Package activities contains the Temporal activity implementations. All
// side effects (HTTP calls, subprocess execution, storage writes) live here;
// the workflow only sees serialisable inputs and outputs.
package activities

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	"github.com/agentloop/agentloop/internal/llm"
	"github.com/agentloop/agentloop/internal/models"
	"github.com/agentloop/agentloop/internal/tools"
)

// ModelCallInput is the input for the model activity.
type ModelCallInput struct {
	History      []models.ConversationItem `json:"history"`
	ToolSpecs    []tools.ToolSpec          `json:"tool_specs"`
	ModelConfig  models.ModelConfig        `json:"model_config"`
	Instructions string                    `json:"instructions,omitempty"`
}

// ModelCallOutput is the buffered result of one inference.
type ModelCallOutput struct {
	Items        []models.ConversationItem `json:"items"`
	FinishReason models.FinishReason       `json:"finish_reason"`
	TokenUsage   models.TokenUsage         `json:"token_usage"`
}

// ModelActivities contains the model-related activities.
type ModelActivities struct {
	client llm.Client
}

// NewModelActivities creates a ModelActivities backed by client.
func NewModelActivities(client llm.Client) *ModelActivities {
	return &ModelActivities{client: client}
}

// ModelCall runs one inference and returns the complete response. Provider
// errors are surfaced as typed ApplicationErrors so the workflow can
// classify them without parsing messages.
func (a *ModelActivities) ModelCall(ctx context.Context, input ModelCallInput) (ModelCallOutput, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Calling model", "model", input.ModelConfig.Model,
		"provider", input.ModelConfig.Provider.Name, "history_items", len(input.History))

	response, err := a.client.Call(ctx, llm.Request{
		History:      input.History,
		ModelConfig:  input.ModelConfig,
		ToolSpecs:    input.ToolSpecs,
		Instructions: input.Instructions,
	})
	if err != nil {
		var activityErr *models.ActivityError
		if errors.As(err, &activityErr) {
			return ModelCallOutput{}, models.WrapActivityError(activityErr)
		}
		return ModelCallOutput{}, err
	}

	return ModelCallOutput{
		Items:        response.Items,
		FinishReason: response.FinishReason,
		TokenUsage:   response.TokenUsage,
	}, nil
}
