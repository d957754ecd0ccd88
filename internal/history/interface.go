// Package history provides conversation history management. The workflow
// owns a ContextManager instance; it is the canonical conversation state.
package history

import "github.com/agentloop/agentloop/internal/models"

// ContextManager manages the ordered conversation history.
type ContextManager interface {
	// AddItem appends a conversation item, assigning its Seq.
	AddItem(item models.ConversationItem) error

	// GetForPrompt returns the items to send to the model.
	GetForPrompt() ([]models.ConversationItem, error)

	// GetRawItems returns a copy of all items.
	GetRawItems() ([]models.ConversationItem, error)

	// EstimateTokenCount estimates the token size of the history.
	EstimateTokenCount() (int, error)

	// GetTurnCount returns the number of user turns so far.
	GetTurnCount() (int, error)

	// LastAssistantMessage returns the content of the most recent
	// assistant message, or "" if there is none.
	LastAssistantMessage() string
}
