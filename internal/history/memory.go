package history

import (
	"sync"

	"github.com/agentloop/agentloop/internal/models"
)

// InMemoryHistory is the default ContextManager. Inside a workflow access is
// single-threaded; the mutex exists so the same type can back client-side
// previews and tests.
type InMemoryHistory struct {
	items []models.ConversationItem
	mu    sync.RWMutex
}

// NewInMemoryHistory creates an empty history.
func NewInMemoryHistory() *InMemoryHistory {
	return &InMemoryHistory{items: make([]models.ConversationItem, 0)}
}

// AddItem appends item, assigning a monotonically increasing Seq.
func (h *InMemoryHistory) AddItem(item models.ConversationItem) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	item.Seq = len(h.items)
	h.items = append(h.items, item)
	return nil
}

// GetForPrompt returns the items to send to the model.
func (h *InMemoryHistory) GetForPrompt() ([]models.ConversationItem, error) {
	return h.GetRawItems()
}

// GetRawItems returns a copy of all items.
func (h *InMemoryHistory) GetRawItems() ([]models.ConversationItem, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	result := make([]models.ConversationItem, len(h.items))
	copy(result, h.items)
	return result, nil
}

// EstimateTokenCount estimates the history size at roughly 4 characters per
// token.
func (h *InMemoryHistory) EstimateTokenCount() (int, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	totalChars := 0
	for _, item := range h.items {
		totalChars += len(item.Content)
		totalChars += len(item.Name)
		totalChars += len(item.Arguments)
		if item.Output != nil {
			totalChars += len(item.Output.Content)
		}
	}
	return totalChars / 4, nil
}

// GetTurnCount returns the number of user turns.
func (h *InMemoryHistory) GetTurnCount() (int, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, item := range h.items {
		if item.Type == models.ItemTypeUserMessage {
			count++
		}
	}
	return count, nil
}

// LastAssistantMessage returns the content of the most recent assistant
// message, or "" if there is none.
func (h *InMemoryHistory) LastAssistantMessage() string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for i := len(h.items) - 1; i >= 0; i-- {
		if h.items[i].Type == models.ItemTypeAssistantMessage {
			return h.items[i].Content
		}
	}
	return ""
}

// ReplaceAll replaces all history items, re-assigning Seq from 0. Used when
// restoring state across ContinueAsNew.
func (h *InMemoryHistory) ReplaceAll(items []models.ConversationItem) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.items = make([]models.ConversationItem, len(items))
	copy(h.items, items)
	for i := range h.items {
		h.items[i].Seq = i
	}
	return nil
}
