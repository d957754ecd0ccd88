// Package storage provides a pluggable key-value store for data referenced
// across turns but not carried in conversation history, such as full tool
// outputs that were truncated before reaching the model.
package storage

import "context"

// Store is the key-value contract. Implementations must be safe for
// concurrent use; activities on one worker share a single instance.
type Store interface {
	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error

	// Get returns the value for key. The second return is false when the
	// key is absent.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// ToolOutputKey returns the storage key for the full output of a tool call.
func ToolOutputKey(callID string) string {
	return "tool_output/" + callID
}
