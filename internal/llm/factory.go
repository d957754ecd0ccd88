package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/agentloop/agentloop/internal/models"
)

// MultiProviderClient implements Client by dispatching on the request's
// provider name. A single worker can serve sessions on different backends
// without knowing which one at registration time.
type MultiProviderClient struct {
	mu      sync.Mutex
	clients map[string]Client
}

// NewMultiProviderClient creates a dispatching client. Provider clients are
// constructed lazily per distinct provider configuration name.
func NewMultiProviderClient() *MultiProviderClient {
	return &MultiProviderClient{clients: make(map[string]Client)}
}

// Call dispatches to the provider named in the request's ModelConfig.
// An empty provider name defaults to OpenAI.
func (c *MultiProviderClient) Call(ctx context.Context, request Request) (Response, error) {
	provider := request.ModelConfig.Provider
	if provider.Name == "" {
		provider.Name = "openai"
	}

	key := provider.Name + "|" + provider.BaseURL + "|" + provider.APIKeyEnvVar
	c.mu.Lock()
	client, ok := c.clients[key]
	if !ok {
		var err error
		client, err = NewClient(provider)
		if err != nil {
			c.mu.Unlock()
			return Response{}, err
		}
		c.clients[key] = client
	}
	c.mu.Unlock()

	return client.Call(ctx, request)
}

// NewClient creates a client for the named provider.
func NewClient(provider models.ModelProvider) (Client, error) {
	switch provider.Name {
	case "openai", "":
		return NewOpenAIClient(provider), nil
	case "anthropic":
		return NewAnthropicClient(provider), nil
	default:
		return nil, fmt.Errorf("unsupported model provider: %s (supported: openai, anthropic)", provider.Name)
	}
}
