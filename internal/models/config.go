package models

// ApprovalPolicy controls when a tool call requires human approval.
type ApprovalPolicy string

const (
	// ApprovalNever denies every tool call without prompting.
	ApprovalNever ApprovalPolicy = "never"
	// ApprovalOnRequest prompts unless the call is cached-approved or
	// explicitly allowed by the exec policy rules.
	ApprovalOnRequest ApprovalPolicy = "on_request"
	// ApprovalUnlessTrusted is ApprovalOnRequest that additionally lets
	// trusted calls through without prompting: read_file and shell
	// commands on the read-only allowlist.
	ApprovalUnlessTrusted ApprovalPolicy = "unless_trusted"
	// ApprovalAlways prompts for every call.
	ApprovalAlways ApprovalPolicy = "always"
)

// Valid reports whether p is one of the known policies.
func (p ApprovalPolicy) Valid() bool {
	switch p {
	case ApprovalNever, ApprovalOnRequest, ApprovalUnlessTrusted, ApprovalAlways:
		return true
	}
	return false
}

// ModelProvider tells the worker which backend to call. The API key is
// resolved from the worker's environment, never from workflow state.
type ModelProvider struct {
	Name         string `json:"name"` // "openai" or "anthropic"
	BaseURL      string `json:"base_url,omitempty"`
	APIKeyEnvVar string `json:"api_key_env_var,omitempty"`
}

// ModelConfig configures the model parameters for one session.
type ModelConfig struct {
	Model       string        `json:"model"`
	Provider    ModelProvider `json:"provider"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

// DefaultModelConfig returns a sensible default configuration.
func DefaultModelConfig() ModelConfig {
	return ModelConfig{
		Model:       "gpt-4o-mini",
		Provider:    ModelProvider{Name: "openai", APIKeyEnvVar: "OPENAI_API_KEY"},
		Temperature: 0.7,
		MaxTokens:   4096,
	}
}

// SessionConfig is the workflow start input.
type SessionConfig struct {
	ConversationID string         `json:"conversation_id"`
	Model          ModelConfig    `json:"model"`
	InitialPrompt  string         `json:"initial_prompt,omitempty"`
	ApprovalPolicy ApprovalPolicy `json:"approval_policy"`
	ToolsEnabled   []string       `json:"tools_enabled,omitempty"`
	Cwd            string         `json:"cwd,omitempty"`

	// ExecPolicyRules is optional Starlark source consulted by the
	// on_request approval gate before prompting.
	ExecPolicyRules string `json:"exec_policy_rules,omitempty"`

	// BaseInstructions replaces the built-in system prompt when set.
	BaseInstructions string `json:"base_instructions,omitempty"`

	// UserInstructions are appended to the system prompt verbatim.
	UserInstructions string `json:"user_instructions,omitempty"`

	// MaxIterations caps model calls per turn. Zero means the default.
	MaxIterations int `json:"max_iterations,omitempty"`

	// ModelCallTimeoutSeconds overrides the model activity
	// start-to-close timeout. Zero means the default (10 minutes).
	ModelCallTimeoutSeconds int `json:"model_call_timeout_seconds,omitempty"`
}

// DefaultSessionConfig returns a default configuration for the given
// conversation ID.
func DefaultSessionConfig(conversationID string) SessionConfig {
	return SessionConfig{
		ConversationID: conversationID,
		Model:          DefaultModelConfig(),
		ApprovalPolicy: ApprovalOnRequest,
		ToolsEnabled:   []string{"shell", "read_file"},
	}
}
