package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"go.temporal.io/sdk/client"

	"github.com/agentloop/agentloop/internal/models"
	"github.com/agentloop/agentloop/internal/session"
	"github.com/agentloop/agentloop/internal/temporalclient"
	"github.com/agentloop/agentloop/internal/workflow"
)

// Run connects to Temporal, starts or resumes a session workflow, and
// drives the TUI until shutdown.
func Run(config Config) error {
	c, err := client.Dial(temporalclient.MustLoadClientOptions(config.TemporalHost, ""))
	if err != nil {
		return fmt.Errorf("failed to connect to Temporal: %w", err)
	}
	defer c.Close()

	workflowID := config.Session
	if workflowID == "" {
		workflowID, err = startWorkflow(c, config)
		if err != nil {
			return err
		}
	}

	// Two adapters: the session type is single-goroutine, and the TUI
	// pumps events while it submits signals.
	stream := session.New(c, workflowID, "")
	control := session.New(c, workflowID, "")

	program := tea.NewProgram(NewModel(workflowID, stream, control, config))
	_, err = program.Run()
	return err
}

func startWorkflow(c client.Client, config Config) (string, error) {
	sessionConfig := models.DefaultSessionConfig("conv-" + uuid.New().String()[:8])
	sessionConfig.InitialPrompt = config.Message
	sessionConfig.Cwd = config.Cwd

	if config.ApprovalPolicy != "" {
		sessionConfig.ApprovalPolicy = models.ApprovalPolicy(config.ApprovalPolicy)
		if !sessionConfig.ApprovalPolicy.Valid() {
			return "", fmt.Errorf("invalid approval policy: %s", config.ApprovalPolicy)
		}
	}

	switch config.Provider {
	case "", "openai":
		// Default provider already set.
	case "anthropic":
		sessionConfig.Model.Provider = models.ModelProvider{Name: "anthropic", APIKeyEnvVar: "ANTHROPIC_API_KEY"}
		sessionConfig.Model.Model = "claude-sonnet-4-5"
	default:
		return "", fmt.Errorf("unknown provider: %s", config.Provider)
	}
	if config.Model != "" {
		sessionConfig.Model.Model = config.Model
	}

	if config.ExecPolicyFile != "" {
		rules, err := os.ReadFile(config.ExecPolicyFile)
		if err != nil {
			return "", fmt.Errorf("failed to read exec policy file: %w", err)
		}
		sessionConfig.ExecPolicyRules = string(rules)
	}

	taskQueue := config.TaskQueue
	if taskQueue == "" {
		taskQueue = temporalclient.DefaultTaskQueue
	}

	run, err := c.ExecuteWorkflow(context.Background(), client.StartWorkflowOptions{
		ID:        "agentloop-" + sessionConfig.ConversationID,
		TaskQueue: taskQueue,
	}, workflow.SessionWorkflow, sessionConfig)
	if err != nil {
		return "", fmt.Errorf("failed to start workflow: %w", err)
	}
	return run.GetID(), nil
}
