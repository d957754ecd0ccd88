// Interactive terminal UI for agentloop sessions.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/agentloop/agentloop/internal/cli"
	"github.com/agentloop/agentloop/internal/models"
	"github.com/agentloop/agentloop/internal/temporalclient"
)

func main() {
	host := flag.String("server-address", "", "Temporal server host:port (overrides env)")
	taskQueue := flag.String("task-queue", temporalclient.DefaultTaskQueue, "Temporal task queue")
	resume := flag.String("session", "", "Resume an existing session workflow ID")
	message := flag.String("message", "", "Initial prompt for a new session")
	model := flag.String("model", "", "Model slug")
	provider := flag.String("provider", "openai", "Model provider: openai or anthropic")
	policy := flag.String("approval-policy", string(models.ApprovalOnRequest),
		"Tool approval policy: never, on_request, unless_trusted, or always")
	policyFile := flag.String("exec-policy", "", "Path to a Starlark exec policy file")
	noMarkdown := flag.Bool("no-markdown", false, "Disable markdown rendering")
	noColor := flag.Bool("no-color", false, "Disable colors")
	flag.Parse()

	cwd, _ := os.Getwd()

	err := cli.Run(cli.Config{
		TemporalHost:   *host,
		TaskQueue:      *taskQueue,
		Session:        *resume,
		Message:        *message,
		Model:          *model,
		Provider:       *provider,
		ApprovalPolicy: *policy,
		ExecPolicyFile: *policyFile,
		NoMarkdown:     *noMarkdown,
		NoColor:        *noColor,
		Cwd:            cwd,
	})
	if err != nil {
		log.Fatalf("TUI failed: %v", err)
	}
}
