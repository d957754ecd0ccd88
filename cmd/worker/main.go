// Worker executable for agentloop.
//
// Starts a Temporal worker hosting the session workflow and its two
// activities. Provider credentials come from the process environment
// (OPENAI_API_KEY / ANTHROPIC_API_KEY), never from workflow state.
package main

import (
	"flag"
	"log"
	"os"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/agentloop/agentloop/internal/activities"
	"github.com/agentloop/agentloop/internal/llm"
	"github.com/agentloop/agentloop/internal/storage"
	"github.com/agentloop/agentloop/internal/temporalclient"
	"github.com/agentloop/agentloop/internal/tools"
	"github.com/agentloop/agentloop/internal/tools/handlers"
	"github.com/agentloop/agentloop/internal/version"
	"github.com/agentloop/agentloop/internal/workflow"
)

func main() {
	taskQueue := flag.String("task-queue", temporalclient.DefaultTaskQueue, "Temporal task queue")
	serverAddress := flag.String("server-address", "", "Temporal server host:port (overrides env)")
	namespace := flag.String("namespace", "", "Temporal namespace (overrides env)")
	flag.Parse()

	hasOpenAI := os.Getenv("OPENAI_API_KEY") != ""
	hasAnthropic := os.Getenv("ANTHROPIC_API_KEY") != ""
	if !hasOpenAI && !hasAnthropic {
		log.Fatal("At least one provider API key is required: OPENAI_API_KEY or ANTHROPIC_API_KEY")
	}
	if hasOpenAI {
		log.Println("OpenAI provider available")
	}
	if hasAnthropic {
		log.Println("Anthropic provider available")
	}

	opts := temporalclient.MustLoadClientOptions(*serverAddress, *namespace)

	c, err := client.Dial(opts)
	if err != nil {
		log.Fatalf("Failed to create Temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, *taskQueue, worker.Options{})

	w.RegisterWorkflow(workflow.SessionWorkflow)

	registry := tools.NewRegistry()
	registry.Register(handlers.NewShellTool())
	registry.Register(handlers.NewReadFileTool())
	log.Printf("Registered %d tools", registry.ToolCount())

	modelActivities := activities.NewModelActivities(llm.NewMultiProviderClient())
	w.RegisterActivity(modelActivities.ModelCall)

	toolActivities := activities.NewToolActivities(registry, storage.NewMemoryStore())
	w.RegisterActivity(toolActivities.ToolExec)

	log.Printf("Worker version: %s", version.GitCommit)
	log.Printf("Starting worker on task queue: %s", *taskQueue)
	if opts.HostPort != "" {
		log.Printf("Temporal server: %s", opts.HostPort)
	}

	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("Worker failed: %v", err)
	}
	log.Println("Worker stopped")
}
