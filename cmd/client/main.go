// Scriptable CLI client for agentloop sessions.
//
// Sub-commands:
//
//	start   --message "..."                      Start a session, print workflow ID
//	send    --workflow-id <id> --message "..."   Send a user turn
//	approve --workflow-id <id> --call-id <id> [--deny]  Resolve a pending approval
//	cancel  --workflow-id <id>                   Abort the current turn
//	end     --workflow-id <id>                   Shut the session down
//	events  --workflow-id <id> [--from N]        Stream events to stdout
//
// Invoked with a bare prompt argument instead of a sub-command, it runs a
// one-shot session: start, stream until TurnComplete (exit 0) or a
// non-recoverable Error (exit 1), then shut down.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"

	"github.com/agentloop/agentloop/internal/events"
	"github.com/agentloop/agentloop/internal/models"
	"github.com/agentloop/agentloop/internal/session"
	"github.com/agentloop/agentloop/internal/temporalclient"
	"github.com/agentloop/agentloop/internal/workflow"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "start":
		cmdStart(os.Args[2:])
	case "send":
		cmdSend(os.Args[2:])
	case "approve":
		cmdApprove(os.Args[2:])
	case "cancel":
		cmdSignal(os.Args[2:], "cancel")
	case "end":
		cmdSignal(os.Args[2:], "end")
	case "events":
		cmdEvents(os.Args[2:])
	case "-h", "--help", "help":
		printUsage()
	default:
		if strings.HasPrefix(os.Args[1], "-") {
			printUsage()
			os.Exit(1)
		}
		cmdOneShot(os.Args[1])
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: client <command> [flags]")
	fmt.Fprintln(os.Stderr, "       client \"<prompt>\"")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  start    Start a new session workflow")
	fmt.Fprintln(os.Stderr, "  send     Send a user turn to a running session")
	fmt.Fprintln(os.Stderr, "  approve  Approve or deny a pending tool call")
	fmt.Fprintln(os.Stderr, "  cancel   Abort the current turn")
	fmt.Fprintln(os.Stderr, "  end      Shut the session down")
	fmt.Fprintln(os.Stderr, "  events   Stream session events to stdout")
}

func dialTemporal() client.Client {
	c, err := client.Dial(temporalclient.MustLoadClientOptions("", ""))
	if err != nil {
		log.Fatalf("Failed to create Temporal client: %v", err)
	}
	return c
}

// sessionConfigFlags adds the shared session configuration flags.
func sessionConfigFlags(fs *flag.FlagSet) (model, provider, policy, policyFile *string) {
	model = fs.String("model", "", "Model slug (defaults to the provider default)")
	provider = fs.String("provider", "openai", "Model provider: openai or anthropic")
	policy = fs.String("approval-policy", string(models.ApprovalOnRequest),
		"Tool approval policy: never, on_request, unless_trusted, or always")
	policyFile = fs.String("exec-policy", "", "Path to a Starlark exec policy file")
	return
}

func buildConfig(prompt, model, provider, policy, policyFile string) models.SessionConfig {
	config := models.DefaultSessionConfig("conv-" + uuid.New().String()[:8])
	config.InitialPrompt = prompt
	config.ApprovalPolicy = models.ApprovalPolicy(policy)
	if !config.ApprovalPolicy.Valid() {
		log.Fatalf("Invalid approval policy: %s", policy)
	}

	switch provider {
	case "openai", "":
		// Default provider already set.
	case "anthropic":
		config.Model.Provider = models.ModelProvider{Name: "anthropic", APIKeyEnvVar: "ANTHROPIC_API_KEY"}
		config.Model.Model = "claude-sonnet-4-5"
	default:
		log.Fatalf("Unknown provider: %s", provider)
	}
	if model != "" {
		config.Model.Model = model
	}
	if envModel := os.Getenv("MODEL"); envModel != "" && model == "" {
		config.Model.Model = envModel
	}

	if policyFile != "" {
		rules, err := os.ReadFile(policyFile)
		if err != nil {
			log.Fatalf("Failed to read exec policy file: %v", err)
		}
		config.ExecPolicyRules = string(rules)
	}

	if cwd, err := os.Getwd(); err == nil {
		config.Cwd = cwd
	}
	return config
}

func startSession(ctx context.Context, c client.Client, taskQueue string, config models.SessionConfig) client.WorkflowRun {
	run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        "agentloop-" + config.ConversationID,
		TaskQueue: taskQueue,
	}, workflow.SessionWorkflow, config)
	if err != nil {
		log.Fatalf("Failed to start workflow: %v", err)
	}
	return run
}

func cmdStart(args []string) {
	fs := flag.NewFlagSet("start", flag.ExitOnError)
	message := fs.String("message", "", "Initial prompt (optional)")
	taskQueue := fs.String("task-queue", temporalclient.DefaultTaskQueue, "Temporal task queue")
	model, provider, policy, policyFile := sessionConfigFlags(fs)
	fs.Parse(args)

	c := dialTemporal()
	defer c.Close()

	config := buildConfig(*message, *model, *provider, *policy, *policyFile)
	run := startSession(context.Background(), c, *taskQueue, config)
	fmt.Println(run.GetID())
}

func cmdSend(args []string) {
	fs := flag.NewFlagSet("send", flag.ExitOnError)
	workflowID := fs.String("workflow-id", "", "Workflow ID (required)")
	message := fs.String("message", "", "User message (required)")
	fs.Parse(args)

	if *workflowID == "" || *message == "" {
		log.Fatal("Error: --workflow-id and --message are required")
	}

	c := dialTemporal()
	defer c.Close()

	sess := session.New(c, *workflowID, "")
	if err := sess.Submit(context.Background(), session.UserInputOp{Text: *message}); err != nil {
		log.Fatalf("Failed to send user turn: %v", err)
	}
	log.Println("User turn sent")
}

func cmdApprove(args []string) {
	fs := flag.NewFlagSet("approve", flag.ExitOnError)
	workflowID := fs.String("workflow-id", "", "Workflow ID (required)")
	callID := fs.String("call-id", "", "Call ID of the pending approval (required)")
	deny := fs.Bool("deny", false, "Deny instead of approve")
	fs.Parse(args)

	if *workflowID == "" || *callID == "" {
		log.Fatal("Error: --workflow-id and --call-id are required")
	}

	c := dialTemporal()
	defer c.Close()

	sess := session.New(c, *workflowID, "")
	if err := sess.Submit(context.Background(), session.ApprovalOp{CallID: *callID, Approve: !*deny}); err != nil {
		log.Fatalf("Failed to send approval: %v", err)
	}
	if *deny {
		log.Println("Denied", *callID)
	} else {
		log.Println("Approved", *callID)
	}
}

func cmdSignal(args []string, kind string) {
	fs := flag.NewFlagSet(kind, flag.ExitOnError)
	workflowID := fs.String("workflow-id", "", "Workflow ID (required)")
	fs.Parse(args)

	if *workflowID == "" {
		log.Fatal("Error: --workflow-id is required")
	}

	c := dialTemporal()
	defer c.Close()

	sess := session.New(c, *workflowID, "")
	var op session.Op
	if kind == "cancel" {
		op = session.CancelOp{}
	} else {
		op = session.ShutdownOp{}
	}
	if err := sess.Submit(context.Background(), op); err != nil {
		log.Fatalf("Failed to send %s: %v", kind, err)
	}
	log.Printf("Sent %s", kind)
}

func cmdEvents(args []string) {
	fs := flag.NewFlagSet("events", flag.ExitOnError)
	workflowID := fs.String("workflow-id", "", "Workflow ID (required)")
	fs.Parse(args)

	if *workflowID == "" {
		log.Fatal("Error: --workflow-id is required")
	}

	c := dialTemporal()
	defer c.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sess := session.New(c, *workflowID, "")
	for {
		event, err := sess.NextEvent(ctx)
		if err != nil {
			return
		}
		fmt.Println(renderEvent(event))
		if event.Kind == events.KindShutdown {
			return
		}
	}
}

// cmdOneShot runs a full session for a single prompt. Tool approvals are
// granted automatically so scripted runs do not hang; use the TUI for
// interactive approval.
func cmdOneShot(prompt string) {
	c := dialTemporal()
	defer c.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	config := buildConfig(prompt, "", "openai", string(models.ApprovalOnRequest), "")
	run := startSession(ctx, c, temporalclient.DefaultTaskQueue, config)
	log.Printf("Started session: %s", run.GetID())

	sess := session.New(c, run.GetID(), "")
	exitCode := 1
	for {
		event, err := sess.NextEvent(ctx)
		if err != nil {
			break
		}
		fmt.Println(renderEvent(event))

		switch event.Kind {
		case events.KindExecApprovalRequest:
			if submitErr := sess.Submit(ctx, session.ApprovalOp{CallID: event.CallID, Approve: true}); submitErr != nil {
				log.Printf("Failed to approve %s: %v", event.CallID, submitErr)
			}
		case events.KindTurnComplete:
			exitCode = 0
		case events.KindError:
			if !event.Recoverable {
				exitCode = 1
			}
		}
		if event.Kind == events.KindTurnComplete || event.Kind == events.KindTurnAborted {
			break
		}
	}

	_ = sess.Submit(context.Background(), session.ShutdownOp{})
	os.Exit(exitCode)
}

func renderEvent(event events.Event) string {
	switch event.Kind {
	case events.KindSessionConfigured:
		return fmt.Sprintf("[session] model=%s conversation=%s", event.Model, event.ConversationID)
	case events.KindTurnStarted:
		return fmt.Sprintf("[turn %s] started", event.TurnID)
	case events.KindAgentMessage, events.KindAgentMessageDelta:
		return event.Text
	case events.KindExecApprovalRequest:
		return fmt.Sprintf("[approval %s] %s (cwd: %s)", event.CallID, event.Command, event.Cwd)
	case events.KindToolCallBegin:
		return fmt.Sprintf("[tool %s] %s running", event.CallID, event.Name)
	case events.KindToolCallEnd:
		code := 0
		if event.ExitCode != nil {
			code = *event.ExitCode
		}
		return fmt.Sprintf("[tool %s] exit %d: %s", event.CallID, code, event.OutputExcerpt)
	case events.KindTurnComplete:
		return fmt.Sprintf("[turn %s] complete", event.TurnID)
	case events.KindTurnAborted:
		return fmt.Sprintf("[turn %s] aborted: %s", event.TurnID, event.Message)
	case events.KindError:
		return fmt.Sprintf("[error] %s (recoverable: %v)", event.Message, event.Recoverable)
	case events.KindShutdown:
		return "[session] shut down"
	default:
		return fmt.Sprintf("[%s]", event.Kind)
	}
}
