// Package instructions assembles the system prompt sent with every
// model call. The result is a pure function of the session
// configuration so the workflow can rebuild it deterministically on
// replay.
package instructions

import (
	"fmt"
	"sort"
	"strings"
)

const basePrompt = `You are a coding agent running inside a durable session harness. You are expected to be precise, safe, and helpful.

Your capabilities:

- Receive user prompts over a multi-turn conversation.
- Run terminal commands via the shell tool.
- Read workspace files via the read_file tool.

How you work:

- Keep going until the user's request is fully resolved before ending your turn. Use the tools available to you instead of guessing.
- Keep responses concise and direct. State the outcome first, then any necessary detail.
- Some shell commands require human approval before they run. A denied command is not an error on your part; explain what you wanted to do and suggest an alternative or ask the user how to proceed.
- Never repeat an identical tool call that already ran. If a command failed, change the approach instead of retrying it verbatim.
- Do not run destructive commands unless the user explicitly asked for them.`

// Params are the inputs the prompt is built from.
type Params struct {
	Cwd            string
	ApprovalPolicy string
	ToolsEnabled   []string

	// BaseOverride replaces the built-in base prompt when non-empty.
	BaseOverride string

	// UserInstructions are appended verbatim after the base prompt.
	UserInstructions string
}

// Build assembles the full system prompt.
func Build(params Params) string {
	base := basePrompt
	if params.BaseOverride != "" {
		base = params.BaseOverride
	}

	sections := []string{base}
	if env := environmentContext(params); env != "" {
		sections = append(sections, env)
	}
	if params.UserInstructions != "" {
		sections = append(sections, strings.TrimSpace(params.UserInstructions))
	}
	return strings.Join(sections, "\n\n")
}

// environmentContext renders the session environment block, following
// the convention of injecting ambient facts as tagged context rather
// than prose.
func environmentContext(params Params) string {
	var b strings.Builder
	b.WriteString("<environment_context>\n")
	if params.Cwd != "" {
		fmt.Fprintf(&b, "  <cwd>%s</cwd>\n", params.Cwd)
	}
	if params.ApprovalPolicy != "" {
		fmt.Fprintf(&b, "  <approval_policy>%s</approval_policy>\n", params.ApprovalPolicy)
	}
	if len(params.ToolsEnabled) > 0 {
		tools := append([]string(nil), params.ToolsEnabled...)
		sort.Strings(tools)
		fmt.Fprintf(&b, "  <tools>%s</tools>\n", strings.Join(tools, ", "))
	}
	b.WriteString("</environment_context>")
	return b.String()
}
