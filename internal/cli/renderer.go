// Package cli implements the interactive terminal UI for agentloop
// sessions, rendered from the workflow's event stream.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"github.com/agentloop/agentloop/internal/events"
)

// EventRenderer renders session events as styled transcript lines.
type EventRenderer struct {
	width      int
	noMarkdown bool
	styles     Styles
	mdRenderer *glamour.TermRenderer
}

// NewEventRenderer creates a renderer. Width <= 0 detects the terminal
// width, falling back to 80 columns.
func NewEventRenderer(width int, noColor, noMarkdown bool, styles Styles) *EventRenderer {
	if width <= 0 {
		width = 80
		if tw, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && tw > 0 {
			width = tw
		}
	}
	r := &EventRenderer{
		width:      width,
		noMarkdown: noMarkdown,
		styles:     styles,
	}
	if !noMarkdown && !noColor {
		md, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(width),
		)
		if err == nil {
			r.mdRenderer = md
		}
	}
	return r
}

// RenderEvent renders one event, or "" when the event produces no visible
// transcript line (deltas are accumulated elsewhere).
func (r *EventRenderer) RenderEvent(event events.Event) string {
	switch event.Kind {
	case events.KindSessionConfigured:
		return r.styles.StatusBar.Render(
			fmt.Sprintf("session %s (model %s)", event.ConversationID, event.Model))
	case events.KindTurnStarted:
		return r.styles.OutputDim.Render("───")
	case events.KindAgentMessage:
		return r.RenderMarkdown(event.Text)
	case events.KindExecApprovalRequest:
		return r.styles.ToolBullet.Render("?") + " " +
			r.styles.ApprovalTool.Render(event.Command)
	case events.KindToolCallBegin:
		return r.styles.ToolBullet.Render("•") + " " +
			r.styles.ToolVerb.Render("Running") + " " + event.Name
	case events.KindToolCallEnd:
		return r.renderToolEnd(event)
	case events.KindTurnComplete:
		return ""
	case events.KindTurnAborted:
		return r.styles.OutputFailure.Render("turn aborted: " + event.Message)
	case events.KindError:
		return r.styles.ErrorText.Render("error: " + event.Message)
	case events.KindShutdown:
		return r.styles.StatusBar.Render("session ended")
	}
	return ""
}

func (r *EventRenderer) renderToolEnd(event events.Event) string {
	status := r.styles.OutputSuccess.Render("ok")
	if event.ExitCode != nil && *event.ExitCode != 0 {
		status = r.styles.OutputFailure.Render(fmt.Sprintf("exit %d", *event.ExitCode))
	}
	line := "  └ " + status
	if event.OutputExcerpt != "" {
		excerpt := strings.TrimRight(event.OutputExcerpt, "\n")
		line += "\n" + r.styles.OutputDim.Render(indent(excerpt, "    "))
	}
	return line
}

// RenderMarkdown renders assistant text, plain when markdown is disabled.
func (r *EventRenderer) RenderMarkdown(text string) string {
	if r.mdRenderer == nil {
		return text
	}
	out, err := r.mdRenderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
