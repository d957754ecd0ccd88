package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/agentloop/agentloop/internal/events"
	"github.com/agentloop/agentloop/internal/session"
)

// State is the TUI state machine state.
type State int

const (
	StateInput State = iota
	StateWatching
	StateApproval
	StateShutdown
)

// Config holds TUI configuration.
type Config struct {
	TemporalHost   string
	TaskQueue      string
	Session        string // resume an existing workflow ID
	Message        string // initial prompt for a new session
	Model          string
	Provider       string
	ApprovalPolicy string
	ExecPolicyFile string
	NoMarkdown     bool
	NoColor        bool
	Cwd            string
}

// Model is the bubbletea model for the interactive TUI. It consumes the
// workflow's event stream through one session adapter and sends signals
// through a second one, since the adapter is single-goroutine.
type Model struct {
	workflowID string
	stream     *session.Session
	control    *session.Session
	renderer   *EventRenderer
	styles     Styles

	state State

	input   textinput.Model
	spin    spinner.Model
	spinMsg string

	transcript []string
	pending    *events.Event // approval being prompted

	modelName string
	turnCount int
	width     int
	err       error
}

// NewModel creates the TUI model.
func NewModel(workflowID string, stream, control *session.Session, config Config) Model {
	styles := DefaultStyles()
	if config.NoColor {
		styles = PlainStyles()
	}

	input := textinput.New()
	input.Placeholder = "Type a message (ctrl+c to quit)"
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = styles.SpinnerMessage

	state := StateInput
	if config.Message != "" || config.Session != "" {
		state = StateWatching
	}

	return Model{
		workflowID: workflowID,
		stream:     stream,
		control:    control,
		renderer:   NewEventRenderer(0, config.NoColor, config.NoMarkdown, styles),
		styles:     styles,
		state:      state,
		input:      input,
		spin:       spin,
		spinMsg:    "thinking",
	}
}

// Init starts the spinner and the event pump.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, textinput.Blink, waitForEvent(m.stream))
}

// waitForEvent blocks on the session's event stream.
func waitForEvent(stream *session.Session) tea.Cmd {
	return func() tea.Msg {
		event, err := stream.NextEvent(context.Background())
		if err != nil {
			return streamClosedMsg{err: err}
		}
		return eventMsg{event: event}
	}
}

// submitOp sends one signal through the control session.
func submitOp(control *session.Session, op session.Op) tea.Cmd {
	return func() tea.Msg {
		if err := control.Submit(context.Background(), op); err != nil {
			return submitErrMsg{err: err}
		}
		return nil
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case eventMsg:
		return m.handleEvent(msg.event)

	case streamClosedMsg:
		m.err = msg.err
		return m, tea.Quit

	case submitErrMsg:
		m.transcript = append(m.transcript,
			m.styles.ErrorText.Render("send failed: "+msg.err.Error()))
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.state = StateShutdown
		return m, tea.Sequence(submitOp(m.control, session.ShutdownOp{}), tea.Quit)

	case "esc":
		if m.state == StateWatching || m.state == StateApproval {
			return m, submitOp(m.control, session.CancelOp{})
		}
		return m, nil
	}

	switch m.state {
	case StateApproval:
		if m.pending == nil {
			return m, nil
		}
		switch msg.String() {
		case "y", "Y":
			callID := m.pending.CallID
			m.pending = nil
			m.state = StateWatching
			return m, submitOp(m.control, session.ApprovalOp{CallID: callID, Approve: true})
		case "n", "N":
			callID := m.pending.CallID
			m.pending = nil
			m.state = StateWatching
			return m, submitOp(m.control, session.ApprovalOp{CallID: callID, Approve: false})
		}
		return m, nil

	case StateInput:
		if msg.Type == tea.KeyEnter {
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			m.input.Reset()
			m.state = StateWatching
			m.transcript = append(m.transcript, m.styles.UserMessage.Render("> "+text))
			return m, submitOp(m.control, session.UserInputOp{Text: text})
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleEvent(event events.Event) (tea.Model, tea.Cmd) {
	if line := m.renderer.RenderEvent(event); line != "" {
		m.transcript = append(m.transcript, line)
	}

	switch event.Kind {
	case events.KindSessionConfigured:
		m.modelName = event.Model
	case events.KindExecApprovalRequest:
		pending := event
		m.pending = &pending
		m.state = StateApproval
	case events.KindToolCallBegin:
		m.spinMsg = "running " + event.Name
	case events.KindToolCallEnd:
		m.spinMsg = "thinking"
	case events.KindTurnComplete, events.KindTurnAborted:
		m.turnCount++
		m.spinMsg = "thinking"
		if m.state != StateShutdown {
			m.state = StateInput
		}
	case events.KindShutdown:
		m.state = StateShutdown
		return m, tea.Quit
	}
	return m, waitForEvent(m.stream)
}

func (m Model) View() string {
	var b strings.Builder
	for _, line := range m.transcript {
		b.WriteString(line)
		b.WriteString("\n")
	}

	switch m.state {
	case StateWatching:
		b.WriteString(m.spin.View())
		b.WriteString(m.styles.SpinnerMessage.Render(" " + m.spinMsg))
		b.WriteString("\n")
	case StateApproval:
		if m.pending != nil {
			b.WriteString(m.styles.ApprovalTool.Render("Run: " + m.pending.Command))
			b.WriteString("\n")
			b.WriteString(m.styles.ApprovalHint.Render("approve? [y/n]  (esc aborts the turn)"))
			b.WriteString("\n")
		}
	case StateInput:
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}

	b.WriteString(m.styles.StatusBar.Render(statusLine(m.workflowID, m.modelName, m.turnCount)))
	b.WriteString("\n")
	return b.String()
}

func statusLine(workflowID, model string, turns int) string {
	var parts []string
	if workflowID != "" {
		parts = append(parts, workflowID)
	}
	if model != "" {
		parts = append(parts, model)
	}
	if turns == 1 {
		parts = append(parts, "1 turn")
	} else if turns > 1 {
		parts = append(parts, fmt.Sprintf("%d turns", turns))
	}
	return strings.Join(parts, " · ")
}
