package cli

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles for the TUI.
type Styles struct {
	UserMessage    lipgloss.Style
	ToolBullet     lipgloss.Style
	ToolVerb       lipgloss.Style
	OutputDim      lipgloss.Style
	OutputSuccess  lipgloss.Style
	OutputFailure  lipgloss.Style
	ApprovalTool   lipgloss.Style
	ApprovalHint   lipgloss.Style
	ErrorText      lipgloss.Style
	StatusBar      lipgloss.Style
	SpinnerMessage lipgloss.Style
}

// DefaultStyles returns styles with colors enabled.
func DefaultStyles() Styles {
	return Styles{
		UserMessage:    lipgloss.NewStyle().Bold(true),
		ToolBullet:     lipgloss.NewStyle().Foreground(lipgloss.Color("2")), // green
		ToolVerb:       lipgloss.NewStyle().Bold(true),
		OutputDim:      lipgloss.NewStyle().Faint(true),
		OutputSuccess:  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		OutputFailure:  lipgloss.NewStyle().Foreground(lipgloss.Color("1")), // red
		ApprovalTool:   lipgloss.NewStyle().Foreground(lipgloss.Color("3")), // yellow
		ApprovalHint:   lipgloss.NewStyle().Faint(true),
		ErrorText:      lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		StatusBar:      lipgloss.NewStyle().Faint(true),
		SpinnerMessage: lipgloss.NewStyle().Faint(true),
	}
}

// PlainStyles returns styles with no colors or attributes, for --no-color.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		UserMessage:    plain,
		ToolBullet:     plain,
		ToolVerb:       plain,
		OutputDim:      plain,
		OutputSuccess:  plain,
		OutputFailure:  plain,
		ApprovalTool:   plain,
		ApprovalHint:   plain,
		ErrorText:      plain,
		StatusBar:      plain,
		SpinnerMessage: plain,
	}
}
