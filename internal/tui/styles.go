// ABOUTME: Lipgloss styles for the swapchat TUI
// ABOUTME: One Styles value shared by the list and chat views

package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles used by the TUI renderers.
type Styles struct {
	Title      lipgloss.Style
	Sender     lipgloss.Style
	OwnSender  lipgloss.Style
	System     lipgloss.Style
	Timestamp  lipgloss.Style
	Muted      lipgloss.Style
	Error      lipgloss.Style
	Selected   lipgloss.Style
	ClosedTag  lipgloss.Style
	StatusLine lipgloss.Style
}

// NewStyles creates the default style set.
func NewStyles() Styles {
	return Styles{
		Title:      lipgloss.NewStyle().Bold(true),
		Sender:     lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true),
		OwnSender:  lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		System:     lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Italic(true),
		Timestamp:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Faint(true),
		Muted:      lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Faint(true),
		Error:      lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		Selected:   lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true),
		ClosedTag:  lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Faint(true),
		StatusLine: lipgloss.NewStyle().Faint(true),
	}
}
