// ABOUTME: Pure rendering helpers for the list and chat views
// ABOUTME: Kept free of tea.Model state so they are directly testable

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/skillswap/swapchat/internal/api"
)

// renderMessages formats a conversation transcript for the viewport.
// System messages (no sender) render in a distinct style.
func renderMessages(msgs []api.Message, selfID int64, width int, styles Styles) string {
	if len(msgs) == 0 {
		return styles.Muted.Render("No messages yet.")
	}

	body := lipgloss.NewStyle().Width(width)

	var b strings.Builder
	for i, m := range msgs {
		if i > 0 {
			b.WriteString("\n")
		}

		ts := styles.Timestamp.Render(m.Timestamp.Local().Format("15:04"))
		if m.Sender == nil {
			b.WriteString(fmt.Sprintf("%s %s\n", ts, styles.System.Render(m.Content)))
			continue
		}

		name := styles.Sender
		if m.Sender.ID == selfID {
			name = styles.OwnSender
		}
		b.WriteString(fmt.Sprintf("%s %s\n%s\n", ts, name.Render(m.Sender.Name), body.Render(m.Content)))
	}
	return b.String()
}

// renderConversationList formats the selectable conversation list.
func renderConversationList(convs []api.Conversation, selected int, styles Styles) string {
	if len(convs) == 0 {
		return styles.Muted.Render("No conversations. Press r to refresh.")
	}

	var b strings.Builder
	for i, c := range convs {
		cursor := "  "
		line := c.Title
		if line == "" {
			line = c.Participant.Name
		}
		if c.Status == api.ConversationClosed {
			line += " " + styles.ClosedTag.Render("[closed]")
		}
		if c.LastMessage != nil {
			line += "\n   " + styles.Muted.Render(truncate(c.LastMessage.Content, 60))
		}

		if i == selected {
			cursor = styles.Selected.Render("> ")
			b.WriteString(cursor + styles.Selected.Render(line) + "\n")
		} else {
			b.WriteString(cursor + line + "\n")
		}
	}
	return b.String()
}

// truncate shortens s to at most n runes, appending an ellipsis when cut.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
