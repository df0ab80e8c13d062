// ABOUTME: Bubble Tea program entry and message types for swapchat
// ABOUTME: Commands bridge the coordinator and channel into the tea loop

package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/skillswap/swapchat/internal/api"
	"github.com/skillswap/swapchat/internal/channel"
	"github.com/skillswap/swapchat/internal/conversation"
)

// ConversationLister fetches the member's conversation list. Implemented
// by *api.Client.
type ConversationLister interface {
	ListConversations(ctx context.Context) ([]api.Conversation, error)
}

// Run creates and runs the Bubble Tea program. It blocks until the
// program exits; cancelling the context quits it.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

// ConversationsMsg carries a refreshed conversation list.
type ConversationsMsg struct {
	Conversations []api.Conversation
	Err           error
}

// OpenedMsg signals that a conversation finished opening (room joined,
// first page loaded).
type OpenedMsg struct {
	Err error
}

// OlderLoadedMsg signals that a backward pagination load completed.
type OlderLoadedMsg struct {
	Err error
}

// ChannelEventMsg wraps a realtime event for delivery to the model.
type ChannelEventMsg struct {
	Event channel.Event
}

// ChannelDownMsg signals that the event connection terminated.
type ChannelDownMsg struct {
	Err error
}

// ConnectedMsg carries a freshly dialed channel connection.
type ConnectedMsg struct {
	Conn *channel.Conn
	Err  error
}

// RejoinedMsg signals that the open conversation's room was re-joined
// after a reconnect.
type RejoinedMsg struct {
	Err error
}

// reconnectTickMsg paces redial attempts after a failed connect.
type reconnectTickMsg struct{}

// listConversations fetches the conversation list.
func listConversations(ctx context.Context, lister ConversationLister) tea.Cmd {
	return func() tea.Msg {
		convs, err := lister.ListConversations(ctx)
		return ConversationsMsg{Conversations: convs, Err: err}
	}
}

// openConversation switches the coordinator to a conversation.
func openConversation(ctx context.Context, coord *conversation.Coordinator, conv api.Conversation) tea.Cmd {
	return func() tea.Msg {
		return OpenedMsg{Err: coord.Open(ctx, conv)}
	}
}

// loadOlder runs one backward pagination load.
func loadOlder(ctx context.Context, coord *conversation.Coordinator) tea.Cmd {
	return func() tea.Msg {
		return OlderLoadedMsg{Err: coord.LoadOlder(ctx)}
	}
}

// connectChannel dials (or redials) the event connection via the handle.
func connectChannel(ctx context.Context, handle *channel.Handle) tea.Cmd {
	return func() tea.Msg {
		conn, err := handle.Connect(ctx)
		return ConnectedMsg{Conn: conn, Err: err}
	}
}

// rejoinRoom re-subscribes the open conversation after a reconnect.
func rejoinRoom(ctx context.Context, coord *conversation.Coordinator) tea.Cmd {
	return func() tea.Msg {
		return RejoinedMsg{Err: coord.Rejoin(ctx)}
	}
}

// listenForEvent waits for the next realtime event. When the stream
// closes it reports the connection's terminal error.
func listenForEvent(conn *channel.Conn) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-conn.Events()
		if !ok {
			return ChannelDownMsg{Err: conn.Err()}
		}
		return ChannelEventMsg{Event: ev}
	}
}
