// ABOUTME: Typed events exchanged over the conversation channel
// ABOUTME: Wire frames are {"event": name, "data": payload} JSON objects

package channel

import (
	"encoding/json"
	"fmt"

	"github.com/skillswap/swapchat/internal/api"
)

// Channel error codes reported by the server.
const (
	CodeForbidden  = "FORBIDDEN"
	CodeValidation = "VALIDATION"
)

// Event is a server-to-client channel event. Concrete types: Joined,
// NewMessage, ConversationUpdated, ConversationClosed, NewConversation,
// ChannelError.
type Event interface {
	event()
}

// Joined confirms room membership for a conversation.
type Joined struct {
	ConversationID int64 `json:"conversationId"`
}

// NewMessage is a live message pushed to the joined room.
type NewMessage struct {
	ConversationID int64       `json:"conversationId"`
	Message        api.Message `json:"message"`
}

// ConversationUpdated carries a refreshed last-message preview.
type ConversationUpdated struct {
	ConversationID int64              `json:"conversationId"`
	LastMessage    api.MessageSummary `json:"lastMessage"`
}

// ConversationClosed signals that a conversation was closed. ClosedBy is
// nil when the closure was system-initiated.
type ConversationClosed struct {
	ConversationID int64            `json:"conversationId"`
	ClosedBy       *api.UserSummary `json:"closedBy"`
}

// NewConversation announces a conversation created with this member.
type NewConversation struct {
	Conversation api.Conversation `json:"conversation"`
}

// ChannelError is an informational error from the server. It is never
// retried on this channel; the coordinator translates it into UI state.
type ChannelError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("channel error %s: %s", e.Code, e.Message)
}

func (Joined) event()              {}
func (NewMessage) event()          {}
func (ConversationUpdated) event() {}
func (ConversationClosed) event()  {}
func (NewConversation) event()     {}
func (*ChannelError) event()       {}

// frame is the wire envelope for both directions.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// decodeEvent turns an inbound frame into a typed event.
func decodeEvent(f frame) (Event, error) {
	switch f.Event {
	case "joined":
		var ev Joined
		return ev, json.Unmarshal(f.Data, &ev)
	case "new-message":
		var ev NewMessage
		return ev, json.Unmarshal(f.Data, &ev)
	case "conversation-updated":
		var ev ConversationUpdated
		return ev, json.Unmarshal(f.Data, &ev)
	case "conversation-closed":
		var ev ConversationClosed
		return ev, json.Unmarshal(f.Data, &ev)
	case "new-conversation":
		var ev NewConversation
		return ev, json.Unmarshal(f.Data, &ev)
	case "error":
		ev := &ChannelError{}
		return ev, json.Unmarshal(f.Data, ev)
	default:
		return nil, fmt.Errorf("unknown event %q", f.Event)
	}
}
