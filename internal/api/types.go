// ABOUTME: Wire model for the SkillSwap conversation boundary
// ABOUTME: Shared by the HTTP client and the realtime event channel

package api

import "time"

// ConversationStatus is the lifecycle state of a conversation.
type ConversationStatus string

const (
	ConversationOpen   ConversationStatus = "open"
	ConversationClosed ConversationStatus = "closed"
)

// UserSummary is the compact member representation embedded in
// conversations and messages.
type UserSummary struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// MessageSummary is the last-message preview carried on a conversation.
type MessageSummary struct {
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is a member-to-member conversation as listed by the server.
type Conversation struct {
	ID          int64              `json:"id"`
	Title       string             `json:"title"`
	Status      ConversationStatus `json:"status"`
	Participant UserSummary        `json:"participant"`
	LastMessage *MessageSummary    `json:"lastMessage,omitempty"`
}

// Message is a single immutable conversation message. Sender is absent for
// system-generated entries.
type Message struct {
	ID             int64        `json:"id"`
	ConversationID int64        `json:"conversationId"`
	Sender         *UserSummary `json:"sender,omitempty"`
	Content        string       `json:"content"`
	Timestamp      time.Time    `json:"timestamp"`
}

// MessagePage is one page of history as returned by the messages endpoint.
// Messages arrive newest-first; a nil NextCursor means history is
// exhausted.
type MessagePage struct {
	Messages   []Message `json:"messages"`
	NextCursor *int64    `json:"nextCursor"`
}

// Less reports whether m orders before other under the (timestamp, id)
// ascending ordering used everywhere in the client.
func (m Message) Less(other Message) bool {
	if !m.Timestamp.Equal(other.Timestamp) {
		return m.Timestamp.Before(other.Timestamp)
	}
	return m.ID < other.ID
}
