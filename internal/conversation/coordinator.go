// ABOUTME: Session coordinator for the currently open conversation
// ABOUTME: Merges live pushes with paged history under one generation guard

package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/skillswap/swapchat/internal/api"
	"github.com/skillswap/swapchat/internal/channel"
	"github.com/skillswap/swapchat/internal/history"
	"github.com/skillswap/swapchat/internal/scroll"
)

// Coordinator errors
var (
	ErrNoConversation     = errors.New("no conversation open")
	ErrConversationClosed = errors.New("conversation is closed")
)

// API is the slice of the request client the coordinator needs.
type API interface {
	Messages(ctx context.Context, conversationID int64, limit int, cursor *int64) (*api.MessagePage, error)
	DeleteConversation(ctx context.Context, conversationID int64) error
}

// RoomChannel is the slice of the event channel the coordinator drives.
// Implemented by *channel.Handle, which redials a dead connection before
// each room operation.
type RoomChannel interface {
	Join(ctx context.Context, conversationID int64) error
	Leave(ctx context.Context, conversationID int64) error
	SendMessage(ctx context.Context, conversationID int64, content string) error
	CloseConversation(ctx context.Context, conversationID int64) error
}

// MessageCache seeds a reopened conversation and persists merged
// messages. Optional; a nil cache disables seeding.
type MessageCache interface {
	SaveMessages(ctx context.Context, msgs []api.Message) error
	Recent(ctx context.Context, conversationID int64, limit int) ([]api.Message, error)
	DeleteConversation(ctx context.Context, conversationID int64) error
}

// View is a snapshot of coordinator state for rendering.
type View struct {
	Conversation *api.Conversation
	Messages     []api.Message
	HasMore      bool
	AccessDenied bool
	Validation   string
}

// Coordinator glues the conversation components together for the one
// conversation open in the UI. Safe for concurrent use.
type Coordinator struct {
	api      API
	rooms    RoomChannel
	cache    MessageCache
	logger   *slog.Logger
	pageSize int

	mu         sync.Mutex
	conv       *api.Conversation
	generation uint64
	list       *history.List
	pager      *history.Pager
	scroll     *scroll.Controller
	loading    bool

	accessDenied bool
	validation   string
}

// NewCoordinator creates a coordinator. The scroll controller and channel
// handle are injected, owned resources; cache may be nil.
func NewCoordinator(apiClient API, rooms RoomChannel, cache MessageCache, ctl *scroll.Controller, pageSize int, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	if pageSize <= 0 {
		pageSize = history.DefaultPageSize
	}
	return &Coordinator{
		api:      apiClient,
		rooms:    rooms,
		cache:    cache,
		logger:   logger.With("component", "coordinator"),
		pageSize: pageSize,
		list:     history.NewList(),
		scroll:   ctl,
	}
}

// Open switches the coordinator to a conversation: leave the previous
// room, join the new one, reset cursor and messages, seed from the cache,
// and fetch the first history page. Reopening the current conversation is
// a no-op.
func (c *Coordinator) Open(ctx context.Context, conv api.Conversation) error {
	c.mu.Lock()

	if c.conv != nil && c.conv.ID == conv.ID {
		c.mu.Unlock()
		return nil
	}

	// Leave is dispatched before join; room switches are sequenced
	// client-side, not on server acks.
	if c.conv != nil {
		if err := c.rooms.Leave(ctx, c.conv.ID); err != nil {
			c.logger.Warn("leaving previous room failed", "conversation_id", c.conv.ID, "error", err)
		}
	}
	if err := c.rooms.Join(ctx, conv.ID); err != nil {
		c.mu.Unlock()
		return fmt.Errorf("joining room: %w", err)
	}

	opened := conv
	c.conv = &opened
	c.generation++
	c.list = history.NewList()
	c.pager = history.NewPager(c.api, conv.ID, c.pageSize, c.logger)
	c.loading = false
	c.accessDenied = false
	c.validation = ""
	c.scroll.Apply(scroll.ConversationChanged{})

	if c.cache != nil {
		if cached, err := c.cache.Recent(ctx, conv.ID, c.pageSize); err != nil {
			c.logger.Warn("cache read failed", "conversation_id", conv.ID, "error", err)
		} else {
			c.list.Insert(cached...)
		}
	}

	c.logger.Debug("conversation opened",
		"conversation_id", conv.ID,
		"generation", c.generation,
		"cached", c.list.Len())
	c.mu.Unlock()

	return c.LoadOlder(ctx)
}

// LoadOlder fetches the next older page and merges it. Responses that
// complete after a conversation switch are discarded by the generation
// guard. Concurrent calls beyond the first are no-ops.
func (c *Coordinator) LoadOlder(ctx context.Context) error {
	c.mu.Lock()
	if c.conv == nil {
		c.mu.Unlock()
		return ErrNoConversation
	}
	if c.loading || !c.pager.HasMore() {
		c.mu.Unlock()
		return nil
	}
	c.loading = true
	gen := c.generation
	pager := c.pager
	convID := c.conv.ID
	c.mu.Unlock()

	msgs, err := pager.LoadOlder(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation != gen {
		// The conversation changed while the fetch was in flight; its
		// response must not touch the new conversation's state.
		c.logger.Debug("discarding stale page", "conversation_id", convID, "generation", gen)
		return nil
	}
	c.loading = false

	if err != nil {
		return err
	}

	c.list.Insert(msgs...)
	if !pager.HasMore() {
		c.scroll.Apply(scroll.HistoryExhausted{})
	}
	c.saveToCache(ctx, msgs)
	return nil
}

// HandleEvent applies a channel event and returns any scroll effects the
// view layer must execute. Events for other conversations are dropped.
func (c *Coordinator) HandleEvent(ev channel.Event) []scroll.Effect {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch ev := ev.(type) {
	case channel.Joined:
		c.logger.Debug("room joined", "conversation_id", ev.ConversationID)
		return nil

	case channel.NewMessage:
		if c.conv == nil || ev.ConversationID != c.conv.ID {
			return nil
		}
		if c.list.Insert(ev.Message) == 0 {
			return nil
		}
		c.conv.LastMessage = &api.MessageSummary{
			Content:   ev.Message.Content,
			Timestamp: ev.Message.Timestamp,
		}
		c.saveToCache(context.Background(), []api.Message{ev.Message})
		return c.scroll.Apply(scroll.MessageArrived{})

	case channel.ConversationUpdated:
		if c.conv == nil || ev.ConversationID != c.conv.ID {
			return nil
		}
		last := ev.LastMessage
		c.conv.LastMessage = &last
		return nil

	case channel.ConversationClosed:
		if c.conv == nil || ev.ConversationID != c.conv.ID {
			return nil
		}
		c.conv.Status = api.ConversationClosed
		c.logger.Info("conversation closed", "conversation_id", ev.ConversationID)
		return nil

	case *channel.ChannelError:
		switch ev.Code {
		case channel.CodeForbidden:
			c.accessDenied = true
		case channel.CodeValidation:
			c.validation = ev.Message
		default:
			c.logger.Warn("unhandled channel error", "code", ev.Code, "message", ev.Message)
		}
		return nil

	default:
		// new-conversation and anything else belongs to the conversation
		// list, not the open-conversation session.
		return nil
	}
}

// OnRendered reports that content settled after a conversation change.
func (c *Coordinator) OnRendered(m scroll.Metrics) []scroll.Effect {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scroll.Apply(scroll.ContentRendered{Metrics: m})
}

// OnScrolled reports a scroll position change. A returned LoadOlder
// effect means the caller should invoke LoadOlder and, once the taller
// content is rendered, OnPrependRendered.
func (c *Coordinator) OnScrolled(m scroll.Metrics) []scroll.Effect {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scroll.Apply(scroll.Scrolled{Metrics: m})
}

// OnAppendRendered reports the content height after appended live
// messages were rendered, keeping prepend compensation exact when a page
// load and a live push overlap.
func (c *Coordinator) OnAppendRendered(contentHeight int) []scroll.Effect {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scroll.Apply(scroll.AppendRendered{ContentHeight: contentHeight})
}

// OnPrependRendered reports the content height after an older page was
// committed; the returned adjustment pins the viewport in place.
func (c *Coordinator) OnPrependRendered(contentHeight int) []scroll.Effect {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scroll.Apply(scroll.PrependRendered{ContentHeight: contentHeight})
}

// OnLoadFailed reports that a triggered pagination load failed, clearing
// the in-flight mark so the user can retry.
func (c *Coordinator) OnLoadFailed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scroll.Apply(scroll.PrependFailed{})
}

// Send sends a message into the open conversation via the channel.
func (c *Coordinator) Send(ctx context.Context, content string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conv == nil {
		return ErrNoConversation
	}
	if c.conv.Status == api.ConversationClosed {
		return ErrConversationClosed
	}
	return c.rooms.SendMessage(ctx, c.conv.ID, content)
}

// CloseConversation asks the server to close the open conversation.
func (c *Coordinator) CloseConversation(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conv == nil {
		return ErrNoConversation
	}
	return c.rooms.CloseConversation(ctx, c.conv.ID)
}

// Rejoin re-subscribes to the open conversation's room. Called after the
// channel connection is re-established, since the server drops room
// membership with the connection. A no-op when nothing is open.
func (c *Coordinator) Rejoin(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conv == nil {
		return nil
	}
	c.logger.Debug("rejoining room", "conversation_id", c.conv.ID)
	return c.rooms.Join(ctx, c.conv.ID)
}

// Delete leaves the room, deletes the conversation server-side and
// discards all per-conversation state including the local cache.
func (c *Coordinator) Delete(ctx context.Context) error {
	c.mu.Lock()
	if c.conv == nil {
		c.mu.Unlock()
		return ErrNoConversation
	}
	convID := c.conv.ID

	if err := c.rooms.Leave(ctx, convID); err != nil {
		c.logger.Warn("leaving room on delete failed", "conversation_id", convID, "error", err)
	}
	c.conv = nil
	c.generation++
	c.list = history.NewList()
	c.pager = nil
	c.loading = false
	c.mu.Unlock()

	if err := c.api.DeleteConversation(ctx, convID); err != nil {
		return err
	}
	if c.cache != nil {
		if err := c.cache.DeleteConversation(ctx, convID); err != nil {
			c.logger.Warn("cache delete failed", "conversation_id", convID, "error", err)
		}
	}
	return nil
}

// Snapshot returns the current view state for rendering.
func (c *Coordinator) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		AccessDenied: c.accessDenied,
		Validation:   c.validation,
	}
	if c.conv != nil {
		conv := *c.conv
		v.Conversation = &conv
		v.HasMore = c.pager != nil && c.pager.HasMore()
		v.Messages = append([]api.Message(nil), c.list.Messages()...)
	}
	return v
}

// ClearValidation drops a surfaced field-level message after the UI has
// shown it.
func (c *Coordinator) ClearValidation() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.validation = ""
}

func (c *Coordinator) saveToCache(ctx context.Context, msgs []api.Message) {
	if c.cache == nil || len(msgs) == 0 {
		return
	}
	if err := c.cache.SaveMessages(ctx, msgs); err != nil {
		c.logger.Warn("cache write failed", "error", err)
	}
}
