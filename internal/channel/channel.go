// ABOUTME: WebSocket connection for conversation events with room join/leave
// ABOUTME: Handle owns one lazily dialed connection reused across conversations

package channel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"github.com/skillswap/swapchat/internal/auth"
)

// ErrConnClosed is returned for writes on a dead connection.
var ErrConnClosed = errors.New("channel connection closed")

// marshalData encodes an outbound payload as a raw frame body.
func marshalData(data any) (json.RawMessage, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encoding event data: %w", err)
	}
	return payload, nil
}

// eventBufferSize is the inbound event buffer. Matches the per-subscriber
// buffering used on the server side (64 events).
const eventBufferSize = 64

// Conn is one live channel connection. Inbound events are decoded and
// delivered on Events; the channel is closed when the connection dies.
type Conn struct {
	ws     *websocket.Conn
	logger *slog.Logger
	events chan Event

	writeMu   sync.Mutex
	closeOnce sync.Once
	closed    atomic.Bool

	errMu   sync.Mutex
	readErr error
}

// Dial opens a channel connection carrying the current access token. The
// token is read at dial time, so a connection opened after a renewal is
// authorized by the fresh credential.
func Dial(ctx context.Context, wsURL string, tokens *auth.Store, logger *slog.Logger) (*Conn, error) {
	if logger == nil {
		logger = slog.Default()
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+tokens.Access())

	ws, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dialing channel: %w (status %d)", err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dialing channel: %w", err)
	}

	c := &Conn{
		ws:     ws,
		logger: logger.With("component", "channel"),
		events: make(chan Event, eventBufferSize),
	}
	go c.readLoop()
	return c, nil
}

// Events returns the inbound event stream. The channel is closed when the
// connection terminates; Err reports why.
func (c *Conn) Events() <-chan Event {
	return c.events
}

// Err returns the read error that terminated the connection, if any.
// Meaningful only after Events is closed.
func (c *Conn) Err() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.readErr
}

// Closed reports whether the connection is no longer usable.
func (c *Conn) Closed() bool {
	return c.closed.Load()
}

// readLoop decodes inbound frames into typed events until the connection
// fails or is closed.
func (c *Conn) readLoop() {
	defer func() {
		c.closed.Store(true)
		close(c.events)
	}()

	for {
		var f frame
		if err := c.ws.ReadJSON(&f); err != nil {
			if !c.closed.Load() {
				c.errMu.Lock()
				c.readErr = err
				c.errMu.Unlock()
				c.logger.Warn("channel read failed", "error", err)
			}
			return
		}

		ev, err := decodeEvent(f)
		if err != nil {
			c.logger.Warn("dropping undecodable event", "event", f.Event, "error", err)
			continue
		}

		select {
		case c.events <- ev:
		default:
			// Consumer fell behind; drop rather than stall the read loop.
			c.logger.Warn("dropping event for slow consumer", "event", f.Event)
		}
	}
}

// roomPayload addresses a conversation room.
type roomPayload struct {
	ConversationID int64 `json:"conversationId"`
}

// sendPayload is the body of a send-message event.
type sendPayload struct {
	ConversationID int64  `json:"conversationId"`
	Content        string `json:"content"`
}

// Join subscribes to a conversation's room.
func (c *Conn) Join(conversationID int64) error {
	return c.writeFrame("join", roomPayload{ConversationID: conversationID})
}

// Leave unsubscribes from a conversation's room.
func (c *Conn) Leave(conversationID int64) error {
	return c.writeFrame("leave", roomPayload{ConversationID: conversationID})
}

// SendMessage sends a message into a conversation.
func (c *Conn) SendMessage(conversationID int64, content string) error {
	return c.writeFrame("send-message", sendPayload{ConversationID: conversationID, Content: content})
}

// CloseConversation asks the server to close a conversation.
func (c *Conn) CloseConversation(conversationID int64) error {
	return c.writeFrame("close-conversation", roomPayload{ConversationID: conversationID})
}

// writeFrame serializes writes; gorilla/websocket allows one writer at a
// time.
func (c *Conn) writeFrame(event string, data any) error {
	if c.closed.Load() {
		return ErrConnClosed
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	payload, err := marshalData(data)
	if err != nil {
		return err
	}
	if err := c.ws.WriteJSON(frame{Event: event, Data: payload}); err != nil {
		return fmt.Errorf("writing %s: %w", event, err)
	}
	return nil
}

// Close tears the connection down. Safe to call more than once.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.writeMu.Lock()
		_ = c.ws.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.writeMu.Unlock()
		err = c.ws.Close()
	})
	return err
}

// Handle is the owned, lazily constructed connection resource injected
// into the coordinator. Connect dials on first use and reuses the live
// connection afterwards; after a disconnect the next Connect redials with
// current credentials. Room membership is not restored automatically.
type Handle struct {
	url    string
	tokens *auth.Store
	logger *slog.Logger

	mu   sync.Mutex
	conn *Conn
}

// NewHandle creates a handle for the given channel URL.
func NewHandle(wsURL string, tokens *auth.Store, logger *slog.Logger) *Handle {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handle{url: wsURL, tokens: tokens, logger: logger}
}

// Connect returns the live connection, dialing if there is none or the
// previous one died.
func (h *Handle) Connect(ctx context.Context) (*Conn, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.conn != nil && !h.conn.Closed() {
		return h.conn, nil
	}

	conn, err := Dial(ctx, h.url, h.tokens, h.logger)
	if err != nil {
		return nil, err
	}
	h.conn = conn
	return conn, nil
}

// Join subscribes to a conversation's room, dialing first if needed.
func (h *Handle) Join(ctx context.Context, conversationID int64) error {
	conn, err := h.Connect(ctx)
	if err != nil {
		return err
	}
	return conn.Join(conversationID)
}

// Leave unsubscribes from a conversation's room.
func (h *Handle) Leave(ctx context.Context, conversationID int64) error {
	conn, err := h.Connect(ctx)
	if err != nil {
		return err
	}
	return conn.Leave(conversationID)
}

// SendMessage sends a message into a conversation.
func (h *Handle) SendMessage(ctx context.Context, conversationID int64, content string) error {
	conn, err := h.Connect(ctx)
	if err != nil {
		return err
	}
	return conn.SendMessage(conversationID, content)
}

// CloseConversation asks the server to close a conversation.
func (h *Handle) CloseConversation(ctx context.Context, conversationID int64) error {
	conn, err := h.Connect(ctx)
	if err != nil {
		return err
	}
	return conn.CloseConversation(conversationID)
}

// Close tears down the current connection, if any. Tied to application
// shutdown.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.conn == nil {
		return nil
	}
	err := h.conn.Close()
	h.conn = nil
	return err
}
