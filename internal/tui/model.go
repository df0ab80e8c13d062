// ABOUTME: Bubble Tea model for swapchat: conversation list and chat view
// ABOUTME: The chat viewport executes effect instructions from the coordinator

package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/skillswap/swapchat/internal/api"
	"github.com/skillswap/swapchat/internal/channel"
	"github.com/skillswap/swapchat/internal/conversation"
	"github.com/skillswap/swapchat/internal/scroll"
)

var _ tea.Model = Model{}

type viewMode int

const (
	modeList viewMode = iota
	modeChat
)

// Model is the Bubble Tea model for the swapchat TUI.
type Model struct {
	// Input is the message composer. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable transcript area. Exported for test access.
	Viewport viewport.Model

	ctx    context.Context
	coord  *conversation.Coordinator
	lister ConversationLister
	handle *channel.Handle
	conn   *channel.Conn
	styles Styles
	selfID int64

	mode          viewMode
	conversations []api.Conversation
	selected      int
	opening       bool

	status string
	err    error
	ready  bool
	width  int
	height int
}

// New creates the TUI model. selfID is the logged-in member's id, used to
// style the member's own messages. The channel handle is dialed from Init
// and redialed whenever the event stream dies.
func New(ctx context.Context, coord *conversation.Coordinator, lister ConversationLister, handle *channel.Handle, selfID int64) Model {
	ti := textinput.New()
	ti.Placeholder = "Type a message..."
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 0

	return Model{
		Input:  ti,
		ctx:    ctx,
		coord:  coord,
		lister: lister,
		handle: handle,
		styles: NewStyles(),
		selfID: selfID,
	}
}

// reconnectDelay paces redial attempts when the platform is unreachable.
const reconnectDelay = 2 * time.Second

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		listConversations(m.ctx, m.lister),
		connectChannel(m.ctx, m.handle),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ConversationsMsg:
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.err = nil
		m.conversations = msg.Conversations
		if m.selected >= len(m.conversations) {
			m.selected = 0
		}
		return m, nil

	case OpenedMsg:
		m.opening = false
		if msg.Err != nil {
			m.err = msg.Err
			m.mode = modeList
			return m, nil
		}
		m.err = nil
		m.mode = modeChat
		m = m.renderChat()
		return m.applyEffects(m.coord.OnRendered(m.metrics()))

	case OlderLoadedMsg:
		if msg.Err != nil {
			m.coord.OnLoadFailed()
			m.status = "Loading older messages failed"
			return m, nil
		}
		m = m.renderChat()
		return m.applyEffects(m.coord.OnPrependRendered(m.Viewport.TotalLineCount()))

	case ChannelEventMsg:
		next, cmd := m.handleChannelEvent(msg.Event)
		return next, tea.Batch(cmd, listenForEvent(m.conn))

	case ConnectedMsg:
		if msg.Err != nil {
			m.status = "Connection failed, retrying..."
			return m, tea.Tick(reconnectDelay, func(time.Time) tea.Msg {
				return reconnectTickMsg{}
			})
		}
		m.conn = msg.Conn
		m.status = ""
		return m, tea.Batch(
			listenForEvent(msg.Conn),
			rejoinRoom(m.ctx, m.coord),
		)

	case reconnectTickMsg:
		return m, connectChannel(m.ctx, m.handle)

	case ChannelDownMsg:
		if msg.Err != nil {
			m.status = "Connection lost, reconnecting..."
		} else {
			m.status = "Disconnected, reconnecting..."
		}
		return m, connectChannel(m.ctx, m.handle)

	case RejoinedMsg:
		if msg.Err != nil {
			m.status = "Rejoining conversation failed"
		}
		return m, nil
	}

	return m.forwardToComponents(msg)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Connecting..."
	}

	var b strings.Builder
	b.WriteString(m.headerLine())
	b.WriteString("\n")

	if m.mode == modeList {
		b.WriteString(renderConversationList(m.conversations, m.selected, m.styles))
	} else {
		b.WriteString(m.Viewport.View())
		b.WriteString("\n")
		b.WriteString(m.Input.View())
	}

	b.WriteString("\n")
	b.WriteString(m.statusLine())
	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height

	headerH, statusH, inputH, gaps := 1, 1, 1, 2
	vpHeight := msg.Height - headerH - statusH - inputH - gaps
	if vpHeight < 1 {
		vpHeight = 1
	}

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
	}
	m.Input.Width = msg.Width - 2
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.mode == modeList {
		return m.handleListKey(msg)
	}
	return m.handleChatKey(msg)
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "r":
		return m, listConversations(m.ctx, m.lister)
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
		return m, nil
	case "down", "j":
		if m.selected < len(m.conversations)-1 {
			m.selected++
		}
		return m, nil
	case "enter":
		if m.opening || m.selected >= len(m.conversations) {
			return m, nil
		}
		m.opening = true
		m.status = ""
		return m, openConversation(m.ctx, m.coord, m.conversations[m.selected])
	}
	return m, nil
}

func (m Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeList
		m.status = ""
		return m, listConversations(m.ctx, m.lister)

	case tea.KeyEnter:
		text := strings.TrimSpace(m.Input.Value())
		if text == "" {
			return m, nil
		}
		if err := m.coord.Send(m.ctx, text); err != nil {
			if errors.Is(err, conversation.ErrConversationClosed) {
				m.status = "This conversation is closed"
			} else {
				m.err = err
			}
			return m, nil
		}
		m.Input.SetValue("")
		m.status = ""
		return m, nil
	}

	// Character keys go to the composer; everything else scrolls the
	// viewport, then the new position is reported to the coordinator.
	if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace || msg.Type == tea.KeyBackspace {
		var cmd tea.Cmd
		m.Input, cmd = m.Input.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	next, effectCmd := m.applyEffects(m.coord.OnScrolled(m.metrics()))
	return next, tea.Batch(cmd, effectCmd)
}

func (m Model) handleChannelEvent(ev channel.Event) (Model, tea.Cmd) {
	effects := m.coord.HandleEvent(ev)

	switch ev := ev.(type) {
	case channel.NewConversation:
		m.conversations = append(m.conversations, ev.Conversation)
	case channel.ConversationUpdated:
		for i := range m.conversations {
			if m.conversations[i].ID == ev.ConversationID {
				last := ev.LastMessage
				m.conversations[i].LastMessage = &last
			}
		}
	case channel.ConversationClosed:
		for i := range m.conversations {
			if m.conversations[i].ID == ev.ConversationID {
				m.conversations[i].Status = api.ConversationClosed
			}
		}
	}

	if m.mode == modeChat {
		m = m.renderChat()
		m.coord.OnAppendRendered(m.Viewport.TotalLineCount())
	}
	return m.applyEffects(effects)
}

// applyEffects executes the coordinator's scroll instructions against the
// viewport. LoadOlder becomes a command; position effects apply in place.
func (m Model) applyEffects(effects []scroll.Effect) (Model, tea.Cmd) {
	var cmds []tea.Cmd
	for _, ef := range effects {
		switch ef := ef.(type) {
		case scroll.SnapToBottom, scroll.SmoothScrollToBottom:
			m.Viewport.GotoBottom()
		case scroll.AdjustScrollBy:
			m.Viewport.SetYOffset(m.Viewport.YOffset + ef.Delta)
		case scroll.LoadOlder:
			cmds = append(cmds, loadOlder(m.ctx, m.coord))
		}
	}
	return m, tea.Batch(cmds...)
}

// metrics snapshots the viewport geometry in rows.
func (m Model) metrics() scroll.Metrics {
	return scroll.Metrics{
		Top:            m.Viewport.YOffset,
		ContentHeight:  m.Viewport.TotalLineCount(),
		ViewportHeight: m.Viewport.Height,
	}
}

// renderChat refreshes the viewport content from the coordinator state.
func (m Model) renderChat() Model {
	v := m.coord.Snapshot()
	m.Viewport.SetContent(renderMessages(v.Messages, m.selfID, m.Viewport.Width, m.styles))
	return m
}

func (m Model) forwardToComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	if m.mode == modeChat {
		m.Viewport, cmd = m.Viewport.Update(msg)
		cmds = append(cmds, cmd)
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) headerLine() string {
	if m.mode == modeList {
		return m.styles.Title.Render("swapchat: conversations")
	}
	v := m.coord.Snapshot()
	if v.Conversation == nil {
		return m.styles.Title.Render("swapchat")
	}
	title := v.Conversation.Title
	if title == "" {
		title = v.Conversation.Participant.Name
	}
	header := m.styles.Title.Render(title)
	if v.Conversation.Status == api.ConversationClosed {
		header += " " + m.styles.ClosedTag.Render("[closed]")
	}
	return header
}

func (m Model) statusLine() string {
	if m.err != nil {
		return m.styles.Error.Render(fmt.Sprintf("Error: %v", m.err))
	}

	v := m.coord.Snapshot()
	switch {
	case v.AccessDenied:
		return m.styles.Error.Render("Access to this conversation was denied")
	case v.Validation != "":
		return m.styles.Error.Render(v.Validation)
	case m.status != "":
		return m.styles.StatusLine.Render(m.status)
	case m.opening:
		return m.styles.StatusLine.Render("Opening...")
	case m.mode == modeList:
		return m.styles.StatusLine.Render("Enter to open, r to refresh, q to quit")
	default:
		return m.styles.StatusLine.Render("Enter to send, Esc for list, Ctrl+C to quit")
	}
}
