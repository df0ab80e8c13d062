// ABOUTME: Viewport anchoring state machine: follow, read, compensate
// ABOUTME: Effects are returned as instructions for the view layer

package scroll

// State is the controller's position-tracking mode.
type State int

const (
	// StateInitializing waits for the first render of a newly opened
	// conversation.
	StateInitializing State = iota
	// StateFollowing keeps the viewport anchored to the newest message.
	StateFollowing
	// StateReading preserves the user's place; new messages do not move
	// the viewport.
	StateReading
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateFollowing:
		return "following"
	case StateReading:
		return "reading"
	default:
		return "unknown"
	}
}

// Default proximity thresholds, in abstract height units.
const (
	DefaultBottomThreshold = 3
	DefaultTopThreshold    = 2
)

// Metrics is a snapshot of the viewport's scroll geometry.
type Metrics struct {
	// Top is the offset of the viewport's top edge from the top of the
	// content.
	Top int
	// ContentHeight is the total height of the rendered content.
	ContentHeight int
	// ViewportHeight is the visible height.
	ViewportHeight int
}

// distanceFromBottom is how far the viewport's bottom edge sits above the
// content's bottom edge.
func (m Metrics) distanceFromBottom() int {
	d := m.ContentHeight - m.ViewportHeight - m.Top
	if d < 0 {
		return 0
	}
	return d
}

// Event is an input to the state machine. Concrete types:
// ConversationChanged, ContentRendered, Scrolled, MessageArrived,
// AppendRendered, PrependRendered, PrependFailed, HistoryExhausted.
type Event interface {
	scrollEvent()
}

// ConversationChanged resets the machine for a new conversation.
type ConversationChanged struct{}

// ContentRendered reports that initial content has settled after a
// conversation change.
type ContentRendered struct{ Metrics Metrics }

// Scrolled reports a scroll position change.
type Scrolled struct{ Metrics Metrics }

// MessageArrived reports that a new message was appended to the list.
type MessageArrived struct{}

// AppendRendered reports the content's total height after appended
// messages were rendered. While an older page is in flight this rebases
// the recorded pre-load height so bottom growth is excluded from the
// prepend compensation delta.
type AppendRendered struct{ ContentHeight int }

// PrependRendered reports that an older page was committed and the content
// now has the given total height.
type PrependRendered struct{ ContentHeight int }

// PrependFailed reports that a pagination load failed before committing.
type PrependFailed struct{}

// HistoryExhausted reports that no further older pages exist.
type HistoryExhausted struct{}

func (ConversationChanged) scrollEvent() {}
func (ContentRendered) scrollEvent()     {}
func (Scrolled) scrollEvent()            {}
func (MessageArrived) scrollEvent()      {}
func (AppendRendered) scrollEvent()      {}
func (PrependRendered) scrollEvent()     {}
func (PrependFailed) scrollEvent()       {}
func (HistoryExhausted) scrollEvent()    {}

// Effect is an instruction for the view layer. Concrete types:
// SnapToBottom, SmoothScrollToBottom, AdjustScrollBy, LoadOlder.
type Effect interface {
	scrollEffect()
}

// SnapToBottom jumps to the newest message without animation.
type SnapToBottom struct{}

// SmoothScrollToBottom scrolls to the newest message smoothly.
type SmoothScrollToBottom struct{}

// AdjustScrollBy moves the scroll offset by exactly Delta so prepended
// content does not shift what the user sees.
type AdjustScrollBy struct{ Delta int }

// LoadOlder asks the owner to fetch the next older history page.
type LoadOlder struct{}

func (SnapToBottom) scrollEffect()         {}
func (SmoothScrollToBottom) scrollEffect() {}
func (AdjustScrollBy) scrollEffect()       {}
func (LoadOlder) scrollEffect()            {}

// Controller is the anchoring state machine for one conversation view.
// Not safe for concurrent use.
type Controller struct {
	state           State
	bottomThreshold int
	topThreshold    int

	loading    bool
	hasMore    bool
	prevHeight int
}

// NewController creates a controller in Initializing. Thresholds <= 0 use
// the defaults.
func NewController(bottomThreshold, topThreshold int) *Controller {
	if bottomThreshold <= 0 {
		bottomThreshold = DefaultBottomThreshold
	}
	if topThreshold <= 0 {
		topThreshold = DefaultTopThreshold
	}
	return &Controller{
		state:           StateInitializing,
		bottomThreshold: bottomThreshold,
		topThreshold:    topThreshold,
		hasMore:         true,
	}
}

// State returns the current state.
func (c *Controller) State() State {
	return c.state
}

// Loading reports whether a pagination load is outstanding.
func (c *Controller) Loading() bool {
	return c.loading
}

// Apply advances the machine and returns the effects the view layer must
// execute, in order.
func (c *Controller) Apply(ev Event) []Effect {
	switch ev := ev.(type) {
	case ConversationChanged:
		c.state = StateInitializing
		c.loading = false
		c.hasMore = true
		c.prevHeight = 0
		return nil

	case ContentRendered:
		if c.state != StateInitializing {
			return nil
		}
		c.state = StateFollowing
		return []Effect{SnapToBottom{}}

	case MessageArrived:
		if c.state == StateFollowing {
			return []Effect{SmoothScrollToBottom{}}
		}
		return nil

	case AppendRendered:
		// Appended rows sit below the anchor and need no compensation;
		// fold them into the pre-load height so only prepended rows count.
		if c.loading {
			c.prevHeight = ev.ContentHeight
		}
		return nil

	case Scrolled:
		return c.applyScrolled(ev.Metrics)

	case PrependRendered:
		if !c.loading {
			return nil
		}
		delta := ev.ContentHeight - c.prevHeight
		c.loading = false
		return []Effect{AdjustScrollBy{Delta: delta}}

	case PrependFailed:
		c.loading = false
		return nil

	case HistoryExhausted:
		c.hasMore = false
		return nil

	default:
		return nil
	}
}

func (c *Controller) applyScrolled(m Metrics) []Effect {
	if c.state == StateInitializing {
		return nil
	}

	d := m.distanceFromBottom()
	switch c.state {
	case StateFollowing:
		if d > c.bottomThreshold {
			c.state = StateReading
		}
	case StateReading:
		if d <= c.bottomThreshold {
			c.state = StateFollowing
		}
	}

	if m.Top <= c.topThreshold && !c.loading && c.hasMore {
		c.loading = true
		c.prevHeight = m.ContentHeight
		return []Effect{LoadOlder{}}
	}
	return nil
}
