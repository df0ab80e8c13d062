// ABOUTME: Cursor-based backward pagination over a conversation's history
// ABOUTME: Normalizes newest-first pages to ascending order before merging

package history

import (
	"context"
	"log/slog"
	"sort"

	"github.com/skillswap/swapchat/internal/api"
)

// DefaultPageSize is the bounded page size requested per load.
const DefaultPageSize = 20

// MessageSource fetches one page of history. Implemented by *api.Client.
type MessageSource interface {
	Messages(ctx context.Context, conversationID int64, limit int, cursor *int64) (*api.MessagePage, error)
}

// Pager pages one conversation's history backward. Create a fresh pager
// per open conversation; it is not safe for concurrent use.
type Pager struct {
	source         MessageSource
	logger         *slog.Logger
	conversationID int64
	limit          int

	cursor    *int64
	primed    bool
	exhausted bool
}

// NewPager creates a pager for a conversation. A limit <= 0 uses
// DefaultPageSize. Pass nil logger for default.
func NewPager(source MessageSource, conversationID int64, limit int, logger *slog.Logger) *Pager {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pager{
		source:         source,
		logger:         logger.With("component", "pager", "conversation_id", conversationID),
		conversationID: conversationID,
		limit:          limit,
	}
}

// LoadOlder fetches the next older page and returns it in ascending
// order. Once history is exhausted it returns nil without a request. On
// failure the cursor is left untouched so a retry reuses the boundary.
func (p *Pager) LoadOlder(ctx context.Context) ([]api.Message, error) {
	if p.exhausted {
		return nil, nil
	}

	page, err := p.source.Messages(ctx, p.conversationID, p.limit, p.cursor)
	if err != nil {
		return nil, err
	}

	p.cursor = page.NextCursor
	p.primed = true
	if page.NextCursor == nil {
		p.exhausted = true
		p.logger.Debug("history exhausted", "page_size", len(page.Messages))
	}

	msgs := make([]api.Message, len(page.Messages))
	copy(msgs, page.Messages)
	sort.Slice(msgs, func(i, j int) bool {
		return msgs[i].Less(msgs[j])
	})
	return msgs, nil
}

// HasMore reports whether an older page is known or assumed to exist.
// Before the first load it is optimistically true.
func (p *Pager) HasMore() bool {
	return !p.exhausted
}

// Primed reports whether the initial page has been loaded.
func (p *Pager) Primed() bool {
	return p.primed
}
