// ABOUTME: Ordered, deduplicated in-memory message list for one conversation
// ABOUTME: Sorted ascending by (timestamp, id); first write wins on duplicates

package history

import (
	"sort"

	"github.com/skillswap/swapchat/internal/api"
)

// List holds a conversation's merged messages. Not safe for concurrent
// use; the coordinator serializes access.
type List struct {
	msgs []api.Message
	ids  map[int64]struct{}
}

// NewList creates an empty list.
func NewList() *List {
	return &List{ids: make(map[int64]struct{})}
}

// Insert merges messages into the list, keeping it sorted and unique by
// id. Already-present ids are skipped, so the first copy to arrive (the
// live push, when it races a page) keeps its place. Returns the number of
// messages actually added.
func (l *List) Insert(msgs ...api.Message) int {
	added := 0
	for _, m := range msgs {
		if _, ok := l.ids[m.ID]; ok {
			continue
		}
		l.ids[m.ID] = struct{}{}

		i := sort.Search(len(l.msgs), func(i int) bool {
			return m.Less(l.msgs[i])
		})
		l.msgs = append(l.msgs, api.Message{})
		copy(l.msgs[i+1:], l.msgs[i:])
		l.msgs[i] = m
		added++
	}
	return added
}

// Messages returns the ordered messages. The returned slice is shared;
// callers must not mutate it.
func (l *List) Messages() []api.Message {
	return l.msgs
}

// Len returns the number of messages held.
func (l *List) Len() int {
	return len(l.msgs)
}

// Contains reports whether a message id is present.
func (l *List) Contains(id int64) bool {
	_, ok := l.ids[id]
	return ok
}

// Oldest returns the first message and true, or false when empty.
func (l *List) Oldest() (api.Message, bool) {
	if len(l.msgs) == 0 {
		return api.Message{}, false
	}
	return l.msgs[0], true
}

// Reset empties the list for a conversation switch.
func (l *List) Reset() {
	l.msgs = nil
	l.ids = make(map[int64]struct{})
}
