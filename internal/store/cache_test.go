// ABOUTME: Tests for the SQLite message cache
// ABOUTME: Covers insert-or-ignore, recent-N ordering and deletion

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillswap/swapchat/internal/api"
)

func testCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func cachedMsg(id int64, at int64, content string) api.Message {
	return api.Message{
		ID:             id,
		ConversationID: 1,
		Sender:         &api.UserSummary{ID: 7, Name: "Noor"},
		Content:        content,
		Timestamp:      time.Unix(at, 0).UTC(),
	}
}

func TestCache_SaveAndRecentRoundTrip(t *testing.T) {
	c := testCache(t)

	require.NoError(t, c.SaveMessages(context.Background(), []api.Message{
		cachedMsg(2, 200, "second"),
		cachedMsg(1, 100, "first"),
		cachedMsg(3, 300, "third"),
	}))

	msgs, err := c.Recent(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 3)

	assert.Equal(t, int64(1), msgs[0].ID)
	assert.Equal(t, int64(3), msgs[2].ID)
	assert.Equal(t, "first", msgs[0].Content)
	require.NotNil(t, msgs[0].Sender)
	assert.Equal(t, "Noor", msgs[0].Sender.Name)
	assert.True(t, msgs[0].Timestamp.Equal(time.Unix(100, 0).UTC()))
}

func TestCache_RecentReturnsNewestWindowAscending(t *testing.T) {
	c := testCache(t)

	var batch []api.Message
	for i := int64(1); i <= 10; i++ {
		batch = append(batch, cachedMsg(i, 100*i, "m"))
	}
	require.NoError(t, c.SaveMessages(context.Background(), batch))

	msgs, err := c.Recent(context.Background(), 1, 3)
	require.NoError(t, err)
	require.Len(t, msgs, 3)

	assert.Equal(t, int64(8), msgs[0].ID)
	assert.Equal(t, int64(10), msgs[2].ID)
}

func TestCache_DuplicateInsertIsIgnored(t *testing.T) {
	c := testCache(t)

	require.NoError(t, c.SaveMessages(context.Background(), []api.Message{cachedMsg(1, 100, "original")}))
	require.NoError(t, c.SaveMessages(context.Background(), []api.Message{cachedMsg(1, 100, "rewrite attempt")}))

	msgs, err := c.Recent(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "original", msgs[0].Content)
}

func TestCache_SystemMessageWithoutSender(t *testing.T) {
	c := testCache(t)

	m := cachedMsg(1, 100, "conversation closed")
	m.Sender = nil
	require.NoError(t, c.SaveMessages(context.Background(), []api.Message{m}))

	msgs, err := c.Recent(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Nil(t, msgs[0].Sender)
}

func TestCache_ConversationsAreIsolated(t *testing.T) {
	c := testCache(t)

	other := cachedMsg(1, 100, "other conversation")
	other.ConversationID = 2
	require.NoError(t, c.SaveMessages(context.Background(), []api.Message{
		cachedMsg(1, 100, "mine"),
		other,
	}))

	msgs, err := c.Recent(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "mine", msgs[0].Content)
}

func TestCache_DeleteConversation(t *testing.T) {
	c := testCache(t)

	require.NoError(t, c.SaveMessages(context.Background(), []api.Message{cachedMsg(1, 100, "m")}))
	require.NoError(t, c.DeleteConversation(context.Background(), 1))

	msgs, err := c.Recent(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestCache_EmptySaveIsNoOp(t *testing.T) {
	c := testCache(t)
	assert.NoError(t, c.SaveMessages(context.Background(), nil))
}
