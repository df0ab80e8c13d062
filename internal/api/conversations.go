// ABOUTME: Conversation endpoints: listing, history pagination, deletion
// ABOUTME: History pages are fetched newest-first with an opaque cursor

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// ListConversations returns the member's active conversations.
func (c *Client) ListConversations(ctx context.Context) ([]Conversation, error) {
	raw, err := c.Do(ctx, http.MethodGet, "/conversations", nil, nil)
	if err != nil {
		return nil, err
	}

	var convs []Conversation
	if err := json.Unmarshal(raw, &convs); err != nil {
		return nil, fmt.Errorf("decoding conversations: %w", err)
	}
	return convs, nil
}

// Messages fetches one page of a conversation's history. A nil cursor
// requests the newest page; the returned NextCursor is nil when no older
// messages exist. The server orders each page newest-first.
func (c *Client) Messages(ctx context.Context, conversationID int64, limit int, cursor *int64) (*MessagePage, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	if cursor != nil {
		query.Set("cursor", strconv.FormatInt(*cursor, 10))
	}

	path := fmt.Sprintf("/conversations/%d/messages", conversationID)
	raw, err := c.Do(ctx, http.MethodGet, path, nil, query)
	if err != nil {
		return nil, err
	}

	var page MessagePage
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, fmt.Errorf("decoding message page: %w", err)
	}
	return &page, nil
}

// DeleteConversation removes a conversation from the member's active set.
func (c *Client) DeleteConversation(ctx context.Context, conversationID int64) error {
	path := fmt.Sprintf("/conversations/%d", conversationID)
	_, err := c.Do(ctx, http.MethodDelete, path, nil, nil)
	return err
}
