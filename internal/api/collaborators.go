// ABOUTME: Collaborator endpoints consumed as opaque resources
// ABOUTME: Profiles, categories and ranked member search feed the UI only

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Profile fetches a member's public profile. The conversation core never
// interprets the payload; it is passed through to the UI as-is.
func (c *Client) Profile(ctx context.Context, memberID int64) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodGet, fmt.Sprintf("/members/%d/profile", memberID), nil, nil)
}

// Categories fetches the skill category tree.
func (c *Client) Categories(ctx context.Context) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodGet, "/categories", nil, nil)
}

// SearchMembers runs the ranked member search with the given filter
// parameters. Returns the raw result list and the server's total count.
func (c *Client) SearchMembers(ctx context.Context, params url.Values) (json.RawMessage, int, error) {
	return c.doCounted(ctx, http.MethodGet, "/members/search", nil, params)
}
