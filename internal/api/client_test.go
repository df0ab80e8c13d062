// ABOUTME: Tests for the authenticated request client and renewal cycle
// ABOUTME: Covers single renewal under contention and exactly-once retry

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillswap/swapchat/internal/auth"
)

func writeEnvelope(w http.ResponseWriter, status int, data any, errMsg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	env := map[string]any{"success": errMsg == ""}
	if data != nil {
		env["data"] = data
	}
	if errMsg != "" {
		env["error"] = errMsg
	}
	_ = json.NewEncoder(w).Encode(env)
}

// testServer wires a mux with a renewal endpoint and counts renewal calls.
type testServer struct {
	*httptest.Server
	mux      *http.ServeMux
	renewals atomic.Int64

	// renewDelay lets contention tests hold the renewal open so concurrent
	// 401 discoverers pile up on the shared handle.
	renewDelay time.Duration
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{mux: http.NewServeMux()}
	ts.mux.HandleFunc("/auth/renew", func(w http.ResponseWriter, r *http.Request) {
		ts.renewals.Add(1)
		if ts.renewDelay > 0 {
			time.Sleep(ts.renewDelay)
		}
		var body struct {
			RefreshToken string `json:"refreshToken"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.RefreshToken != "refresh-ok" {
			writeEnvelope(w, http.StatusUnauthorized, nil, "invalid refresh token")
			return
		}
		writeEnvelope(w, http.StatusOK, map[string]string{
			"accessToken":  "access-new",
			"refreshToken": "refresh-new",
		}, "")
	})
	ts.Server = httptest.NewServer(ts.mux)
	t.Cleanup(ts.Close)
	return ts
}

func TestClient_AttachesBearerToken(t *testing.T) {
	ts := newTestServer(t)
	var gotAuth string
	ts.mux.HandleFunc("/conversations", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeEnvelope(w, http.StatusOK, []Conversation{}, "")
	})

	store := auth.NewStore(auth.Tokens{Access: "access-1", Refresh: "refresh-ok"})
	c := New(ts.URL, store, nil)

	_, err := c.ListConversations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer access-1", gotAuth)
}

func TestClient_NoTokenFailsFast(t *testing.T) {
	ts := newTestServer(t)
	c := New(ts.URL, auth.NewStore(auth.Tokens{}), nil)

	_, err := c.ListConversations(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestClient_RenewsAndRetriesOnUnauthorized(t *testing.T) {
	ts := newTestServer(t)
	var attempts atomic.Int64
	ts.mux.HandleFunc("/conversations", func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		if r.Header.Get("Authorization") != "Bearer access-new" {
			writeEnvelope(w, http.StatusUnauthorized, nil, "token expired")
			return
		}
		writeEnvelope(w, http.StatusOK, []Conversation{{ID: 7, Title: "Guitar for Go lessons"}}, "")
	})

	store := auth.NewStore(auth.Tokens{Access: "access-stale", Refresh: "refresh-ok"})
	c := New(ts.URL, store, nil)

	convs, err := c.ListConversations(context.Background())
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, int64(7), convs[0].ID)

	assert.Equal(t, int64(2), attempts.Load(), "original attempt plus exactly one retry")
	assert.Equal(t, int64(1), ts.renewals.Load())
	assert.Equal(t, "refresh-new", store.Tokens().Refresh, "renewal swaps both tokens")
}

func TestClient_RetryIsExactlyOnce(t *testing.T) {
	ts := newTestServer(t)
	var attempts atomic.Int64
	ts.mux.HandleFunc("/conversations", func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		writeEnvelope(w, http.StatusUnauthorized, nil, "token expired")
	})

	store := auth.NewStore(auth.Tokens{Access: "access-stale", Refresh: "refresh-ok"})
	c := New(ts.URL, store, nil)

	_, err := c.ListConversations(context.Background())
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, int64(2), attempts.Load(), "never a third attempt")
	assert.Equal(t, int64(1), ts.renewals.Load())
	assert.Empty(t, store.Access(), "unrecoverable session clears credentials")
}

func TestClient_RenewalFailureSurfacesOriginalFailure(t *testing.T) {
	ts := newTestServer(t)
	var attempts atomic.Int64
	ts.mux.HandleFunc("/conversations", func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		writeEnvelope(w, http.StatusUnauthorized, nil, "token expired")
	})

	store := auth.NewStore(auth.Tokens{Access: "access-stale", Refresh: "refresh-bad"})
	c := New(ts.URL, store, nil)

	_, err := c.ListConversations(context.Background())
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, int64(1), attempts.Load(), "no retry when renewal fails")
}

func TestClient_SingleRenewalUnderContention(t *testing.T) {
	ts := newTestServer(t)
	ts.renewDelay = 100 * time.Millisecond
	ts.mux.HandleFunc("/conversations", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-new" {
			writeEnvelope(w, http.StatusUnauthorized, nil, "token expired")
			return
		}
		writeEnvelope(w, http.StatusOK, []Conversation{}, "")
	})

	store := auth.NewStore(auth.Tokens{Access: "access-stale", Refresh: "refresh-ok"})
	c := New(ts.URL, store, nil)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.ListConversations(context.Background())
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "request %d", i)
	}
	assert.Equal(t, int64(1), ts.renewals.Load(),
		"concurrent 401 discoverers must share one renewal")
}

func TestClient_ServerErrorIsTypedAndNotRetried(t *testing.T) {
	ts := newTestServer(t)
	var attempts atomic.Int64
	ts.mux.HandleFunc("/conversations", func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		writeEnvelope(w, http.StatusInternalServerError, nil, "database unavailable")
	})

	store := auth.NewStore(auth.Tokens{Access: "access-1", Refresh: "refresh-ok"})
	c := New(ts.URL, store, nil)

	_, err := c.ListConversations(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "database unavailable", apiErr.Message)
	assert.Equal(t, int64(1), attempts.Load())
	assert.Equal(t, int64(0), ts.renewals.Load())
}

func TestClient_EnvelopeFailureWithOKStatus(t *testing.T) {
	ts := newTestServer(t)
	ts.mux.HandleFunc("/conversations", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, nil, "validation failed")
	})

	store := auth.NewStore(auth.Tokens{Access: "access-1", Refresh: "refresh-ok"})
	c := New(ts.URL, store, nil)

	_, err := c.ListConversations(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "validation failed", apiErr.Message)
}

func TestClient_Login(t *testing.T) {
	ts := newTestServer(t)
	ts.mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body.Password != "hunter2" {
			writeEnvelope(w, http.StatusUnauthorized, nil, "bad credentials")
			return
		}
		writeEnvelope(w, http.StatusOK, map[string]any{
			"accessToken":  "access-1",
			"refreshToken": "refresh-ok",
			"user":         UserSummary{ID: 42, Name: "Ada"},
		}, "")
	})

	store := auth.NewStore(auth.Tokens{})
	c := New(ts.URL, store, nil)

	user, err := c.Login(context.Background(), "ada@example.com", "hunter2")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, int64(42), user.ID)
	assert.Equal(t, "access-1", store.Access())
}

func TestClient_LoginWithoutUserFails(t *testing.T) {
	ts := newTestServer(t)
	ts.mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, map[string]any{
			"accessToken":  "access-1",
			"refreshToken": "refresh-ok",
		}, "")
	})

	c := New(ts.URL, auth.NewStore(auth.Tokens{}), nil)

	_, err := c.Login(context.Background(), "ada@example.com", "hunter2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing user")
}

func TestClient_LoginRejected(t *testing.T) {
	ts := newTestServer(t)
	ts.mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, nil, "bad credentials")
	})

	c := New(ts.URL, auth.NewStore(auth.Tokens{}), nil)

	_, err := c.Login(context.Background(), "ada@example.com", "wrong")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestMessages_QueryAndDecoding(t *testing.T) {
	ts := newTestServer(t)
	ts.mux.HandleFunc("/conversations/9/messages", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		assert.Equal(t, "80", r.URL.Query().Get("cursor"))
		next := int64(60)
		writeEnvelope(w, http.StatusOK, MessagePage{
			Messages: []Message{
				{ID: 79, ConversationID: 9, Content: "later", Timestamp: time.Unix(1079, 0).UTC()},
				{ID: 61, ConversationID: 9, Content: "earlier", Timestamp: time.Unix(1061, 0).UTC()},
			},
			NextCursor: &next,
		}, "")
	})

	store := auth.NewStore(auth.Tokens{Access: "access-1", Refresh: "refresh-ok"})
	c := New(ts.URL, store, nil)

	cursor := int64(80)
	page, err := c.Messages(context.Background(), 9, 20, &cursor)
	require.NoError(t, err)
	require.Len(t, page.Messages, 2)
	require.NotNil(t, page.NextCursor)
	assert.Equal(t, int64(60), *page.NextCursor)
}

func TestMessages_FirstPageOmitsCursor(t *testing.T) {
	ts := newTestServer(t)
	ts.mux.HandleFunc("/conversations/9/messages", func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("cursor"))
		writeEnvelope(w, http.StatusOK, MessagePage{}, "")
	})

	store := auth.NewStore(auth.Tokens{Access: "access-1", Refresh: "refresh-ok"})
	c := New(ts.URL, store, nil)

	page, err := c.Messages(context.Background(), 9, 20, nil)
	require.NoError(t, err)
	assert.Nil(t, page.NextCursor)
}

func TestSearchMembers_ReturnsCount(t *testing.T) {
	ts := newTestServer(t)
	ts.mux.HandleFunc("/members/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "go", r.URL.Query().Get("skill"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"success":true,"data":[{"id":1},{"id":2}],"count":17}`)
	})

	store := auth.NewStore(auth.Tokens{Access: "access-1", Refresh: "refresh-ok"})
	c := New(ts.URL, store, nil)

	raw, count, err := c.SearchMembers(context.Background(), map[string][]string{"skill": {"go"}})
	require.NoError(t, err)
	assert.Equal(t, 17, count)
	assert.JSONEq(t, `[{"id":1},{"id":2}]`, string(raw))
}
