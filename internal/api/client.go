// ABOUTME: Authenticated HTTP client with single renewal-and-retry on 401
// ABOUTME: Concurrent expired-session discoverers share one in-flight renewal

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/skillswap/swapchat/internal/auth"
)

// defaultTimeout bounds individual HTTP requests. The renewal path has no
// timeout of its own; a hung renewal blocks queued requests until this
// transport timeout fires. Known limitation.
const defaultTimeout = 30 * time.Second

// envelope is the platform's response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	Count   *int            `json:"count,omitempty"`
}

// renewal is the single-slot in-flight renewal handle. The owner performs
// the exchange, stores err, then closes done; late discoverers of a 401
// wait on done and read err instead of issuing their own renewal.
type renewal struct {
	done chan struct{}
	err  error
}

// Client issues authenticated requests against the platform HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  *auth.Store
	logger  *slog.Logger

	renewMu sync.Mutex
	renewal *renewal
}

// New creates a client for the given base URL. Pass nil logger for default.
func New(baseURL string, tokens *auth.Store, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		tokens:  tokens,
		logger:  logger.With("component", "api"),
	}
}

// SetTimeout overrides the per-request transport timeout.
func (c *Client) SetTimeout(d time.Duration) {
	if d > 0 {
		c.http.Timeout = d
	}
}

// Do issues an authenticated request and unwraps the envelope. On a 401 it
// performs exactly one renewal-and-retry cycle; any other failure is
// surfaced without retrying.
func (c *Client) Do(ctx context.Context, method, path string, body any, query url.Values) (json.RawMessage, error) {
	data, _, err := c.doCounted(ctx, method, path, body, query)
	return data, err
}

// doCounted is Do plus the envelope's count field, for list endpoints that
// report a total.
func (c *Client) doCounted(ctx context.Context, method, path string, body any, query url.Values) (json.RawMessage, int, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("encoding request body: %w", err)
		}
	}

	status, raw, err := c.send(ctx, method, path, payload, query)
	if err != nil {
		return nil, 0, err
	}
	if status != http.StatusUnauthorized {
		return unwrap(status, raw)
	}

	// Expired session. One renewal, then the identical request exactly
	// once more.
	if err := c.renewSession(ctx); err != nil {
		return nil, 0, err
	}

	c.logger.Debug("retrying request after renewal", "method", method, "path", path)
	status, raw, err = c.send(ctx, method, path, payload, query)
	if err != nil {
		return nil, 0, err
	}
	if status == http.StatusUnauthorized {
		// Fresh credentials were rejected; the session is unrecoverable.
		c.tokens.Clear()
		return nil, 0, ErrSessionExpired
	}
	return unwrap(status, raw)
}

// send performs one HTTP round trip with the current access token attached.
func (c *Client) send(ctx context.Context, method, path string, payload []byte, query url.Values) (int, []byte, error) {
	access := c.tokens.Access()
	if access == "" {
		return 0, nil, ErrNotAuthenticated
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rdr io.Reader
	if payload != nil {
		rdr = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return 0, nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+access)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("reading response: %w", err)
	}
	return resp.StatusCode, raw, nil
}

// unwrap decodes the envelope and converts non-success responses into
// typed errors.
func unwrap(status int, raw []byte) (json.RawMessage, int, error) {
	var env envelope
	// A decode failure on an error response still yields a useful APIError
	// from the status code alone.
	_ = json.Unmarshal(raw, &env)

	if status < 200 || status >= 300 {
		msg := env.Error
		if msg == "" {
			msg = http.StatusText(status)
		}
		return nil, 0, &APIError{Status: status, Message: msg}
	}
	if !env.Success {
		return nil, 0, &APIError{Status: status, Message: env.Error}
	}

	count := 0
	if env.Count != nil {
		count = *env.Count
	}
	return env.Data, count, nil
}

// renewSession exchanges the refresh token for a fresh pair. Only one
// renewal is ever in flight: the first caller owns the exchange, everyone
// else waits on the same handle and shares its outcome.
func (c *Client) renewSession(ctx context.Context) error {
	c.renewMu.Lock()
	if r := c.renewal; r != nil {
		c.renewMu.Unlock()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.done:
			return r.err
		}
	}
	r := &renewal{done: make(chan struct{})}
	c.renewal = r
	c.renewMu.Unlock()

	r.err = c.exchangeTokens(ctx)

	c.renewMu.Lock()
	c.renewal = nil
	c.renewMu.Unlock()
	close(r.done)

	return r.err
}

// renewRequest is the body of the renewal exchange.
type renewRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// tokenResponse is the data payload of login and renewal responses.
type tokenResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	User         *UserSummary `json:"user,omitempty"`
}

// exchangeTokens performs the actual renewal request. It is non-retryable:
// any failure, including a 401, surfaces as ErrSessionExpired rather than
// triggering another renewal.
func (c *Client) exchangeTokens(ctx context.Context) error {
	refresh := c.tokens.Tokens().Refresh
	if refresh == "" {
		return ErrSessionExpired
	}

	raw, err := c.postOpen(ctx, "/auth/renew", renewRequest{RefreshToken: refresh})
	if err != nil {
		c.logger.Warn("session renewal failed", "error", err)
		return fmt.Errorf("%w: renewal failed: %v", ErrSessionExpired, err)
	}

	var tr tokenResponse
	if err := json.Unmarshal(raw, &tr); err != nil {
		return fmt.Errorf("%w: decoding renewal response: %v", ErrSessionExpired, err)
	}

	c.tokens.Set(auth.Tokens{Access: tr.AccessToken, Refresh: tr.RefreshToken})
	c.logger.Debug("session renewed")
	return nil
}

// postOpen issues a POST without credentials or renewal handling. Used for
// login and the renewal exchange itself.
func (c *Client) postOpen(ctx context.Context, path string, body any) (json.RawMessage, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	data, _, err := unwrap(resp.StatusCode, raw)
	return data, err
}

// Login authenticates with email and password, stores the issued token
// pair, and returns the authenticated member.
func (c *Client) Login(ctx context.Context, email, password string) (*UserSummary, error) {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: password}

	raw, err := c.postOpen(ctx, "/auth/login", body)
	if err != nil {
		return nil, err
	}

	var tr tokenResponse
	if err := json.Unmarshal(raw, &tr); err != nil {
		return nil, fmt.Errorf("decoding login response: %w", err)
	}
	if tr.User == nil {
		return nil, fmt.Errorf("login response missing user")
	}

	c.tokens.Set(auth.Tokens{Access: tr.AccessToken, Refresh: tr.RefreshToken})
	c.logger.Info("logged in", "user_id", tr.User.ID)
	return tr.User, nil
}
