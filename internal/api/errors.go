// ABOUTME: Typed errors surfaced by the authenticated request client
// ABOUTME: Sentinels for session loss plus APIError for server failures

package api

import (
	"errors"
	"fmt"
)

// Client errors
var (
	// ErrSessionExpired means the session could not be recovered: either
	// renewal failed, or the retried request was rejected again. Callers
	// must treat this as a forced logout.
	ErrSessionExpired = errors.New("session expired")

	// ErrNotAuthenticated is returned when a request is attempted with no
	// access token in the store.
	ErrNotAuthenticated = errors.New("not authenticated")
)

// APIError is a non-success response from the platform. It carries the
// HTTP status and the server-supplied message from the envelope.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
}
