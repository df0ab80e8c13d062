// ABOUTME: Thread-safe storage for the access/refresh token pair
// ABOUTME: Renewal swaps both tokens atomically; readers snapshot the pair

package auth

import "sync"

// Tokens is an access/refresh token pair as issued by the platform.
type Tokens struct {
	Access  string
	Refresh string
}

// Store holds the current token pair for the client session.
// The zero value is an empty, unauthenticated store.
type Store struct {
	mu     sync.RWMutex
	tokens Tokens
}

// NewStore creates a store seeded with the given token pair.
func NewStore(t Tokens) *Store {
	return &Store{tokens: t}
}

// Tokens returns a snapshot of the current pair.
func (s *Store) Tokens() Tokens {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens
}

// Access returns the current access token.
func (s *Store) Access() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens.Access
}

// Set replaces both tokens. Called after login and after a renewal.
func (s *Store) Set(t Tokens) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = t
}

// Clear drops both tokens, returning the store to the unauthenticated state.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = Tokens{}
}
