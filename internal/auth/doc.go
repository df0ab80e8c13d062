// ABOUTME: Documentation for the auth package
// ABOUTME: Describes credential storage and token inspection for the client

// Package auth holds the client's renewable credential state.
//
// # Overview
//
// The platform issues a short-lived access token and a longer-lived refresh
// token at login. Every HTTP request and the WebSocket handshake carry the
// access token; when it expires the request client exchanges the refresh
// token for a fresh pair and swaps them into the Store.
//
// The Store is the single place credentials live. It is safe for concurrent
// use: readers snapshot the current pair, renewal swaps both tokens
// atomically.
//
// Inspect decodes a token's registered claims without verifying the
// signature. The client has no signing secret and never needs one - the
// server is the authority. Claims are used only for display ("who am I")
// and logging (time until expiry).
package auth
