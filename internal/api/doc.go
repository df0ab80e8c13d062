// ABOUTME: Documentation for the api package
// ABOUTME: Describes the authenticated HTTP client and the wire model

// Package api implements the authenticated HTTP client for the SkillSwap
// platform and defines the wire model shared with the event channel.
//
// # Envelope
//
// Every endpoint responds with the platform envelope:
//
//	{ "success": bool, "data": ..., "error": "...", "count": N }
//
// Client methods unwrap the envelope and return typed data or a typed
// error. A non-2xx status other than 401 becomes an *APIError carrying the
// server-supplied message; it is never retried.
//
// # Session renewal
//
// A 401 response means the access token expired. The client performs
// exactly one renewal-and-retry cycle:
//
//   - The first caller to observe the 401 issues the renewal request;
//     concurrent callers attach to that same in-flight renewal instead of
//     starting their own.
//   - On success the original request is reissued once with the identical
//     payload. If the retry also returns 401 the session is unrecoverable
//     and ErrSessionExpired is surfaced - there is never a third attempt.
//   - The renewal request itself is non-retryable: a 401 from it is a
//     failure, not a trigger for another renewal.
//
// # Collaborator endpoints
//
// Profile, category and ranked-search endpoints are consumed as opaque
// resources feeding the UI; the conversation core never interprets them.
package api
