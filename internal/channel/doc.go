// ABOUTME: Documentation for the channel package
// ABOUTME: Describes the realtime WebSocket event channel and room model

// Package channel implements the realtime conversation event channel.
//
// # Overview
//
// One long-lived WebSocket connection carries typed JSON events in both
// directions. Frames have the shape:
//
//	{ "event": "<name>", "data": { ... } }
//
// Client-to-server events: join, leave, send-message, close-conversation.
// Server-to-client events: joined, new-message, conversation-updated,
// conversation-closed, new-conversation, error.
//
// # Rooms
//
// The server groups subscribers into per-conversation rooms. The client
// joins exactly one room at a time - the conversation currently open in
// the UI - and must leave the previous room when switching. The channel
// does not remember room membership across a disconnect; after a redial
// the caller re-issues join for the open conversation.
//
// # Errors
//
// Events of type error are informational: FORBIDDEN maps to an
// access-denied state, VALIDATION to a field-level message. The channel
// never retries on them.
//
// # Ownership
//
// Handle is the lazily dialed, explicitly owned connection resource. It is
// constructed once at startup, injected into the coordinator, and torn
// down with the application - there is no ambient global connection.
package channel
