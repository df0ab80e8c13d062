// ABOUTME: Documentation for the conversation package
// ABOUTME: Describes the per-conversation session coordinator

// Package conversation composes the request client, event channel,
// history pager and scroll controller for the conversation currently open
// in the UI.
//
// The Coordinator owns the authoritative message list, the pagination
// cursor and the channel room membership for that one conversation. At
// most one room is joined at a time: switching conversations dispatches
// leave for the previous room before join for the next, resets the list
// and cursor, and puts the scroll controller back into Initializing.
//
// Live events and pagination responses feed the same ordered list; a
// generation counter discards responses that complete after the
// conversation they were fetched for has been switched away from.
//
// Channel errors become UI state: FORBIDDEN marks the view access-denied,
// VALIDATION surfaces as a field-level message. A closed conversation
// keeps its history but rejects sends.
package conversation
