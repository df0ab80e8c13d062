// ABOUTME: Documentation for the history package
// ABOUTME: Describes the ordered message list and backward pagination

// Package history maintains a conversation's in-memory message list and
// pages older history in from the server.
//
// The List is always sorted ascending by (timestamp, id) and deduplicated
// by id, no matter whether an entry arrived from a pagination response or
// a live push. Inserts are first-write-wins: a paginated copy never
// replaces a message the channel already delivered.
//
// The Pager walks history strictly backward from the oldest loaded
// message. The server hands out pages newest-first; the pager normalizes
// them to ascending order before they reach the rest of the system. A nil
// next cursor marks exhaustion, after which further loads are no-ops. A
// failed fetch leaves the cursor untouched so a retry reuses the same
// boundary.
package history
