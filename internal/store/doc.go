// ABOUTME: Documentation for the store package
// ABOUTME: Describes the local SQLite cache of merged conversation history

// Package store caches merged conversation messages in a local SQLite
// database so a reopened conversation paints instantly while the first
// network page is in flight.
//
// The cache is strictly a read-side accelerator: it holds only messages
// that were already delivered by the server (via pagination or live push)
// and is consulted once per conversation open. It never queues outgoing
// messages and is safe to delete at any time.
//
// Uses modernc.org/sqlite, so no cgo is required.
package store
