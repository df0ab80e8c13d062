// ABOUTME: Package documentation for the terminal UI
// ABOUTME: Describes the list/chat views and effect-driven viewport

// Package tui renders the swapchat terminal interface with Bubble Tea.
// It has two views: a conversation list and an open-conversation chat
// view built from a viewport and a text input. The chat viewport never
// decides scroll positions itself; it executes the effect instructions
// returned by the conversation coordinator, which keeps anchoring
// behavior (follow newest, preserve reading position, pin on prepend)
// in one testable place.
package tui
