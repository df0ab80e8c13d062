// ABOUTME: Documentation for the scroll package
// ABOUTME: Describes the viewport anchoring state machine and its effects

// Package scroll decides what a conversation viewport should do when its
// content changes: follow the newest message, hold the reader's place, or
// compensate for prepended history.
//
// The Controller is a state machine over three states:
//
//	Initializing -> Following <-> Reading
//
// Initializing is entered when the conversation changes; the first render
// snaps to the bottom and moves to Following. Following auto-scrolls on
// each new message. Reading is entered when the user scrolls more than a
// threshold away from the bottom; new messages then leave the viewport
// alone. Scrolling back within the threshold returns to Following.
//
// Independent of those states, a backward-pagination load records the
// content height before the request and, once the taller content is
// rendered, emits an adjustment of exactly the height delta so the
// previously visible message stays fixed.
//
// Apply is effectively a pure transition function: effects (snap, smooth
// scroll, adjust by delta, load older) are returned as instructions for
// the view layer to execute, never performed here. Heights and offsets
// are abstract ints - pixels in a browser, rows in a terminal.
package scroll
