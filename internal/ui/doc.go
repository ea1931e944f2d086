// Package ui is the Bubble Tea viewer for panels.
//
// # Layout
//
// One screen shows the focused instance:
//
//	panels  hall  desk                      title bar, one tab per instance
//	╭──────────────────────────────────╮
//	│ xkcd 353 - Python - 2007-12-05   │  heading, see Header
//	│                                  │
//	│ image https://imgs.xkcd.com/...  │
//	│ I wrote 20 short programs ...    │  alt text when show_alt_text
//	╰──────────────────────────────────╯
//	#353 of 3000 │ visible │ every 1h    status line
//	h/left Previous • l/right Next ...  key help or the last message
//
// Before the first item arrives the panel reads "Loading...". If the
// instance has never loaded an item and the last event was a failure the
// panel shows ERROR with the failure kind and detail; once an item is
// shown, later failures only appear in the status line.
//
// # Data Flow
//
// The model never calls the engine from Update. Key presses become tea.Cmds
// that call Engine.Dispatch in the background and report back with a
// commandMsg. Engine events land in a state.Store (the store is an
// instance.Sink); a one second tick reads a Snapshot plus Engine.Status for
// every instance.
//
// # Visibility
//
// The program runs with focus reporting. Losing terminal focus broadcasts
// SUSPEND to every instance and regaining it broadcasts RESUME, which is
// what the visibility firing policies react to. The s key toggles the
// focused instance only.
//
// # Preferences
//
// The theme (T) and the focused instance (tab) are written to the prefs
// file whenever they change.
package ui
