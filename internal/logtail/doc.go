// Package logtail reads the end of the panels JSON log file.
//
// # Reading Log Files
//
// Read uses a ring buffer to extract the last maxLines from a file in one
// sequential pass with O(maxLines) memory, returning lines in chronological
// order. A missing file is not an error; it simply has no lines yet.
//
//	lines, err := logtail.Read(cfg.Logging.File, 200)
//
// # Decoding Records
//
// The logger writes slog JSON records. Parse splits one into time, level,
// message and the remaining attributes; Format renders it as a single
// readable line for `panels logs`:
//
//	12:00:01 WARN  fetch failed class=http instance=main op=next
//
// Lines that are not JSON (for example a truncated final write) are reported
// with ok = false and shown verbatim by callers.
package logtail
