// Package logtail reads the tail of the console's activity log and parses
// its records for display.
//
// # Overview
//
// The console writes slog text records to a single log file. The activity
// view shows the newest lines, so Read only ever keeps the last N lines in
// memory:
//
//	1. Allocate a ring of maxLines entries
//	2. Store each scanned line at idx, advance idx (wrapping)
//	3. Fewer lines than the ring: return them as read
//	4. Otherwise: return the ring starting at idx (the oldest kept line)
//
// A non-positive maxLines returns the whole file.
//
// # Parsing
//
// Parse understands the slog text handler format:
//
//	time=2026-01-02T15:04:05.000Z level=INFO msg=store_op op=update lead_id=l3 duration_ms=601
//
// time, level and msg are lifted into Entry fields; everything else stays in
// Attrs in file order. Quoted values are unquoted. Lines that do not parse as
// key=value records are returned with Msg set to the raw line.
//
// # Error Handling
//
// Read returns nil, nil for a missing file, since the log is only created on
// the first write. Other I/O errors are wrapped.
package logtail
