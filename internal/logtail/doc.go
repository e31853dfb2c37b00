// Package logtail reads recent problems back out of the lineup log file.
//
// # Overview
//
// The log is written by slog's text handler, one key=value record per line.
// Problems scans the file once and keeps the last N records at WARN or above
// in a ring buffer, so memory stays O(N) regardless of file size. The guide
// shows them under its error screen when the first channel batch fails.
//
// Example usage:
//
//	entries, err := logtail.Problems("~/.local/state/lineup/lineup.log", 3)
//	for _, e := range entries {
//		fmt.Println(e.Level, e.Summary())
//	}
//
// # Error Handling
//
// A missing file returns nil, nil. Lines that are not slog records are
// skipped. Other I/O errors are returned wrapped.
package logtail
