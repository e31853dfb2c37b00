// Package mediaserver provides an HTTP client for the media server's live TV API.
//
// # Overview
//
// The guide reads channels and programs, reads and writes recording timers,
// and toggles per-user favorites. Everything the rest of the module needs is
// captured by the Source interface so tests and the demo server can stand in
// for a real server.
//
// # Architecture
//
//   - client.go: HTTP client, endpoint methods and request handling
//   - types.go: domain types plus the wire structs mirroring the server JSON
//
// # Client Usage
//
//	client, err := mediaserver.NewClient(mediaserver.Options{
//		BaseURL: "http://127.0.0.1:8096",
//		APIKey:  key,
//		UserID:  user,
//	})
//	if err != nil {
//		return err
//	}
//	channels, err := client.Channels(ctx, mediaserver.ChannelQuery{Limit: 25})
//
// # Error Handling
//
// A 404 wraps ErrNotFound. Other non-2xx statuses return an error naming the
// path and status. Empty bodies and 204 responses are treated as success, so
// endpoints that acknowledge without a payload work the same as ones that echo.
//
// # Timestamps
//
// The server emits several timestamp layouts. ParseTime accepts all of them
// and yields the zero time for anything else; FormatTime always sends UTC
// RFC 3339.
package mediaserver
