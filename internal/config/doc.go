// Package config loads the lineup configuration file.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/lineup/config.toml (default)
//  3. If the config file doesn't exist, fall back to defaults
//  4. Fields missing or empty in the file keep their defaults
//  5. A .env file in the working directory is loaded into the environment
//  6. LINEUP_SERVER_URL, LINEUP_API_KEY, LINEUP_USER_ID and LINEUP_LOG_LEVEL
//     override the file
//
// # Default Values
//
//   - Server: http://127.0.0.1:8096
//   - Log file: ~/.local/state/lineup/lineup.log
//   - Log level: info
//   - Guide: 3 hours at 30 columns per hour, cells at least 2 columns wide,
//     channel batches of 25, 2 hour extensions, lazy-load thresholds of
//     5 rows and 20 columns
//
// # Example
//
//	server_url = "http://tv.lan:8096"
//	api_key = "..."
//	user_id = "..."
//	player_command = "mpv {url}"
//
//	[guide]
//	hours_displayed = 4
//	batch_size = 50
//
// # Error Handling
//
// A missing file is not an error. Unreadable files, malformed TOML and
// values Validate rejects are returned wrapped with context.
package config
