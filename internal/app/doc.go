// Package app provides the orchestration layer for the lineup application.
//
// # Overview
//
// This package wires together configuration, logging, preferences, the media
// server client and the UI. It is the composition root where every
// dependency is built and connected.
//
// # Architecture
//
//  1. Load config from ~/.config/lineup/config.toml plus LINEUP_* overrides
//  2. Open the rotating log file
//  3. Load prefs and make sure a device id exists
//  4. With -demo, serve a generated lineup on a loopback port
//  5. Build the media server client and probe it briefly
//  6. Reset a guide session on the requested day
//  7. Watch the prefs file and start the TUI, blocking until exit
//
// # Components
//
//   - app.go: Run, demo startup and date parsing
//   - preflight.go: server availability probe with backoff
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │ Initialize everything
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()             Read config and env
//	       ├─────> logging.Setup()           Rotating log file
//	       ├─────> prefs.Load()              Theme, favorites filter, device id
//	       ├─────> demo.Listen()             Only with -demo
//	       ├─────> mediaserver.NewClient()   HTTP client
//	       ├─────> ensureServerAvailable()   Pre-flight probe
//	       ├─────> guide.NewSession()        Store, window, focus
//	       ├─────> prefs.Watch()             Live prefs edits
//	       └─────> ui.Run()                  Start TUI (blocks)
//
// # Error Handling
//
// Fatal errors (returned from Run):
//   - Configuration file invalid
//   - Log file cannot be created
//   - Date outside today and the following 13 days
//   - Demo server cannot bind
//
// Recoverable errors (logged, startup continues):
//   - Server unreachable during the probe; the guide shows its own error
//     screen when the first channel batch fails
//   - Device id or prefs watcher setup failures
package app
