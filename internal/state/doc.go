// Package state holds the channels and programs loaded for the current guide
// session.
//
// # Overview
//
// The Store is the single owner of loaded guide data. Background commands
// fetch from the media server and append into it; the UI reads immutable
// copies through Snapshot and projects them into a grid.
//
//	Loader (tea.Cmd):                 Consumer (UI):
//	┌──────────────────────┐          ┌──────────────────┐
//	│ LoadChannelBatch()   │          │                  │
//	│ ExtendPrograms()     │─────────→│ store.Snapshot() │
//	│                      │ (mutex)  │        ↓         │
//	└──────────────────────┘          │  project grid    │
//	                                  └──────────────────┘
//
// # Load Guard
//
// Only one load runs at a time. Batch loads and horizontal extensions share
// the same in-flight flag, so a second request while one is running returns
// ErrLoadInFlight without touching the network. The lock is never held
// during network I/O.
//
// # Generations
//
// Reset starts a new generation (day change, favorites filter). A response
// that arrives for an older generation is dropped with ErrStaleGeneration
// and never mixes into the new session.
//
// # Append-only
//
// Channels are appended in server order and programs per channel are kept
// sorted by start. Extensions only append programs not already stored, so
// indices the focus holds stay valid.
package state
