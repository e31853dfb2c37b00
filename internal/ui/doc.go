// Package ui renders the lineup program guide with Bubble Tea.
//
// # Architecture Overview
//
// Model owns a guide.Session and drives it from the Bubble Tea loop. All
// server round trips run as tea.Cmd functions and report back as messages,
// so Session and Store state is only touched from Update:
//
//   - batchLoadedMsg / extensionLoadedMsg: a channel batch or a wider time
//     window arrived; stale generations are dropped by the session
//   - detailOpenedMsg / actionDoneMsg: the program popup round trips
//   - numberExpiredMsg: the 2s digit debounce fired
//   - nowTickMsg: the minute tick that moves the now marker
//   - prefsChangedMsg: the prefs file was edited outside the guide
//
// After every move, resize and load the lazy-load coordinator is asked
// whether the viewport is close enough to an edge to fetch more.
//
// # Package Structure
//
//   - app.go: Model, Update and key handling
//   - commands.go: messages and the commands that produce them
//   - grid.go: channel rows and program cells, cut to the viewport
//   - header.go: status bar, page controls, time header, footer
//   - popup.go: program detail popup and its actions
//   - overlay.go: draws the popup over the grid
//   - keys.go, help.go, theme.go, style_helpers.go, strings.go, layout.go
//
// # Key Bindings
//
//   - Arrows or h/j/k/l: move focus, pgup/pgdown: channel up/down
//   - 0-9: direct channel entry
//   - enter: program details, or the focused page control
//   - esc: close the popup, or leave the guide
//   - T: cycle theme, ?: help, q or Ctrl+C: quit
package ui
