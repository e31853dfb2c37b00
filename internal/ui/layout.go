package ui

import "time"

// Layout of the guide screen.
const (
	// ChannelColumnWidth is the width of the channel number and name column.
	ChannelColumnWidth = 16

	// CompactChannelColumnWidth is used below LayoutCompactWidth.
	CompactChannelColumnWidth = 8

	// LayoutCompactWidth is the threshold below which compact mode is used.
	LayoutCompactWidth = 80

	// chromeRows are the lines above and below the grid: header, page
	// controls, time header and footer.
	chromeRows = 4

	// PopupWidth caps the program popup width.
	PopupWidth = 64
)

// Timing constants.
const (
	// NowTick is how often the now marker and airing flags are refreshed.
	NowTick = time.Minute

	// ToastDuration is how long a toast stays on screen.
	ToastDuration = 4 * time.Second

	// ActionTimeout bounds a single popup round trip.
	ActionTimeout = 15 * time.Second

	// LoadTimeout bounds a channel batch or window extension.
	LoadTimeout = 30 * time.Second
)

// fatalLogLines is how many log problems the error screen lists.
const fatalLogLines = 3

// MaxDaysAhead is the last selectable day, counted from today.
const MaxDaysAhead = 13
