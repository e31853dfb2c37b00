package ui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// truncate shortens a string to the given display width, adding an
// ellipsis if needed.
func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 {
		return ""
	}
	if runewidth.StringWidth(value) <= limit {
		return value
	}
	if limit == 1 {
		return runewidth.Truncate(value, 1, "")
	}
	return runewidth.Truncate(value, limit, "…")
}

// fit truncates value and pads it to exactly width display cells.
func fit(value string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.FillRight(truncate(value, width), width)
}

// center pads value on both sides to width display cells.
func center(value string, width int) string {
	value = truncate(value, width)
	gap := width - runewidth.StringWidth(value)
	if gap <= 0 {
		return value
	}
	left := gap / 2
	return strings.Repeat(" ", left) + value + strings.Repeat(" ", gap-left)
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ternary returns a if cond is true, otherwise b.
func ternary(cond bool, a, b string) string {
	if cond {
		return a
	}
	return b
}
