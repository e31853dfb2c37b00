package guide

import (
	"math"
	"time"
)

// MaxHours bounds how far a single day session can grow to the right.
const MaxHours = 24

// Window is the rendered time range [Start, End()).
type Window struct {
	Start         time.Time
	Hours         int
	PixelsPerHour float64
}

// NewWindow opens a window on the day of ref at the current hour of now.
func NewWindow(ref, now time.Time, hours int, pixelsPerHour float64) Window {
	return Window{
		Start:         WindowStart(ref, now),
		Hours:         hours,
		PixelsPerHour: pixelsPerHour,
	}
}

// WindowStart takes the calendar day from ref and the hour from now,
// truncated to the top of the hour, in now's location.
func WindowStart(ref, now time.Time) time.Time {
	ref = ref.In(now.Location())
	return time.Date(ref.Year(), ref.Month(), ref.Day(), now.Hour(), 0, 0, 0, now.Location())
}

// WindowEnd returns start plus hours.
func WindowEnd(start time.Time, hours int) time.Time {
	return start.Add(time.Duration(hours) * time.Hour)
}

// TimeToPixel maps t onto the horizontal axis of a window starting at start.
func TimeToPixel(t, start time.Time, pixelsPerHour float64) float64 {
	if pixelsPerHour <= 0 {
		return 0
	}
	// minutes / (60 / pph), kept in this order to stay exact for whole minutes.
	return t.Sub(start).Minutes() * pixelsPerHour / 60
}

// End is the exclusive end of the window.
func (w Window) End() time.Time {
	return WindowEnd(w.Start, w.Hours)
}

// Width is the total width of the window in pixels.
func (w Window) Width() int {
	return int(math.Round(float64(w.Hours) * w.PixelsPerHour))
}

// Pixel returns the rounded position of t.
func (w Window) Pixel(t time.Time) int {
	return int(math.Round(TimeToPixel(t, w.Start, w.PixelsPerHour)))
}

// PixelToTime is the inverse of Pixel, to the minute.
func (w Window) PixelToTime(x int) time.Time {
	if w.PixelsPerHour <= 0 {
		return w.Start
	}
	minutes := float64(x) * 60 / w.PixelsPerHour
	return w.Start.Add(time.Duration(minutes * float64(time.Minute)))
}

// Contains reports whether t falls in [Start, End).
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End())
}

// Extend grows the window by delta hours, capped at MaxHours. The returned
// range [oldEnd, newEnd) is what callers need to fetch; it is empty when the
// window could not grow.
func (w Window) Extend(delta int) (next Window, oldEnd, newEnd time.Time) {
	oldEnd = w.End()
	if delta <= 0 {
		return w, oldEnd, oldEnd
	}
	if w.Hours+delta > MaxHours {
		delta = MaxHours - w.Hours
	}
	if delta <= 0 {
		return w, oldEnd, oldEnd
	}
	next = w
	next.Hours += delta
	return next, oldEnd, next.End()
}

// CanExtend reports whether the window can still grow.
func (w Window) CanExtend() bool {
	return w.Hours < MaxHours
}

// Clip places [start, end) inside the window. Programs that end at or before
// the window start, start after the window end, or end up narrower than
// minWidth are rejected.
func (w Window) Clip(start, end time.Time, minWidth int) (left, width int, ok bool) {
	ws, we := w.Start, w.End()
	if !end.After(ws) || start.After(we) {
		return 0, 0, false
	}
	left = w.Pixel(start)
	if start.Before(ws) {
		left = 0
	}
	right := w.Pixel(end)
	if total := w.Width(); right > total {
		right = total
	}
	width = right - left
	if width <= 0 || width < minWidth {
		return 0, 0, false
	}
	return left, width, true
}
