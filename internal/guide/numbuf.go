package guide

import (
	"time"
)

// NumberDebounce is how long the buffer waits after the last digit.
const NumberDebounce = 2 * time.Second

const maxDigits = 6

// NumberBuffer collects remote digits for direct channel entry. Each digit
// restarts the debounce; only the latest sequence may expire the buffer.
type NumberBuffer struct {
	digits string
	seq    int
}

// Push appends a digit and returns the sequence the debounce timer must
// present to Expire. Non-digits are ignored.
func (b *NumberBuffer) Push(r rune) (int, bool) {
	if r < '0' || r > '9' {
		return b.seq, false
	}
	if len(b.digits) >= maxDigits {
		b.digits = b.digits[1:]
	}
	b.digits += string(r)
	b.seq++
	return b.seq, true
}

// Expire returns and clears the buffer if seq is the latest push.
func (b *NumberBuffer) Expire(seq int) (string, bool) {
	if seq != b.seq || b.digits == "" {
		return "", false
	}
	digits := b.digits
	b.digits = ""
	return digits, true
}

// Cancel drops pending digits and invalidates any running debounce.
func (b *NumberBuffer) Cancel() {
	b.digits = ""
	b.seq++
}

// Pending returns the digits typed so far.
func (b *NumberBuffer) Pending() string {
	return b.digits
}
