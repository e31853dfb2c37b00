package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Entry is one line written by slog's text handler.
type Entry struct {
	Level   slog.Level
	Message string
	Error   string
	Attrs   map[string]string
}

// Summary is a one-line rendering for the status screens.
func (e Entry) Summary() string {
	if e.Error == "" {
		return e.Message
	}
	return e.Message + ": " + e.Error
}

// Problems returns at most n entries at WARN or above from the end of the log
// at path. A missing file yields no entries.
func Problems(path string, n int) ([]Entry, error) {
	if n <= 0 {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	ring := make([]Entry, n)
	count, next := 0, 0
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		e, ok := Parse(scanner.Text())
		if !ok || e.Level < slog.LevelWarn {
			continue
		}
		ring[next] = e
		next = (next + 1) % n
		count = min(count+1, n)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	out := make([]Entry, count)
	start := 0
	if count == n {
		start = next
	}
	for i := range out {
		out[i] = ring[(start+i)%n]
	}
	return out, nil
}

// Parse reads a key=value line. Lines without a level are rejected.
func Parse(line string) (Entry, bool) {
	attrs := make(map[string]string)
	rest := strings.TrimSpace(line)
	for rest != "" {
		eq := strings.IndexByte(rest, '=')
		if eq <= 0 {
			return Entry{}, false
		}
		key := rest[:eq]
		rest = rest[eq+1:]

		var value string
		if strings.HasPrefix(rest, `"`) {
			quoted, err := strconv.QuotedPrefix(rest)
			if err != nil {
				return Entry{}, false
			}
			value, _ = strconv.Unquote(quoted)
			rest = rest[len(quoted):]
		} else if sp := strings.IndexByte(rest, ' '); sp >= 0 {
			value, rest = rest[:sp], rest[sp:]
		} else {
			value, rest = rest, ""
		}
		attrs[key] = value
		rest = strings.TrimLeft(rest, " ")
	}

	raw, ok := attrs["level"]
	if !ok {
		return Entry{}, false
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return Entry{}, false
	}
	e := Entry{Level: level, Message: attrs["msg"], Error: attrs["error"], Attrs: attrs}
	for _, k := range []string{"time", "level", "msg", "error"} {
		delete(e.Attrs, k)
	}
	return e, true
}
