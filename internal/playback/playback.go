// Package playback hands a channel stream to an external player process.
package playback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/five82/lineup/internal/mediaserver"
)

// ErrNoPlayer is returned when no player command is configured.
var ErrNoPlayer = errors.New("no player_command configured")

// URLPlaceholder is replaced by the stream URL in the player command.
const URLPlaceholder = "{url}"

// StreamURLer resolves the stream URL of a channel.
type StreamURLer interface {
	StreamURL(channelID string) string
}

// Launcher starts the configured player for a channel. The player runs
// detached from the guide and is not stopped when the guide exits.
type Launcher struct {
	command string
	streams StreamURLer
	logger  *slog.Logger
	start   func(*exec.Cmd) error
}

// NewLauncher returns a launcher for command, e.g. "mpv --fs {url}". When
// the placeholder is absent the URL is appended as the last argument.
func NewLauncher(command string, streams StreamURLer, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{
		command: strings.TrimSpace(command),
		streams: streams,
		logger:  logger.With("component", "playback"),
		start:   startDetached,
	}
}

// Play launches the player on the channel stream.
func (l *Launcher) Play(ctx context.Context, channel mediaserver.Channel) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cmd, err := l.Command(channel)
	if err != nil {
		return err
	}
	if err := l.start(cmd); err != nil {
		return fmt.Errorf("start player: %w", err)
	}
	l.logger.Info("player started", "channel", channel.Number, "program", cmd.Path)
	return nil
}

// Command builds the player process for channel without starting it.
func (l *Launcher) Command(channel mediaserver.Channel) (*exec.Cmd, error) {
	if l.command == "" {
		return nil, ErrNoPlayer
	}
	if l.streams == nil {
		return nil, fmt.Errorf("stream resolver is nil")
	}
	if strings.TrimSpace(channel.ID) == "" {
		return nil, fmt.Errorf("channel id required")
	}
	args := Args(l.command, l.streams.StreamURL(channel.ID))
	return exec.Command(args[0], args[1:]...), nil
}

// Args splits command on whitespace and substitutes url for the
// placeholder, appending it when the placeholder is missing.
func Args(command, url string) []string {
	fields := strings.Fields(command)
	replaced := false
	for i, f := range fields {
		if strings.Contains(f, URLPlaceholder) {
			fields[i] = strings.ReplaceAll(f, URLPlaceholder, url)
			replaced = true
		}
	}
	if !replaced {
		fields = append(fields, url)
	}
	return fields
}

func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
