package app

import (
	"context"
	"fmt"
	"time"

	"github.com/five82/lineup/internal/mediaserver"
)

const (
	availabilityTimeout = 3 * time.Second
	probeInterval       = 250 * time.Millisecond
	maxBackoff          = time.Second
)

// channelLister is the part of the media server the preflight probe needs.
type channelLister interface {
	Channels(ctx context.Context, query mediaserver.ChannelQuery) ([]mediaserver.Channel, error)
}

// ensureServerAvailable asks for a single channel until the server answers
// or timeout passes, backing off between attempts.
func ensureServerAvailable(ctx context.Context, server channelLister, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var lastErr error
	for failures := 0; ; failures++ {
		_, err := server.Channels(ctx, mediaserver.ChannelQuery{Limit: 1})
		if err == nil {
			return nil
		}
		lastErr = err

		wait := time.NewTimer(calculateBackoff(failures, probeInterval))
		select {
		case <-ctx.Done():
			wait.Stop()
			return fmt.Errorf("media server unavailable: %w", lastErr)
		case <-wait.C:
		}
	}
}

// calculateBackoff doubles base per failure, capped at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	backoff := base
	for i := 0; i < failures; i++ {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}
