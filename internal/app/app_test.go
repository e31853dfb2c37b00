package app

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/five82/lineup/internal/config"
	"github.com/five82/lineup/internal/demo"
	"github.com/five82/lineup/internal/logging"
	"github.com/five82/lineup/internal/mediaserver"
)

func TestCalculateBackoff(t *testing.T) {
	base := 250 * time.Millisecond

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 250 * time.Millisecond},
		{"negative failures", -1, 250 * time.Millisecond},
		{"one failure", 1, 500 * time.Millisecond},
		{"two failures capped", 2, time.Second},
		{"many failures capped", 10, time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, base)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, base, got, tt.want)
			}
		})
	}
}

type probe struct {
	failures int32
	calls    atomic.Int32
}

func (p *probe) Channels(context.Context, mediaserver.ChannelQuery) ([]mediaserver.Channel, error) {
	if p.calls.Add(1) <= p.failures {
		return nil, errors.New("connection refused")
	}
	return []mediaserver.Channel{{ID: "a"}}, nil
}

func TestEnsureServerAvailable_RetriesUntilUp(t *testing.T) {
	p := &probe{failures: 1}
	if err := ensureServerAvailable(context.Background(), p, 2*time.Second); err != nil {
		t.Fatalf("ensureServerAvailable returned error: %v", err)
	}
	if got := p.calls.Load(); got != 2 {
		t.Fatalf("calls = %d, want 2", got)
	}
}

func TestEnsureServerAvailable_GivesUp(t *testing.T) {
	p := &probe{failures: 1 << 20}
	err := ensureServerAvailable(context.Background(), p, 100*time.Millisecond)
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("err = %v, want unavailable error wrapping the last failure", err)
	}
}

func TestEnsureServerAvailable_DemoServer(t *testing.T) {
	ts := httptest.NewServer(demo.New(demo.Options{Logger: logging.Discard()}).Handler())
	t.Cleanup(ts.Close)
	client, err := mediaserver.NewClient(mediaserver.Options{BaseURL: ts.URL, UserID: "viewer"})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if err := ensureServerAvailable(context.Background(), client, time.Second); err != nil {
		t.Fatalf("ensureServerAvailable returned error: %v", err)
	}
}

func TestGuideDate(t *testing.T) {
	now := time.Date(2024, 3, 9, 18, 10, 0, 0, time.UTC)
	today := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		raw     string
		want    time.Time
		wantErr bool
	}{
		{"", today, false},
		{"2024-03-09", today, false},
		{"2024-03-22", today.AddDate(0, 0, 13), false},
		{"2024-03-23", time.Time{}, true},
		{"2024-03-08", time.Time{}, true},
		{"March 10", time.Time{}, true},
	}
	for _, tt := range tests {
		got, err := guideDate(tt.raw, now)
		if (err != nil) != tt.wantErr {
			t.Fatalf("guideDate(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
		}
		if !tt.wantErr && !got.Equal(tt.want) {
			t.Fatalf("guideDate(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestSettingsFromConfig(t *testing.T) {
	g := config.DefaultGuide()
	s := settings(g)
	if s.Hours != g.HoursDisplayed || s.BatchSize != g.BatchSize || s.PixelsPerHour != g.PixelsPerHour {
		t.Fatalf("settings(%+v) = %+v", g, s)
	}
}

func TestStartDemo_PointsConfigAtLoopback(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := startDemo(ctx, config.Default(), logging.Discard())
	if err != nil {
		t.Fatalf("startDemo returned error: %v", err)
	}
	if !strings.HasPrefix(cfg.ServerURL, "http://127.0.0.1:") || cfg.APIKey != "demo" {
		t.Fatalf("cfg = %+v, want loopback demo server", cfg)
	}

	client, err := mediaserver.NewClient(mediaserver.Options{BaseURL: cfg.ServerURL, APIKey: cfg.APIKey, UserID: cfg.UserID})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	channels, err := client.Channels(ctx, mediaserver.ChannelQuery{Limit: 5})
	if err != nil {
		t.Fatalf("Channels returned error: %v", err)
	}
	if len(channels) != 5 {
		t.Fatalf("len(channels) = %d, want 5", len(channels))
	}
}
