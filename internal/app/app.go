package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/five82/lineup/internal/config"
	"github.com/five82/lineup/internal/demo"
	"github.com/five82/lineup/internal/detail"
	"github.com/five82/lineup/internal/guide"
	"github.com/five82/lineup/internal/logging"
	"github.com/five82/lineup/internal/mediaserver"
	"github.com/five82/lineup/internal/playback"
	"github.com/five82/lineup/internal/prefs"
	"github.com/five82/lineup/internal/state"
	"github.com/five82/lineup/internal/ui"
)

// Options configure the lineup application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/lineup/prefs.toml
	Demo       bool   // serve a generated lineup instead of a real server
	Date       string // YYYY-MM-DD; empty opens today
	Version    string
}

const dateLayout = "2006-01-02"

// Run boots the guide until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, closer, err := logging.Setup(logging.Options{File: cfg.LogFile, Level: cfg.LogLevel})
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = closer.Close() }()

	now := time.Now()
	date, err := guideDate(opts.Date, now)
	if err != nil {
		return err
	}

	prefsPath, err := prefs.Resolve(opts.PrefsPath)
	if err != nil {
		return fmt.Errorf("resolve prefs path: %w", err)
	}
	userPrefs, err := prefs.Load(prefsPath)
	if err != nil {
		return fmt.Errorf("load prefs: %w", err)
	}
	if userPrefs, err = prefs.EnsureDeviceID(prefsPath, userPrefs); err != nil {
		logger.Warn("device id not saved", "error", err)
	}

	if opts.Demo {
		if cfg, err = startDemo(ctx, cfg, logger); err != nil {
			return err
		}
	}

	client, err := mediaserver.NewClient(mediaserver.Options{
		BaseURL:  cfg.ServerURL,
		APIKey:   cfg.APIKey,
		UserID:   cfg.UserID,
		DeviceID: userPrefs.DeviceID,
		Version:  opts.Version,
	})
	if err != nil {
		return fmt.Errorf("init media server client: %w", err)
	}
	logger.Info("starting guide", "server", cfg.ServerURL, "date", date.Format(dateLayout), "demo", opts.Demo)

	// A dead server still opens the guide; the first batch reports it.
	if err := ensureServerAvailable(ctx, client, availabilityTimeout); err != nil {
		logger.Warn("media server not reachable", "error", err)
	}

	session := guide.NewSession(state.NewStore(), settings(cfg.Guide))
	session.Reset(date, now, userPrefs.FavoritesOnly)

	var changes <-chan prefs.Prefs
	if watcher, err := prefs.Watch(prefsPath); err != nil {
		logger.Warn("prefs watch disabled", "error", err)
	} else {
		defer func() { _ = watcher.Close() }()
		changes = watcher.Changes()
	}

	player := playback.NewLauncher(cfg.PlayerCommand, client, logger)

	return ui.Run(ui.Options{
		Context: ctx,
		Session: session,
		Source:  client,
		Actions: detail.NewActions(client, player, logger),
		Lazy: guide.Coordinator{
			VerticalThreshold:   cfg.Guide.VerticalThreshold,
			HorizontalThreshold: cfg.Guide.HorizontalThreshold,
		},
		Prefs:        userPrefs,
		PrefsPath:    prefsPath,
		PrefsChanges: changes,
		LogFile:      cfg.LogFile,
		Logger:       logger,
	})
}

// startDemo serves the generated lineup on a loopback port and points cfg
// at it.
func startDemo(ctx context.Context, cfg config.Config, logger *slog.Logger) (config.Config, error) {
	const key = "demo"
	srv := demo.New(demo.Options{APIKey: key, Logger: logger})
	baseURL, done, err := srv.Listen(ctx, "")
	if err != nil {
		return cfg, fmt.Errorf("start demo server: %w", err)
	}
	go func() {
		if err := <-done; err != nil {
			logger.Error("demo server stopped", "error", err)
		}
	}()
	cfg.ServerURL = baseURL
	cfg.APIKey = key
	cfg.UserID = "demo"
	return cfg, nil
}

func settings(g config.Guide) guide.Settings {
	return guide.Settings{
		Hours:         g.HoursDisplayed,
		PixelsPerHour: g.PixelsPerHour,
		MinCellWidth:  g.MinCellWidth,
		BatchSize:     g.BatchSize,
		ExtendHours:   g.ExtendHours,
	}
}

// guideDate parses the requested day in local time. Only today and the
// following days the guide can page to are accepted.
func guideDate(raw string, now time.Time) (time.Time, error) {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	if raw == "" {
		return today, nil
	}
	date, err := time.ParseInLocation(dateLayout, raw, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", raw)
	}
	last := today.AddDate(0, 0, ui.MaxDaysAhead)
	if date.Before(today) || date.After(last) {
		return time.Time{}, fmt.Errorf("date %s is outside %s to %s", raw, today.Format(dateLayout), last.Format(dateLayout))
	}
	return date, nil
}
