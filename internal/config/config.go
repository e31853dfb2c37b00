package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config is the lineup configuration after defaults and environment overrides.
type Config struct {
	ServerURL     string
	APIKey        string
	UserID        string
	PlayerCommand string
	LogFile       string
	LogLevel      string
	Guide         Guide
}

// Guide sizes the grid and its lazy loading.
type Guide struct {
	HoursDisplayed      int     `toml:"hours_displayed"`
	PixelsPerHour       float64 `toml:"pixels_per_hour"`
	MinCellWidth        int     `toml:"min_cell_width"`
	BatchSize           int     `toml:"batch_size"`
	ExtendHours         int     `toml:"extend_hours"`
	VerticalThreshold   int     `toml:"vertical_threshold"`
	HorizontalThreshold int     `toml:"horizontal_threshold"`
}

const (
	defaultConfigPath = "~/.config/lineup/config.toml"
	defaultLogFile    = "~/.local/state/lineup/lineup.log"
	defaultServerURL  = "http://127.0.0.1:8096"
	defaultLogLevel   = "info"
)

// DefaultGuide returns the grid sizing used when the file omits it.
func DefaultGuide() Guide {
	return Guide{
		HoursDisplayed:      3,
		PixelsPerHour:       30,
		MinCellWidth:        2,
		BatchSize:           25,
		ExtendHours:         2,
		VerticalThreshold:   5,
		HorizontalThreshold: 20,
	}
}

// Default returns the configuration used without a file.
func Default() Config {
	return Config{
		ServerURL: defaultServerURL,
		LogFile:   mustExpand(defaultLogFile),
		LogLevel:  defaultLogLevel,
		Guide:     DefaultGuide(),
	}
}

type fileConfig struct {
	ServerURL     string `toml:"server_url"`
	APIKey        string `toml:"api_key"`
	UserID        string `toml:"user_id"`
	PlayerCommand string `toml:"player_command"`
	LogFile       string `toml:"log_file"`
	LogLevel      string `toml:"log_level"`
	Guide         Guide  `toml:"guide"`
}

type envConfig struct {
	ServerURL string `env:"LINEUP_SERVER_URL"`
	APIKey    string `env:"LINEUP_API_KEY"`
	UserID    string `env:"LINEUP_USER_ID"`
	LogLevel  string `env:"LINEUP_LOG_LEVEL"`
}

// Load reads the config file, falling back to defaults when it is missing,
// then applies LINEUP_* environment overrides. A .env file in the working
// directory is honoured when present.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	switch {
	case err == nil:
		defer file.Close()
		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		var raw fileConfig
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
		cfg.merge(raw)
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("open config: %w", err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	var overrides envConfig
	if err := env.Parse(&overrides); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.override(overrides)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) merge(raw fileConfig) {
	if v := strings.TrimSpace(raw.ServerURL); v != "" {
		c.ServerURL = v
	}
	c.APIKey = strings.TrimSpace(raw.APIKey)
	c.UserID = strings.TrimSpace(raw.UserID)
	c.PlayerCommand = strings.TrimSpace(raw.PlayerCommand)
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		c.LogFile = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		c.LogLevel = strings.ToLower(v)
	}

	g := raw.Guide
	if g.HoursDisplayed != 0 {
		c.Guide.HoursDisplayed = g.HoursDisplayed
	}
	if g.PixelsPerHour != 0 {
		c.Guide.PixelsPerHour = g.PixelsPerHour
	}
	if g.MinCellWidth != 0 {
		c.Guide.MinCellWidth = g.MinCellWidth
	}
	if g.BatchSize != 0 {
		c.Guide.BatchSize = g.BatchSize
	}
	if g.ExtendHours != 0 {
		c.Guide.ExtendHours = g.ExtendHours
	}
	if g.VerticalThreshold != 0 {
		c.Guide.VerticalThreshold = g.VerticalThreshold
	}
	if g.HorizontalThreshold != 0 {
		c.Guide.HorizontalThreshold = g.HorizontalThreshold
	}
}

func (c *Config) override(e envConfig) {
	if v := strings.TrimSpace(e.ServerURL); v != "" {
		c.ServerURL = v
	}
	if v := strings.TrimSpace(e.APIKey); v != "" {
		c.APIKey = v
	}
	if v := strings.TrimSpace(e.UserID); v != "" {
		c.UserID = v
	}
	if v := strings.TrimSpace(e.LogLevel); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
}

// Validate rejects sizes the guide cannot work with.
func (c Config) Validate() error {
	g := c.Guide
	switch {
	case g.HoursDisplayed <= 0:
		return fmt.Errorf("guide.hours_displayed must be positive, got %d", g.HoursDisplayed)
	case g.HoursDisplayed > 24:
		return fmt.Errorf("guide.hours_displayed must be at most 24, got %d", g.HoursDisplayed)
	case g.PixelsPerHour <= 0:
		return fmt.Errorf("guide.pixels_per_hour must be positive, got %v", g.PixelsPerHour)
	case g.MinCellWidth < 0:
		return fmt.Errorf("guide.min_cell_width must not be negative, got %d", g.MinCellWidth)
	case g.BatchSize <= 0:
		return fmt.Errorf("guide.batch_size must be positive, got %d", g.BatchSize)
	case g.ExtendHours <= 0:
		return fmt.Errorf("guide.extend_hours must be positive, got %d", g.ExtendHours)
	case g.VerticalThreshold < 0 || g.HorizontalThreshold < 0:
		return fmt.Errorf("guide thresholds must not be negative")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level %q is not one of debug, info, warn, error", c.LogLevel)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
