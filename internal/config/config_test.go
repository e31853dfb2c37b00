package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"LINEUP_SERVER_URL", "LINEUP_API_KEY", "LINEUP_USER_ID", "LINEUP_LOG_LEVEL"} {
		t.Setenv(key, "")
	}
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	clearEnv(t)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.ServerURL != defaultServerURL {
		t.Fatalf("ServerURL = %q, want %q", cfg.ServerURL, defaultServerURL)
	}
	if cfg.Guide != DefaultGuide() {
		t.Fatalf("Guide = %+v, want defaults %+v", cfg.Guide, DefaultGuide())
	}
	wantLog, err := expandPath(defaultLogFile)
	if err != nil {
		t.Fatalf("expandPath(defaultLogFile) returned error: %v", err)
	}
	if cfg.LogFile != wantLog {
		t.Fatalf("LogFile = %q, want %q", cfg.LogFile, wantLog)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
server_url = "  http://tv.lan:8096  "
api_key = " abc "
user_id = "u1"
player_command = "mpv {url}"
log_file = "~/logs/lineup.log"
log_level = "DEBUG"

[guide]
hours_displayed = 4
batch_size = 10
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.ServerURL != "http://tv.lan:8096" || cfg.APIKey != "abc" || cfg.UserID != "u1" {
		t.Fatalf("server fields = %q %q %q", cfg.ServerURL, cfg.APIKey, cfg.UserID)
	}
	if cfg.PlayerCommand != "mpv {url}" {
		t.Fatalf("PlayerCommand = %q", cfg.PlayerCommand)
	}
	if !strings.HasPrefix(cfg.LogFile, home) {
		t.Fatalf("LogFile = %q, want it under HOME %q", cfg.LogFile, home)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.Guide.HoursDisplayed != 4 || cfg.Guide.BatchSize != 10 {
		t.Fatalf("Guide = %+v, want hours 4 batch 10", cfg.Guide)
	}
	if cfg.Guide.PixelsPerHour != DefaultGuide().PixelsPerHour {
		t.Fatalf("PixelsPerHour = %v, want default", cfg.Guide.PixelsPerHour)
	}
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	clearEnv(t)
	t.Setenv("LINEUP_SERVER_URL", "http://override:8096")
	t.Setenv("LINEUP_API_KEY", "from-env")
	t.Setenv("LINEUP_LOG_LEVEL", "warn")

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`server_url = "http://file:8096"`+"\n"+`api_key = "from-file"`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.ServerURL != "http://override:8096" || cfg.APIKey != "from-env" || cfg.LogLevel != "warn" {
		t.Fatalf("cfg = %+v, want environment values", cfg)
	}
}

func TestLoad_InvalidTOMLFails(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`server_url = [`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatalf("Load returned nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load error = %q, want it to mention parse config", err.Error())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"zero batch", func(c *Config) { c.Guide.BatchSize = 0 }, false},
		{"negative hours", func(c *Config) { c.Guide.HoursDisplayed = -1 }, false},
		{"too many hours", func(c *Config) { c.Guide.HoursDisplayed = 25 }, false},
		{"zero scale", func(c *Config) { c.Guide.PixelsPerHour = 0 }, false},
		{"zero extend", func(c *Config) { c.Guide.ExtendHours = 0 }, false},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err == nil) != tt.ok {
				t.Fatalf("Validate = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}
