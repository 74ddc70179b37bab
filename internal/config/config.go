package config

import (
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	LogLevel string `koanf:"log_level"` // "debug", "info", "warn", "error"
	DBPath   string `koanf:"db_path"`   // empty means xdg data dir

	Tracker TrackerConfig `koanf:"tracker"`

	// Session segmentation for the sessions/stats reports
	Sessions SessionsConfig `koanf:"sessions"`

	// Library scanning sources (paths to scan for music files)
	LibrarySources []string `koanf:"library_sources"`

	// Last.fm scrobble forwarding (enabled when configured)
	Lastfm LastfmConfig `koanf:"lastfm"`
}

// TrackerConfig holds play qualification settings for the tracker daemon.
type TrackerConfig struct {
	MinPlaySeconds  int      `koanf:"min_play_seconds"`  // absolute floor (default: 30)
	MinPlayPercent  float64  `koanf:"min_play_percent"`  // share of track duration (default: 0.5)
	LongPlaySeconds int      `koanf:"long_play_seconds"` // long-track override (default: 240)
	LocalOnly       *bool    `koanf:"local_only"`        // only log local files (default: true)
	LocalPlayers    []string `koanf:"local_players"`     // extra players treated as local-only
}

// SessionsConfig holds session segmentation settings.
type SessionsConfig struct {
	GapMinutes int `koanf:"gap_minutes"` // inactivity gap that splits sessions (default: 30)
}

// LastfmConfig holds Last.fm scrobbling configuration.
type LastfmConfig struct {
	APIKey     string `koanf:"api_key"`
	APISecret  string `koanf:"api_secret"`
	SessionKey string `koanf:"session_key"`
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{
		LogLevel: "info",
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	// Expand ~ in paths
	cfg.DBPath = expandPath(cfg.DBPath)
	for i, src := range cfg.LibrarySources {
		cfg.LibrarySources[i] = expandPath(src)
	}

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/music-analytics/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "music-analytics", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// HasLastfmConfig returns true if Last.fm scrobbling is configured.
func (c *Config) HasLastfmConfig() bool {
	return c.Lastfm.APIKey != "" && c.Lastfm.APISecret != ""
}

// GetTrackerConfig returns the tracker configuration with defaults applied.
func (c *Config) GetTrackerConfig() TrackerConfig {
	cfg := c.Tracker

	if cfg.MinPlaySeconds <= 0 {
		cfg.MinPlaySeconds = 30
	}
	if cfg.MinPlayPercent <= 0 || cfg.MinPlayPercent > 1 {
		cfg.MinPlayPercent = 0.5
	}
	if cfg.LongPlaySeconds <= 0 {
		cfg.LongPlaySeconds = 240
	}
	if cfg.LocalOnly == nil {
		t := true
		cfg.LocalOnly = &t
	}

	return cfg
}

// GetSessionsConfig returns the sessions configuration with defaults applied.
func (c *Config) GetSessionsConfig() SessionsConfig {
	cfg := c.Sessions
	if cfg.GapMinutes <= 0 {
		cfg.GapMinutes = 30
	}
	return cfg
}
