package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	defaultTickInterval     = 20 * time.Millisecond
	defaultPositionInterval = 250 * time.Millisecond
	defaultEventBuffer      = 16
	defaultBlocksCapacity   = 256
	defaultLogLevel         = "info"
	defaultLogFormat        = "text"
)

type Config struct {
	// Engine loop tuning
	Engine EngineConfig `koanf:"engine"`

	// Decoded-frame index
	Blocks BlocksConfig `koanf:"blocks"`

	Log LogConfig `koanf:"log"`

	// MPRIS D-Bus integration (Linux only)
	MPRIS MPRISConfig `koanf:"mpris"`

	// Session persistence
	State StateConfig `koanf:"state"`

	// Desktop notifications (Linux only)
	Notify NotifyConfig `koanf:"notify"`

	Display DisplayConfig `koanf:"display"`
}

// EngineConfig holds the pipeline loop settings.
type EngineConfig struct {
	TickInterval     time.Duration `koanf:"tick_interval"`     // loop wake-up period (default: 20ms)
	PositionInterval time.Duration `koanf:"position_interval"` // position publication period while playing (default: 250ms)
	EventBuffer      int           `koanf:"event_buffer"`      // per-subscription channel size (default: 16)
}

// BlocksConfig holds the frame index settings.
type BlocksConfig struct {
	Capacity int `koanf:"capacity"` // frame starts kept per component (default: 256)
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `koanf:"level"`  // "trace", "debug", "info", "warn", "error" (default: "info")
	Format string `koanf:"format"` // "text" or "json" (default: "text")
	File   string `koanf:"file"`   // log file path; empty logs to stderr
}

// MPRISConfig holds MPRIS configuration.
type MPRISConfig struct {
	Enabled *bool `koanf:"enabled"` // export the player on the session bus (default: true)
}

// StateConfig holds session persistence configuration.
type StateConfig struct {
	Persist *bool `koanf:"persist"` // save the last session (default: true)
}

// NotifyConfig holds desktop notification configuration.
type NotifyConfig struct {
	Enabled bool `koanf:"enabled"` // announce playback on the desktop (default: false)
}

// DisplayConfig holds terminal output configuration.
type DisplayConfig struct {
	Icons string `koanf:"icons"` // "nerd", "unicode" or "none" (default: "none")
}

func Load() (*Config, error) {
	return LoadFrom(getConfigPaths()...)
}

// LoadFrom loads the given files in order, later files overriding earlier
// ones. Missing files are skipped.
func LoadFrom(paths ...string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	// Expand ~ in log file
	if cfg.Log.File != "" {
		cfg.Log.File = expandPath(cfg.Log.File)
	}
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/wavecore/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "wavecore", "config.toml"))
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

// GetEngineConfig returns the engine configuration with defaults applied.
func (c *Config) GetEngineConfig() EngineConfig {
	cfg := c.Engine

	if cfg.TickInterval <= 0 {
		cfg.TickInterval = defaultTickInterval
	}
	if cfg.PositionInterval <= 0 {
		cfg.PositionInterval = defaultPositionInterval
	}
	if cfg.PositionInterval < cfg.TickInterval {
		cfg.PositionInterval = cfg.TickInterval
	}
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = defaultEventBuffer
	}

	return cfg
}

// BlocksCapacity returns the frame index capacity with the default applied.
func (c *Config) BlocksCapacity() int {
	if c.Blocks.Capacity <= 0 {
		return defaultBlocksCapacity
	}
	return c.Blocks.Capacity
}

// GetLogConfig returns the log configuration with defaults applied.
func (c *Config) GetLogConfig() LogConfig {
	cfg := c.Log

	switch cfg.Level {
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		cfg.Level = defaultLogLevel
	}
	if cfg.Format != "json" {
		cfg.Format = defaultLogFormat
	}

	return cfg
}

// MPRISEnabled returns true unless MPRIS was explicitly disabled.
func (c *Config) MPRISEnabled() bool {
	return c.MPRIS.Enabled == nil || *c.MPRIS.Enabled
}

// PersistState returns true unless session persistence was explicitly
// disabled.
func (c *Config) PersistState() bool {
	return c.State.Persist == nil || *c.State.Persist
}

// NotificationsEnabled returns true if desktop notifications were enabled.
func (c *Config) NotificationsEnabled() bool {
	return c.Notify.Enabled
}

// IconStyle returns the configured icon style.
func (c *Config) IconStyle() string {
	if c.Display.Icons == "" {
		return "none"
	}
	return c.Display.Icons
}
