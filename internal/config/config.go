// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Default configuration values.
const (
	// DefaultMaskColor is the backdrop color behind popups, a dark
	// translucent gray in the terminal palette.
	DefaultMaskColor = "236"
	// DefaultDurationMS is the fallback popup transition duration.
	DefaultDurationMS = 100
	// DefaultTickMS is the frame clock interval for animations.
	DefaultTickMS = 16
)

// Config represents the popui configuration.
type Config struct {
	Mask  MaskConfig  `toml:"mask"`
	Popup PopupConfig `toml:"popup"`
}

// MaskConfig configures the backdrop behind every popup.
type MaskConfig struct {
	Color      string `toml:"color"`       // Terminal color for the backdrop
	Animatable bool   `toml:"animatable"`  // Whether the mask fades in/out
	DurationMS int    `toml:"duration_ms"` // Mask animation duration (0 = popup duration)
}

// PopupConfig holds popup-wide defaults.
type PopupConfig struct {
	DefaultDurationMS int `toml:"default_duration_ms"` // Transition duration when a popup sets none
	TickMS            int `toml:"tick_ms"`             // Animation frame interval
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Mask: MaskConfig{
			Color:      DefaultMaskColor,
			Animatable: false,
			DurationMS: 0,
		},
		Popup: PopupConfig{
			DefaultDurationMS: DefaultDurationMS,
			TickMS:            DefaultTickMS,
		},
	}
}

// DefaultDuration returns the popup default duration.
func (c *Config) DefaultDuration() time.Duration {
	if c.Popup.DefaultDurationMS <= 0 {
		return DefaultDurationMS * time.Millisecond
	}
	return time.Duration(c.Popup.DefaultDurationMS) * time.Millisecond
}

// MaskDuration returns the configured mask animation duration. Zero
// means "follow the popup duration".
func (c *Config) MaskDuration() time.Duration {
	if c.Mask.DurationMS <= 0 {
		return 0
	}
	return time.Duration(c.Mask.DurationMS) * time.Millisecond
}

// Tick returns the animation frame interval.
func (c *Config) Tick() time.Duration {
	if c.Popup.TickMS <= 0 {
		return DefaultTickMS * time.Millisecond
	}
	return time.Duration(c.Popup.TickMS) * time.Millisecond
}

// ConfigPath returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "popui", "config.toml")
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config if file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}
