// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultMinPlaytimeSec is the hold used when a button sets no min_playtime_sec.
const DefaultMinPlaytimeSec = 10.0

// Config represents the application configuration.
type Config struct {
	Library  LibraryConfig  `yaml:"library"`
	Buttons  []ButtonConfig `yaml:"buttons" validate:"required,min=1,dive"`
	Playback PlaybackConfig `yaml:"playback"`
	Input    InputConfig    `yaml:"input"`
	Hooks    HooksConfig    `yaml:"hooks"`
	Log      LogConfig      `yaml:"log"`
}

// LibraryConfig represents where the tracks live.
type LibraryConfig struct {
	Root       string   `yaml:"root"`
	Extensions []string `yaml:"extensions" default:"[\".mp3\", \".ogg\"]" validate:"min=1,dive,oneof=.mp3 .ogg .wav .flac"`
}

// ButtonConfig represents a single button.
// An empty folder makes a stop button. MinPlaytimeSec is a pointer so an explicit
// 0 is kept apart from an omitted value.
type ButtonConfig struct {
	Name           string   `yaml:"name"`
	Source         string   `yaml:"source" validate:"required"`
	Folder         string   `yaml:"folder"`
	Autoplay       bool     `yaml:"autoplay"`
	MinPlaytimeSec *float64 `yaml:"min_playtime_sec" validate:"omitempty,gte=0,lte=3600"`
}

// PlaybackConfig represents playback configuration.
type PlaybackConfig struct {
	Backend           string  `yaml:"backend" default:"speaker" validate:"oneof=speaker simulated"`
	PollIntervalMs    int     `yaml:"poll_interval_ms" default:"200" validate:"gte=10,lte=5000"`
	SampleRate        int     `yaml:"sample_rate" default:"44100" validate:"gte=8000,lte=192000"`
	BufferMs          int     `yaml:"buffer_ms" default:"100" validate:"gte=10,lte=2000"`
	SimulatedTrackSec float64 `yaml:"simulated_track_sec" default:"5" validate:"gt=0"`
}

// InputConfig represents the button input driver.
// Settings are decoded by the selected driver.
type InputConfig struct {
	Driver   string         `yaml:"driver" default:"gpio" validate:"oneof=gpio keyboard"`
	Settings map[string]any `yaml:"settings,omitempty"`
}

// HooksConfig represents lifecycle hooks configuration.
type HooksConfig struct {
	OnStarted      []string `yaml:"on_started"`
	OnStopped      []string `yaml:"on_stopped"`
	OnTrackStarted []string `yaml:"on_track_started"`
	TimeoutMs      int      `yaml:"timeout_ms" default:"5000" validate:"gte=100,lte=600000"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	Level      string `yaml:"level" default:"info" validate:"oneof=debug info warn warning error"`
	Output     string `yaml:"output" default:"stdout"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" default:"10" validate:"gte=1"`
	MaxBackups int    `yaml:"max_backups" default:"3" validate:"gte=0"`
	MaxAgeDays int    `yaml:"max_age_days" default:"28" validate:"gte=0"`
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}
	return Parse(data)
}

// Parse parses, defaults and validates configuration data.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	// Override with environment variables
	cfg.overrideFromEnv()

	if err := cfg.SetDefaults(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// SetDefaults fills unset fields using creasty/defaults.
func (c *Config) SetDefaults() error {
	if err := defaults.Set(c); err != nil {
		return errors.Wrap(err, "failed to set defaults")
	}
	for i := range c.Buttons {
		if err := defaults.Set(&c.Buttons[i]); err != nil {
			return errors.Wrapf(err, "failed to set defaults for button %d", i)
		}
	}
	return nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("WINDBOX_LIBRARY_ROOT"); v != "" {
		c.Library.Root = v
	}
	if v := os.Getenv("WINDBOX_INPUT_DRIVER"); v != "" {
		c.Input.Driver = v
	}
	if v := os.Getenv("WINDBOX_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}

	if err := c.validateUniqueSources(); err != nil {
		return err
	}

	return nil
}

// validateUniqueSources checks that no two buttons share a source.
func (c *Config) validateUniqueSources() error {
	seen := make(map[string]int, len(c.Buttons))
	for i, b := range c.Buttons {
		if j, ok := seen[b.Source]; ok {
			return errors.Newf("buttons %d and %d share source %q", j, i, b.Source)
		}
		seen[b.Source] = i
	}
	return nil
}

// ResolveFolder returns the folder path for a button.
// Relative folders are resolved against the library root; empty stays empty.
func (c *Config) ResolveFolder(folder string) string {
	if folder == "" || filepath.IsAbs(folder) {
		return folder
	}
	return filepath.Join(c.Library.Root, folder)
}

// MinPlaytime returns the button's minimum hold, DefaultMinPlaytimeSec when unset.
// Values below the button debounce are clamped by the registry.
func (b ButtonConfig) MinPlaytime() time.Duration {
	sec := DefaultMinPlaytimeSec
	if b.MinPlaytimeSec != nil {
		sec = *b.MinPlaytimeSec
	}
	return time.Duration(sec * float64(time.Second))
}

// DisplayName returns the name, or the source when no name is set.
func (b ButtonConfig) DisplayName() string {
	if b.Name != "" {
		return b.Name
	}
	return b.Source
}

// PollInterval returns the poll loop interval.
func (p PlaybackConfig) PollInterval() time.Duration {
	return time.Duration(p.PollIntervalMs) * time.Millisecond
}

// Buffer returns the speaker buffer length.
func (p PlaybackConfig) Buffer() time.Duration {
	return time.Duration(p.BufferMs) * time.Millisecond
}

// SimulatedTrackLength returns the length of every simulated track.
func (p PlaybackConfig) SimulatedTrackLength() time.Duration {
	return time.Duration(p.SimulatedTrackSec * float64(time.Second))
}

// Timeout returns the per-event hook timeout.
func (h HooksConfig) Timeout() time.Duration {
	return time.Duration(h.TimeoutMs) * time.Millisecond
}
