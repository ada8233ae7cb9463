// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/osa030/intervalbox/internal/domain/interval"
)

// Config represents the application configuration.
type Config struct {
	Workout  WorkoutConfig             `yaml:"workout"`
	Presets  map[string]map[string]any `yaml:"presets"`
	Playback PlaybackConfig            `yaml:"playback"`
	Labels   LabelsConfig              `yaml:"labels"`
	Display  DisplayConfig             `yaml:"display"`
	Presence PresenceConfig            `yaml:"presence"`
	Hooks    HooksConfig               `yaml:"hooks"`
}

// WorkoutConfig represents the initial workout settings.
type WorkoutConfig struct {
	WorkSec       int    `yaml:"work_sec" default:"20" validate:"gte=0"`
	RestSec       int    `yaml:"rest_sec" default:"10" validate:"gte=0"`
	Exercises     int    `yaml:"exercises" default:"3" validate:"gte=0"`
	Rounds        int    `yaml:"rounds" default:"2" validate:"gte=0"`
	RoundResetSec int    `yaml:"round_reset_sec" default:"15" validate:"gte=0"`
	Preset        string `yaml:"preset"`
}

// PlaybackConfig represents playback driver configuration.
type PlaybackConfig struct {
	TickIntervalMs int `yaml:"tick_interval_ms" default:"1000" validate:"gte=10,lte=60000"`
}

// LabelsConfig represents the status labels shown on the display.
type LabelsConfig struct {
	Ready    string `yaml:"ready" default:"Get Ready"`
	Work     string `yaml:"work" default:"Work"`
	Rest     string `yaml:"rest" default:"Rest"`
	Reset    string `yaml:"reset" default:"Round Reset"`
	Idle     string `yaml:"idle" default:"Ready"`
	Complete string `yaml:"complete" default:"Workout Complete"`
}

// DisplayConfig represents terminal display configuration.
type DisplayConfig struct {
	Color string `yaml:"color" default:"auto" validate:"oneof=auto always never"`
	Bell  bool   `yaml:"bell" default:"true"`
}

// PresenceConfig represents keep-awake configuration.
type PresenceConfig struct {
	Enabled bool     `yaml:"enabled" default:"true"`
	Command []string `yaml:"command"`
}

// HooksConfig represents workout lifecycle hooks configuration.
type HooksConfig struct {
	OnStarted  []string `yaml:"on_started"`
	OnFinished []string `yaml:"on_finished"`
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}
	return parse(data)
}

// LoadOrDefault loads the configuration file if it exists and falls back to
// the defaults otherwise.
func LoadOrDefault(path string) (*Config, bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg, err := parse(nil)
		return cfg, false, err
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to read config file")
	}
	cfg, err := parse(data)
	return cfg, true, err
}

func parse(data []byte) (*Config, error) {
	var cfg Config

	// Defaults go in first so that an explicit 0 in the file is kept.
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	// Override with environment variables
	cfg.overrideFromEnv()

	if len(cfg.Presence.Command) == 0 {
		cfg.Presence.Command = DefaultPresenceCommand(runtime.GOOS)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("INTERVAL_PRESET"); v != "" {
		c.Workout.Preset = v
	}
	if v := os.Getenv("INTERVAL_PRESENCE_COMMAND"); v != "" {
		c.Presence.Command = strings.Fields(v)
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		c.Display.Color = "never"
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}

	if c.Workout.Preset != "" {
		if _, ok := c.Presets[c.Workout.Preset]; !ok {
			return errors.Newf("preset %q is not defined (available: %s)",
				c.Workout.Preset, strings.Join(c.PresetNames(), ", "))
		}
	}

	return nil
}

// Settings returns the workout settings from the workout section.
func (c *Config) Settings() interval.Settings {
	return interval.Settings{
		Work:       c.Workout.WorkSec,
		Rest:       c.Workout.RestSec,
		Exercises:  c.Workout.Exercises,
		Rounds:     c.Workout.Rounds,
		RoundReset: c.Workout.RoundResetSec,
	}
}

// PhaseLabels returns the labels used for phase names.
func (c *Config) PhaseLabels() interval.Labels {
	return interval.Labels{
		Ready: c.Labels.Ready,
		Work:  c.Labels.Work,
		Rest:  c.Labels.Rest,
		Reset: c.Labels.Reset,
	}
}

// TickInterval returns the driver cadence.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Playback.TickIntervalMs) * time.Millisecond
}

// PresetNames returns the defined preset names in sorted order.
func (c *Config) PresetNames() []string {
	names := make([]string, 0, len(c.Presets))
	for name := range c.Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Preset returns the raw values of a named preset.
func (c *Config) Preset(name string) (map[string]any, bool) {
	p, ok := c.Presets[name]
	return p, ok
}

// IsBellEnabled checks if audible cues are enabled.
func (c *Config) IsBellEnabled() bool {
	return c.Display.Bell
}

// IsPresenceEnabled checks if the keep-awake hint is enabled.
func (c *Config) IsPresenceEnabled() bool {
	return c.Presence.Enabled && len(c.Presence.Command) > 0
}

// DefaultPresenceCommand returns the keep-awake command for an OS.
// It returns nil when no command is known.
func DefaultPresenceCommand(goos string) []string {
	switch goos {
	case "linux":
		return []string{"systemd-inhibit", "--what=idle:sleep", "--who=intervalbox", "--why=workout running", "sleep", "infinity"}
	case "darwin":
		return []string{"caffeinate", "-d", "-i"}
	default:
		return nil
	}
}
