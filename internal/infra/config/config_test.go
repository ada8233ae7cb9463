package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/intervalbox/internal/domain/interval"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "timer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, interval.Settings{Work: 20, Rest: 10, Exercises: 3, Rounds: 2, RoundReset: 15}, cfg.Settings())
	assert.Equal(t, time.Second, cfg.TickInterval())
	assert.Equal(t, interval.DefaultLabels(), cfg.PhaseLabels())
	assert.Equal(t, "Ready", cfg.Labels.Idle)
	assert.Equal(t, "Workout Complete", cfg.Labels.Complete)
	assert.True(t, cfg.IsBellEnabled())
	assert.True(t, cfg.Presence.Enabled)
}

func TestLoad_FileValues(t *testing.T) {
	path := writeConfig(t, `
workout:
  work_sec: 45
  rest_sec: 0
  exercises: 5
  rounds: 4
  round_reset_sec: 60
  preset: tabata
presets:
  tabata:
    work: 20
    rest: 10
    exercises: 8
    rounds: 1
playback:
  tick_interval_ms: 500
labels:
  work: Go
display:
  color: never
  bell: false
presence:
  enabled: false
  command: ["true"]
hooks:
  on_finished:
    - echo done
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, interval.Settings{Work: 45, Rest: 0, Exercises: 5, Rounds: 4, RoundReset: 60}, cfg.Settings())
	assert.Equal(t, "tabata", cfg.Workout.Preset)
	assert.Equal(t, 500*time.Millisecond, cfg.TickInterval())
	assert.Equal(t, "Go", cfg.PhaseLabels().Work)
	assert.Equal(t, "Rest", cfg.PhaseLabels().Rest)
	assert.Equal(t, "never", cfg.Display.Color)
	assert.False(t, cfg.IsBellEnabled())
	assert.False(t, cfg.IsPresenceEnabled())
	assert.Equal(t, []string{"true"}, cfg.Presence.Command)
	assert.Equal(t, []string{"echo done"}, cfg.Hooks.OnFinished)

	preset, ok := cfg.Preset("tabata")
	require.True(t, ok)
	assert.Equal(t, 8, preset["exercises"])
	assert.Equal(t, []string{"tabata"}, cfg.PresetNames())
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{
			name:    "negative work",
			content: "workout:\n  work_sec: -1\n",
			errMsg:  "WorkSec",
		},
		{
			name:    "tick interval too small",
			content: "playback:\n  tick_interval_ms: 1\n",
			errMsg:  "TickIntervalMs",
		},
		{
			name:    "invalid color mode",
			content: "display:\n  color: rainbow\n",
			errMsg:  "Color",
		},
		{
			name:    "undefined preset",
			content: "workout:\n  preset: emom\n",
			errMsg:  "emom",
		},
		{
			name:    "malformed yaml",
			content: "workout: [",
			errMsg:  "failed to parse config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadOrDefault(t *testing.T) {
	cfg, found, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 20, cfg.Workout.WorkSec)

	cfg, found, err = LoadOrDefault(writeConfig(t, "workout:\n  rounds: 6\n"))
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 6, cfg.Workout.Rounds)
	assert.Equal(t, 20, cfg.Workout.WorkSec)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("INTERVAL_PRESENCE_COMMAND", "my-inhibit --idle")
	t.Setenv("NO_COLOR", "")
	t.Setenv("INTERVAL_PRESET", "hiit")

	cfg, err := Load(writeConfig(t, "presets:\n  hiit:\n    work: 40\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"my-inhibit", "--idle"}, cfg.Presence.Command)
	assert.Equal(t, "never", cfg.Display.Color)
	assert.Equal(t, "hiit", cfg.Workout.Preset)
}

func TestDefaultPresenceCommand(t *testing.T) {
	assert.Equal(t, "systemd-inhibit", DefaultPresenceCommand("linux")[0])
	assert.Equal(t, "caffeinate", DefaultPresenceCommand("darwin")[0])
	assert.Nil(t, DefaultPresenceCommand("plan9"))
}
