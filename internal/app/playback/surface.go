package playback

import (
	"context"

	"github.com/osa030/intervalbox/internal/domain/interval"
)

// Mode is the ambient cue mode. Phase kinds map one to one; ModeNeutral is
// used whenever no phase is active.
type Mode string

const ModeNeutral Mode = "neutral"

// ModeFor returns the ambient mode for a phase kind.
func ModeFor(kind interval.Kind) Mode {
	return Mode(kind)
}

// SettingsSource provides the current workout settings on demand.
type SettingsSource interface {
	ReadSettings() interval.Settings
}

// Display shows the countdown and status label.
type Display interface {
	Show(timeText, statusText string)
}

// Cue plays short signals. Implementations may ignore them.
type Cue interface {
	PlayCountdown()
	PlayTransition()
}

// Ambient sets the ambient cue (e.g. background colour).
type Ambient interface {
	SetMode(mode Mode)
}

// PresenceHint keeps the display awake while a workout runs.
// Acquire may block and may fail; the controller never waits for it.
type PresenceHint interface {
	Acquire(ctx context.Context) (string, error)
	Release(handle string)
}

// Surfaces groups the output collaborators of the controller.
// Nil members are replaced by no-op implementations.
type Surfaces struct {
	Display  Display
	Cue      Cue
	Ambient  Ambient
	Presence PresenceHint
}

type nopSurface struct{}

func (nopSurface) Show(string, string) {}
func (nopSurface) PlayCountdown()      {}
func (nopSurface) PlayTransition()     {}
func (nopSurface) SetMode(Mode)        {}

type nopPresence struct{}

func (nopPresence) Acquire(context.Context) (string, error) { return "", nil }
func (nopPresence) Release(string)                          {}

func (s Surfaces) withDefaults() Surfaces {
	if s.Display == nil {
		s.Display = nopSurface{}
	}
	if s.Cue == nil {
		s.Cue = nopSurface{}
	}
	if s.Ambient == nil {
		s.Ambient = nopSurface{}
	}
	if s.Presence == nil {
		s.Presence = nopPresence{}
	}
	return s
}
