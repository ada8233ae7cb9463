package playback

import "github.com/osa030/intervalbox/internal/domain/interval"

// EventType represents a playback event type.
type EventType int

const (
	EventPhaseStarted    EventType = iota // A phase became active
	EventStateChanged                     // Playback state changed (start/pause/resume/reset)
	EventCountdown                        // Remaining time reached 3, 2 or 1
	EventWorkoutFinished                  // Advanced past the last phase
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventPhaseStarted:
		return "phase_started"
	case EventStateChanged:
		return "state_changed"
	case EventCountdown:
		return "countdown"
	case EventWorkoutFinished:
		return "workout_finished"
	default:
		return "unknown"
	}
}

// Event represents a playback event.
type Event struct {
	Type      EventType
	RunID     string          // Identifies one Start..Finish/Reset run
	State     State           // Current playback state
	Phase     *interval.Phase // Active phase (nil when none)
	Position  int             // Index of the active phase
	Total     int             // Number of phases in the run
	Remaining int             // Seconds left in the active phase
}
