// Package playback provides the timer-driven workout playback controller.
package playback

// State represents the playback state.
type State int

const (
	StateIdle     State = iota // Nothing loaded, total preview shown
	StateRunning               // Driver active, a phase is counting down
	StatePaused                // Driver stopped, position and remaining kept
	StateFinished              // Past the last phase, needs Start to leave
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}
