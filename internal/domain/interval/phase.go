// Package interval provides the Phase and Sequence domain entities.
package interval

import "fmt"

// Kind represents the kind of a phase.
type Kind string

const (
	KindReady Kind = "ready"
	KindWork  Kind = "work"
	KindRest  Kind = "rest"
	KindReset Kind = "reset"
)

// Phase represents one timed segment of a workout.
// Phases are values and are never mutated once built.
type Phase struct {
	Name     string // Status label shown while the phase runs
	Duration int    // Duration in seconds
	Kind     Kind   // Phase kind
}

// Sequence is the ordered list of phases for one workout run.
type Sequence []Phase

// Len returns the number of phases.
func (s Sequence) Len() int {
	return len(s)
}

// IsEmpty returns true if the sequence has no phases.
func (s Sequence) IsEmpty() bool {
	return len(s) == 0
}

// Counts returns the number of phases per kind.
func (s Sequence) Counts() map[Kind]int {
	counts := make(map[Kind]int, 4)
	for _, p := range s {
		counts[p.Kind]++
	}
	return counts
}

// TotalDuration returns the total duration of all phases in seconds.
func TotalDuration(seq Sequence) int {
	total := 0
	for _, p := range seq {
		total += p.Duration
	}
	return total
}

// FormatClock formats seconds as "MM:SS".
// Negative values are shown as "00:00". Minutes are not wrapped into hours.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
