package interval

import "math"

const (
	// ReadyDuration is the fixed length of the leading "Get Ready" phase in seconds.
	ReadyDuration = 5

	// MaxPhases bounds the length of a built sequence.
	MaxPhases = 10000
)

// Settings holds the five workout inputs.
type Settings struct {
	Work       int // Work phase duration in seconds
	Rest       int // Rest between exercises in seconds
	Exercises  int // Exercises per round
	Rounds     int // Number of rounds
	RoundReset int // Pause between rounds in seconds
}

// Labels holds the status label used for each phase kind.
type Labels struct {
	Ready string
	Work  string
	Rest  string
	Reset string
}

// DefaultLabels returns the built-in phase labels.
func DefaultLabels() Labels {
	return Labels{
		Ready: "Get Ready",
		Work:  "Work",
		Rest:  "Rest",
		Reset: "Round Reset",
	}
}

// Label returns the label for the given kind.
func (l Labels) Label(kind Kind) string {
	switch kind {
	case KindReady:
		return l.Ready
	case KindWork:
		return l.Work
	case KindRest:
		return l.Rest
	case KindReset:
		return l.Reset
	default:
		return string(kind)
	}
}

// Builder builds sequences with a fixed set of labels.
type Builder struct {
	Labels Labels
}

// NewBuilder creates a builder. Empty labels fall back to the defaults.
func NewBuilder(labels Labels) Builder {
	def := DefaultLabels()
	if labels.Ready == "" {
		labels.Ready = def.Ready
	}
	if labels.Work == "" {
		labels.Work = def.Work
	}
	if labels.Rest == "" {
		labels.Rest = def.Rest
	}
	if labels.Reset == "" {
		labels.Reset = def.Reset
	}
	return Builder{Labels: labels}
}

// Build builds a sequence using the default labels.
func Build(s Settings) Sequence {
	return NewBuilder(DefaultLabels()).Build(s)
}

// Build composes the phase sequence for the given settings.
//
// The sequence always starts with a ready phase. Each round is a run of work
// phases separated by rest phases, and rounds are separated by reset phases.
// No rest follows the last exercise of a round and no reset follows the last
// round. Negative durations are treated as zero; counts are taken as given.
// The sequence is cut off at MaxPhases.
func (b Builder) Build(s Settings) Sequence {
	work := nonNegative(s.Work)
	rest := nonNegative(s.Rest)
	roundReset := nonNegative(s.RoundReset)

	seq := make(Sequence, 0, min(PhaseCount(s), MaxPhases))
	seq = append(seq, Phase{Name: b.Labels.Label(KindReady), Duration: ReadyDuration, Kind: KindReady})

	for i := 0; i < s.Rounds; i++ {
		if s.Exercises <= 0 {
			break
		}
		for j := 0; j < s.Exercises; j++ {
			if len(seq) >= MaxPhases {
				return seq[:MaxPhases]
			}
			seq = append(seq, Phase{Name: b.Labels.Label(KindWork), Duration: work, Kind: KindWork})
			if j < s.Exercises-1 {
				seq = append(seq, Phase{Name: b.Labels.Label(KindRest), Duration: rest, Kind: KindRest})
			}
		}
		if i < s.Rounds-1 {
			seq = append(seq, Phase{Name: b.Labels.Label(KindReset), Duration: roundReset, Kind: KindReset})
		}
	}

	if len(seq) > MaxPhases {
		seq = seq[:MaxPhases]
	}
	return seq
}

// PhaseCount returns the number of phases Build would produce without the
// MaxPhases cut-off. It saturates at math.MaxInt.
func PhaseCount(s Settings) int {
	if s.Rounds <= 0 || s.Exercises <= 0 {
		return 1
	}
	// 1 ready + rounds*(2*exercises-1) work/rest + (rounds-1) resets
	return mulSat(mulSat(2, s.Rounds), s.Exercises)
}

// Total returns the total duration of the sequence for s in seconds without
// building it. It saturates at math.MaxInt.
func Total(s Settings) int {
	if s.Rounds <= 0 || s.Exercises <= 0 {
		return ReadyDuration
	}
	works := mulSat(s.Rounds, s.Exercises)
	rests := mulSat(s.Rounds, s.Exercises-1)
	resets := s.Rounds - 1

	total := ReadyDuration
	total = addSat(total, mulSat(works, nonNegative(s.Work)))
	total = addSat(total, mulSat(rests, nonNegative(s.Rest)))
	total = addSat(total, mulSat(resets, nonNegative(s.RoundReset)))
	return total
}

func nonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// mulSat multiplies two non-negative ints, saturating at math.MaxInt.
func mulSat(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	if a > math.MaxInt/b {
		return math.MaxInt
	}
	return a * b
}

// addSat adds two non-negative ints, saturating at math.MaxInt.
func addSat(a, b int) int {
	if a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}
