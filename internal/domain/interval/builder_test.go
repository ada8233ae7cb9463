package interval

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_ScenarioSequence(t *testing.T) {
	seq := Build(Settings{Work: 20, Rest: 10, Exercises: 3, Rounds: 2, RoundReset: 15})

	expected := Sequence{
		{Name: "Get Ready", Duration: 5, Kind: KindReady},
		{Name: "Work", Duration: 20, Kind: KindWork},
		{Name: "Rest", Duration: 10, Kind: KindRest},
		{Name: "Work", Duration: 20, Kind: KindWork},
		{Name: "Rest", Duration: 10, Kind: KindRest},
		{Name: "Work", Duration: 20, Kind: KindWork},
		{Name: "Round Reset", Duration: 15, Kind: KindReset},
		{Name: "Work", Duration: 20, Kind: KindWork},
		{Name: "Rest", Duration: 10, Kind: KindRest},
		{Name: "Work", Duration: 20, Kind: KindWork},
		{Name: "Rest", Duration: 10, Kind: KindRest},
		{Name: "Work", Duration: 20, Kind: KindWork},
	}

	assert.Equal(t, expected, seq)
	assert.Equal(t, 180, TotalDuration(seq))
}

func TestBuild_OnlyReadyPhase(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
	}{
		{
			name:     "zero exercises",
			settings: Settings{Work: 20, Rest: 10, Exercises: 0, Rounds: 3, RoundReset: 15},
		},
		{
			name:     "zero rounds",
			settings: Settings{Work: 20, Rest: 10, Exercises: 4, Rounds: 0, RoundReset: 15},
		},
		{
			name:     "all zero",
			settings: Settings{},
		},
		{
			name:     "negative counts",
			settings: Settings{Work: 20, Rest: 10, Exercises: -2, Rounds: -1, RoundReset: 15},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq := Build(tt.settings)

			require.Len(t, seq, 1)
			assert.Equal(t, Phase{Name: "Get Ready", Duration: ReadyDuration, Kind: KindReady}, seq[0])
			assert.Equal(t, 5, TotalDuration(seq))
		})
	}
}

func TestBuild_PhaseCount(t *testing.T) {
	for exercises := 1; exercises <= 6; exercises++ {
		for rounds := 1; rounds <= 5; rounds++ {
			seq := Build(Settings{Work: 30, Rest: 15, Exercises: exercises, Rounds: rounds, RoundReset: 60})

			want := 1 + rounds*exercises + rounds*(exercises-1) + (rounds - 1)
			assert.Equal(t, want, seq.Len(), "exercises=%d rounds=%d", exercises, rounds)

			counts := seq.Counts()
			assert.Equal(t, 1, counts[KindReady])
			assert.Equal(t, rounds*exercises, counts[KindWork])
			assert.Equal(t, rounds*(exercises-1), counts[KindRest])
			assert.Equal(t, rounds-1, counts[KindReset])
		}
	}
}

func TestBuild_Ordering(t *testing.T) {
	for exercises := 0; exercises <= 4; exercises++ {
		for rounds := 0; rounds <= 4; rounds++ {
			seq := Build(Settings{Work: 1, Rest: 2, Exercises: exercises, Rounds: rounds, RoundReset: 3})

			require.NotEmpty(t, seq)
			assert.Equal(t, KindReady, seq[0].Kind)
			assert.Equal(t, ReadyDuration, seq[0].Duration)

			last := seq[len(seq)-1].Kind
			assert.NotEqual(t, KindRest, last, "sequence must not end with rest")
			assert.NotEqual(t, KindReset, last, "sequence must not end with reset")

			for i := 1; i < len(seq); i++ {
				prev, cur := seq[i-1].Kind, seq[i].Kind
				if cur == KindRest || cur == KindReset {
					assert.Equal(t, KindWork, prev, "%s must follow work (index %d)", cur, i)
				}
				if prev == KindRest {
					assert.Equal(t, KindWork, cur, "rest must precede work (index %d)", i)
				}
				assert.NotEqual(t, KindReady, cur, "ready only at index 0")
			}
		}
	}
}

func TestBuild_NegativeDurationsClampToZero(t *testing.T) {
	seq := Build(Settings{Work: -5, Rest: -1, Exercises: 2, Rounds: 2, RoundReset: -30})

	for _, p := range seq[1:] {
		assert.Equal(t, 0, p.Duration, "phase %s", p.Kind)
	}
	assert.Equal(t, ReadyDuration, TotalDuration(seq))
}

func TestBuilder_CustomLabels(t *testing.T) {
	b := NewBuilder(Labels{Work: "Go", Reset: "Breathe"})
	seq := b.Build(Settings{Work: 10, Rest: 5, Exercises: 2, Rounds: 2, RoundReset: 20})

	assert.Equal(t, "Get Ready", seq[0].Name)
	assert.Equal(t, "Go", seq[1].Name)
	assert.Equal(t, "Rest", seq[2].Name)
	assert.Equal(t, "Breathe", seq[4].Name)
}

func TestLabels_Label(t *testing.T) {
	labels := DefaultLabels()

	assert.Equal(t, "Get Ready", labels.Label(KindReady))
	assert.Equal(t, "Work", labels.Label(KindWork))
	assert.Equal(t, "Rest", labels.Label(KindRest))
	assert.Equal(t, "Round Reset", labels.Label(KindReset))
	assert.Equal(t, "other", labels.Label(Kind("other")))
}

func TestTotal_MatchesBuiltSequence(t *testing.T) {
	for exercises := -1; exercises <= 5; exercises++ {
		for rounds := -1; rounds <= 4; rounds++ {
			s := Settings{Work: 30, Rest: -4, Exercises: exercises, Rounds: rounds, RoundReset: 45}
			seq := Build(s)

			assert.Equal(t, TotalDuration(seq), Total(s), "exercises=%d rounds=%d", exercises, rounds)
			assert.Equal(t, seq.Len(), PhaseCount(s), "exercises=%d rounds=%d", exercises, rounds)
		}
	}
}

func TestBuild_HugeCounts(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
	}{
		{
			name:     "huge rounds",
			settings: Settings{Work: 20, Rest: 10, Exercises: 3, Rounds: 2000000000000000000, RoundReset: 15},
		},
		{
			name:     "huge exercises",
			settings: Settings{Work: 20, Rest: 10, Exercises: math.MaxInt, Rounds: 1},
		},
		{
			name:     "huge both",
			settings: Settings{Work: math.MaxInt, Rest: math.MaxInt, Exercises: math.MaxInt, Rounds: math.MaxInt, RoundReset: math.MaxInt},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seq Sequence
			require.NotPanics(t, func() { seq = Build(tt.settings) })

			assert.Len(t, seq, MaxPhases)
			assert.Equal(t, KindReady, seq[0].Kind)
			assert.Equal(t, math.MaxInt, PhaseCount(tt.settings))
			assert.Equal(t, math.MaxInt, Total(tt.settings))
		})
	}
}

func TestPhaseCount_AtLimit(t *testing.T) {
	// 2 * rounds * exercises phases
	s := Settings{Work: 1, Rest: 1, Exercises: 50, Rounds: MaxPhases / 100, RoundReset: 1}

	assert.Equal(t, MaxPhases, PhaseCount(s))
	assert.Len(t, Build(s), MaxPhases)
	assert.Equal(t, TotalDuration(Build(s)), Total(s))
}
