// Package settings provides the mutable workout settings source.
package settings

import (
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/mitchellh/mapstructure"

	"github.com/osa030/intervalbox/internal/domain/interval"
)

// Field names accepted by Set and Apply.
const (
	FieldWork       = "work"
	FieldRest       = "rest"
	FieldExercises  = "exercises"
	FieldRounds     = "rounds"
	FieldRoundReset = "round_reset"
)

// ErrUnknownField is returned when a field name is not one of the five settings.
var ErrUnknownField = errors.New("unknown settings field")

// Fields returns the accepted field names in display order.
func Fields() []string {
	return []string{FieldWork, FieldRest, FieldExercises, FieldRounds, FieldRoundReset}
}

// values mirrors interval.Settings with decoding tags.
type values struct {
	Work       int `mapstructure:"work"`
	Rest       int `mapstructure:"rest"`
	Exercises  int `mapstructure:"exercises"`
	Rounds     int `mapstructure:"rounds"`
	RoundReset int `mapstructure:"round_reset"`
}

// Store holds the current settings and notifies listeners on change.
type Store struct {
	mu        sync.RWMutex
	current   interval.Settings
	listeners []func(interval.Settings)
}

// NewStore creates a store with the given initial settings.
func NewStore(initial interval.Settings) *Store {
	return &Store{current: initial}
}

// ReadSettings returns the current settings.
func (s *Store) ReadSettings() interval.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// OnChange registers a listener called after every change.
func (s *Store) OnChange(fn func(interval.Settings)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Replace replaces all settings at once.
func (s *Store) Replace(next interval.Settings) {
	s.mu.Lock()
	s.current = next
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	notify(listeners, next)
}

// Set updates a single field from text input.
// A value that is not a number is stored as 0.
func (s *Store) Set(field, value string) error {
	return s.Apply(map[string]any{strings.ToLower(strings.TrimSpace(field)): value})
}

// Apply merges a partial set of values into the current settings.
// Keys are field names; values may be numbers or numeric strings. Values that
// cannot be read as a finite number are stored as 0.
func (s *Store) Apply(input map[string]any) error {
	s.mu.Lock()
	next, err := Decode(s.current, input)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.current = next
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	notify(listeners, next)
	return nil
}

// Decode merges input onto base and returns the result. Unknown keys are
// rejected with ErrUnknownField.
func Decode(base interval.Settings, input map[string]any) (interval.Settings, error) {
	v := values{
		Work:       base.Work,
		Rest:       base.Rest,
		Exercises:  base.Exercises,
		Rounds:     base.Rounds,
		RoundReset: base.RoundReset,
	}

	var md mapstructure.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       lenientIntHook,
		Result:           &v,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		Metadata:         &md,
	})
	if err != nil {
		return base, errors.Wrap(err, "failed to create decoder")
	}

	if err := decoder.Decode(input); err != nil {
		return base, errors.Wrap(err, "failed to decode settings")
	}

	if len(md.Unused) > 0 {
		return base, errors.Wrapf(ErrUnknownField, "%s", strings.Join(md.Unused, ", "))
	}

	return interval.Settings{
		Work:       v.Work,
		Rest:       v.Rest,
		Exercises:  v.Exercises,
		Rounds:     v.Rounds,
		RoundReset: v.RoundReset,
	}, nil
}

// lenientIntHook turns any input destined for an int field into an int.
// Unparseable text and non-finite floats become 0.
var lenientIntHook mapstructure.DecodeHookFuncType = func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to.Kind() != reflect.Int {
		return data, nil
	}
	return toInt(data), nil
}

func toInt(data interface{}) int {
	switch v := data.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case int32:
		return int(v)
	case uint:
		return int(v)
	case uint64:
		return int(v)
	case float64:
		return finiteInt(v)
	case float32:
		return finiteInt(float64(v))
	case bool:
		if v {
			return 1
		}
		return 0
	case string:
		text := strings.TrimSpace(v)
		if n, err := strconv.Atoi(text); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(text, 64); err == nil {
			return finiteInt(f)
		}
		return 0
	default:
		return 0
	}
}

func finiteInt(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(f)
}

func notify(listeners []func(interval.Settings), s interval.Settings) {
	for _, fn := range listeners {
		fn(s)
	}
}
