package playback

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/intervalbox/internal/domain/interval"
)

// Config holds controller configuration.
type Config struct {
	TickInterval  time.Duration   // Driver cadence, one second in production
	Labels        interval.Labels // Phase labels passed to the builder
	IdleLabel     string          // Status shown with the total preview
	CompleteLabel string          // Status shown after the last phase
	Clock         clockwork.Clock // Clock for the driver (real clock if nil)
}

// Status is a read-only snapshot of the playback state.
type Status struct {
	State     State
	RunID     string
	Position  int
	Remaining int
	Phases    int
	Phase     *interval.Phase
}

// Controller plays a phase sequence back one tick at a time.
// All operations and ticks are serialized by the controller mutex.
type Controller struct {
	mu sync.Mutex

	// Playback state
	state     State
	sequence  interval.Sequence
	position  int // -1 before the first advance
	remaining int
	runID     string

	// Driver
	generation uint64 // Bumped whenever the driver stops; stale ticks are dropped
	stopDriver func()

	// Presence hint
	presenceWanted bool
	presenceSeq    uint64
	presenceHeld   bool
	presenceHandle string

	// Collaborators
	settings SettingsSource
	surfaces Surfaces
	builder  interval.Builder

	// Configuration
	config Config
	clock  clockwork.Clock

	// Events
	eventCh chan Event
	closed  bool

	// Context
	ctx    context.Context
	cancel context.CancelFunc
}

// NewController creates a new playback controller in the idle state.
func NewController(settings SettingsSource, surfaces Surfaces, config Config) *Controller {
	if config.TickInterval <= 0 {
		config.TickInterval = time.Second
	}
	if config.IdleLabel == "" {
		config.IdleLabel = "Ready"
	}
	if config.CompleteLabel == "" {
		config.CompleteLabel = "Workout Complete"
	}
	clock := config.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		state:    StateIdle,
		position: -1,
		settings: settings,
		surfaces: surfaces.withDefaults(),
		builder:  interval.NewBuilder(config.Labels),
		config:   config,
		clock:    clock,
		eventCh:  make(chan Event, 32),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Events returns the event channel.
func (c *Controller) Events() <-chan Event {
	return c.eventCh
}

// Start builds a fresh sequence from the current settings and plays it from
// the first phase. It does nothing while already running. Starting from the
// paused state discards the paused position; use Resume to continue instead.
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.state == StateRunning {
		return
	}

	settings := c.settings.ReadSettings()
	if n := interval.PhaseCount(settings); n > interval.MaxPhases {
		zlog.Warn().Msgf("playback: too many phases, not starting: phases=%d max=%d", n, interval.MaxPhases)
		return
	}
	seq := c.builder.Build(settings)
	if seq.IsEmpty() {
		zlog.Warn().Msgf("playback: empty sequence, not starting: settings=%+v", settings)
		return
	}

	c.stopDriverLocked()

	c.sequence = seq
	c.position = -1
	c.remaining = 0
	c.runID = uuid.New().String()
	c.state = StateRunning

	zlog.Info().Msgf("playback: workout started: run_id=%s phases=%d total=%s",
		c.runID, len(seq), interval.FormatClock(interval.TotalDuration(seq)))

	c.sendEventLocked(Event{Type: EventStateChanged})

	c.advanceLocked()
	if c.state != StateRunning {
		return
	}

	c.startDriverLocked()
	c.acquirePresenceLocked()
}

// Pause stops the driver and keeps the current position and remaining time.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateRunning {
		return
	}

	c.stopDriverLocked()
	c.state = StatePaused
	c.releasePresenceLocked()

	zlog.Info().Msgf("playback: paused: run_id=%s position=%d remaining=%d", c.runID, c.position, c.remaining)

	c.sendEventLocked(Event{Type: EventStateChanged})
}

// Resume restarts the driver from the paused position without rebuilding
// the sequence.
func (c *Controller) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.state != StatePaused {
		return
	}

	c.state = StateRunning
	c.startDriverLocked()
	c.acquirePresenceLocked()

	zlog.Info().Msgf("playback: resumed: run_id=%s position=%d remaining=%d", c.runID, c.position, c.remaining)

	c.sendEventLocked(Event{Type: EventStateChanged})
}

// Reset stops playback, clears the state and shows the total time implied
// by the current settings. It is safe to call in any state.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopDriverLocked()

	c.state = StateIdle
	c.sequence = nil
	c.position = -1
	c.remaining = 0
	c.runID = ""

	total := c.previewLocked()
	c.surfaces.Display.Show(interval.FormatClock(total), c.config.IdleLabel)
	c.surfaces.Ambient.SetMode(ModeNeutral)
	c.releasePresenceLocked()

	zlog.Debug().Msgf("playback: reset: total=%d", total)

	c.sendEventLocked(Event{Type: EventStateChanged})
}

// OnSettingsChanged recomputes the total workout time from the current
// settings and returns it in seconds. The total is displayed only while no
// workout is loaded, so a running countdown is never overwritten.
func (c *Controller) OnSettingsChanged() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.previewLocked()
	// Running and paused keep the phase countdown on the display.
	if c.state == StateIdle || c.state == StateFinished {
		c.surfaces.Display.Show(interval.FormatClock(total), c.config.IdleLabel)
	}
	return total
}

// Tick advances playback by one second. It does nothing unless running.
// The driver calls it on its own; tests and custom hosts may call it directly.
func (c *Controller) Tick() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateRunning {
		return
	}
	c.tickLocked()
}

// IsRunning returns true while the driver is active.
func (c *Controller) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateRunning
}

// State returns the current playback state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns a copy of the current playback state.
func (c *Controller) Snapshot() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	status := Status{
		State:     c.state,
		RunID:     c.runID,
		Position:  c.position,
		Remaining: c.remaining,
		Phases:    len(c.sequence),
	}
	if phase, ok := c.currentPhaseLocked(); ok {
		status.Phase = &phase
	}
	return status
}

// Close stops playback and releases resources. The controller cannot be
// started again afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.stopDriverLocked()
	c.releasePresenceLocked()
	c.cancel()

	c.state = StateIdle
	c.sequence = nil
	c.position = -1
	c.remaining = 0

	c.closed = true
	close(c.eventCh)
}

// tickLocked decrements the remaining time and advances when the phase is
// exhausted. Must be called with lock held.
func (c *Controller) tickLocked() {
	phase, ok := c.currentPhaseLocked()
	if !ok {
		return
	}

	c.remaining--
	c.surfaces.Display.Show(interval.FormatClock(c.remaining), phase.Name)

	if c.remaining > 0 && c.remaining <= 3 {
		c.surfaces.Cue.PlayCountdown()
		c.sendEventLocked(Event{Type: EventCountdown})
	}

	if c.remaining < 0 {
		c.advanceLocked()
	}
}

// advanceLocked moves to the next phase or finishes the workout.
// Must be called with lock held.
func (c *Controller) advanceLocked() {
	c.position++
	if c.position >= len(c.sequence) {
		c.finishLocked()
		return
	}

	phase := c.sequence[c.position]
	c.remaining = phase.Duration

	c.surfaces.Display.Show(interval.FormatClock(c.remaining), phase.Name)
	c.surfaces.Ambient.SetMode(ModeFor(phase.Kind))
	if c.position > 0 {
		c.surfaces.Cue.PlayTransition()
	}

	zlog.Debug().Msgf("playback: phase started: run_id=%s index=%d kind=%s duration=%d",
		c.runID, c.position, phase.Kind, phase.Duration)

	c.sendEventLocked(Event{Type: EventPhaseStarted})
}

// finishLocked transitions to the terminal state.
// Must be called with lock held.
func (c *Controller) finishLocked() {
	c.stopDriverLocked()

	runID := c.runID
	total := len(c.sequence)

	c.sequence = nil
	c.position = 0
	c.remaining = 0
	c.state = StateFinished

	c.surfaces.Display.Show(interval.FormatClock(0), c.config.CompleteLabel)
	c.releasePresenceLocked()
	c.surfaces.Ambient.SetMode(ModeNeutral)

	zlog.Info().Msgf("playback: workout finished: run_id=%s phases=%d", runID, total)

	c.sendEventLocked(Event{Type: EventWorkoutFinished, Total: total})
}

// previewLocked returns the total duration implied by the current settings.
func (c *Controller) previewLocked() int {
	return interval.Total(c.settings.ReadSettings())
}

func (c *Controller) currentPhaseLocked() (interval.Phase, bool) {
	if c.position < 0 || c.position >= len(c.sequence) {
		return interval.Phase{}, false
	}
	return c.sequence[c.position], true
}

// startDriverLocked starts the ticker goroutine. Any previous driver is
// stopped first so that at most one driver exists.
func (c *Controller) startDriverLocked() {
	c.stopDriverLocked()

	gen := c.generation
	ticker := c.clock.NewTicker(c.config.TickInterval)
	done := make(chan struct{})
	c.stopDriver = func() {
		ticker.Stop()
		close(done)
	}

	go func() {
		for {
			select {
			case <-done:
				return
			case <-c.ctx.Done():
				return
			case <-ticker.Chan():
				c.onDriverTick(gen)
			}
		}
	}()
}

// stopDriverLocked stops the driver. Ticks already in flight see a new
// generation and are dropped.
func (c *Controller) stopDriverLocked() {
	if c.stopDriver == nil {
		return
	}
	c.stopDriver()
	c.stopDriver = nil
	c.generation++
}

func (c *Controller) onDriverTick(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation || c.state != StateRunning {
		return
	}
	c.tickLocked()
}

// acquirePresenceLocked requests the presence hint without waiting for it.
func (c *Controller) acquirePresenceLocked() {
	if c.presenceWanted {
		return
	}
	c.presenceWanted = true
	c.presenceSeq++
	seq := c.presenceSeq

	go func() {
		handle, err := c.surfaces.Presence.Acquire(c.ctx)

		c.mu.Lock()
		defer c.mu.Unlock()

		if err != nil {
			zlog.Warn().Msgf("playback: presence hint unavailable: %v", err)
			return
		}
		if !c.presenceWanted || seq != c.presenceSeq {
			// Released or re-requested while acquiring.
			c.surfaces.Presence.Release(handle)
			return
		}
		c.presenceHandle = handle
		c.presenceHeld = true
		zlog.Debug().Msgf("playback: presence hint acquired: handle=%s", handle)
	}()
}

// releasePresenceLocked releases the presence hint if it is held or pending.
func (c *Controller) releasePresenceLocked() {
	if !c.presenceWanted {
		return
	}
	c.presenceWanted = false
	if !c.presenceHeld {
		return
	}
	c.surfaces.Presence.Release(c.presenceHandle)
	zlog.Debug().Msgf("playback: presence hint released: handle=%s", c.presenceHandle)
	c.presenceHeld = false
	c.presenceHandle = ""
}

// sendEventLocked fills in the state fields and sends an event without
// blocking. Must be called with lock held.
func (c *Controller) sendEventLocked(e Event) {
	if c.closed {
		return
	}

	e.RunID = c.runID
	e.State = c.state
	e.Position = c.position
	e.Remaining = c.remaining
	if e.Total == 0 {
		e.Total = len(c.sequence)
	}
	if phase, ok := c.currentPhaseLocked(); ok {
		e.Phase = &phase
	}

	select {
	case c.eventCh <- e:
	default:
		// Channel full, drop event
	}
}
