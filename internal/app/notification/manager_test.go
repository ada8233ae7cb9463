package notification

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/intervalbox/internal/app/playback"
	"github.com/osa030/intervalbox/internal/domain/interval"
)

type collector struct {
	mu     sync.Mutex
	events []playback.Event
}

func (c *collector) Notify(e playback.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
	return nil
}

func (c *collector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func TestManager_SubscribeBroadcast(t *testing.T) {
	m := NewManager()
	a, b := &collector{}, &collector{}

	idA := m.Subscribe(a)
	idB := m.Subscribe(b)
	assert.NotEqual(t, idA, idB)
	assert.Equal(t, 2, m.SubscriberCount())

	m.Broadcast(playback.Event{Type: playback.EventPhaseStarted})
	assert.Equal(t, 1, a.count())
	assert.Equal(t, 1, b.count())

	m.Unsubscribe(idA)
	m.Broadcast(playback.Event{Type: playback.EventCountdown})
	assert.Equal(t, 1, a.count())
	assert.Equal(t, 2, b.count())
	assert.Equal(t, uint64(2), m.SequenceNo())

	m.Close()
	assert.Equal(t, 0, m.SubscriberCount())
}

func TestManager_SlowAndFailingSinks(t *testing.T) {
	m := NewManager()
	m.timeout = 20 * time.Millisecond

	block := make(chan struct{})
	defer close(block)

	m.Subscribe(SinkFunc(func(playback.Event) error {
		<-block
		return nil
	}))
	m.Subscribe(SinkFunc(func(playback.Event) error {
		return errors.New("sink down")
	}))
	fast := &collector{}
	m.Subscribe(fast)

	start := time.Now()
	m.Broadcast(playback.Event{Type: playback.EventWorkoutFinished})

	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 1, fast.count())
}

func TestManager_Run(t *testing.T) {
	m := NewManager()
	c := &collector{}
	m.Subscribe(c)

	events := make(chan playback.Event, 3)
	events <- playback.Event{Type: playback.EventStateChanged}
	events <- playback.Event{Type: playback.EventPhaseStarted}
	close(events)

	done := make(chan struct{})
	go func() {
		m.Run(context.Background(), events)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after the channel closed")
	}
	assert.Equal(t, 2, c.count())
}

type hookCall struct {
	command string
	env     []string
}

func TestHookSink(t *testing.T) {
	var mu sync.Mutex
	var calls []hookCall
	runner := func(command string, env []string) error {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, hookCall{command: command, env: env})
		return nil
	}
	snapshot := func() []hookCall {
		mu.Lock()
		defer mu.Unlock()
		return append([]hookCall(nil), calls...)
	}

	sink := &HookSink{
		OnStarted:  []string{"notify-send start"},
		OnFinished: []string{"notify-send done", "echo finished"},
		Runner:     runner,
	}
	ready := interval.Phase{Name: "Get Ready", Duration: 5, Kind: interval.KindReady}

	require.NoError(t, sink.Notify(playback.Event{Type: playback.EventPhaseStarted, RunID: "run-1", Position: 0, Phase: &ready}))
	require.Eventually(t, func() bool { return len(snapshot()) == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, sink.Notify(playback.Event{Type: playback.EventPhaseStarted, RunID: "run-1", Position: 3}))
	require.NoError(t, sink.Notify(playback.Event{Type: playback.EventCountdown, RunID: "run-1"}))
	require.NoError(t, sink.Notify(playback.Event{Type: playback.EventWorkoutFinished, RunID: "run-1"}))
	require.Eventually(t, func() bool { return len(snapshot()) == 3 }, time.Second, 5*time.Millisecond)

	got := snapshot()
	assert.Equal(t, "notify-send start", got[0].command)
	assert.Contains(t, got[0].env, "INTERVAL_RUN_ID=run-1")
	assert.Contains(t, got[0].env, "INTERVAL_STAGE=on_started")
	assert.Equal(t, "notify-send done", got[1].command)
	assert.Equal(t, "echo finished", got[2].command)
	assert.Contains(t, got[2].env, "INTERVAL_STAGE=on_finished")
}

func TestLogSink(t *testing.T) {
	sink := LogSink()
	work := interval.Phase{Name: "Work", Duration: 20, Kind: interval.KindWork}

	assert.NoError(t, sink.Notify(playback.Event{Type: playback.EventPhaseStarted, Phase: &work, Position: 1, Total: 12}))
	assert.NoError(t, sink.Notify(playback.Event{Type: playback.EventWorkoutFinished}))
	assert.NoError(t, sink.Notify(playback.Event{Type: playback.EventStateChanged}))
}
