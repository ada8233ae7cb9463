// Package notification fans playback events out to subscribed sinks.
package notification

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/intervalbox/internal/app/playback"
)

// Sink receives playback events.
type Sink interface {
	Notify(event playback.Event) error
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(event playback.Event) error

// Notify calls f(event).
func (f SinkFunc) Notify(event playback.Event) error {
	return f(event)
}

// subscription represents a sink's subscription.
type subscription struct {
	id   string
	sink Sink
}

// Manager manages sink subscriptions and broadcasting.
type Manager struct {
	mu            sync.RWMutex
	subscriptions map[string]*subscription
	sequenceNo    uint64
	sequenceNoMu  sync.Mutex
	timeout       time.Duration
}

// NewManager creates a new notification manager.
func NewManager() *Manager {
	return &Manager{
		subscriptions: make(map[string]*subscription),
		timeout:       500 * time.Millisecond,
	}
}

// Subscribe adds a new subscription and returns the subscription ID.
func (m *Manager) Subscribe(sink Sink) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.New().String()
	m.subscriptions[id] = &subscription{
		id:   id,
		sink: sink,
	}
	return id
}

// Unsubscribe removes a subscription.
func (m *Manager) Unsubscribe(subscriptionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subscriptions, subscriptionID)
}

// SequenceNo returns the number of events broadcast so far.
func (m *Manager) SequenceNo() uint64 {
	m.sequenceNoMu.Lock()
	defer m.sequenceNoMu.Unlock()
	return m.sequenceNo
}

// Broadcast sends an event to all sinks.
// Each sink is called in its own goroutine with a timeout so that a slow sink
// cannot hold up the others.
func (m *Manager) Broadcast(event playback.Event) {
	m.sequenceNoMu.Lock()
	m.sequenceNo++
	seq := m.sequenceNo
	m.sequenceNoMu.Unlock()

	m.mu.RLock()
	// Copy subscriptions to avoid holding lock during sends
	subs := make([]*subscription, 0, len(m.subscriptions))
	for _, sub := range m.subscriptions {
		subs = append(subs, sub)
	}
	m.mu.RUnlock()

	var wg sync.WaitGroup
	for _, sub := range subs {
		wg.Add(1)
		go func(s *subscription) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
			defer cancel()

			done := make(chan error, 1)
			go func() {
				done <- s.sink.Notify(event)
			}()

			select {
			case err := <-done:
				if err != nil {
					zlog.Warn().Msgf("notification: sink failed: subscription=%s seq=%d event=%s err=%v",
						s.id, seq, event.Type, err)
				}
			case <-ctx.Done():
				zlog.Warn().Msgf("notification: sink timed out: subscription=%s seq=%d event=%s",
					s.id, seq, event.Type)
			}
		}(sub)
	}

	wg.Wait()
}

// Run broadcasts every event received on events until the channel is closed
// or ctx is done.
func (m *Manager) Run(ctx context.Context, events <-chan playback.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			m.Broadcast(event)
		}
	}
}

// SubscriberCount returns the number of active subscribers.
func (m *Manager) SubscriberCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscriptions)
}

// Close removes all subscriptions.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscriptions = make(map[string]*subscription)
}
