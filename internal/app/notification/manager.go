// Package notification provides the notification manager for broadcasting
// playback events to subscribed sinks.
package notification

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/windbox/internal/app/playback"
)

const (
	defaultBuffer  = 32
	defaultTimeout = 5 * time.Second
)

// Sink receives events from the manager.
type Sink interface {
	Name() string
	Handle(ctx context.Context, e playback.Event) error
}

// subscription represents a subscriber's subscription.
type subscription struct {
	id   string
	sink Sink
}

// Manager queues events from the buttons and delivers them to all sinks.
type Manager struct {
	mu            sync.RWMutex
	subscriptions map[string]*subscription

	events  chan playback.Event
	timeout time.Duration
	dropped atomic.Uint64
}

// NewManager creates a notification manager.
// buffer is the number of queued events, timeout bounds each sink delivery.
func NewManager(buffer int, timeout time.Duration) *Manager {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Manager{
		subscriptions: make(map[string]*subscription),
		events:        make(chan playback.Event, buffer),
		timeout:       timeout,
	}
}

// Subscribe adds a sink and returns the subscription ID.
func (m *Manager) Subscribe(sink Sink) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.New().String()
	m.subscriptions[id] = &subscription{
		id:   id,
		sink: sink,
	}
	zlog.Debug().Msgf("notification: subscribed: id=%s sink=%s", id, sink.Name())
	return id
}

// Unsubscribe removes a subscription.
func (m *Manager) Unsubscribe(subscriptionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subscriptions, subscriptionID)
}

// SubscriberCount returns the number of active subscribers.
func (m *Manager) SubscriberCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscriptions)
}

// Notify queues an event without blocking. The event is dropped when the queue is full.
func (m *Manager) Notify(e playback.Event) {
	select {
	case m.events <- e:
	default:
		m.dropped.Add(1)
		zlog.Warn().Msgf("notification: queue full, dropping event: type=%s button=%d", e.Type, e.ButtonID)
	}
}

// Dropped returns the number of events dropped because the queue was full.
func (m *Manager) Dropped() uint64 {
	return m.dropped.Load()
}

// Run delivers queued events until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case e := <-m.events:
			m.broadcast(ctx, e)
		}
	}
}

// broadcast sends e to every sink in parallel and waits for all of them.
func (m *Manager) broadcast(ctx context.Context, e playback.Event) {
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
			sendCtx, cancel := context.WithTimeout(ctx, m.timeout)
			defer cancel()

			if err := s.sink.Handle(sendCtx, e); err != nil {
				zlog.Warn().Err(err).Msgf("notification: sink failed: sink=%s type=%s", s.sink.Name(), e.Type)
			}
		}(sub)
	}
	wg.Wait()
}

// Close removes all subscriptions.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscriptions = make(map[string]*subscription)
}
