package input

import (
	"context"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
)

// Manual is an in-memory source pressed programmatically.
type Manual struct {
	mu       sync.RWMutex
	bindings map[string]func()
}

// NewManual creates an empty manual source.
func NewManual() *Manual {
	return &Manual{
		bindings: make(map[string]func()),
	}
}

// Bind registers a callback for source. A later Bind replaces the earlier one.
func (m *Manual) Bind(source string, onPress func()) error {
	if source == "" {
		return errors.New("source must not be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bindings[source] = onPress
	return nil
}

// Press invokes the callback bound to source and waits for it to return.
func (m *Manual) Press(source string) error {
	m.mu.RLock()
	onPress, ok := m.bindings[source]
	m.mu.RUnlock()
	if !ok {
		return errors.Wrapf(ErrUnknownSource, "source=%s", source)
	}
	onPress()
	return nil
}

// PressAsync invokes the callback on its own goroutine, like a hardware driver.
// The returned channel is closed once the callback returns.
func (m *Manual) PressAsync(source string) (<-chan struct{}, error) {
	m.mu.RLock()
	onPress, ok := m.bindings[source]
	m.mu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(ErrUnknownSource, "source=%s", source)
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		onPress()
	}()
	return done, nil
}

// Sources returns the bound sources in sorted order.
func (m *Manual) Sources() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sources := make([]string, 0, len(m.bindings))
	for s := range m.bindings {
		sources = append(sources, s)
	}
	sort.Strings(sources)
	return sources
}

// Run blocks until ctx is cancelled.
func (m *Manual) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

// Close is a no-op.
func (m *Manual) Close() error {
	return nil
}
