package button

import (
	"sync"
	"time"

	"github.com/osa030/windbox/internal/app/playback"
	"github.com/osa030/windbox/internal/domain/tracklist"
)

// fakePlayer records every call made by the buttons.
type fakePlayer struct {
	mu      sync.Mutex
	calls   []string
	loaded  []string
	busy    bool
	loadErr map[string]error
}

func newFakePlayer() *fakePlayer {
	return &fakePlayer{loadErr: make(map[string]error)}
}

func (p *fakePlayer) Load(path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, "load:"+path)
	if err := p.loadErr[path]; err != nil {
		return err
	}
	p.loaded = append(p.loaded, path)
	return nil
}

func (p *fakePlayer) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, "play")
	p.busy = true
	return nil
}

func (p *fakePlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, "stop")
	p.busy = false
}

func (p *fakePlayer) IsBusy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.busy
}

func (p *fakePlayer) Loaded() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	result := make([]string, len(p.loaded))
	copy(result, p.loaded)
	return result
}

func (p *fakePlayer) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	result := make([]string, len(p.calls))
	copy(result, p.calls)
	return result
}

// mapEnumerator serves fixed track lists per folder.
type mapEnumerator map[string][]string

func (m mapEnumerator) ListTracks(folder string) ([]string, error) {
	return m[folder], nil
}

// recorder collects emitted events.
type recorder struct {
	mu     sync.Mutex
	events []playback.Event
}

func (r *recorder) Notify(e playback.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) Types() []playback.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]playback.EventType, len(r.events))
	for i, e := range r.events {
		types[i] = e.Type
	}
	return types
}

// bindRecorder records bound sources.
type bindRecorder struct {
	callbacks map[string]func()
	err       error
}

func (b *bindRecorder) Bind(source string, onPress func()) error {
	if b.err != nil {
		return b.err
	}
	if b.callbacks == nil {
		b.callbacks = make(map[string]func())
	}
	b.callbacks[source] = onPress
	return nil
}

type testEnv struct {
	registry *Registry
	player   *fakePlayer
	events   *recorder
	slept    []time.Duration
}

func newTestEnv(enum tracklist.Enumerator, binder Binder) *testEnv {
	env := &testEnv{
		player: newFakePlayer(),
		events: &recorder{},
	}
	env.registry = NewRegistry(playback.NewArbiter(), env.player, enum, binder, env.events)
	env.registry.sleep = func(d time.Duration) {
		env.slept = append(env.slept, d)
	}
	return env
}
