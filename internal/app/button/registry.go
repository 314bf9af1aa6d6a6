package button

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/windbox/internal/app/playback"
	"github.com/osa030/windbox/internal/domain/tracklist"
)

var (
	// ErrButtonNotFound is returned for an identity no button was registered under.
	ErrButtonNotFound = errors.New("button not found")
	// ErrDuplicateSource is returned when a source is already bound to another button.
	ErrDuplicateSource = errors.New("source is already bound to a button")
)

// Binder attaches a press callback to a hardware source.
type Binder interface {
	Bind(source string, onPress func()) error
}

// Definition describes a button to register.
type Definition struct {
	Name        string
	Source      string        // Hardware source, e.g. a GPIO pin
	Folder      string        // Folder with the button's tracks; empty for a stop button
	Autoplay    bool          // Continue with the next track when one ends
	MinPlaytime time.Duration // Clamped to MinDebounce
}

// Registry owns all buttons and assigns their identities in registration order.
type Registry struct {
	mu      sync.RWMutex
	buttons []*Button
	sources map[string]playback.Identity

	arbiter    *playback.Arbiter
	player     playback.Player
	enumerator tracklist.Enumerator
	binder     Binder
	notifier   playback.Notifier
	sleep      func(time.Duration)
}

// NewRegistry creates a registry whose buttons share arbiter and player.
// binder may be nil to register buttons that are only activated programmatically,
// and notifier may be nil to drop events.
func NewRegistry(
	arbiter *playback.Arbiter,
	player playback.Player,
	enumerator tracklist.Enumerator,
	binder Binder,
	notifier playback.Notifier,
) *Registry {
	if notifier == nil {
		notifier = playback.NotifierFunc(func(playback.Event) {})
	}
	return &Registry{
		buttons:    make([]*Button, 0),
		sources:    make(map[string]playback.Identity),
		arbiter:    arbiter,
		player:     player,
		enumerator: enumerator,
		binder:     binder,
		notifier:   notifier,
		sleep:      time.Sleep,
	}
}

// SetSleep replaces the function used for the activation hold.
// It applies to buttons registered after the call.
func (r *Registry) SetSleep(sleep func(time.Duration)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sleep = sleep
}

// Register resolves the definition's folder and registers a button for it.
// The returned identity equals the number of buttons registered before.
func (r *Registry) Register(def Definition) (playback.Identity, error) {
	tracks, err := tracklist.Load(r.enumerator, def.Folder)
	if err != nil {
		return playback.NoIdentity, errors.Wrapf(err, "failed to list tracks for source %s", def.Source)
	}
	return r.RegisterTracks(def, tracks)
}

// RegisterTracks registers a button for an already resolved track list.
func (r *Registry) RegisterTracks(def Definition, tracks *tracklist.TrackList) (playback.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if def.Source != "" {
		if existing, ok := r.sources[def.Source]; ok {
			return playback.NoIdentity, errors.Wrapf(ErrDuplicateSource, "source=%s id=%d", def.Source, existing)
		}
	}

	minHold := def.MinPlaytime
	if minHold < MinDebounce {
		minHold = MinDebounce
	}

	id := playback.Identity(len(r.buttons))
	b := &Button{
		id:       id,
		name:     def.Name,
		source:   def.Source,
		autoplay: def.Autoplay,
		minHold:  minHold,
		tracks:   tracks,
		arbiter:  r.arbiter,
		player:   r.player,
		notifier: r.notifier,
		sleep:    r.sleep,
	}

	if r.binder != nil && def.Source != "" {
		if err := r.binder.Bind(def.Source, func() { b.Activate() }); err != nil {
			return playback.NoIdentity, errors.Wrapf(err, "failed to bind source %s", def.Source)
		}
	}

	r.buttons = append(r.buttons, b)
	if def.Source != "" {
		r.sources[def.Source] = id
	}

	zlog.Info().Msgf("button: registered: id=%d name=%s source=%s tracks=%d autoplay=%t min_hold=%v",
		id, def.Name, def.Source, tracks.Len(), def.Autoplay, minHold)
	return id, nil
}

// Get returns the button with the given identity.
func (r *Registry) Get(id playback.Identity) (*Button, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if id < 0 || int(id) >= len(r.buttons) {
		return nil, errors.Wrapf(ErrButtonNotFound, "id=%d", id)
	}
	return r.buttons[id], nil
}

// ContinueAutoplay activates the button the arbiter marks as active.
// Returns false if no button is active or the activation was dropped.
func (r *Registry) ContinueAutoplay() (bool, error) {
	id := r.arbiter.ActiveIdentity()
	if id == playback.NoIdentity {
		return false, nil
	}

	b, err := r.Get(id)
	if err != nil {
		zlog.Error().Msgf("button: active button is not registered: id=%d", id)
		return false, err
	}

	zlog.Info().Msgf("button: autoplay active, playing next track: id=%d", id)
	return b.Activate(), nil
}

// All returns all buttons in identity order.
func (r *Registry) All() []*Button {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Button, len(r.buttons))
	copy(result, r.buttons)
	return result
}

// Count returns the number of buttons.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.buttons)
}

// Arbiter returns the arbiter shared by all buttons.
func (r *Registry) Arbiter() *playback.Arbiter {
	return r.arbiter
}
