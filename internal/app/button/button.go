// Package button provides the jukebox buttons and their registry.
package button

import (
	"path/filepath"
	"sync"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/windbox/internal/app/playback"
	"github.com/osa030/windbox/internal/domain/tracklist"
)

// MinDebounce is the shortest time an activation holds the lock.
// Mechanical buttons bounce and would otherwise retrigger.
const MinDebounce = 500 * time.Millisecond

// Button plays the tracks of one folder, one track per activation.
type Button struct {
	id       playback.Identity
	name     string
	source   string
	autoplay bool
	minHold  time.Duration
	tracks   *tracklist.TrackList

	arbiter  *playback.Arbiter
	player   playback.Player
	notifier playback.Notifier
	sleep    func(time.Duration)

	mu     sync.Mutex
	cursor int // Index of the next track to play
}

// ID returns the button identity.
func (b *Button) ID() playback.Identity { return b.id }

// Name returns the display name.
func (b *Button) Name() string { return b.name }

// Source returns the hardware source the button is bound to.
func (b *Button) Source() string { return b.source }

// Autoplay returns true if the button continues its list after a track ends.
func (b *Button) Autoplay() bool { return b.autoplay }

// MinHold returns how long an activation holds the lock.
func (b *Button) MinHold() time.Duration { return b.minHold }

// Tracks returns the button's track list.
func (b *Button) Tracks() *tracklist.TrackList { return b.tracks }

// IsStop returns true for buttons without tracks.
func (b *Button) IsStop() bool { return b.tracks.IsEmpty() }

// Cursor returns the index of the next track to play.
func (b *Button) Cursor() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cursor
}

// Activate handles a press, whether physical or an autoplay continuation.
// If another activation holds the lock the press is dropped and false is returned.
// Otherwise the current playback is stopped, the next track is started and the
// lock is held for the button's minimum hold before it is released.
func (b *Button) Activate() bool {
	if !b.arbiter.TryAcquire(b.id) {
		zlog.Debug().Msgf("button: press ignored, lock held: id=%d", b.id)
		return false
	}
	defer b.arbiter.Release()

	b.player.Stop()

	if b.tracks.IsEmpty() {
		zlog.Info().Msgf("button: empty playlist selected, clearing active button: id=%d name=%s", b.id, b.name)
		b.arbiter.ClearActive()
		b.emit(playback.Event{Type: playback.EventPlaybackStopped})
		b.sleep(MinDebounce)
		return true
	}

	count := b.tracks.Len()
	index := b.Cursor()
	path := b.tracks.At(index)
	zlog.Info().Msgf("button: next track (%d/%d): id=%d name=%s track=%s",
		index+1, count, b.id, b.name, filepath.Base(path))

	if err := b.start(path); err != nil {
		// The track is skipped so an autoplay list cannot get stuck on it.
		zlog.Error().Err(err).Msgf("button: failed to play track: id=%d track=%s", b.id, path)
		b.emit(playback.Event{Type: playback.EventPlaybackFailed, Track: path, Index: index, Err: err})
	} else {
		b.emit(playback.Event{Type: playback.EventTrackStarted, Track: path, Index: index})
	}

	next := b.advance(count)
	b.applyAutoplay(next, path, index)

	b.sleep(b.minHold)
	return true
}

// start loads and plays path.
func (b *Button) start(path string) error {
	if err := b.player.Load(path); err != nil {
		return err
	}
	return b.player.Play()
}

// advance moves the cursor forward, wrapping to 0, and returns the new value.
func (b *Button) advance(count int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cursor = (b.cursor + 1) % count
	return b.cursor
}

// applyAutoplay updates the active identity after the cursor moved to next.
// A cursor that wrapped to 0 means the last track just started, so a single
// track list never continues on its own.
func (b *Button) applyAutoplay(next int, path string, index int) {
	switch {
	case b.autoplay && next == 0:
		zlog.Info().Msgf("button: autoplay active, but last track reached: id=%d", b.id)
		b.arbiter.ClearActive()
		b.emit(playback.Event{Type: playback.EventAutoplayExhausted, Track: path, Index: index})
	case b.autoplay:
		zlog.Info().Msgf("button: autoplay active, setting active button: id=%d", b.id)
		b.arbiter.SetActive(b.id)
	default:
		zlog.Debug().Msgf("button: autoplay not active: id=%d", b.id)
		b.arbiter.ClearActive()
	}
}

func (b *Button) emit(e playback.Event) {
	e.ButtonID = b.id
	e.ButtonName = b.name
	e.Count = b.tracks.Len()
	e.Time = time.Now()
	b.notifier.Notify(e)
}
