package audio

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
)

// SimulatedPlayer pretends to play each track for a fixed time.
// It is used on machines without an audio device.
type SimulatedPlayer struct {
	mu          sync.Mutex
	trackLength time.Duration
	now         func() time.Time

	loaded    string
	busyUntil time.Time
}

// NewSimulatedPlayer creates a player whose tracks all last trackLength.
func NewSimulatedPlayer(trackLength time.Duration) *SimulatedPlayer {
	return &SimulatedPlayer{
		trackLength: trackLength,
		now:         time.Now,
	}
}

// Load checks that path exists and can be decoded.
func (p *SimulatedPlayer) Load(path string) error {
	if !IsSupported(path) {
		return errors.Wrapf(ErrUnsupportedFormat, "path=%s", path)
	}
	if _, err := os.Stat(path); err != nil {
		return errors.Wrap(err, "failed to open track")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.busyUntil = time.Time{}
	p.loaded = path
	return nil
}

// Play starts the simulated playback.
func (p *SimulatedPlayer) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.loaded == "" {
		return ErrNotLoaded
	}
	p.busyUntil = p.now().Add(p.trackLength)
	zlog.Info().Msgf("audio: simulated playback: track=%s length=%v", filepath.Base(p.loaded), p.trackLength)
	return nil
}

// Stop ends the simulated playback.
func (p *SimulatedPlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.busyUntil = time.Time{}
	p.loaded = ""
}

// IsBusy returns true until the simulated track length has elapsed.
func (p *SimulatedPlayer) IsBusy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.now().Before(p.busyUntil)
}

// Close stops playback.
func (p *SimulatedPlayer) Close() error {
	p.Stop()
	return nil
}
