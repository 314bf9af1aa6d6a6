package audio

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	zlog "github.com/rs/zerolog/log"
)

// resampleQuality is the beep resampling quality (1-64).
const resampleQuality = 4

// Config holds speaker configuration.
type Config struct {
	SampleRate int           // Output sample rate
	Buffer     time.Duration // Speaker buffer length
}

// SpeakerPlayer plays one track at a time on the default audio device.
type SpeakerPlayer struct {
	mu         sync.Mutex
	sampleRate beep.SampleRate

	stream beep.StreamSeekCloser
	format beep.Format
	path   string

	busy       bool
	generation uint64 // Bumped on every Play and Stop to ignore stale end callbacks
}

// NewSpeakerPlayer initialises the speaker.
func NewSpeakerPlayer(cfg Config) (*SpeakerPlayer, error) {
	sr := beep.SampleRate(cfg.SampleRate)
	if err := speaker.Init(sr, sr.N(cfg.Buffer)); err != nil {
		return nil, errors.Wrap(err, "failed to initialize speaker")
	}
	zlog.Info().Msgf("audio: speaker initialized: sample_rate=%d buffer=%v", cfg.SampleRate, cfg.Buffer)
	return &SpeakerPlayer{sampleRate: sr}, nil
}

// Load decodes path, replacing any previously loaded track.
func (p *SpeakerPlayer) Load(path string) error {
	stream, format, err := Decode(path)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()
	p.stream = stream
	p.format = format
	p.path = path
	return nil
}

// Play starts the loaded track.
func (p *SpeakerPlayer) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream == nil {
		return ErrNotLoaded
	}

	var s beep.Streamer = p.stream
	if p.format.SampleRate != p.sampleRate {
		s = beep.Resample(resampleQuality, p.format.SampleRate, p.sampleRate, s)
	}

	p.generation++
	gen := p.generation
	p.busy = true

	// The callback runs on the speaker goroutine with the speaker locked.
	speaker.Play(beep.Seq(s, beep.Callback(func() {
		go p.finished(gen)
	})))

	zlog.Debug().Msgf("audio: playing: track=%s", filepath.Base(p.path))
	return nil
}

func (p *SpeakerPlayer) finished(gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.generation {
		return
	}
	p.busy = false
	zlog.Debug().Msgf("audio: track finished: track=%s", filepath.Base(p.path))
}

// Stop stops playback and releases the loaded track.
func (p *SpeakerPlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *SpeakerPlayer) stopLocked() {
	p.generation++
	p.busy = false
	speaker.Clear()

	if p.stream != nil {
		if err := p.stream.Close(); err != nil {
			zlog.Warn().Err(err).Msgf("audio: failed to close track: track=%s", p.path)
		}
		p.stream = nil
		p.path = ""
	}
}

// IsBusy returns true while a track is playing.
func (p *SpeakerPlayer) IsBusy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.busy
}

// Close stops playback.
func (p *SpeakerPlayer) Close() error {
	p.Stop()
	return nil
}
