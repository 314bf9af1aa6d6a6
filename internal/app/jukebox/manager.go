// Package jukebox wires buttons, playback and input into a running jukebox.
package jukebox

import (
	"context"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/osa030/windbox/internal/app/button"
	"github.com/osa030/windbox/internal/app/input"
	"github.com/osa030/windbox/internal/app/notification"
	"github.com/osa030/windbox/internal/app/playback"
	"github.com/osa030/windbox/internal/app/poll"
	"github.com/osa030/windbox/internal/domain/tracklist"
	"github.com/osa030/windbox/internal/infra/config"
)

const notificationBuffer = 32

// Deps are the devices the manager drives.
type Deps struct {
	Player     playback.Player
	Source     input.Source
	Enumerator tracklist.Enumerator // Defaults to a directory enumerator for the configured extensions
}

// ButtonInfo summarizes a registered button.
type ButtonInfo struct {
	ID       playback.Identity
	Name     string
	Source   string
	Folder   string
	Autoplay bool
	MinHold  time.Duration
	Tracks   []string
}

// IsStop reports whether the button silences playback.
func (b ButtonInfo) IsStop() bool {
	return len(b.Tracks) == 0
}

// Manager owns the playback state and the goroutines serving it.
type Manager struct {
	config *config.Config
	runID  string
	logger zerolog.Logger

	player        playback.Player
	source        input.Source
	arbiter       *playback.Arbiter
	registry      *button.Registry
	notifications *notification.Manager
	loop          *poll.Loop

	closeOnce sync.Once
	closeErr  error
}

// NewManager registers every configured button, in order, on deps.Source.
func NewManager(cfg *config.Config, deps Deps) (*Manager, error) {
	if deps.Player == nil {
		return nil, errors.New("player is required")
	}
	if deps.Source == nil {
		return nil, errors.New("input source is required")
	}
	enumerator := deps.Enumerator
	if enumerator == nil {
		enumerator = tracklist.NewDirEnumerator(cfg.Library.Extensions)
	}

	runID := uuid.New().String()
	logger := zlog.With().Str("run_id", runID).Logger()

	notifications := notification.NewManager(notificationBuffer, cfg.Hooks.Timeout())
	notifications.Subscribe(notification.NewLogSink(logger.With().Str("component", "notification").Logger()))
	if len(cfg.Hooks.OnTrackStarted) > 0 {
		notifications.Subscribe(notification.NewHookSink(cfg.Hooks.OnTrackStarted, playback.EventTrackStarted))
	}

	arbiter := playback.NewArbiter()
	registry := button.NewRegistry(arbiter, deps.Player, enumerator, deps.Source, notifications)

	m := &Manager{
		config:        cfg,
		runID:         runID,
		logger:        logger,
		player:        deps.Player,
		source:        deps.Source,
		arbiter:       arbiter,
		registry:      registry,
		notifications: notifications,
		loop:          poll.NewLoop(deps.Player, registry, cfg.Playback.PollInterval(), logger),
	}

	for i, bcfg := range cfg.Buttons {
		id, err := registry.Register(button.Definition{
			Name:        bcfg.DisplayName(),
			Source:      bcfg.Source,
			Folder:      cfg.ResolveFolder(bcfg.Folder),
			Autoplay:    bcfg.Autoplay,
			MinPlaytime: bcfg.MinPlaytime(),
		})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to register button (index %d, source %s)", i, bcfg.Source)
		}
		m.logTracks(id)
	}

	zlog.Info().Msgf("jukebox: ready: run_id=%s buttons=%d", runID, registry.Count())
	return m, nil
}

// logTracks lists the tracks bound to a button.
func (m *Manager) logTracks(id playback.Identity) {
	b, err := m.registry.Get(id)
	if err != nil {
		return
	}
	if b.IsStop() {
		zlog.Info().Msgf("jukebox: button %s (source %s) is a stop button", b.Name(), b.Source())
		return
	}
	for i, path := range b.Tracks().Paths() {
		zlog.Debug().Msgf("jukebox: button %s track %d/%d: %s", b.Name(), i+1, b.Tracks().Len(), filepath.Base(path))
	}
}

// RunID returns the identifier attached to this run's logs.
func (m *Manager) RunID() string {
	return m.runID
}

// Run serves presses, notifications and autoplay until ctx is cancelled or
// one of them fails. Cancellation is not reported as an error.
func (m *Manager) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return m.notifications.Run(gctx)
	})
	g.Go(func() error {
		return m.loop.Run(gctx)
	})
	g.Go(func() error {
		return m.source.Run(gctx)
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// Close stops playback and releases the input device and the player.
func (m *Manager) Close() error {
	m.closeOnce.Do(func() {
		m.player.Stop()
		m.notifications.Close()

		var errs error
		if err := m.source.Close(); err != nil {
			errs = errors.CombineErrors(errs, errors.Wrap(err, "failed to close input source"))
		}
		if c, ok := m.player.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = errors.CombineErrors(errs, errors.Wrap(err, "failed to close player"))
			}
		}
		m.closeErr = errs
	})
	return m.closeErr
}

// Buttons returns a summary of every registered button in identity order.
func (m *Manager) Buttons() []ButtonInfo {
	buttons := m.registry.All()
	infos := make([]ButtonInfo, 0, len(buttons))
	for _, b := range buttons {
		infos = append(infos, ButtonInfo{
			ID:       b.ID(),
			Name:     b.Name(),
			Source:   b.Source(),
			Folder:   b.Tracks().Folder(),
			Autoplay: b.Autoplay(),
			MinHold:  b.MinHold(),
			Tracks:   b.Tracks().Paths(),
		})
	}
	return infos
}

// State returns a snapshot of the arbiter.
func (m *Manager) State() playback.State {
	return m.arbiter.Snapshot()
}

// Describe resolves the configured buttons without opening any device.
func Describe(cfg *config.Config, enumerator tracklist.Enumerator) ([]ButtonInfo, error) {
	if enumerator == nil {
		enumerator = tracklist.NewDirEnumerator(cfg.Library.Extensions)
	}

	infos := make([]ButtonInfo, 0, len(cfg.Buttons))
	for i, bcfg := range cfg.Buttons {
		folder := cfg.ResolveFolder(bcfg.Folder)
		tracks, err := tracklist.Load(enumerator, folder)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to list tracks for button %d", i)
		}
		minHold := bcfg.MinPlaytime()
		if minHold < button.MinDebounce {
			minHold = button.MinDebounce
		}
		infos = append(infos, ButtonInfo{
			ID:       playback.Identity(i),
			Name:     bcfg.DisplayName(),
			Source:   bcfg.Source,
			Folder:   folder,
			Autoplay: bcfg.Autoplay,
			MinHold:  minHold,
			Tracks:   tracks.Paths(),
		})
	}
	return infos, nil
}
