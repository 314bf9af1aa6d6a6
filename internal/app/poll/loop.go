// Package poll provides the loop that continues autoplay when playback ends.
package poll

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// DefaultInterval is the default time between two checks of the player.
const DefaultInterval = 200 * time.Millisecond

// BusyChecker reports whether the player is outputting audio.
type BusyChecker interface {
	IsBusy() bool
}

// Continuer activates the button currently driving autoplay, if any.
type Continuer interface {
	ContinueAutoplay() (bool, error)
}

// Loop checks the player at a fixed interval and, once it is idle, re-activates
// the button driving autoplay as if it had been pressed again.
type Loop struct {
	player   BusyChecker
	buttons  Continuer
	interval time.Duration
	logger   zerolog.Logger
}

// NewLoop creates a new Loop. A non-positive interval uses DefaultInterval.
func NewLoop(player BusyChecker, buttons Continuer, interval time.Duration, logger zerolog.Logger) *Loop {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Loop{
		player:   player,
		buttons:  buttons,
		interval: interval,
		logger:   logger.With().Str("component", "poll").Logger(),
	}
}

// Interval returns the polling interval.
func (l *Loop) Interval() time.Duration {
	return l.interval
}

// Run polls until ctx is cancelled or a continuation fails.
// A failure means the arbiter named a button that does not exist, which is a
// programming error, so the loop stops and returns it.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info().
		Dur("interval", l.interval).
		Msg("Starting poll loop")

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.logger.Info().Msg("Poll loop stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := l.Tick(); err != nil {
				return err
			}
		}
	}
}

// Tick runs a single poll.
func (l *Loop) Tick() error {
	if l.player.IsBusy() {
		return nil
	}

	dispatched, err := l.buttons.ContinueAutoplay()
	if err != nil {
		l.logger.Error().Err(err).Msg("Autoplay continuation failed")
		return errors.Wrap(err, "autoplay continuation failed")
	}
	if dispatched {
		l.logger.Debug().Msg("Autoplay continued")
	}
	return nil
}
