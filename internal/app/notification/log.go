package notification

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/osa030/windbox/internal/app/playback"
)

// LogSink writes every event to a logger.
type LogSink struct {
	logger zerolog.Logger
}

// NewLogSink creates a sink logging to logger.
func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Name returns the sink name.
func (s *LogSink) Name() string {
	return "log"
}

// Handle logs the event. Failures are logged at error level.
func (s *LogSink) Handle(_ context.Context, e playback.Event) error {
	var ev *zerolog.Event
	switch e.Type {
	case playback.EventPlaybackFailed:
		ev = s.logger.Error().Err(e.Err)
	case playback.EventTrackStarted:
		ev = s.logger.Info()
	default:
		ev = s.logger.Debug()
	}
	ev.Str("event", e.Type.String()).
		Int("button_id", int(e.ButtonID)).
		Str("button", e.ButtonName)
	if e.Track != "" {
		ev = ev.Str("track", filepath.Base(e.Track)).Int("number", e.Index+1).Int("count", e.Count)
	}
	ev.Msg("notification: event")
	return nil
}
