package playback

import "time"

// EventType represents a playback event type.
type EventType int

const (
	EventTrackStarted      EventType = iota // A track was loaded and started
	EventPlaybackStopped                    // A stop button silenced playback
	EventPlaybackFailed                     // The player failed to load or play a track
	EventAutoplayExhausted                  // The last track of an autoplay list started
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventTrackStarted:
		return "track_started"
	case EventPlaybackStopped:
		return "playback_stopped"
	case EventPlaybackFailed:
		return "playback_failed"
	case EventAutoplayExhausted:
		return "autoplay_exhausted"
	default:
		return "unknown"
	}
}

// Event represents something a button activation did.
type Event struct {
	Type       EventType
	ButtonID   Identity
	ButtonName string
	Track      string // Track path (empty for stop events)
	Index      int    // Zero-based index of Track in the button's list
	Count      int    // Number of tracks in the button's list
	Err        error  // Set for EventPlaybackFailed
	Time       time.Time
}

// Notifier receives events. Implementations must not block.
type Notifier interface {
	Notify(e Event)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(e Event)

// Notify calls f(e).
func (f NotifierFunc) Notify(e Event) {
	f(e)
}
