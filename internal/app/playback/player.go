package playback

// Player is the single-voice audio output shared by all buttons.
type Player interface {
	// Load prepares the track at path, replacing any previously loaded track.
	Load(path string) error
	// Play starts the loaded track.
	Play() error
	// Stop stops playback. Stopping an idle player is a no-op.
	Stop()
	// IsBusy returns true while audio is being output.
	IsBusy() bool
}
