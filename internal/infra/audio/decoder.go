// Package audio provides the players driving the audio output.
package audio

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
)

var (
	// ErrUnsupportedFormat is returned for files whose extension cannot be decoded.
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	// ErrNotLoaded is returned by Play when no track was loaded.
	ErrNotLoaded = errors.New("no track loaded")
)

// SupportedExtensions lists the file extensions Decode understands.
var SupportedExtensions = []string{".mp3", ".ogg", ".wav", ".flac"}

// IsSupported returns true if the extension of path can be decoded.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SupportedExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Decode opens path and decodes it according to its extension.
func Decode(path string) (beep.StreamSeekCloser, beep.Format, error) {
	if !IsSupported(path) {
		return nil, beep.Format{}, errors.Wrapf(ErrUnsupportedFormat, "path=%s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, errors.Wrap(err, "failed to open track")
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".flac":
		streamer, format, err = flac.Decode(f)
	}
	if err != nil {
		f.Close()
		return nil, beep.Format{}, errors.Wrapf(err, "failed to decode %s", filepath.Base(path))
	}
	return streamer, format, nil
}
