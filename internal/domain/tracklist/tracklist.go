// Package tracklist provides the ordered track list bound to a button.
package tracklist

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

// DefaultExtensions are the extensions scanned when none are configured.
var DefaultExtensions = []string{".mp3", ".ogg"}

// TrackList is an immutable, sorted list of absolute track paths.
// An empty list is valid and represents a stop button.
type TrackList struct {
	folder string
	paths  []string
}

// New creates a track list from the given paths.
// The paths are copied and sorted by their full path string.
func New(folder string, paths []string) *TrackList {
	sorted := make([]string, len(paths))
	copy(sorted, paths)
	sort.Strings(sorted)
	return &TrackList{folder: folder, paths: sorted}
}

// Folder returns the folder the list was built from.
func (l *TrackList) Folder() string {
	return l.folder
}

// Len returns the number of tracks.
func (l *TrackList) Len() int {
	return len(l.paths)
}

// IsEmpty returns true if the list has no tracks.
func (l *TrackList) IsEmpty() bool {
	return len(l.paths) == 0
}

// At returns the track path at index i.
func (l *TrackList) At(i int) string {
	return l.paths[i]
}

// Paths returns a copy of all track paths.
func (l *TrackList) Paths() []string {
	result := make([]string, len(l.paths))
	copy(result, l.paths)
	return result
}

// Enumerator resolves a folder into track paths.
type Enumerator interface {
	ListTracks(folder string) ([]string, error)
}

// DirEnumerator lists the files directly inside a folder whose extension matches.
// Matching is case-insensitive and hidden files are skipped.
type DirEnumerator struct {
	Extensions []string
}

// NewDirEnumerator creates a directory enumerator for the given extensions.
func NewDirEnumerator(extensions []string) *DirEnumerator {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	normalized := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized = append(normalized, ext)
	}
	return &DirEnumerator{Extensions: normalized}
}

// ListTracks returns the sorted absolute paths of matching files in folder.
// An empty folder path, a missing folder or a non-directory yields no tracks.
func (e *DirEnumerator) ListTracks(folder string) ([]string, error) {
	if folder == "" {
		return []string{}, nil
	}

	info, err := os.Stat(folder)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, errors.Wrapf(err, "failed to stat folder %s", folder)
	}
	if !info.IsDir() {
		return []string{}, nil
	}

	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read folder %s", folder)
	}

	abs, err := filepath.Abs(folder)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve folder %s", folder)
	}

	tracks := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if !e.matches(name) {
			continue
		}
		tracks = append(tracks, filepath.Join(abs, name))
	}
	sort.Strings(tracks)
	return tracks, nil
}

func (e *DirEnumerator) matches(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range e.Extensions {
		if ext == want {
			return true
		}
	}
	return false
}

// Load enumerates folder and builds a track list from the result.
func Load(enum Enumerator, folder string) (*TrackList, error) {
	paths, err := enum.ListTracks(folder)
	if err != nil {
		return nil, err
	}
	return New(folder, paths), nil
}
