package audio

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeWAV writes a mono 16-bit PCM file with the given number of silent samples.
func writeWAV(t *testing.T, path string, sampleRate, samples int) {
	t.Helper()

	dataSize := samples * 2
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	_ = binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*2))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(2))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(dataSize))
	buf.Write(make([]byte, dataSize))

	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

func TestIsSupported(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"/songs/a.mp3", true},
		{"/songs/a.OGG", true},
		{"/songs/a.wav", true},
		{"/songs/a.flac", true},
		{"/songs/a.m4a", false},
		{"/songs/mp3", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsSupported(tt.path))
		})
	}
}

func TestDecode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tone.wav")
	writeWAV(t, path, 22050, 100)

	stream, format, err := Decode(path)
	require.NoError(t, err)
	defer stream.Close()

	assert.Equal(t, 22050, int(format.SampleRate))
	assert.Equal(t, 1, format.NumChannels)
	assert.Equal(t, 100, stream.Len())
}

func TestDecode_Errors(t *testing.T) {
	dir := t.TempDir()
	corrupt := filepath.Join(dir, "corrupt.wav")
	require.NoError(t, os.WriteFile(corrupt, []byte("not a wav file"), 0644))

	_, _, err := Decode(filepath.Join(dir, "cover.jpg"))
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	_, _, err = Decode(filepath.Join(dir, "missing.mp3"))
	assert.Error(t, err)

	_, _, err = Decode(corrupt)
	assert.Error(t, err)
}

func TestSimulatedPlayer(t *testing.T) {
	dir := t.TempDir()
	track := filepath.Join(dir, "a.mp3")
	require.NoError(t, os.WriteFile(track, []byte("x"), 0644))

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	p := NewSimulatedPlayer(3 * time.Second)
	p.now = func() time.Time { return now }

	assert.True(t, errors.Is(p.Play(), ErrNotLoaded))
	p.Stop() // idle stop is a no-op

	require.NoError(t, p.Load(track))
	assert.False(t, p.IsBusy())
	require.NoError(t, p.Play())
	assert.True(t, p.IsBusy())

	now = now.Add(2 * time.Second)
	assert.True(t, p.IsBusy())
	now = now.Add(2 * time.Second)
	assert.False(t, p.IsBusy())

	require.NoError(t, p.Play())
	assert.True(t, p.IsBusy())
	p.Stop()
	assert.False(t, p.IsBusy())
	assert.True(t, errors.Is(p.Play(), ErrNotLoaded), "stop releases the loaded track")
	assert.NoError(t, p.Close())
}

func TestSimulatedPlayer_LoadErrors(t *testing.T) {
	dir := t.TempDir()
	p := NewSimulatedPlayer(time.Second)

	assert.True(t, errors.Is(p.Load(filepath.Join(dir, "a.txt")), ErrUnsupportedFormat))
	assert.Error(t, p.Load(filepath.Join(dir, "missing.ogg")))
}
