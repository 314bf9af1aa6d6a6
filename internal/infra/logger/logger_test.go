package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"verbose", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}

func TestInit_Console(t *testing.T) {
	closer, err := Init(Config{Output: "stderr", Level: "warn"})
	require.NoError(t, err)
	defer closer.Close()

	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
}

func TestInit_FileRotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "windbox.log")

	closer, err := Init(Config{
		Output:     "file",
		File:       path,
		Level:      "info",
		MaxSizeMB:  1,
		MaxBackups: 1,
		MaxAgeDays: 1,
	})
	require.NoError(t, err)

	zlog.Info().Msg("logger: file output works")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"logger: file output works"`)
	assert.Contains(t, string(data), `"level":"info"`)

	// Leave the global logger on the console for other tests
	_, err = Init(Config{Output: "stderr", Level: "info"})
	require.NoError(t, err)
}

func TestInit_FileWithoutPath(t *testing.T) {
	_, err := Init(Config{Output: "file"})
	assert.Error(t, err)
}
