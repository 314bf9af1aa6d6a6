package keyboard

import (
	"context"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Settings(t *testing.T) {
	s, err := New(nil)
	require.NoError(t, err)
	assert.Equal(t, "q", s.settings.QuitKey)

	_, err = New(map[string]any{"quit_key": "xx"})
	assert.Error(t, err)
}

func TestSource_Bind(t *testing.T) {
	s := newSource(Settings{QuitKey: "q"}, strings.NewReader(""), -1)

	assert.NoError(t, s.Bind("1", func() {}))
	assert.True(t, errors.Is(s.Bind("12", func() {}), ErrInvalidKey))
	assert.True(t, errors.Is(s.Bind("", func() {}), ErrInvalidKey))
	assert.True(t, errors.Is(s.Bind("q", func() {}), ErrInvalidKey))
}

func TestSource_Run_DispatchesKeys(t *testing.T) {
	s := newSource(Settings{QuitKey: "q"}, strings.NewReader("1x21"), -1)

	pressed := make(chan string, 8)
	require.NoError(t, s.Bind("1", func() { pressed <- "1" }))
	require.NoError(t, s.Bind("2", func() { pressed <- "2" }))

	require.NoError(t, s.Run(context.Background()), "end of input is not an error")

	got := make([]string, 0, 3)
	for len(got) < 3 {
		select {
		case key := <-pressed:
			got = append(got, key)
		case <-time.After(time.Second):
			t.Fatalf("expected 3 presses, got %v", got)
		}
	}
	assert.ElementsMatch(t, []string{"1", "1", "2"}, got)
	assert.NoError(t, s.Close())
}

func TestSource_Run_Quit(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "quit key", input: "q1"},
		{name: "ctrl-c", input: "\x03"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSource(Settings{QuitKey: "q"}, strings.NewReader(tt.input), -1)
			err := s.Run(context.Background())
			assert.True(t, errors.Is(err, ErrQuit))
		})
	}
}

func TestSource_Run_CancelLeavesReaderUntilNextKey(t *testing.T) {
	r, w := io.Pipe()
	defer r.Close()
	s := newSource(Settings{QuitKey: "q"}, r, -1)

	var presses atomic.Int32
	require.NoError(t, s.Bind("1", func() { presses.Add(1) }))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}

	// The blocked reader consumes one more key and exits without dispatching it.
	written := make(chan error, 1)
	go func() {
		_, err := w.Write([]byte("1"))
		written <- err
	}()
	select {
	case err := <-written:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("reader goroutine did not consume the key")
	}
	assert.Equal(t, int32(0), presses.Load())
}
