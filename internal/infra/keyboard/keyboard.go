// Package keyboard provides a button input source reading single key presses
// from the terminal. USB arcade encoders that present as keyboards work too.
package keyboard

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/term"
)

var (
	// ErrQuit ends Run when the quit key or Ctrl-C is pressed.
	ErrQuit = errors.New("quit requested")
	// ErrInvalidKey is returned when binding a source that is not a usable key.
	ErrInvalidKey = errors.New("invalid key")
)

// ctrlC is delivered as a byte in raw mode.
const ctrlC = 3

// Settings represents the keyboard driver settings.
type Settings struct {
	QuitKey string `yaml:"quit_key" mapstructure:"quit_key" default:"q" validate:"len=1"`
}

// Source maps single keys to button callbacks.
type Source struct {
	mu        sync.Mutex
	settings  Settings
	in        io.Reader
	fd        int
	callbacks map[byte]func()
	oldState  *term.State
}

// New creates a keyboard source reading from stdin.
func New(settings map[string]any) (*Source, error) {
	var s Settings
	if err := mapstructure.Decode(settings, &s); err != nil {
		return nil, errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(&s); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	if err := validator.New().Struct(s); err != nil {
		return nil, errors.Wrap(err, "validation failed")
	}
	return newSource(s, os.Stdin, int(os.Stdin.Fd())), nil
}

func newSource(settings Settings, in io.Reader, fd int) *Source {
	return &Source{
		settings:  settings,
		in:        in,
		fd:        fd,
		callbacks: make(map[byte]func()),
	}
}

// Bind attaches onPress to the single character source.
func (s *Source) Bind(source string, onPress func()) error {
	if len(source) != 1 {
		return errors.Wrapf(ErrInvalidKey, "source must be a single character: %q", source)
	}
	if source == s.settings.QuitKey {
		return errors.Wrapf(ErrInvalidKey, "key %q is reserved for quit", source)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbacks[source[0]] = onPress
	return nil
}

// Run reads keys until ctx is cancelled, input ends, or the quit key is pressed.
// The terminal is switched to raw mode while running when stdin is a TTY.
func (s *Source) Run(ctx context.Context) error {
	if term.IsTerminal(s.fd) {
		state, err := term.MakeRaw(s.fd)
		if err != nil {
			return errors.Wrap(err, "failed to set raw mode")
		}
		s.mu.Lock()
		s.oldState = state
		s.mu.Unlock()
		defer s.restore()
	}

	zlog.Info().Msgf("keyboard: listening for keys (quit=%s)", s.settings.QuitKey)

	keys := make(chan byte)
	readErr := make(chan error, 1)
	stop := make(chan struct{})
	defer close(stop)
	// Read cannot be interrupted, so after Run returns this goroutine stays
	// blocked until the next key or EOF arrives, then exits through stop.
	go func() {
		buf := make([]byte, 1)
		for {
			n, err := s.in.Read(buf)
			if n == 1 {
				select {
				case keys <- buf[0]:
				case <-stop:
					return
				}
			}
			if err != nil {
				readErr <- err
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			if errors.Is(err, io.EOF) {
				zlog.Info().Msg("keyboard: input closed")
				return nil
			}
			return errors.Wrap(err, "failed to read key")
		case key := <-keys:
			if key == ctrlC || string(key) == s.settings.QuitKey {
				return ErrQuit
			}
			s.mu.Lock()
			onPress, ok := s.callbacks[key]
			s.mu.Unlock()
			if !ok {
				continue
			}
			zlog.Debug().Msgf("keyboard: press detected: key=%q", key)
			go onPress()
		}
	}
}

func (s *Source) restore() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.oldState != nil {
		_ = term.Restore(s.fd, s.oldState)
		s.oldState = nil
	}
}

// Close restores the terminal if it is still in raw mode.
func (s *Source) Close() error {
	s.restore()
	return nil
}
