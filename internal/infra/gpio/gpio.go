// Package gpio provides a button input source backed by GPIO edge detection.
package gpio

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// ErrPinNotFound is returned when a source names no known pin.
var ErrPinNotFound = errors.New("gpio pin not found")

// Settings represents the gpio driver settings.
type Settings struct {
	Pull          string `yaml:"pull" mapstructure:"pull" default:"up" validate:"oneof=up down"`
	EdgeTimeoutMs int    `yaml:"edge_timeout_ms" mapstructure:"edge_timeout_ms" default:"250" validate:"gte=10,lte=5000"`
}

// binding is a pin watched for presses.
type binding struct {
	name    string
	pin     gpio.PinIO
	onPress func()
}

// Source watches GPIO pins and calls the bound callback on every press.
// With a pull-up a press pulls the pin low (falling edge), with a pull-down it
// drives the pin high (rising edge).
type Source struct {
	mu       sync.Mutex
	settings Settings
	lookup   func(name string) gpio.PinIO
	bindings []*binding
}

// DecodeSettings decodes, defaults and validates driver settings.
func DecodeSettings(settings map[string]any) (Settings, error) {
	var s Settings
	if err := mapstructure.Decode(settings, &s); err != nil {
		return s, errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(&s); err != nil {
		return s, errors.Wrap(err, "failed to set defaults")
	}
	if err := validator.New().Struct(s); err != nil {
		return s, errors.Wrap(err, "validation failed")
	}
	return s, nil
}

// New initialises the host drivers and creates a GPIO source.
func New(settings map[string]any) (*Source, error) {
	s, err := DecodeSettings(settings)
	if err != nil {
		return nil, err
	}
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "failed to initialize gpio host")
	}
	zlog.Debug().Msgf("gpio: config: %+v", s)
	return newSource(s, gpioreg.ByName), nil
}

func newSource(settings Settings, lookup func(name string) gpio.PinIO) *Source {
	return &Source{
		settings: settings,
		lookup:   lookup,
		bindings: make([]*binding, 0),
	}
}

// PinName normalizes a source into a pin name: "17" and "gpio17" become "GPIO17".
func PinName(source string) string {
	s := strings.ToUpper(strings.TrimSpace(source))
	if _, err := strconv.Atoi(s); err == nil {
		return "GPIO" + s
	}
	return s
}

func (s *Source) pull() (gpio.Pull, gpio.Edge, gpio.Level) {
	if s.settings.Pull == "down" {
		return gpio.PullDown, gpio.RisingEdge, gpio.High
	}
	return gpio.PullUp, gpio.FallingEdge, gpio.Low
}

// Bind configures the pin named by source as an input and attaches onPress.
func (s *Source) Bind(source string, onPress func()) error {
	name := PinName(source)
	pin := s.lookup(name)
	if pin == nil {
		return errors.Wrapf(ErrPinNotFound, "pin=%s", name)
	}

	pull, edge, _ := s.pull()
	if err := pin.In(pull, edge); err != nil {
		return errors.Wrapf(err, "failed to configure pin %s", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.bindings = append(s.bindings, &binding{name: name, pin: pin, onPress: onPress})
	zlog.Info().Msgf("gpio: bound pin: pin=%s pull=%s", name, s.settings.Pull)
	return nil
}

// Run watches every bound pin until ctx is cancelled.
func (s *Source) Run(ctx context.Context) error {
	s.mu.Lock()
	bindings := make([]*binding, len(s.bindings))
	copy(bindings, s.bindings)
	s.mu.Unlock()

	var wg sync.WaitGroup
	for _, b := range bindings {
		wg.Add(1)
		go func(b *binding) {
			defer wg.Done()
			s.watch(ctx, b)
		}(b)
	}
	wg.Wait()
	return nil
}

// watch waits for edges on one pin. Each press runs on its own goroutine so a
// press during another button's hold is dropped rather than queued here.
func (s *Source) watch(ctx context.Context, b *binding) {
	_, _, pressed := s.pull()
	timeout := time.Duration(s.settings.EdgeTimeoutMs) * time.Millisecond

	for {
		if ctx.Err() != nil {
			return
		}
		if !b.pin.WaitForEdge(timeout) {
			continue
		}
		// Contacts bouncing back produce an edge at the released level.
		if b.pin.Read() != pressed {
			continue
		}
		zlog.Debug().Msgf("gpio: press detected: pin=%s", b.name)
		go b.onPress()
	}
}

// Close halts all bound pins.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs error
	for _, b := range s.bindings {
		if err := b.pin.Halt(); err != nil {
			errs = errors.CombineErrors(errs, errors.Wrapf(err, "failed to halt pin %s", b.name))
		}
	}
	return errs
}
