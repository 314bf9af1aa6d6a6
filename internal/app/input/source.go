// Package input defines the hardware input contract and its drivers.
package input

import (
	"context"

	"github.com/cockroachdb/errors"
)

var (
	// ErrUnknownSource is returned when pressing a source nothing is bound to.
	ErrUnknownSource = errors.New("unknown input source")
	// ErrUnsupportedDriver is returned for an input driver with no implementation.
	ErrUnsupportedDriver = errors.New("unsupported input driver")
)

// Source delivers button presses to bound callbacks.
// Implementations call onPress on a fresh goroutine for every press.
type Source interface {
	// Bind registers a callback for a source identifier.
	Bind(source string, onPress func()) error
	// Run watches for presses until ctx is cancelled.
	Run(ctx context.Context) error
	// Close releases the underlying device.
	Close() error
}
