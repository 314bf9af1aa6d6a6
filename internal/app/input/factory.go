package input

import (
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/windbox/internal/infra/config"
	"github.com/osa030/windbox/internal/infra/gpio"
	"github.com/osa030/windbox/internal/infra/keyboard"
)

// NewSourceFromConfig creates the input source selected by configuration.
func NewSourceFromConfig(cfg config.InputConfig) (Source, error) {
	zlog.Debug().Msgf("creating input source: driver=%s settings=%+v", cfg.Driver, cfg.Settings)

	var (
		src Source
		err error
	)
	switch cfg.Driver {
	case "gpio":
		src, err = gpio.New(cfg.Settings)

	case "keyboard":
		src, err = keyboard.New(cfg.Settings)

	default:
		return nil, errors.Wrapf(ErrUnsupportedDriver, "driver=%s", cfg.Driver)
	}

	if err != nil {
		return nil, errors.Wrapf(err, "failed to create input source (driver %s)", cfg.Driver)
	}

	zlog.Info().Msgf("input source ready: driver=%s", cfg.Driver)
	return src, nil
}
