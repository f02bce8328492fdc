package drs

import (
	"io"

	"github.com/pkg/errors"
	"periph.io/x/periph/conn/physic"
	"periph.io/x/periph/conn/spi"
	"periph.io/x/periph/conn/spi/spireg"
	"periph.io/x/periph/host"
)

// OpenSPI connects to the position service over SPI.  The returned closer
// releases the port.
func OpenSPI(cfg Config) (Conn, io.Closer, error) {
	// Make sure periph is initialized.
	if _, err := host.Init(); err != nil {
		return nil, nil, errors.Wrap(err, "failed to initialise periph")
	}

	p, err := spireg.Open(cfg.Device)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to open SPI port %s", cfg.Device)
	}

	// The service samples on the rising edge with the clock idling high.
	c, err := p.Connect(physic.KiloHertz*physic.Frequency(cfg.ClockKHz), spi.Mode3, 8)
	if err != nil {
		_ = p.Close()
		return nil, nil, errors.Wrap(err, "failed to configure SPI port")
	}
	return c, p, nil
}
