package serial

import (
	"fmt"
	"time"

	"github.com/tarm/serial"
)

// tarm/serial maps the read timeout onto VTIME, which counts tenths of a second
const minReadTimeout = 100 * time.Millisecond

// tarmPort is a Port backed by github.com/tarm/serial
type tarmPort struct {
	*serial.Port
	device string
}

// Open opens the board's serial port. On Arduino boards with an auto-reset
// circuit opening the port pulses DTR and restarts into the bootloader.
//
// Reads never block forever: a zero ReadTimeout is raised to the smallest
// timeout the driver supports so callers can poll for bootloader replies.
func Open(cfg *Config) (Port, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", ErrBadConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	timeout := cfg.ReadTimeout
	if timeout < minReadTimeout {
		timeout = minReadTimeout
	}

	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Device, err)
	}

	return &tarmPort{Port: port, device: cfg.Device}, nil
}

// Flush discards anything left in the receive buffer, such as a sketch's
// serial output before the bootloader took over
func (p *tarmPort) Flush() error {
	if err := p.Port.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", p.device, err)
	}
	return nil
}
