// Package serial opens the USB serial link to an Arduino bootloader.
package serial

import (
	"errors"
	"fmt"
	"io"
	"time"
)

// Bootloader line rates
const (
	BaudOptiboot = 115200 // Uno and current Nano bootloader
	BaudOldNano  = 57600  // ATmegaBOOT on older Nano clones
)

var ErrBadConfig = errors.New("invalid serial config")

// Port is a byte stream to the bootloader. The programmer only needs plain
// reads and writes plus a way to throw away whatever the board sent before
// the bootloader started listening.
type Port interface {
	io.ReadWriteCloser

	// Flush discards unread input
	Flush() error
}

// Config selects the device and line settings
type Config struct {
	Device      string        // e.g. /dev/ttyACM0, COM3
	Baud        int           // BaudOptiboot or BaudOldNano
	ReadTimeout time.Duration // per read; raised to the driver minimum
}

// DefaultConfig returns the settings for optiboot on device
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        BaudOptiboot,
		ReadTimeout: 500 * time.Millisecond,
	}
}

// Validate rejects configs the driver would fail on in less obvious ways
func (c *Config) Validate() error {
	if c.Device == "" {
		return fmt.Errorf("%w: no device", ErrBadConfig)
	}
	if c.Baud <= 0 {
		return fmt.Errorf("%w: baud %d", ErrBadConfig, c.Baud)
	}
	return nil
}
