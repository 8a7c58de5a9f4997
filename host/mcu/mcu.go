// Package mcu talks to the Arduino bootloader (optiboot) over its STK500v1
// serial protocol so firmware images can be written without avrdude.
package mcu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"adcpoti/host/serial"
)

// STK500v1 protocol bytes
const (
	STK_OK      = 0x10
	STK_FAILED  = 0x11
	STK_UNKNOWN = 0x12
	STK_INSYNC  = 0x14
	STK_NOSYNC  = 0x15
	CRC_EOP     = 0x20

	STK_GET_SYNC       = 0x30
	STK_ENTER_PROGMODE = 0x50
	STK_LEAVE_PROGMODE = 0x51
	STK_LOAD_ADDRESS   = 0x55
	STK_PROG_PAGE      = 0x64
	STK_READ_PAGE      = 0x74
	STK_READ_SIGN      = 0x75

	memTypeFlash = 'F'
)

// ATmega328P device parameters
var ATmega328PSignature = [3]byte{0x1E, 0x95, 0x0F}

const (
	ATmega328PPageSize = 128
	// Application flash below the 512 byte optiboot section
	ATmega328PFlashSize = 32*1024 - 512
)

var (
	ErrNotConnected = errors.New("not connected to bootloader")
	ErrNoSync       = errors.New("bootloader did not sync")
	ErrBadResponse  = errors.New("unexpected bootloader response")
	ErrTimeout      = errors.New("timed out waiting for bootloader")
	ErrPageSize     = errors.New("page exceeds device page size")
)

// MCU represents a connection to the board's bootloader
type MCU struct {
	port    serial.Port
	timeout time.Duration
	log     zerolog.Logger

	// Connection state
	connected bool
}

// NewMCU creates a new MCU instance (not yet connected)
func NewMCU(log zerolog.Logger) *MCU {
	return &MCU{
		timeout: 500 * time.Millisecond,
		log:     log,
	}
}

// Connect connects to the bootloader via serial port
func (m *MCU) Connect(device string) error {
	return m.ConnectWithConfig(serial.DefaultConfig(device))
}

// ConnectWithConfig connects with a custom serial config.
// Opening the port toggles DTR, which resets the board into the bootloader.
func (m *MCU) ConnectWithConfig(cfg *serial.Config) error {
	port, err := serial.Open(cfg)
	if err != nil {
		return fmt.Errorf("failed to open serial port: %w", err)
	}
	m.Attach(port)

	// Give the bootloader time to start after the reset
	time.Sleep(200 * time.Millisecond)
	return nil
}

// Attach uses an already open port
func (m *MCU) Attach(port serial.Port) {
	m.port = port
	m.connected = true
}

// SetTimeout sets how long to wait for each reply
func (m *MCU) SetTimeout(d time.Duration) {
	m.timeout = d
}

// Close closes the connection to the bootloader
func (m *MCU) Close() error {
	m.connected = false
	if m.port != nil {
		return m.port.Close()
	}
	return nil
}

// IsConnected returns whether the bootloader port is open
func (m *MCU) IsConnected() bool {
	return m.connected
}

// Sync establishes protocol sync. The bootloader may still be starting
// after the reset, so GET_SYNC is retried until attempts run out or ctx ends.
func (m *MCU) Sync(ctx context.Context, attempts int) error {
	if !m.connected {
		return ErrNotConnected
	}

	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		// Drop stale bytes such as a running sketch's serial output
		if err := m.port.Flush(); err != nil {
			m.log.Debug().Err(err).Int("attempt", i+1).Msg("flush failed")
		}

		_, err := m.command([]byte{STK_GET_SYNC, CRC_EOP}, 0)
		if err == nil {
			m.log.Debug().Int("attempt", i+1).Msg("bootloader in sync")
			return nil
		}
		m.log.Debug().Err(err).Int("attempt", i+1).Msg("sync failed")
	}
	return ErrNoSync
}

// ReadSignature reads the three device signature bytes
func (m *MCU) ReadSignature() ([3]byte, error) {
	var sig [3]byte
	reply, err := m.command([]byte{STK_READ_SIGN, CRC_EOP}, 3)
	if err != nil {
		return sig, fmt.Errorf("read signature: %w", err)
	}
	copy(sig[:], reply)
	return sig, nil
}

// EnterProgMode enters programming mode
func (m *MCU) EnterProgMode() error {
	if _, err := m.command([]byte{STK_ENTER_PROGMODE, CRC_EOP}, 0); err != nil {
		return fmt.Errorf("enter programming mode: %w", err)
	}
	return nil
}

// LeaveProgMode leaves programming mode; optiboot then starts the application
func (m *MCU) LeaveProgMode() error {
	if _, err := m.command([]byte{STK_LEAVE_PROGMODE, CRC_EOP}, 0); err != nil {
		return fmt.Errorf("leave programming mode: %w", err)
	}
	return nil
}

// LoadAddress sets the flash address for the next page operation.
// addr is a byte address; the protocol takes a word address, little endian.
func (m *MCU) LoadAddress(addr uint32) error {
	word := addr / 2
	cmd := []byte{STK_LOAD_ADDRESS, byte(word), byte(word >> 8), CRC_EOP}
	if _, err := m.command(cmd, 0); err != nil {
		return fmt.Errorf("load address 0x%04X: %w", addr, err)
	}
	return nil
}

// ProgramPage writes one flash page at the loaded address
func (m *MCU) ProgramPage(data []byte) error {
	if len(data) > ATmega328PPageSize {
		return ErrPageSize
	}
	cmd := make([]byte, 0, len(data)+5)
	cmd = append(cmd, STK_PROG_PAGE, byte(len(data)>>8), byte(len(data)), memTypeFlash)
	cmd = append(cmd, data...)
	cmd = append(cmd, CRC_EOP)
	if _, err := m.command(cmd, 0); err != nil {
		return fmt.Errorf("program page: %w", err)
	}
	return nil
}

// ReadPage reads n bytes of flash from the loaded address
func (m *MCU) ReadPage(n int) ([]byte, error) {
	if n > ATmega328PPageSize {
		return nil, ErrPageSize
	}
	cmd := []byte{STK_READ_PAGE, byte(n >> 8), byte(n), memTypeFlash, CRC_EOP}
	reply, err := m.command(cmd, n)
	if err != nil {
		return nil, fmt.Errorf("read page: %w", err)
	}
	return reply, nil
}

// command sends one request and reads INSYNC, n payload bytes and OK
func (m *MCU) command(cmd []byte, n int) ([]byte, error) {
	if !m.connected {
		return nil, ErrNotConnected
	}

	if _, err := m.port.Write(cmd); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}

	reply := make([]byte, n+2)
	if err := m.readFull(reply); err != nil {
		return nil, err
	}

	if reply[0] != STK_INSYNC {
		return nil, fmt.Errorf("%w: 0x%02X instead of INSYNC", ErrBadResponse, reply[0])
	}
	if last := reply[n+1]; last != STK_OK {
		return nil, fmt.Errorf("%w: 0x%02X instead of OK", ErrBadResponse, last)
	}
	return reply[1 : n+1], nil
}

// readFull fills buf or fails after the reply timeout.
// Serial reads that time out come back empty, sometimes with io.EOF.
func (m *MCU) readFull(buf []byte) error {
	deadline := time.Now().Add(m.timeout)
	got := 0
	for got < len(buf) {
		n, err := m.port.Read(buf[got:])
		got += n
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read: %w", err)
		}
		if n == 0 {
			if time.Now().After(deadline) {
				return ErrTimeout
			}
			time.Sleep(time.Millisecond)
		}
	}
	return nil
}
