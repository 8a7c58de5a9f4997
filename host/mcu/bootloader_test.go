package mcu

import (
	"io"
)

// fakeBootloader emulates optiboot behind a serial.Port
type fakeBootloader struct {
	flash     [ATmega328PFlashSize]byte
	signature [3]byte
	addr      uint32
	progmode  bool
	left      bool

	rx      []byte // bytes the host will read
	pending []byte // partial command from the host
	written []byte // every byte the host wrote

	// knobs for failure tests
	silent      bool  // never answer
	corruptRead bool  // flip a bit in read-back pages
	flushErr    error // returned by Flush
}

func newFakeBootloader() *fakeBootloader {
	b := &fakeBootloader{signature: ATmega328PSignature}
	for i := range b.flash {
		b.flash[i] = 0xFF
	}
	return b
}

func (b *fakeBootloader) Read(p []byte) (int, error) {
	if len(b.rx) == 0 {
		return 0, io.EOF
	}
	n := copy(p, b.rx)
	b.rx = b.rx[n:]
	return n, nil
}

func (b *fakeBootloader) Write(p []byte) (int, error) {
	b.written = append(b.written, p...)
	b.pending = append(b.pending, p...)
	for b.step() {
	}
	return len(p), nil
}

func (b *fakeBootloader) Close() error { return nil }

func (b *fakeBootloader) Flush() error {
	b.rx = nil
	return b.flushErr
}

// step handles one complete command from pending, if there is one
func (b *fakeBootloader) step() bool {
	if len(b.pending) == 0 {
		return false
	}

	var size int
	switch b.pending[0] {
	case STK_GET_SYNC, STK_READ_SIGN, STK_ENTER_PROGMODE, STK_LEAVE_PROGMODE:
		size = 2
	case STK_LOAD_ADDRESS:
		size = 4
	case STK_READ_PAGE:
		size = 5
	case STK_PROG_PAGE:
		if len(b.pending) < 3 {
			return false
		}
		size = 5 + (int(b.pending[1])<<8 | int(b.pending[2]))
	default:
		b.pending = b.pending[1:]
		return true
	}
	if len(b.pending) < size {
		return false
	}
	cmd := b.pending[:size]
	b.pending = b.pending[size:]

	if b.silent {
		return true
	}
	if cmd[size-1] != CRC_EOP {
		b.rx = append(b.rx, STK_NOSYNC)
		return true
	}

	b.rx = append(b.rx, STK_INSYNC)
	switch cmd[0] {
	case STK_READ_SIGN:
		b.rx = append(b.rx, b.signature[:]...)
	case STK_ENTER_PROGMODE:
		b.progmode = true
	case STK_LEAVE_PROGMODE:
		b.progmode = false
		b.left = true
	case STK_LOAD_ADDRESS:
		b.addr = (uint32(cmd[1]) | uint32(cmd[2])<<8) * 2
	case STK_PROG_PAGE:
		copy(b.flash[b.addr:], cmd[4:size-1])
	case STK_READ_PAGE:
		n := int(cmd[1])<<8 | int(cmd[2])
		page := make([]byte, n)
		copy(page, b.flash[b.addr:])
		if b.corruptRead && n > 0 {
			page[0] ^= 0x01
		}
		b.rx = append(b.rx, page...)
	}
	b.rx = append(b.rx, STK_OK)
	return true
}
