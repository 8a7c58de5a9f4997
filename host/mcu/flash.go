package mcu

import (
	"bytes"
	"context"
	"errors"
	"fmt"
)

var (
	ErrWrongDevice = errors.New("device signature mismatch")
	ErrTooLarge    = errors.New("image does not fit in application flash")
	ErrVerify      = errors.New("flash verification failed")
)

// FlashOptions controls a Flash run
type FlashOptions struct {
	// Verify reads every page back after writing
	Verify bool
	// SyncAttempts bounds the GET_SYNC retries (default 10)
	SyncAttempts int
	// Progress is called after each page with bytes written so far
	Progress func(done, total int)
}

// Flash writes img to the board page by page.
// Programming mode is always left again, even when a page fails, so the
// bootloader does not sit waiting for its watchdog.
func Flash(ctx context.Context, m *MCU, img *Image, opts FlashOptions) (err error) {
	if opts.SyncAttempts <= 0 {
		opts.SyncAttempts = 10
	}
	if img.End() > ATmega328PFlashSize {
		return fmt.Errorf("%w: ends at 0x%04X", ErrTooLarge, img.End())
	}

	if err := m.Sync(ctx, opts.SyncAttempts); err != nil {
		return err
	}

	sig, err := m.ReadSignature()
	if err != nil {
		return err
	}
	if sig != ATmega328PSignature {
		return fmt.Errorf("%w: got % X", ErrWrongDevice, sig[:])
	}
	m.log.Info().Hex("signature", sig[:]).Msg("found ATmega328P")

	if err := m.EnterProgMode(); err != nil {
		return err
	}
	defer func() {
		if leaveErr := m.LeaveProgMode(); leaveErr != nil && err == nil {
			err = leaveErr
		}
	}()

	pages := splitPages(img, ATmega328PPageSize)
	total := 0
	for _, p := range pages {
		total += len(p.data)
	}
	done := 0

	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := m.LoadAddress(p.addr); err != nil {
			return err
		}
		if err := m.ProgramPage(p.data); err != nil {
			return err
		}
		done += len(p.data)
		m.log.Debug().Uint32("addr", p.addr).Int("len", len(p.data)).Msg("page written")
		if opts.Progress != nil {
			opts.Progress(done, total)
		}
	}

	if !opts.Verify {
		return nil
	}

	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := m.LoadAddress(p.addr); err != nil {
			return err
		}
		got, err := m.ReadPage(len(p.data))
		if err != nil {
			return err
		}
		if !bytes.Equal(got, p.data) {
			return fmt.Errorf("%w: page at 0x%04X", ErrVerify, p.addr)
		}
	}
	m.log.Info().Int("bytes", total).Msg("flash verified")
	return nil
}

type flashPage struct {
	addr uint32
	data []byte
}

// splitPages cuts the image on page boundaries. A base that is not page
// aligned is padded down with 0xFF so every write starts on a page.
func splitPages(img *Image, pageSize int) []flashPage {
	base := img.Base - img.Base%uint32(pageSize)
	data := img.Data
	if pad := int(img.Base - base); pad > 0 {
		data = append(bytes.Repeat([]byte{0xFF}, pad), data...)
	}

	var pages []flashPage
	for off := 0; off < len(data); off += pageSize {
		end := off + pageSize
		if end > len(data) {
			end = len(data)
		}
		pages = append(pages, flashPage{addr: base + uint32(off), data: data[off:end]})
	}
	return pages
}
