package mcu

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Intel HEX record types
const (
	recData           = 0x00
	recEOF            = 0x01
	recExtSegmentAddr = 0x02
	recStartSegment   = 0x03
	recExtLinearAddr  = 0x04
	recStartLinear    = 0x05
)

// MaxImageSpan bounds the address range one HEX file may cover, the flash
// size of the largest AVR parts
const MaxImageSpan = 256 * 1024

var (
	ErrBadRecord  = errors.New("malformed hex record")
	ErrChecksum   = errors.New("hex record checksum mismatch")
	ErrMissingEOF = errors.New("hex file has no end-of-file record")
	ErrEmptyImage = errors.New("hex file contains no data")
)

// Image is a contiguous flash image. Gaps between records are 0xFF, the
// erased flash value.
type Image struct {
	Base uint32
	Data []byte
}

// End returns the first address past the image
func (img *Image) End() uint32 {
	return img.Base + uint32(len(img.Data))
}

type hexChunk struct {
	addr uint32
	data []byte
}

// LoadHexFile reads an Intel HEX file from disk
func LoadHexFile(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	img, err := ParseHex(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return img, nil
}

// ParseHex parses Intel HEX records into a flash image
func ParseHex(r io.Reader) (*Image, error) {
	var (
		chunks []hexChunk
		upper  uint32 // from extended segment/linear address records
		sawEOF bool
	)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if sawEOF {
			return nil, fmt.Errorf("line %d: %w: data after end-of-file record", lineNo, ErrBadRecord)
		}

		if line[0] != ':' {
			return nil, fmt.Errorf("line %d: %w: missing start code", lineNo, ErrBadRecord)
		}
		raw, err := hex.DecodeString(line[1:])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w: %v", lineNo, ErrBadRecord, err)
		}
		if len(raw) < 5 || len(raw) != int(raw[0])+5 {
			return nil, fmt.Errorf("line %d: %w: bad length", lineNo, ErrBadRecord)
		}

		var sum byte
		for _, b := range raw {
			sum += b
		}
		if sum != 0 {
			return nil, fmt.Errorf("line %d: %w", lineNo, ErrChecksum)
		}

		count := int(raw[0])
		offset := uint32(raw[1])<<8 | uint32(raw[2])
		payload := raw[4 : 4+count]

		switch raw[3] {
		case recData:
			data := make([]byte, count)
			copy(data, payload)
			chunks = append(chunks, hexChunk{addr: upper + offset, data: data})
		case recEOF:
			sawEOF = true
		case recExtSegmentAddr:
			if count != 2 {
				return nil, fmt.Errorf("line %d: %w: segment address length", lineNo, ErrBadRecord)
			}
			upper = (uint32(payload[0])<<8 | uint32(payload[1])) << 4
		case recExtLinearAddr:
			if count != 2 {
				return nil, fmt.Errorf("line %d: %w: linear address length", lineNo, ErrBadRecord)
			}
			upper = (uint32(payload[0])<<8 | uint32(payload[1])) << 16
		case recStartSegment, recStartLinear:
			// Entry point records mean nothing to the bootloader
		default:
			return nil, fmt.Errorf("line %d: %w: record type 0x%02X", lineNo, ErrBadRecord, raw[3])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if !sawEOF {
		return nil, ErrMissingEOF
	}
	if len(chunks) == 0 {
		return nil, ErrEmptyImage
	}

	lo, hi := chunks[0].addr, chunks[0].addr
	for _, c := range chunks {
		if c.addr < lo {
			lo = c.addr
		}
		if end := c.addr + uint32(len(c.data)); end > hi {
			hi = end
		}
	}

	if span := hi - lo; span > MaxImageSpan {
		return nil, fmt.Errorf("%w: records span %d bytes from 0x%X", ErrTooLarge, span, lo)
	}

	img := &Image{Base: lo, Data: make([]byte, hi-lo)}
	for i := range img.Data {
		img.Data[i] = 0xFF
	}
	for _, c := range chunks {
		copy(img.Data[c.addr-lo:], c.data)
	}
	return img, nil
}
