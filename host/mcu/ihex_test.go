package mcu

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	src := `:100000000C9434000C943E000C943E000C943E0082
:040010000C943E000E
:00000001FF
`
	img, err := ParseHex(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, uint32(0), img.Base)
	require.Len(t, img.Data, 20)
	assert.Equal(t, []byte{0x0C, 0x94, 0x34, 0x00}, img.Data[:4])
	assert.Equal(t, []byte{0x0C, 0x94, 0x3E, 0x00}, img.Data[16:])
	assert.Equal(t, uint32(20), img.End())
}

func TestParseHexFillsGaps(t *testing.T) {
	// second record sits at 0x0004, leaving 0x0002-0x0003 erased
	src := `:020000000102FB
:020004000304F3
:00000001FF
`
	img, err := ParseHex(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02, 0xFF, 0xFF, 0x03, 0x04}, img.Data)
}

func TestParseHexExtendedLinearAddress(t *testing.T) {
	src := `:020000040001F9
:0100000055AA
:00000001FF
`
	img, err := ParseHex(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, uint32(0x10000), img.Base)
	assert.Equal(t, []byte{0x55}, img.Data)
}

func TestParseHexErrors(t *testing.T) {
	testCases := []struct {
		name string
		src  string
		err  error
	}{
		{"bad checksum", ":0100000055AB\n:00000001FF\n", ErrChecksum},
		{"no start code", "0100000055AA\n:00000001FF\n", ErrBadRecord},
		{"bad length", ":0200000055A9\n:00000001FF\n", ErrBadRecord},
		{"not hex", ":01000000ZZAA\n:00000001FF\n", ErrBadRecord},
		{"missing eof", ":0100000055AA\n", ErrMissingEOF},
		{"empty", ":00000001FF\n", ErrEmptyImage},
		{"unknown type", ":0100000655A4\n:00000001FF\n", ErrBadRecord},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseHex(strings.NewReader(tc.src))
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestParseHexRejectsWideSpan(t *testing.T) {
	// one byte at 0, one byte at 0x01000000
	src := `:0100000055AA
:020000040100F9
:0100000055AA
:00000001FF
`
	_, err := ParseHex(strings.NewReader(src))
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestParseHexAcceptsFullSpan(t *testing.T) {
	// 0x00000 and 0x3FFFF, exactly MaxImageSpan apart
	src := `:0100000055AA
:020000040003F7
:01FFFF0055AC
:00000001FF
`
	img, err := ParseHex(strings.NewReader(src))
	require.NoError(t, err)
	assert.Len(t, img.Data, MaxImageSpan)
}
