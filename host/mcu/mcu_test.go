package mcu

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMCU(b *fakeBootloader) *MCU {
	m := NewMCU(zerolog.Nop())
	m.SetTimeout(20 * time.Millisecond)
	m.Attach(b)
	return m
}

func TestSyncAndSignature(t *testing.T) {
	b := newFakeBootloader()
	m := newTestMCU(b)

	require.NoError(t, m.Sync(context.Background(), 3))
	assert.Equal(t, []byte{STK_GET_SYNC, CRC_EOP}, b.written[:2])

	sig, err := m.ReadSignature()
	require.NoError(t, err)
	assert.Equal(t, ATmega328PSignature, sig)
}

func TestSyncLogsFlushFailure(t *testing.T) {
	b := newFakeBootloader()
	b.flushErr = errors.New("input queue stuck")

	var out bytes.Buffer
	m := NewMCU(zerolog.New(&out).Level(zerolog.DebugLevel))
	m.SetTimeout(20 * time.Millisecond)
	m.Attach(b)

	require.NoError(t, m.Sync(context.Background(), 3))
	assert.Contains(t, out.String(), "flush failed")
	assert.Contains(t, out.String(), "input queue stuck")
}

func TestSyncFailsWhenSilent(t *testing.T) {
	b := newFakeBootloader()
	b.silent = true
	m := newTestMCU(b)

	err := m.Sync(context.Background(), 2)
	assert.ErrorIs(t, err, ErrNoSync)
}

func TestSyncHonoursContext(t *testing.T) {
	m := newTestMCU(newFakeBootloader())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, m.Sync(ctx, 5), context.Canceled)
}

func TestCommandRejectsMissingInsync(t *testing.T) {
	b := newFakeBootloader()
	m := newTestMCU(b)

	// Line noise instead of a reply
	b.silent = true
	b.rx = []byte{0x00, STK_OK}
	_, err := m.command([]byte{STK_GET_SYNC, CRC_EOP}, 0)
	assert.ErrorIs(t, err, ErrBadResponse)
}

func TestNotConnected(t *testing.T) {
	m := NewMCU(zerolog.Nop())
	assert.False(t, m.IsConnected())
	assert.ErrorIs(t, m.Sync(context.Background(), 1), ErrNotConnected)
	_, err := m.ReadSignature()
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestLoadAddressUsesWordAddress(t *testing.T) {
	b := newFakeBootloader()
	m := newTestMCU(b)

	require.NoError(t, m.LoadAddress(0x0100))
	assert.Equal(t, []byte{STK_LOAD_ADDRESS, 0x80, 0x00, CRC_EOP}, b.written)
	assert.Equal(t, uint32(0x0100), b.addr)
}

func TestProgramAndReadPage(t *testing.T) {
	b := newFakeBootloader()
	m := newTestMCU(b)

	page := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	require.NoError(t, m.LoadAddress(0x80))
	require.NoError(t, m.ProgramPage(page))

	require.NoError(t, m.LoadAddress(0x80))
	got, err := m.ReadPage(len(page))
	require.NoError(t, err)
	assert.Equal(t, page, got)
}

func TestProgramPageTooLarge(t *testing.T) {
	m := newTestMCU(newFakeBootloader())
	err := m.ProgramPage(make([]byte, ATmega328PPageSize+1))
	assert.ErrorIs(t, err, ErrPageSize)
}
