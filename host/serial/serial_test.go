package serial

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/dev/ttyACM0")

	assert.Equal(t, "/dev/ttyACM0", cfg.Device)
	assert.Equal(t, BaudOptiboot, cfg.Baud)
	assert.NotZero(t, cfg.ReadTimeout)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"no device", Config{Baud: BaudOptiboot}},
		{"zero baud", Config{Device: "/dev/ttyACM0"}},
		{"negative baud", Config{Device: "/dev/ttyACM0", Baud: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.cfg.Validate(), ErrBadConfig)
		})
	}
}

func TestOpenRejectsBadConfig(t *testing.T) {
	_, err := Open(nil)
	assert.ErrorIs(t, err, ErrBadConfig)

	_, err = Open(&Config{Device: "/dev/ttyACM0"})
	assert.ErrorIs(t, err, ErrBadConfig)
}

func TestOpenMissingDevice(t *testing.T) {
	device := filepath.Join(t.TempDir(), "ttyNOPE")

	_, err := Open(DefaultConfig(device))
	require.Error(t, err)
	assert.Contains(t, err.Error(), device)
}
