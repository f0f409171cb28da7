package msr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemperature(t *testing.T) {
	// hi = 0, lo = 0x25000000: >>16 gives 0x2500, /256 gives 37.
	assert.Equal(t, uint64(37), Temperature(Join(0x25000000, 0)))

	// The formula floors to zero below 2^24 — reproduced as-is.
	assert.Zero(t, Temperature(0x00FFFFFF))
	assert.Zero(t, Temperature(0))

	// The hi half participates through the 64-bit synthesis.
	assert.Equal(t, uint64(0x2500000000>>16)/256, Temperature(Join(0, 0x25)))
}

func TestSplitJoin(t *testing.T) {
	lo, hi := Split(0x1122334455667788)
	assert.Equal(t, uint32(0x55667788), lo)
	assert.Equal(t, uint32(0x11223344), hi)
	assert.Equal(t, uint64(0x1122334455667788), Join(lo, hi))
}

func TestOpenRequiresConfirmedSupport(t *testing.T) {
	// The precondition check fires before any device access: CPU index
	// -1 would fail at open, but the contract violation wins.
	dev, err := Open(-1, false)
	require.ErrorIs(t, err, ErrNotConfirmed)
	assert.Nil(t, dev)
}

func TestOpenMissingDevice(t *testing.T) {
	// Out-of-range CPU index: confirmed support, but no device node.
	// Must surface as an error, never a panic.
	dev, err := Open(1<<20, true)
	require.Error(t, err)
	assert.Nil(t, dev)
}
