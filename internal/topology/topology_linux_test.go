//go:build linux

package topology

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCacheSize(t *testing.T) {
	assert.Equal(t, int64(12288*1024), parseCacheSize("12288K"))
	assert.Equal(t, int64(12*1024*1024), parseCacheSize("12M"))
	assert.Equal(t, int64(512), parseCacheSize("512"))
	assert.Zero(t, parseCacheSize("garbage"))
}

func TestQuotaCores(t *testing.T) {
	assert.Equal(t, 4, quotaCores("400000", "100000"))
	assert.Equal(t, 1, quotaCores("50000", "100000")) // rounds up to one core
	assert.Zero(t, quotaCores("-1", "100000"))        // v1 "no limit" sentinel
	assert.Zero(t, quotaCores("max", "100000"))
	assert.Zero(t, quotaCores("100000", "0"))
}

func TestReadDefaults(t *testing.T) {
	h := Read()
	assert.Greater(t, h.LogicalCores, 0)
	assert.Greater(t, h.PCores, 0)
	assert.LessOrEqual(t, h.PCores, h.LogicalCores)
	assert.GreaterOrEqual(t, h.NUMANodes, 1)
}
