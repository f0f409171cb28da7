package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecorderCounts(t *testing.T) {
	rec := NewRecorder()

	done := rec.PassStart()
	rec.RecordLeaf()
	rec.RecordLeaf()
	rec.RecordLeaf()
	rec.RecordFeature()
	rec.RecordMSRRead()
	done()

	snap := rec.Snapshot()
	assert.Equal(t, int64(3), snap.LeavesQueried)
	assert.Equal(t, int64(1), snap.FeaturesDetected)
	assert.Equal(t, int64(1), snap.MSRReads)
	assert.GreaterOrEqual(t, snap.ProbeMillis, 0.0)
}

func TestRecorderZeroValueSnapshot(t *testing.T) {
	snap := NewRecorder().Snapshot()
	assert.Zero(t, snap.LeavesQueried)
	assert.Zero(t, snap.MSRReads)
	assert.Zero(t, snap.FeaturesDetected)
	assert.Zero(t, snap.ProbeMillis)
}

func TestRecorderAccumulatesAcrossPasses(t *testing.T) {
	rec := NewRecorder()

	done := rec.PassStart()
	rec.RecordLeaf()
	done()

	done = rec.PassStart()
	rec.RecordLeaf()
	done()

	assert.Equal(t, int64(2), rec.Snapshot().LeavesQueried)
}
