// Package diag collects and exposes statistics about a probe pass.
package diag

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot is a point-in-time view of probe statistics — safe to marshal to JSON.
type Snapshot struct {
	LeavesQueried    int64   `json:"leaves_queried"`
	MSRReads         int64   `json:"msr_reads"`
	FeaturesDetected int64   `json:"features_detected"`
	ProbeMillis      float64 `json:"probe_ms"`       // duration of the last completed pass
	UptimeSeconds    float64 `json:"uptime_seconds"` // since the recorder was created
}

// Recorder is a thread-safe probe statistics store. The probe pass
// itself is single-threaded; the recorder is still safe for concurrent
// reads by the HTTP server while a re-probe runs.
type Recorder struct {
	startTime time.Time

	leaves   atomic.Int64
	msrReads atomic.Int64
	features atomic.Int64

	mu          sync.Mutex
	probeStart  time.Time
	probeMillis float64
}

// NewRecorder creates and starts a Recorder.
func NewRecorder() *Recorder {
	return &Recorder{startTime: time.Now()}
}

// PassStart marks the beginning of a probe pass and returns a done
// function that should be deferred by the orchestrator.
func (r *Recorder) PassStart() func() {
	r.mu.Lock()
	r.probeStart = time.Now()
	r.mu.Unlock()
	return func() {
		r.mu.Lock()
		r.probeMillis = float64(time.Since(r.probeStart).Microseconds()) / 1000
		r.mu.Unlock()
	}
}

// RecordLeaf counts one CPUID query.
func (r *Recorder) RecordLeaf() {
	r.leaves.Add(1)
}

// RecordMSRRead counts one model-specific register read.
func (r *Recorder) RecordMSRRead() {
	r.msrReads.Add(1)
}

// RecordFeature counts one capability observed present.
func (r *Recorder) RecordFeature() {
	r.features.Add(1)
}

// Snapshot returns current statistics as an immutable value.
func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	probeMillis := r.probeMillis
	r.mu.Unlock()

	return Snapshot{
		LeavesQueried:    r.leaves.Load(),
		MSRReads:         r.msrReads.Load(),
		FeaturesDetected: r.features.Load(),
		ProbeMillis:      probeMillis,
		UptimeSeconds:    time.Since(r.startTime).Seconds(),
	}
}
