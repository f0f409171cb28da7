// Package topology reads the host's CPU layout: model name, core
// counts, NUMA nodes, L3 cache. It complements the CPUID-based
// capability probe with what the OS knows about the machine.
// Detection is best-effort: anything that cannot be read keeps its
// conservative default, never an error.
package topology

import (
	"fmt"
	"runtime"
)

// Host describes the CPU landscape of the current machine.
type Host struct {
	// ModelName is the human-readable CPU model string from the OS
	// (e.g. "AMD Ryzen 9 5950X 16-Core Processor").
	ModelName string `json:"model_name"`

	// PhysicalCores is the number of physical (not hyper-threaded) cores.
	PhysicalCores int `json:"physical_cores"`

	// LogicalCores is the total number of logical CPUs.
	LogicalCores int `json:"logical_cores"`

	// PCores and ECores are performance/efficiency core counts on
	// hybrid chips. PCores equals LogicalCores on non-hybrid CPUs.
	PCores int `json:"p_cores"`
	ECores int `json:"e_cores"`

	// NUMANodes is the number of NUMA memory nodes detected.
	NUMANodes int `json:"numa_nodes"`

	// L3CacheBytes is the total L3 cache in bytes (0 if not detected).
	L3CacheBytes int64 `json:"l3_cache_bytes"`
}

// Read collects the topology of the current machine. It never returns
// a hard error; on any read failure it falls back to runtime defaults.
func Read() *Host {
	h := &Host{
		LogicalCores:  runtime.NumCPU(),
		PhysicalCores: runtime.NumCPU(), // refined below
		PCores:        runtime.NumCPU(),
		NUMANodes:     1,
	}

	readPlatform(h)

	// Clamp PCores to logical count in case of parse errors.
	if h.PCores > h.LogicalCores || h.PCores == 0 {
		h.PCores = h.LogicalCores
	}
	return h
}

// Summary returns a one-line description for startup output.
func (h *Host) Summary() string {
	s := fmt.Sprintf("%d physical / %d logical cores", h.PhysicalCores, h.LogicalCores)
	if h.ECores > 0 {
		s += fmt.Sprintf(" (%dP+%dE)", h.PCores, h.ECores)
	}
	if h.NUMANodes > 1 {
		s += fmt.Sprintf(", %d NUMA nodes", h.NUMANodes)
	}
	if h.L3CacheBytes > 0 {
		s += fmt.Sprintf(", %d MiB L3", h.L3CacheBytes/(1024*1024))
	}
	return s
}
