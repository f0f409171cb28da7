// Darwin (macOS) topology detection via sysctl.

//go:build darwin

package topology

import (
	"os/exec"
	"strconv"
	"strings"
)

// readPlatform is the Darwin implementation. Apple Silicon and x86
// Macs use the same sysctls.
func readPlatform(h *Host) {
	h.ModelName = sysctlString("machdep.cpu.brand_string")

	if n := sysctlInt("hw.physicalcpu"); n > 0 {
		h.PhysicalCores = n
	}
	if n := sysctlInt("hw.logicalcpu"); n > 0 {
		h.LogicalCores = n
	}

	// Apple Silicon: performance + efficiency cores.
	if p := sysctlInt("hw.perflevel0.physicalcpu"); p > 0 {
		h.PCores = p
	}
	if e := sysctlInt("hw.perflevel1.physicalcpu"); e > 0 {
		h.ECores = e
	}
	if h.PCores == 0 {
		h.PCores = h.PhysicalCores
	}

	// M-series chips use a system cache instead of a classic L3.
	if l3 := sysctlInt64("hw.l3cachesize"); l3 > 0 {
		h.L3CacheBytes = l3
	}
}

// sysctlString returns a sysctl string value, or "" on error.
func sysctlString(key string) string {
	out, err := exec.Command("sysctl", "-n", key).Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

func sysctlInt(key string) int {
	n, _ := strconv.Atoi(sysctlString(key))
	return n
}

func sysctlInt64(key string) int64 {
	n, _ := strconv.ParseInt(sysctlString(key), 10, 64)
	return n
}
