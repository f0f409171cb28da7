package cpuid

import "strings"

// Summary returns a short human-readable string of the set flags.
func (f Flags) Summary() string {
	var parts []string
	if f.FPU {
		parts = append(parts, "FPU")
	}
	if f.ThermalMSR {
		parts = append(parts, "THERM")
	}
	if f.MMX {
		parts = append(parts, "MMX")
	}
	if f.SSE2 {
		parts = append(parts, "SSE2")
	}
	if f.AVX {
		parts = append(parts, "AVX")
	}
	if f.RDRAND {
		parts = append(parts, "RDRAND")
	}
	if len(parts) == 0 {
		return "none detected"
	}
	return strings.Join(parts, " ")
}
