//go:build !amd64

package cpuid

// EnableSSE is x86-only.
func EnableSSE() {
	panic("cpuid: extended-state enable is only meaningful on x86-64")
}
