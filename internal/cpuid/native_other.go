// Fallback for architectures without the CPUID instruction. Every query
// returns zero registers, so all decoded capabilities come out absent
// and the probe still completes.

//go:build !amd64

package cpuid

// Native is a stub on non-x86 builds.
type Native struct{}

// Query implements Function.
func (Native) Query(In) Regs {
	return Regs{}
}
