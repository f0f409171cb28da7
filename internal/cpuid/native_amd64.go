//go:build amd64

package cpuid

// Native issues the CPUID instruction on the executing core.
type Native struct{}

// Query implements Function.
func (Native) Query(in In) Regs {
	var r Regs
	r.EAX, r.EBX, r.ECX, r.EDX = rawCPUID(in.EAX, in.ECX)
	return r
}

// rawCPUID executes CPUID with EAX/ECX preloaded. Implemented in
// cpuid_amd64.s; performs no leaf validation whatsoever.
//
//go:noescape
func rawCPUID(eaxArg, ecxArg uint32) (eax, ebx, ecx, edx uint32)
