// Typed views over the raw registers of each decoded leaf.
//
// Bit positions follow the Intel SDM Vol. 2 CPUID chapter and the AMD64
// APM Vol. 3 Appendix E. Each leaf gets its own view type: the same bit
// position means different things on different leaves, so the accessors
// are deliberately not shared.
package cpuid

func bit(v uint32, n uint) bool {
	return v>>n&1 == 1
}

// FeatureInfo is the leaf 1 (baseline feature information) output.
type FeatureInfo Regs

// FPU reports x87 floating-point support (EDX bit 0).
func (f FeatureInfo) FPU() bool { return bit(f.EDX, 0) }

// ThermalMSR reports the on-die thermal monitor and ACPI-visible MSRs
// (EDX bit 22). Gates every access to the thermal-status MSR.
func (f FeatureInfo) ThermalMSR() bool { return bit(f.EDX, 22) }

// MMX reports MMX support (EDX bit 23).
func (f FeatureInfo) MMX() bool { return bit(f.EDX, 23) }

// SSE2 reports SSE2 support (EDX bit 25).
func (f FeatureInfo) SSE2() bool { return bit(f.EDX, 25) }

// AutoThermal reports automatic thermal-control circuitry (EDX bit 29).
func (f FeatureInfo) AutoThermal() bool { return bit(f.EDX, 29) }

// XSAVE reports XSAVE/XRSTOR support (ECX bit 26). Logged only; the
// probe does not keep it as a flag.
func (f FeatureInfo) XSAVE() bool { return bit(f.ECX, 26) }

// AVX reports AVX support (ECX bit 28).
func (f FeatureInfo) AVX() bool { return bit(f.ECX, 28) }

// RDRAND reports the RDRAND instruction (ECX bit 30).
func (f FeatureInfo) RDRAND() bool { return bit(f.ECX, 30) }

// Model is the base model nibble of the processor signature (EAX bits
// 4-7). The extended model nibble is intentionally not folded in.
func (f FeatureInfo) Model() uint32 { return f.EAX >> 4 & 0x0F }

// Family is the base family nibble (EAX bits 8-11), again without the
// extended family adjustment.
func (f FeatureInfo) Family() uint32 { return f.EAX >> 8 & 0x0F }

// ExtFeatureInfo is the leaf 0x80000001 (extended features) output.
type ExtFeatureInfo Regs

// MSR reports RDMSR/WRMSR support (EDX bit 5).
func (f ExtFeatureInfo) MSR() bool { return bit(f.EDX, 5) }

// PAE reports physical-address extension (EDX bit 6).
func (f ExtFeatureInfo) PAE() bool { return bit(f.EDX, 6) }

// MCE reports the machine-check exception (EDX bit 7).
func (f ExtFeatureInfo) MCE() bool { return bit(f.EDX, 7) }

// APIC reports an integrated APIC (EDX bit 9).
func (f ExtFeatureInfo) APIC() bool { return bit(f.EDX, 9) }

// SyscallK6 is the AMD family 5 model 7 SYSCALL/SYSRET encoding (EDX
// bit 10). Distinct from Syscall and must stay that way.
func (f ExtFeatureInfo) SyscallK6() bool { return bit(f.EDX, 10) }

// Syscall reports SYSCALL/SYSRET (EDX bit 11).
func (f ExtFeatureInfo) Syscall() bool { return bit(f.EDX, 11) }

// LongMode reports 64-bit long-mode support (EDX bit 29).
func (f ExtFeatureInfo) LongMode() bool { return bit(f.EDX, 29) }

// SSE4A reports the AMD SSE4a extension (ECX bit 6).
func (f ExtFeatureInfo) SSE4A() bool { return bit(f.ECX, 6) }

// MisalignedSSE reports misaligned-SSE mode (ECX bit 7).
func (f ExtFeatureInfo) MisalignedSSE() bool { return bit(f.ECX, 7) }

// PowerInfo is the leaf 0x80000007 (advanced power management) output.
// EBX carries RAS recovery bits, EDX carries thermal/power bits; the
// two groups are unrelated and decoded independently.
type PowerInfo Regs

// MCAOverflowRecovery reports recovery from MCA overflow (EBX bit 0).
func (p PowerInfo) MCAOverflowRecovery() bool { return bit(p.EBX, 0) }

// SUCCOR reports software uncorrectable-error containment and recovery
// (EBX bit 1).
func (p PowerInfo) SUCCOR() bool { return bit(p.EBX, 1) }

// TempSensor reports a temperature sensor (EDX bit 0).
func (p PowerInfo) TempSensor() bool { return bit(p.EDX, 0) }

// ThermalTrip reports THERMTRIP (EDX bit 3).
func (p PowerInfo) ThermalTrip() bool { return bit(p.EDX, 3) }

// HTC reports hardware thermal control (EDX bit 4).
func (p PowerInfo) HTC() bool { return bit(p.EDX, 4) }

// STC reports software thermal control (EDX bit 5).
func (p PowerInfo) STC() bool { return bit(p.EDX, 5) }

// ClockMulCtl reports 100 MHz multiplier control (EDX bit 6).
func (p PowerInfo) ClockMulCtl() bool { return bit(p.EDX, 6) }

// L2Cache is the decoded leaf 0x80000006 geometry.
type L2Cache struct {
	// LineSize is the cache line size in bytes.
	LineSize uint32 `json:"line_size"`

	// Assoc is the raw associativity code (ECX bits 12-14). It is a
	// hardware enumeration, not a way count; it is reported verbatim.
	Assoc uint32 `json:"assoc"`

	// SizeKB is the cache size in KiB.
	SizeKB uint32 `json:"size_kb"`
}

// DecodeL2Cache extracts L2 geometry from the leaf 0x80000006 ECX
// register.
func DecodeL2Cache(r Regs) L2Cache {
	return L2Cache{
		LineSize: r.ECX & 0xFF,
		Assoc:    r.ECX >> 12 & 0x07,
		SizeKB:   r.ECX >> 16 & 0xFFFF,
	}
}
