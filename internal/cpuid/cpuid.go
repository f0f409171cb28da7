// Package cpuid identifies the executing x86 processor by decoding CPUID
// leaves and, where supported, reading model-specific registers.
//
// Probing is best-effort: a feature flag is only true when the hardware
// bit for it was actually observed set — an unsupported leaf returns
// zero (or stale) registers, which decode as "absent", never as an error.
// The full probe runs once at startup; the resulting Report is immutable
// afterwards.
package cpuid

// Standard and extended CPUID leaves decoded by this package. Any leaf
// above the baselines (0 and 0x80000000) is only trusted after the
// corresponding maximum-leaf query confirms it.
const (
	// LeafVendor returns the maximum standard leaf in EAX and the
	// 12-byte vendor string in EBX:EDX:ECX.
	LeafVendor uint32 = 0

	// LeafFeatures is the baseline feature-information leaf.
	LeafFeatures uint32 = 1

	// LeafExtMax returns the maximum supported extended leaf in EAX.
	LeafExtMax uint32 = 0x80000000

	// LeafExtFeatures carries extended feature bits (MSR, PAE, long mode, ...).
	LeafExtFeatures uint32 = 0x80000001

	// LeafBrand0..2 carry the 48-byte processor brand string.
	LeafBrand0 uint32 = 0x80000002
	LeafBrand1 uint32 = 0x80000003
	LeafBrand2 uint32 = 0x80000004

	// LeafL2Cache describes L2 cache geometry in ECX.
	LeafL2Cache uint32 = 0x80000006

	// LeafPowerMgmt carries advanced power-management and RAS bits.
	LeafPowerMgmt uint32 = 0x80000007

	// LeafCentaur is the Centaur/VIA extension range base; its presence
	// is purely informational.
	LeafCentaur uint32 = 0xC0000000

	// LeafAMDEgg is an undocumented AMD leaf that returns a 12-byte
	// ASCII easter egg on some parts. Garbage on everything else.
	LeafAMDEgg uint32 = 0x8FFFFFFF
)

// In selects a CPUID leaf (and subleaf, for leaves that use ECX).
type In struct {
	EAX uint32
	ECX uint32
}

// Regs is the raw 4-register output of one CPUID query. Which bits mean
// what depends entirely on the leaf that produced it; decode logic must
// never be shared across leaves.
type Regs struct {
	EAX uint32
	EBX uint32
	ECX uint32
	EDX uint32
}

// Function issues CPUID queries. The hardware implementation is Native;
// Static serves recorded tables for tests and offline decoding.
type Function interface {
	Query(In) Regs
}

// Static is a fixed leaf table. Missing leaves return zero registers,
// exactly like hardware asked for an unsupported leaf.
type Static map[In]Regs

// Query implements Function.
func (s Static) Query(in In) Regs {
	return s[in]
}
