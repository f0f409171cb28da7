package cpuid

import (
	"encoding/binary"
	"strings"
)

// Vendor classifies the processor by its 12-byte vendor string. Only
// VendorAMD triggers extra probing; the other tags exist so callers can
// branch without re-parsing the string.
type Vendor int

const (
	// VendorUnknown is any vendor without special handling.
	VendorUnknown Vendor = iota
	VendorIntel
	VendorAMD
	VendorCentaur
)

// String implements fmt.Stringer.
func (v Vendor) String() string {
	switch v {
	case VendorIntel:
		return "Intel"
	case VendorAMD:
		return "AMD"
	case VendorCentaur:
		return "Centaur"
	default:
		return "unknown"
	}
}

// amdSignatureWord is "Auth" as the little-endian leaf 0 EBX value —
// the first four raw bytes of "AuthenticAMD".
const amdSignatureWord uint32 = 0x68747541

var vendorTags = map[string]Vendor{
	"GenuineIntel": VendorIntel,
	"AuthenticAMD": VendorAMD,
	"CentaurHauls": VendorCentaur,
}

// VendorString assembles the 12-byte vendor identifier from a leaf 0
// result. The register order EBX, EDX, ECX and the little-endian byte
// order within each register are mandated by the architecture.
func VendorString(r Regs) string {
	var b [12]byte
	binary.LittleEndian.PutUint32(b[0:4], r.EBX)
	binary.LittleEndian.PutUint32(b[4:8], r.EDX)
	binary.LittleEndian.PutUint32(b[8:12], r.ECX)
	return string(b[:])
}

// ClassifyVendor maps a vendor string to its tag.
func ClassifyVendor(s string) Vendor {
	if v, ok := vendorTags[s]; ok {
		return v
	}
	return VendorUnknown
}

// hasAMDSignature reports whether the leaf 0 output carries the AMD
// signature word. Checked on the raw register, not the assembled
// string, mirroring how the signature is defined.
func hasAMDSignature(r Regs) bool {
	return r.EBX == amdSignatureWord
}

// BrandString assembles the 48-byte brand string from leaves
// 0x80000002..0x80000004. maxExt is the maximum extended leaf reported
// by leaf 0x80000000: if it is below 0x80000004 the brand leaves are
// not supported and the result is empty, never a guess.
func BrandString(f Function, maxExt uint32) string {
	if maxExt < LeafBrand2 {
		return ""
	}
	var b [48]byte
	for i, leaf := range []uint32{LeafBrand0, LeafBrand1, LeafBrand2} {
		r := f.Query(In{EAX: leaf})
		off := i * 16
		binary.LittleEndian.PutUint32(b[off:off+4], r.EAX)
		binary.LittleEndian.PutUint32(b[off+4:off+8], r.EBX)
		binary.LittleEndian.PutUint32(b[off+8:off+12], r.ECX)
		binary.LittleEndian.PutUint32(b[off+12:off+16], r.EDX)
	}
	return strings.TrimSpace(strings.TrimRight(string(b[:]), "\x00"))
}

// AMDInfo is the result of the AMD-only extended probe.
type AMDInfo struct {
	// Egg is the 12-byte ASCII tag from leaf 0x8FFFFFFF. The leaf is
	// undocumented; absent or garbage output is harmless and kept as-is.
	Egg string `json:"egg"`

	// Model and Family are the base signature nibbles from leaf 1.
	// Extended model/family are deliberately not decoded here.
	Model  uint32 `json:"model"`
	Family uint32 `json:"family"`
}

// queryAMD runs the vendor-specific extended probe. Called only when
// the vendor signature matched AMD.
func queryAMD(f Function) AMDInfo {
	egg := f.Query(In{EAX: LeafAMDEgg})
	var b [12]byte
	binary.LittleEndian.PutUint32(b[0:4], egg.EAX)
	binary.LittleEndian.PutUint32(b[4:8], egg.EBX)
	binary.LittleEndian.PutUint32(b[8:12], egg.ECX)

	sig := FeatureInfo(f.Query(In{EAX: LeafFeatures}))
	return AMDInfo{
		Egg:    strings.TrimRight(string(b[:]), "\x00"),
		Model:  sig.Model(),
		Family: sig.Family(),
	}
}
