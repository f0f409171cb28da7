package cpuid

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/0Nera/cpuprobe/internal/diag"
	"github.com/0Nera/cpuprobe/internal/msr"
)

// Flags is the capability set consumed by the rest of the system. A
// flag is true if and only if the probe observed the corresponding
// hardware bit set — flags are never inferred or defaulted to true.
type Flags struct {
	FPU        bool `json:"fpu"`
	ThermalMSR bool `json:"thermal_msr"`
	MMX        bool `json:"mmx"`
	SSE2       bool `json:"sse2"`
	AVX        bool `json:"avx"`
	RDRAND     bool `json:"rdrand"`
}

// Extended is the decoded leaf 0x80000001 view, kept on the Report for
// display; none of it feeds Flags.
type Extended struct {
	MSR           bool `json:"msr"`
	PAE           bool `json:"pae"`
	MCE           bool `json:"mce"`
	APIC          bool `json:"apic"`
	SyscallK6     bool `json:"syscall_k6"`
	Syscall       bool `json:"syscall"`
	LongMode      bool `json:"long_mode"`
	SSE4A         bool `json:"sse4a"`
	MisalignedSSE bool `json:"misaligned_sse"`
}

// Power is the decoded leaf 0x80000007 view.
type Power struct {
	MCAOverflowRecovery bool `json:"mca_overflow_recovery"`
	SUCCOR              bool `json:"succor"`
	TempSensor          bool `json:"temp_sensor"`
	ThermalTrip         bool `json:"thermal_trip"`
	HTC                 bool `json:"htc"`
	STC                 bool `json:"stc"`
	ClockMulCtl         bool `json:"clock_mul_ctl"`
}

// Report is the complete result of one probe pass. It is built fully
// before being returned or published and is read-only afterwards.
type Report struct {
	Flags       Flags    `json:"flags"`
	Vendor      string   `json:"vendor"`
	VendorTag   Vendor   `json:"-"`
	Brand       string   `json:"brand,omitempty"`
	MaxExtended uint32   `json:"max_extended"`
	Extended    Extended `json:"extended"`
	Power       Power    `json:"power"`
	L2          L2Cache  `json:"l2_cache"`
	AMD         *AMDInfo `json:"amd,omitempty"`
	CentaurMax  uint32   `json:"centaur_max,omitempty"`

	// TempC is the decoded thermal-status reading; only meaningful when
	// HasTemp is true. Zero under QEMU/KVM is a valid reading.
	TempC   uint64 `json:"temp_c"`
	HasTemp bool   `json:"has_temp"`
}

// Options configures a probe pass. The zero value probes CPU 0 through
// the real MSR device and logs to the logrus standard logger.
type Options struct {
	// Logger receives one line per probed capability. Nil means the
	// logrus standard logger.
	Logger logrus.FieldLogger

	// Recorder accumulates pass statistics. Nil means a private one.
	Recorder *diag.Recorder

	// CPU selects which logical CPU's MSR device to open for the
	// thermal read. The CPUID decode itself runs on whatever core the
	// scheduler picked; capabilities are assumed homogeneous.
	CPU int

	// OpenMSR overrides the MSR device constructor, for tests.
	OpenMSR func(cpu int, confirmed bool) (msr.Device, error)
}

// counted wraps a Function so every query lands in the recorder.
type counted struct {
	f   Function
	rec *diag.Recorder
}

func (c counted) Query(in In) Regs {
	c.rec.RecordLeaf()
	return c.f.Query(in)
}

// Probe runs the full identification pass: baseline features, thermal
// read, extended leaves, vendor/brand strings, cache geometry. Each
// leaf is queried exactly once per step; there is no retry logic. The
// pass is synchronous and single-threaded.
func Probe(f Function, opts Options) *Report {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	rec := opts.Recorder
	if rec == nil {
		rec = diag.NewRecorder()
	}
	openMSR := opts.OpenMSR
	if openMSR == nil {
		openMSR = msr.Open
	}
	defer rec.PassStart()()

	q := counted{f: f, rec: rec}
	rep := &Report{}

	capability := func(name string, present bool) bool {
		if present {
			rec.RecordFeature()
			log.Infof("%s supported", name)
		} else {
			log.Debugf("%s not present", name)
		}
		return present
	}

	// 1. Baseline feature information.
	feat := FeatureInfo(q.Query(In{EAX: LeafFeatures}))
	rep.Flags.FPU = capability("FPU (x87)", feat.FPU())
	rep.Flags.ThermalMSR = capability("ACPI thermal monitor MSRs", feat.ThermalMSR())
	rep.Flags.MMX = capability("MMX", feat.MMX())
	rep.Flags.SSE2 = capability("SSE2", feat.SSE2())
	capability("automatic thermal control", feat.AutoThermal())
	rep.Flags.AVX = capability("AVX", feat.AVX())
	capability("XSAVE", feat.XSAVE())
	rep.Flags.RDRAND = capability("RDRAND", feat.RDRAND())

	// 2. Thermal-status read, gated on the bit just observed. Any
	// failure to reach the register is absorbed: the reading is a
	// diagnostic, not a capability.
	if rep.Flags.ThermalMSR {
		if dev, err := openMSR(opts.CPU, true); err != nil {
			log.Infof("thermal MSR unreadable: %v", err)
		} else {
			raw, err := dev.Read(msr.ThermalStatus)
			if err != nil {
				log.Infof("thermal MSR unreadable: %v", err)
			} else {
				rec.RecordMSRRead()
				rep.TempC = msr.Temperature(raw)
				rep.HasTemp = true
				log.Infof("temperature: %d C (always 0 under QEMU/KVM)", rep.TempC)
			}
			dev.Close()
		}
	}

	// 3. Maximum extended leaf. Everything past here is only trusted
	// up to this value.
	rep.MaxExtended = q.Query(In{EAX: LeafExtMax}).EAX
	log.Infof("maximum extended CPUID leaf = 0x%X", rep.MaxExtended)

	// 4. Extended features.
	if rep.MaxExtended >= LeafExtFeatures {
		ext := ExtFeatureInfo(q.Query(In{EAX: LeafExtFeatures}))
		rep.Extended = Extended{
			MSR:           capability("MSR registers", ext.MSR()),
			PAE:           capability("physical address extension", ext.PAE()),
			MCE:           capability("machine-check exception", ext.MCE()),
			APIC:          capability("advanced programmable interrupt controller", ext.APIC()),
			SyscallK6:     capability("SYSCALL/SYSRET (AMD family 5 model 7)", ext.SyscallK6()),
			Syscall:       capability("SYSCALL/SYSRET", ext.Syscall()),
			LongMode:      capability("AMD64 long mode", ext.LongMode()),
			SSE4A:         capability("SSE4a", ext.SSE4A()),
			MisalignedSSE: capability("misaligned SSE mode", ext.MisalignedSSE()),
		}
	}

	// 5. Advanced power management. EBX carries RAS recovery bits, EDX
	// thermal bits; the two groups are unrelated.
	if rep.MaxExtended >= LeafPowerMgmt {
		pm := PowerInfo(q.Query(In{EAX: LeafPowerMgmt}))
		rep.Power = Power{
			MCAOverflowRecovery: capability("MCA overflow recovery", pm.MCAOverflowRecovery()),
			SUCCOR:              capability("software uncorrectable error recovery", pm.SUCCOR()),
			TempSensor:          capability("temperature sensor", pm.TempSensor()),
			ThermalTrip:         capability("THERMTRIP", pm.ThermalTrip()),
			HTC:                 capability("hardware thermal control (HTC)", pm.HTC()),
			STC:                 capability("software thermal control (STC)", pm.STC()),
			ClockMulCtl:         capability("100 MHz multiplier control", pm.ClockMulCtl()),
		}
	}

	// 6. Centaur extension range — informational only.
	if eax := q.Query(In{EAX: LeafCentaur}).EAX; eax > LeafCentaur {
		rep.CentaurMax = eax
		log.Infof("Centaur extension leaves present, 0xC0000000 EAX = 0x%X", eax)
	}

	// 7. Vendor and brand strings.
	vendorRegs := q.Query(In{EAX: LeafVendor})
	rep.Vendor = VendorString(vendorRegs)
	rep.VendorTag = ClassifyVendor(rep.Vendor)
	log.Infof("vendor: %q (%s)", rep.Vendor, rep.VendorTag)

	if brand := BrandString(q, rep.MaxExtended); brand != "" {
		rep.Brand = brand
		log.Infof("brand: %q", brand)
	}

	if hasAMDSignature(vendorRegs) {
		amd := queryAMD(q)
		rep.AMD = &amd
		log.Infof("AMD processor, leaf 0x8FFFFFFF = %q", amd.Egg)
		log.Infof("cpu model = %d, family = %d", amd.Model, amd.Family)
	}

	// 8. L2 cache geometry.
	if rep.MaxExtended >= LeafL2Cache {
		rep.L2 = DecodeL2Cache(q.Query(In{EAX: LeafL2Cache}))
		log.Infof("L2: line %d B, associativity code %d, size %d KiB",
			rep.L2.LineSize, rep.L2.Assoc, rep.L2.SizeKB)
	}

	return rep
}

// published holds the shared Report. Written once by Detect after a
// pass fully completes; read-only for everyone else, so later readers
// never observe a half-filled flag set.
var published atomic.Pointer[Report]

// Detect probes the executing processor and publishes the result as
// the process-wide report.
func Detect(opts Options) *Report {
	rep := Probe(Native{}, opts)
	Publish(rep)
	return rep
}

// Publish makes rep the process-wide report. Callers must not mutate
// rep afterwards.
func Publish(rep *Report) {
	published.Store(rep)
}

// Current returns the published report, or nil before the first probe.
func Current() *Report {
	return published.Load()
}
