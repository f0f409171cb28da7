package cpuid

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0Nera/cpuprobe/internal/msr"
)

// quietLogger keeps probe output out of test logs while still
// exercising the logging path.
func quietLogger() (*logrus.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, DisableColors: true})
	return log, &buf
}

// fakeMSR is an in-memory msr.Device serving one register value.
type fakeMSR struct {
	val     uint64
	readErr error
	reads   int
	closed  bool
}

func (f *fakeMSR) Read(addr uint32) (uint64, error) {
	f.reads++
	if addr != msr.ThermalStatus {
		return 0, errors.New("unexpected register")
	}
	return f.val, f.readErr
}

func (f *fakeMSR) Write(uint32, uint64) error { return nil }

func (f *fakeMSR) Close() error {
	f.closed = true
	return nil
}

// countingFunc records how many times each leaf was queried.
type countingFunc struct {
	inner Function
	calls map[uint32]int
}

func newCountingFunc(inner Function) *countingFunc {
	return &countingFunc{inner: inner, calls: map[uint32]int{}}
}

func (c *countingFunc) Query(in In) Regs {
	c.calls[in.EAX]++
	return c.inner.Query(in)
}

func probeOpts(t *testing.T) Options {
	t.Helper()
	log, _ := quietLogger()
	return Options{
		Logger: log,
		OpenMSR: func(cpu int, confirmed bool) (msr.Device, error) {
			return nil, errors.New("no msr device in tests")
		},
	}
}

func TestProbeFPUOnly(t *testing.T) {
	table := Static{
		In{EAX: LeafFeatures}: {EDX: 1 << 0},
	}

	rep := Probe(table, probeOpts(t))
	assert.Equal(t, Flags{FPU: true}, rep.Flags)
}

func TestProbeMMXSSE2(t *testing.T) {
	table := Static{
		In{EAX: LeafFeatures}: {EDX: 1<<23 | 1<<25},
	}

	rep := Probe(table, probeOpts(t))
	assert.Equal(t, Flags{MMX: true, SSE2: true}, rep.Flags)
}

func TestProbeAVXRDRAND(t *testing.T) {
	table := Static{
		In{EAX: LeafFeatures}: {ECX: 1<<28 | 1<<30},
	}

	rep := Probe(table, probeOpts(t))
	assert.Equal(t, Flags{AVX: true, RDRAND: true}, rep.Flags)
}

func TestProbeAMDPathInvokedOnce(t *testing.T) {
	table := Static{
		In{EAX: LeafVendor}: amdLeaf0,
		In{EAX: LeafAMDEgg}: {EAX: le32([]byte("IT'S")), EBX: le32([]byte(" HAM")), ECX: le32([]byte("MER "))},
	}
	cf := newCountingFunc(table)

	rep := Probe(cf, probeOpts(t))
	require.NotNil(t, rep.AMD)
	assert.Equal(t, 1, cf.calls[LeafAMDEgg])
	assert.Equal(t, "IT'S HAMMER ", rep.AMD.Egg)
	assert.Equal(t, VendorAMD, rep.VendorTag)
}

func TestProbeAMDPathSkippedForOtherVendors(t *testing.T) {
	table := Static{
		In{EAX: LeafVendor}: intelLeaf0,
		In{EAX: LeafAMDEgg}: {EAX: 0xDEADBEEF},
	}
	cf := newCountingFunc(table)

	rep := Probe(cf, probeOpts(t))
	assert.Nil(t, rep.AMD)
	assert.Zero(t, cf.calls[LeafAMDEgg])
	assert.Equal(t, VendorIntel, rep.VendorTag)
}

func TestProbeTemperature(t *testing.T) {
	table := Static{
		In{EAX: LeafFeatures}: {EDX: 1 << 22},
	}
	dev := &fakeMSR{val: 0x25000000}

	log, _ := quietLogger()
	rep := Probe(table, Options{
		Logger: log,
		OpenMSR: func(cpu int, confirmed bool) (msr.Device, error) {
			require.True(t, confirmed)
			return dev, nil
		},
	})

	require.True(t, rep.HasTemp)
	assert.Equal(t, uint64(37), rep.TempC)
	assert.Equal(t, 1, dev.reads)
	assert.True(t, dev.closed)
}

func TestProbeTemperatureSkippedWithoutBit(t *testing.T) {
	opened := false
	log, _ := quietLogger()
	Probe(Static{}, Options{
		Logger: log,
		OpenMSR: func(cpu int, confirmed bool) (msr.Device, error) {
			opened = true
			return nil, errors.New("must not be called")
		},
	})
	assert.False(t, opened, "MSR device opened without the thermal bit")
}

func TestProbeMSROpenFailureAbsorbed(t *testing.T) {
	table := Static{
		In{EAX: LeafFeatures}: {EDX: 1 << 22},
	}

	rep := Probe(table, probeOpts(t))
	assert.False(t, rep.HasTemp)
	assert.True(t, rep.Flags.ThermalMSR, "flag reflects the CPUID bit even when the read fails")
}

func TestProbeBrandGatedOnMaxExtended(t *testing.T) {
	table := brandTable()
	table[In{EAX: LeafExtMax}] = Regs{EAX: LeafExtFeatures} // below the brand leaves

	rep := Probe(table, probeOpts(t))
	assert.Empty(t, rep.Brand)

	table[In{EAX: LeafExtMax}] = Regs{EAX: LeafPowerMgmt}
	rep = Probe(table, probeOpts(t))
	assert.Equal(t, "AMD Ryzen 7 5800X 8-Core Processor", rep.Brand)
}

func TestProbeExtendedLeavesGated(t *testing.T) {
	// Extended leaves present in the table but max extended says zero:
	// none of them may be decoded.
	table := Static{
		In{EAX: LeafExtFeatures}: {EDX: 1 << 29},
		In{EAX: LeafPowerMgmt}:   {EDX: 1 << 0},
		In{EAX: LeafL2Cache}:     {ECX: 0x02002040},
	}
	cf := newCountingFunc(table)

	rep := Probe(cf, probeOpts(t))
	assert.Equal(t, Extended{}, rep.Extended)
	assert.Equal(t, Power{}, rep.Power)
	assert.Equal(t, L2Cache{}, rep.L2)
	assert.Zero(t, cf.calls[LeafExtFeatures])
	assert.Zero(t, cf.calls[LeafPowerMgmt])
	assert.Zero(t, cf.calls[LeafL2Cache])
}

func TestProbeFullDecode(t *testing.T) {
	table := Static{
		In{EAX: LeafVendor}:      amdLeaf0,
		In{EAX: LeafFeatures}:    {EAX: 0x00A20F10, EDX: 1<<0 | 1<<23 | 1<<25, ECX: 1 << 28},
		In{EAX: LeafExtMax}:      {EAX: LeafPowerMgmt},
		In{EAX: LeafExtFeatures}: {EDX: 1<<5 | 1<<11 | 1<<29, ECX: 1 << 6},
		In{EAX: LeafPowerMgmt}:   {EBX: 1 << 1, EDX: 1 << 0},
		In{EAX: LeafL2Cache}:     {ECX: 0x02002040},
	}

	rep := Probe(table, probeOpts(t))

	assert.Equal(t, Flags{FPU: true, MMX: true, SSE2: true, AVX: true}, rep.Flags)
	assert.Equal(t, "AuthenticAMD", rep.Vendor)
	assert.Equal(t, uint32(LeafPowerMgmt), rep.MaxExtended)
	assert.True(t, rep.Extended.MSR)
	assert.True(t, rep.Extended.Syscall)
	assert.True(t, rep.Extended.LongMode)
	assert.True(t, rep.Extended.SSE4A)
	assert.False(t, rep.Extended.SyscallK6)
	assert.True(t, rep.Power.SUCCOR)
	assert.True(t, rep.Power.TempSensor)
	assert.False(t, rep.Power.HTC)
	assert.Equal(t, L2Cache{LineSize: 64, Assoc: 2, SizeKB: 512}, rep.L2)
	require.NotNil(t, rep.AMD)
	assert.Equal(t, uint32(1), rep.AMD.Model)
	assert.Equal(t, uint32(0xF), rep.AMD.Family)
}

func TestProbeIdempotent(t *testing.T) {
	table := Static{
		In{EAX: LeafVendor}:   amdLeaf0,
		In{EAX: LeafFeatures}: {EDX: 1<<0 | 1<<23 | 1<<25, ECX: 1<<28 | 1<<30},
		In{EAX: LeafExtMax}:   {EAX: LeafPowerMgmt},
		In{EAX: LeafL2Cache}:  {ECX: 0x02002040},
	}

	first := Probe(table, probeOpts(t))
	second := Probe(table, probeOpts(t))
	assert.Equal(t, first, second)
}

func TestProbeLogsDetections(t *testing.T) {
	log, buf := quietLogger()
	table := Static{
		In{EAX: LeafFeatures}: {EDX: 1 << 23},
	}
	Probe(table, Options{
		Logger: log,
		OpenMSR: func(int, bool) (msr.Device, error) {
			return nil, errors.New("no device")
		},
	})
	assert.Contains(t, buf.String(), "MMX supported")
	assert.NotContains(t, buf.String(), "SSE2 supported")
}

func TestPublishCurrent(t *testing.T) {
	rep := Probe(Static{In{EAX: LeafFeatures}: {EDX: 1}}, probeOpts(t))
	Publish(rep)
	assert.Same(t, rep, Current())
}

func TestCentaurLeafInformational(t *testing.T) {
	table := Static{
		In{EAX: LeafCentaur}: {EAX: 0xC0000004},
	}
	rep := Probe(table, probeOpts(t))
	assert.Equal(t, uint32(0xC0000004), rep.CentaurMax)
	// No flag consequence.
	assert.Equal(t, Flags{}, rep.Flags)
}
