// cpuprobe — x86 CPU identification and capability probing
//
// Usage:
//
//	cpuprobe probe [--json] [--verbose]
//	cpuprobe temp [--cpu 0]
//	cpuprobe doctor
//	cpuprobe serve [--port 8080]
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	kcpuid "github.com/klauspost/cpuid/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	xcpu "golang.org/x/sys/cpu"

	"github.com/0Nera/cpuprobe/internal/api"
	"github.com/0Nera/cpuprobe/internal/config"
	"github.com/0Nera/cpuprobe/internal/cpuid"
	"github.com/0Nera/cpuprobe/internal/diag"
	"github.com/0Nera/cpuprobe/internal/msr"
	"github.com/0Nera/cpuprobe/internal/topology"
)

func main() {
	var cfg config.Config

	root := &cobra.Command{
		Use:   "cpuprobe",
		Short: "cpuprobe — x86 CPU identification and capability probing",
	}

	pf := root.PersistentFlags()
	pf.IntVar(&cfg.CPU, "cpu", envIntOrDefault("CPUPROBE_CPU", 0),
		"logical CPU index for MSR access")
	pf.BoolVar(&cfg.Verbose, "verbose", false, "also log capabilities that are absent")

	probeCmd := &cobra.Command{
		Use:   "probe",
		Short: "Run the full identification pass and print the report",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProbe(&cfg)
		},
	}
	probeCmd.Flags().BoolVar(&cfg.JSON, "json", false, "print the report as JSON")

	tempCmd := &cobra.Command{
		Use:   "temp",
		Short: "Read the thermal-status MSR and print the temperature",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTemp(&cfg)
		},
	}

	doctorCmd := &cobra.Command{
		Use:   "doctor",
		Short: "Cross-check the probe against independent CPUID decoders",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(&cfg)
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Probe once, then serve the report over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(&cfg)
		},
	}
	sf := serveCmd.Flags()
	sf.IntVarP(&cfg.Port, "port", "p", 8080, "HTTP port")
	sf.StringVar(&cfg.Host, "host", "0.0.0.0", "bind address")

	root.AddCommand(probeCmd, tempCmd, doctorCmd, serveCmd)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger builds the probe's logging sink. Capability-absent lines
// sit at debug level, so --verbose surfaces them.
func newLogger(cfg *config.Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if cfg.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

func runProbe(cfg *config.Config) error {
	log := newLogger(cfg)
	rec := diag.NewRecorder()
	rep := cpuid.Probe(cpuid.Native{}, cpuid.Options{
		Logger:   log,
		Recorder: rec,
		CPU:      cfg.CPU,
	})
	cpuid.Publish(rep)

	if cfg.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{
			"report": rep,
			"host":   topology.Read(),
			"diag":   rec.Snapshot(),
		})
	}

	host := topology.Read()
	fmt.Printf("\nCPU:   %s\n", host.ModelName)
	fmt.Printf("Cores: %s\n", host.Summary())
	fmt.Printf("Flags: %s\n", rep.Flags.Summary())
	snap := rec.Snapshot()
	fmt.Printf("Probe: %d leaves, %d features, %.2f ms\n",
		snap.LeavesQueried, snap.FeaturesDetected, snap.ProbeMillis)
	return nil
}

func runTemp(cfg *config.Config) error {
	// The thermal MSR may only be touched once CPUID has confirmed it.
	rep := cpuid.Probe(cpuid.Native{}, cpuid.Options{
		Logger: discardLogger(),
		CPU:    cfg.CPU,
	})
	if !rep.Flags.ThermalMSR {
		return fmt.Errorf("this CPU does not report ACPI thermal monitor MSRs")
	}

	dev, err := msr.Open(cfg.CPU, rep.Flags.ThermalMSR)
	if err != nil {
		return err
	}
	defer dev.Close()

	raw, err := dev.Read(msr.ThermalStatus)
	if err != nil {
		return err
	}
	fmt.Printf("thermal status: raw 0x%016X → %d C (0 is normal under virtualization)\n",
		raw, msr.Temperature(raw))
	return nil
}

// runDoctor prints our decode next to two independent reads of the
// same hardware: klauspost/cpuid and golang.org/x/sys/cpu. Rows that
// disagree point at a decode bug on one side or the other.
func runDoctor(cfg *config.Config) error {
	rep := cpuid.Probe(cpuid.Native{}, cpuid.Options{
		Logger: discardLogger(),
		CPU:    cfg.CPU,
	})

	fmt.Printf("vendor: %q (klauspost: %q)\n", rep.Vendor, kcpuid.CPU.VendorString)
	fmt.Printf("brand:  %q (klauspost: %q)\n", rep.Brand, kcpuid.CPU.BrandName)
	fmt.Println()

	rows := []struct {
		name   string
		ours   bool
		theirs bool
	}{
		{"MMX", rep.Flags.MMX, kcpuid.CPU.Supports(kcpuid.MMX)},
		{"SSE2", rep.Flags.SSE2, kcpuid.CPU.Supports(kcpuid.SSE2)},
		{"AVX", rep.Flags.AVX, kcpuid.CPU.Supports(kcpuid.AVX)},
		{"RDRAND", rep.Flags.RDRAND, kcpuid.CPU.Supports(kcpuid.RDRAND)},
	}
	disagree := 0
	for _, row := range rows {
		mark := "ok"
		if row.ours != row.theirs {
			mark = "MISMATCH"
			disagree++
		}
		fmt.Printf("%-8s ours=%-5v klauspost=%-5v %s\n", row.name, row.ours, row.theirs, mark)
	}

	// x/sys/cpu reads OS-enabled state, so AVX can legitimately differ
	// from the raw hardware bit when the OS has not enabled XSAVE.
	fmt.Printf("\nOS view (x/sys/cpu): SSE2=%v AVX=%v RDRAND=%v OSXSAVE=%v\n",
		xcpu.X86.HasSSE2, xcpu.X86.HasAVX, xcpu.X86.HasRDRAND, xcpu.X86.HasOSXSAVE)
	fmt.Printf("klauspost feature count: %d\n", len(kcpuid.CPU.FeatureSet()))

	if disagree > 0 {
		return fmt.Errorf("%d flag(s) disagree with klauspost/cpuid", disagree)
	}
	fmt.Println("\nall cross-checked flags agree")
	return nil
}

func runServe(cfg *config.Config) error {
	log := newLogger(cfg)
	rec := diag.NewRecorder()

	rep := cpuid.Probe(cpuid.Native{}, cpuid.Options{
		Logger:   log,
		Recorder: rec,
		CPU:      cfg.CPU,
	})
	cpuid.Publish(rep)

	host := topology.Read()
	fmt.Printf("CPU:   %s\n", host.ModelName)
	fmt.Printf("Cores: %s\n", host.Summary())
	fmt.Printf("Flags: %s\n", rep.Flags.Summary())

	srv := api.NewServer(cfg, rep, host, rec)
	return srv.Run(fmt.Sprintf("%s:%d", cfg.Host, cfg.Port))
}

// discardLogger silences probe output for commands that only want the
// report values.
func discardLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

// envIntOrDefault returns an env var parsed as int, or fallback.
func envIntOrDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
