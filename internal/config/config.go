// Package config defines runtime configuration for cpuprobe.
package config

// Config holds all settings passed in via CLI flags or environment variables.
type Config struct {
	// Host is the network interface the diagnostic HTTP server binds to.
	Host string

	// Port is the diagnostic HTTP server port.
	Port int

	// CPU is the logical CPU index whose MSR device is opened for the
	// thermal read.
	CPU int

	// JSON switches CLI output from text to JSON.
	JSON bool

	// Verbose also logs capabilities that are absent.
	Verbose bool
}
