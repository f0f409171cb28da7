// Fallback for unsupported platforms: defaults from runtime.NumCPU().

//go:build !darwin && !linux

package topology

func readPlatform(h *Host) {}
