// Stub for platforms without an MSR device node.

//go:build !linux

package msr

func open(int) (Device, error) {
	return nil, ErrUnsupported
}
