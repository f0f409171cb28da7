//go:build linux

package msr

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/sys/unix"
)

// device is a file descriptor on /dev/cpu/<n>/msr.
type device struct {
	fd       int
	cpu      int
	readOnly bool
}

func open(cpu int) (Device, error) {
	path := fmt.Sprintf("/dev/cpu/%d/msr", cpu)

	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err == unix.EACCES || err == unix.EROFS {
		// Reads are still useful without write access.
		fd, err = unix.Open(path, unix.O_RDONLY|unix.O_CLOEXEC, 0)
		if err == nil {
			return &device{fd: fd, cpu: cpu, readOnly: true}, nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("msr: open %s (is the msr module loaded?): %w", path, err)
	}
	return &device{fd: fd, cpu: cpu}, nil
}

func (d *device) Read(addr uint32) (uint64, error) {
	var buf [8]byte
	n, err := unix.Pread(d.fd, buf[:], int64(addr))
	if err != nil {
		return 0, fmt.Errorf("msr: read 0x%X on cpu %d: %w", addr, d.cpu, err)
	}
	if n != len(buf) {
		return 0, fmt.Errorf("msr: short read of 0x%X on cpu %d: %d bytes", addr, d.cpu, n)
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

func (d *device) Write(addr uint32, val uint64) error {
	if d.readOnly {
		return ErrReadOnly
	}
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], val)
	n, err := unix.Pwrite(d.fd, buf[:], int64(addr))
	if err != nil {
		return fmt.Errorf("msr: write 0x%X on cpu %d: %w", addr, d.cpu, err)
	}
	if n != len(buf) {
		return fmt.Errorf("msr: short write of 0x%X on cpu %d: %d bytes", addr, d.cpu, n)
	}
	return nil
}

func (d *device) Close() error {
	return unix.Close(d.fd)
}
