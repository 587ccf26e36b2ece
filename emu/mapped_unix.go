//go:build unix

package emu

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// NewMappedMemory maps size bytes of anonymous, private, read-write host memory
// and exposes it at the emulated address base.
func NewMappedMemory(base uint64, size uint64) (*MappedMemory, error) {
	if size == 0 {
		return nil, fmt.Errorf("cannot map an empty region")
	}
	if base+size < base {
		return nil, fmt.Errorf("mapping of %d bytes at %016x wraps the address space", size, base)
	}
	data, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("failed to mmap %d bytes: %w", size, err)
	}
	return &MappedMemory{
		base: base,
		data: data,
		unmap: func() error {
			return unix.Munmap(data)
		},
	}, nil
}
