//go:build !unix

package emu

import "fmt"

// NewMappedMemory falls back to a heap-backed region where mmap is unavailable.
func NewMappedMemory(base uint64, size uint64) (*MappedMemory, error) {
	if size == 0 {
		return nil, fmt.Errorf("cannot map an empty region")
	}
	if base+size < base {
		return nil, fmt.Errorf("mapping of %d bytes at %016x wraps the address space", size, base)
	}
	return &MappedMemory{base: base, data: make([]byte, size)}, nil
}
