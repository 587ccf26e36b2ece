package emu

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

var ErrMemoryFault = errors.New("memory fault")

// MappedMemory exposes one contiguous host mapping at a fixed emulated base address.
// Any access outside [Base, Base+len) faults.
type MappedMemory struct {
	base  uint64
	data  []byte
	unmap func() error
}

var _ Memory = (*MappedMemory)(nil)

func (m *MappedMemory) Base() uint64 { return m.base }

func (m *MappedMemory) Size() uint64 { return uint64(len(m.data)) }

func (m *MappedMemory) Usage() string { return formatUsage(m.Size()) }

func (m *MappedMemory) window(addr uint64, n int) ([]byte, error) {
	if addr < m.base || addr-m.base > uint64(len(m.data)) || uint64(n) > uint64(len(m.data))-(addr-m.base) {
		return nil, fmt.Errorf("%w: %d bytes at %016x outside mapping [%016x, %016x)",
			ErrMemoryFault, n, addr, m.base, m.base+uint64(len(m.data)))
	}
	off := addr - m.base
	return m.data[off : off+uint64(n)], nil
}

func (m *MappedMemory) GetUnaligned(addr uint64, dest []byte) {
	w, err := m.window(addr, len(dest))
	if err != nil {
		panic(err)
	}
	copy(dest, w)
}

func (m *MappedMemory) SetUnaligned(addr uint64, dat []byte) {
	w, err := m.window(addr, len(dat))
	if err != nil {
		panic(err)
	}
	copy(w, dat)
}

func (m *MappedMemory) SetMemoryRange(addr uint64, r io.Reader) error {
	if addr < m.base || addr-m.base > uint64(len(m.data)) {
		return fmt.Errorf("%w: range start %016x outside mapping", ErrMemoryFault, addr)
	}
	dst := m.data[addr-m.base:]
	_, err := io.ReadFull(r, dst)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return nil
	}
	if err != nil {
		return err
	}
	// mapping filled to the end, anything left in r does not fit
	var extra [1]byte
	if k, _ := r.Read(extra[:]); k > 0 {
		return fmt.Errorf("%w: range write at %016x overflows mapping", ErrMemoryFault, addr)
	}
	return nil
}

func (m *MappedMemory) ReadMemoryRange(addr uint64, count uint64) io.Reader {
	if count > uint64(len(m.data)) {
		return &faultReader{err: fmt.Errorf("%w: cannot read %d bytes from %d byte mapping", ErrMemoryFault, count, len(m.data))}
	}
	w, err := m.window(addr, int(count))
	if err != nil {
		return &faultReader{err: err}
	}
	return bytes.NewReader(w)
}

// Close releases the host mapping. The memory must not be used afterwards.
func (m *MappedMemory) Close() error {
	if m.unmap == nil {
		return nil
	}
	err := m.unmap()
	m.unmap = nil
	m.data = nil
	return err
}

type faultReader struct {
	err error
}

func (r *faultReader) Read([]byte) (int, error) {
	return 0, r.err
}
