package probe

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

const (
	// ArenaSize is the smallest arena a trial runs against.
	ArenaSize = 256
	// Misalign is the base offset into the arena every primitive is pointed at.
	// It is not a multiple of any natural alignment and leaves room on both sides
	// of the window to catch collateral writes.
	Misalign = 3

	ArenaSentinel  = 0xFF
	SourceSentinel = 0x55
	DestSentinel   = 0xAA
)

var (
	ErrArenaTooSmall    = errors.New("arena too small")
	ErrWindowOutOfRange = errors.New("transfer window outside arena")
)

// Memory is the part of an address space the verifiers need.
type Memory interface {
	SetMemoryRange(addr uint64, r io.Reader) error
	ReadMemoryRange(addr uint64, count uint64) io.Reader
}

// Allocator hands out scratch buffers in the same address space as the arena.
type Allocator interface {
	Alloc(size uint64) (uint64, error)
	Free(addr uint64) error
}

// Arena is the writable region under test.
type Arena struct {
	Mem  Memory
	Addr uint64
	Size uint64
}

func (a *Arena) Fill(c byte) error {
	return fill(a.Mem, a.Addr, a.Size, c)
}

func (a *Arena) Bytes() ([]byte, error) {
	return read(a.Mem, a.Addr, a.Size)
}

func (a *Arena) check() error {
	if a.Size < ArenaSize {
		return fmt.Errorf("%w: %d bytes, need at least %d", ErrArenaTooSmall, a.Size, ArenaSize)
	}
	return nil
}

// window returns the arena-relative start of the transfer window.
func (a *Arena) window(offset int64, size uint64) (uint64, error) {
	start := int64(Misalign) + offset
	if start < 0 || uint64(start) > a.Size || size > a.Size-uint64(start) {
		return 0, fmt.Errorf("%w: %d bytes at +%d in %d byte arena", ErrWindowOutOfRange, size, start, a.Size)
	}
	return uint64(start), nil
}

func fill(m Memory, addr uint64, n uint64, c byte) error {
	return write(m, addr, bytes.Repeat([]byte{c}, int(n)))
}

func write(m Memory, addr uint64, b []byte) error {
	if err := m.SetMemoryRange(addr, bytes.NewReader(b)); err != nil {
		return fmt.Errorf("failed to write %d bytes at %016x: %w", len(b), addr, err)
	}
	return nil
}

func read(m Memory, addr uint64, n uint64) ([]byte, error) {
	b, err := io.ReadAll(m.ReadMemoryRange(addr, n))
	if err != nil {
		return nil, fmt.Errorf("failed to read %d bytes at %016x: %w", n, addr, err)
	}
	if uint64(len(b)) != n {
		return nil, fmt.Errorf("short read at %016x: got %d of %d bytes", addr, len(b), n)
	}
	return b, nil
}
