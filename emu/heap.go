package emu

import (
	"errors"
	"fmt"
)

var ErrOutOfMemory = errors.New("out of scratch memory")

// HeapAlign matches the alignment a C malloc hands out on 64-bit targets.
const HeapAlign = 16

type allocation struct {
	addr  uint64
	size  uint64
	freed bool
}

// Heap hands out scratch buffers from a fixed address range, bump-pointer style.
// Space is reclaimed once every allocation above a freed one is freed too.
type Heap struct {
	base  uint64
	limit uint64
	next  uint64

	live []allocation
}

func NewHeap(base uint64, size uint64) *Heap {
	return &Heap{base: base, limit: base + size, next: base}
}

func (h *Heap) Base() uint64 { return h.base }

// InUse is the number of bytes between the heap base and the bump pointer.
func (h *Heap) InUse() uint64 { return h.next - h.base }

// Live counts allocations that have not been freed yet.
func (h *Heap) Live() int {
	n := 0
	for _, a := range h.live {
		if !a.freed {
			n++
		}
	}
	return n
}

func (h *Heap) Alloc(size uint64) (uint64, error) {
	if size == 0 {
		return 0, fmt.Errorf("cannot allocate 0 bytes")
	}
	addr := h.next
	if rem := addr % HeapAlign; rem != 0 {
		addr += HeapAlign - rem
	}
	end := addr + size
	if end < addr || end > h.limit {
		return 0, fmt.Errorf("%w: %d bytes requested, %d of %d in use", ErrOutOfMemory, size, h.InUse(), h.limit-h.base)
	}
	h.next = end
	h.live = append(h.live, allocation{addr: addr, size: size})
	return addr, nil
}

func (h *Heap) Free(addr uint64) error {
	i := len(h.live) - 1
	for ; i >= 0; i-- {
		if h.live[i].addr == addr && !h.live[i].freed {
			break
		}
	}
	if i < 0 {
		return fmt.Errorf("free of unknown scratch address %016x", addr)
	}
	h.live[i].freed = true
	for len(h.live) > 0 && h.live[len(h.live)-1].freed {
		h.live = h.live[:len(h.live)-1]
	}
	if len(h.live) == 0 {
		h.next = h.base
	} else {
		top := h.live[len(h.live)-1]
		h.next = top.addr + top.size
	}
	return nil
}
