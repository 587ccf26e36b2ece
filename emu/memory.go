package emu

import (
	"fmt"
	"io"
)

// Memory is a byte-addressable 64-bit address space.
type Memory interface {
	GetUnaligned(addr uint64, dest []byte)
	SetUnaligned(addr uint64, dat []byte)
	SetMemoryRange(addr uint64, r io.Reader) error
	ReadMemoryRange(addr uint64, count uint64) io.Reader
}

// Note: 2**12 = 4 KiB, matching the smallest page a mapped buffer is handed out with.
const (
	PageAddrSize = 12
	PageKeySize  = 64 - PageAddrSize
	PageSize     = 1 << PageAddrSize
	PageAddrMask = PageSize - 1
)

// MaxAccessSize is the widest single access the executor performs (a Q register).
const MaxAccessSize = 32

type Page [PageSize]byte

// PagedMemory is a sparse address space. Pages are allocated on first write,
// reads of untouched pages return zeroes.
type PagedMemory struct {
	pages map[uint64]*Page

	// two caches: the probed region and the scratch heap usually sit in different pages.
	// this prevents map lookups on every access
	lastPageKeys [2]uint64
	lastPage     [2]*Page
}

var _ Memory = (*PagedMemory)(nil)

func NewMemory() *PagedMemory {
	return &PagedMemory{
		pages:        make(map[uint64]*Page),
		lastPageKeys: [2]uint64{^uint64(0), ^uint64(0)}, // default to invalid keys, to not match any pages
	}
}

func (m *PagedMemory) PageCount() int {
	return len(m.pages)
}

func (m *PagedMemory) AllocPage(pageIndex uint64) *Page {
	p := new(Page)
	m.pages[pageIndex] = p
	return p
}

func (m *PagedMemory) pageLookup(pageIndex uint64) (*Page, bool) {
	if pageIndex == m.lastPageKeys[0] {
		return m.lastPage[0], true
	}
	if pageIndex == m.lastPageKeys[1] {
		return m.lastPage[1], true
	}
	p, ok := m.pages[pageIndex]

	// only cache existing pages.
	if ok {
		m.lastPageKeys[1] = m.lastPageKeys[0]
		m.lastPage[1] = m.lastPage[0]
		m.lastPageKeys[0] = pageIndex
		m.lastPage[0] = p
	}

	return p, ok
}

func (m *PagedMemory) SetUnaligned(addr uint64, dat []byte) {
	if len(dat) > MaxAccessSize {
		panic(fmt.Errorf("cannot set more than %d bytes", MaxAccessSize))
	}
	pageIndex := addr >> PageAddrSize
	pageAddr := addr & PageAddrMask
	p, ok := m.pageLookup(pageIndex)
	if !ok {
		p = m.AllocPage(pageIndex)
	}

	d := copy(p[pageAddr:], dat)
	if d == len(dat) {
		return // if all the data fitted in the page, we're done
	}

	// continue to remaining part
	addr += uint64(d)
	pageIndex = addr >> PageAddrSize
	pageAddr = addr & PageAddrMask
	p, ok = m.pageLookup(pageIndex)
	if !ok {
		p = m.AllocPage(pageIndex)
	}

	copy(p[pageAddr:], dat[d:])
}

func (m *PagedMemory) GetUnaligned(addr uint64, dest []byte) {
	if len(dest) > MaxAccessSize {
		panic(fmt.Errorf("cannot get more than %d bytes", MaxAccessSize))
	}
	d := m.getPart(addr, dest)
	if d == len(dest) {
		return
	}
	m.getPart(addr+uint64(d), dest[d:])
}

func (m *PagedMemory) getPart(addr uint64, dest []byte) int {
	pageAddr := addr & PageAddrMask
	p, ok := m.pageLookup(addr >> PageAddrSize)
	if !ok {
		n := uint64(len(dest))
		if n > PageSize-pageAddr {
			n = PageSize - pageAddr
		}
		clear(dest[:n])
		return int(n)
	}
	return copy(dest, p[pageAddr:])
}

func (m *PagedMemory) SetMemoryRange(addr uint64, r io.Reader) error {
	for {
		pageIndex := addr >> PageAddrSize
		pageAddr := addr & PageAddrMask
		p, ok := m.pageLookup(pageIndex)
		if !ok {
			p = m.AllocPage(pageIndex)
		}
		n, err := r.Read(p[pageAddr:])
		addr += uint64(n)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}

type memReader struct {
	m     *PagedMemory
	addr  uint64
	count uint64
}

func (r *memReader) Read(dest []byte) (n int, err error) {
	if r.count == 0 {
		return 0, io.EOF
	}

	// Keep iterating over memory until we have all our data.
	// It may wrap around the address range, and may not be aligned
	endAddr := r.addr + r.count

	pageIndex := r.addr >> PageAddrSize
	start := r.addr & PageAddrMask
	end := uint64(PageSize)

	if pageIndex == (endAddr >> PageAddrSize) {
		end = endAddr & PageAddrMask
	}
	p, ok := r.m.pageLookup(pageIndex)
	if ok {
		n = copy(dest, p[start:end])
	} else {
		n = copy(dest, make([]byte, end-start)) // default to zeroes
	}
	r.addr += uint64(n)
	r.count -= uint64(n)
	return n, nil
}

func (m *PagedMemory) ReadMemoryRange(addr uint64, count uint64) io.Reader {
	return &memReader{m: m, addr: addr, count: count}
}

func (m *PagedMemory) Usage() string {
	return formatUsage(uint64(len(m.pages)) * PageSize)
}

func formatUsage(total uint64) string {
	const unit = 1024
	if total < unit {
		return fmt.Sprintf("%d B", total)
	}
	div, exp := uint64(unit), 0
	for n := total / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	// KiB, MiB, GiB, TiB, ...
	return fmt.Sprintf("%.1f %ciB", float64(total)/float64(div), "KMGTPE"[exp])
}
