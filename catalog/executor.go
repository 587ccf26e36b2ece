package catalog

import (
	"fmt"

	"github.com/glmapping/ldstcheck/arm64"
	"github.com/glmapping/ldstcheck/emu"
	"github.com/glmapping/ldstcheck/probe"
)

// DefaultMaxSteps bounds a single primitive run. The longest program has 11 instructions.
const DefaultMaxSteps = 64

// Executor binds catalogue entries to an emulated address space. Each call of a
// bound primitive writes the entry's program into a fresh code buffer and steps it
// on a fresh register file.
type Executor struct {
	Mem      emu.Memory
	Heap     probe.Allocator
	MaxSteps uint64
}

func NewExecutor(mem emu.Memory, heap probe.Allocator) *Executor {
	return &Executor{Mem: mem, Heap: heap, MaxSteps: DefaultMaxSteps}
}

func (x *Executor) Primitive(e *Entry) *probe.Primitive {
	return &probe.Primitive{
		Name:          e.Name,
		Desc:          e.Desc,
		Tag:           probe.Tag(e.Tag),
		Mode:          e.Mode,
		Size:          e.Size,
		FixedOffset:   e.Fixed,
		Observational: e.Observational,
		Transfer: func(dst, src uint64, offset int64) error {
			return x.exec(e, dst, src, offset)
		},
	}
}

func (x *Executor) Primitives(entries []*Entry) []*probe.Primitive {
	out := make([]*probe.Primitive, 0, len(entries))
	for _, e := range entries {
		out = append(out, x.Primitive(e))
	}
	return out
}

func (x *Executor) exec(e *Entry, dst, src uint64, offset int64) (err error) {
	var target, scratch uint64
	switch e.Mode {
	case probe.Store:
		if e.Observational {
			offset = 0
		}
		target = dst + uint64(offset) - uint64(e.Fixed)
		scratch = src
	case probe.Load:
		target = src - uint64(e.Fixed)
		scratch = dst
	default:
		return fmt.Errorf("entry %s has unknown mode %v", e.Name, e.Mode)
	}

	code, err := x.Heap.Alloc(uint64(len(e.Program) * arm64.InstrSize))
	if err != nil {
		return fmt.Errorf("failed to allocate code buffer for %s: %w", e.Name, err)
	}
	defer func() {
		if ferr := x.Heap.Free(code); ferr != nil && err == nil {
			err = fmt.Errorf("failed to free code buffer for %s: %w", e.Name, ferr)
		}
	}()
	end, err := emu.LoadProgram(x.Mem, code, e.Program)
	if err != nil {
		return err
	}

	s := emu.NewState(x.Mem)
	s.PC = code
	s.WriteRegOrSP(uint64(e.Target), target)
	s.WriteReg(uint64(e.Scratch), scratch)
	if e.Index != arm64.NoReg {
		s.WriteReg(uint64(e.Index), uint64(e.Fixed))
	}
	maxSteps := x.MaxSteps
	if maxSteps == 0 {
		maxSteps = DefaultMaxSteps
	}
	if err := emu.Run(s, end, maxSteps); err != nil {
		return fmt.Errorf("%s failed: %w", e.Name, err)
	}
	return nil
}
