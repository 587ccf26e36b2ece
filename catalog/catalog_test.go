package catalog

import (
	"bytes"
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/require"

	"github.com/ethereum-optimism/optimism/op-service/testlog"

	"github.com/glmapping/ldstcheck/arm64"
	"github.com/glmapping/ldstcheck/emu"
	"github.com/glmapping/ldstcheck/probe"
)

const (
	testBase        = 0x4000_0000
	testBackingSize = 4096
	testHeapSize    = 4096
)

func TestEntries(t *testing.T) {
	seen := make(map[string]bool)
	check := func(entries []*Entry, mode probe.Mode) {
		for _, e := range entries {
			require.Falsef(t, seen[e.Name], "duplicate name %s", e.Name)
			seen[e.Name] = true
			require.Equal(t, mode, e.Mode, e.Name)
			require.Contains(t, e.Program, e.Tag, "%s must execute its tagged instruction", e.Name)
			require.Contains(t, []uint64{8, 16, 32}, e.Size, e.Name)
			require.NotEmpty(t, e.Desc, e.Name)
			require.Equal(t, uint64(e.Target), emu.ParseRn(e.Tag), "%s addresses through its target register", e.Name)
			if e.Index != arm64.NoReg {
				require.Equal(t, uint64(e.Index), emu.ParseRm(e.Tag), "%s index register", e.Name)
			}
			if e.Tag&arm64.MaskLdStReg == arm64.ClassLdStReg && e.Tag&(1<<21) == 0 {
				require.Equal(t, e.Fixed, emu.ParseImm9(e.Tag), "%s folds its unscaled immediate", e.Name)
			}
		}
	}
	check(Stores(), probe.Store)
	check(Loads(), probe.Load)
	require.Len(t, Stores(), 14)

	// every store encoding has a load twin with the L/opc load bit set
	loads := make(map[uint32]bool)
	for _, e := range Loads() {
		loads[e.Tag] = true
	}
	for _, e := range Stores() {
		twin := e.Tag | 1<<22
		require.Truef(t, loads[twin], "%s (%08x) has no load counterpart %08x", e.Name, e.Tag, twin)
	}
	require.Len(t, Loads(), len(Stores()))
}

func TestSelect(t *testing.T) {
	stores, loads, err := Select(nil)
	require.NoError(t, err)
	require.Len(t, stores, len(Stores()))
	require.Len(t, loads, len(Loads()))

	stores, loads, err = Select([]string{"ldr6", "stp1"})
	require.NoError(t, err)
	require.Len(t, stores, 1)
	require.Equal(t, "stp1", stores[0].Name)
	require.Len(t, loads, 1)
	require.Equal(t, "ldr6", loads[0].Name)

	_, _, err = Select([]string{"stp1", "nope", "alsonope"})
	require.ErrorContains(t, err, `unknown primitives ["alsonope" "nope"]`)

	e, ok := Lookup("ldur2")
	require.True(t, ok)
	require.Equal(t, int64(0xc), e.Fixed)
	_, ok = Lookup("ldur3")
	require.False(t, ok)
}

type harness struct {
	mem  emu.Memory
	heap *emu.Heap
	x    *Executor
	c    *probe.Checker
	out  *bytes.Buffer
}

func newHarness(t *testing.T, backing string) *harness {
	var mem emu.Memory
	switch backing {
	case "mapped":
		m, err := emu.NewMappedMemory(testBase, testBackingSize+testHeapSize)
		require.NoError(t, err)
		t.Cleanup(func() { require.NoError(t, m.Close()) })
		mem = m
	default:
		mem = emu.NewMemory()
	}
	heap := emu.NewHeap(testBase+testBackingSize, testHeapSize)
	out := new(bytes.Buffer)
	return &harness{
		mem:  mem,
		heap: heap,
		x:    NewExecutor(mem, heap),
		c:    probe.NewChecker(out, testlog.Logger(t, log.LevelInfo), heap),
		out:  out,
	}
}

func (h *harness) arena(offset uint64) *probe.Arena {
	return &probe.Arena{Mem: h.mem, Addr: testBase + offset, Size: probe.ArenaSize}
}

func TestCatalogPasses(t *testing.T) {
	for _, backing := range []string{"paged", "mapped"} {
		for _, off := range []uint64{512, 256} {
			h := newHarness(t, backing)
			arena := h.arena(off)
			for _, e := range Stores() {
				res := h.c.RunInstrCheck(h.x.Primitive(e), arena, 0)
				require.Truef(t, res.Passed(), "%s on %s at +%d: %v\n%s", e.Name, backing, off, res.Err(), h.out.String())
			}
			for _, e := range Loads() {
				res := h.c.RunLdrInstrCheck(h.x.Primitive(e), arena, 0)
				require.Truef(t, res.Passed(), "%s on %s at +%d: %v\n%s", e.Name, backing, off, res.Err(), h.out.String())
			}
			require.Zero(t, h.heap.Live(), "code and scratch buffers released")
		}
	}
}

func TestCatalogIndependentOfArena(t *testing.T) {
	a, b := newHarness(t, "paged"), newHarness(t, "paged")
	for _, e := range Stores() {
		ra := a.c.RunInstrCheck(a.x.Primitive(e), a.arena(512), 0)
		rb := b.c.RunInstrCheck(b.x.Primitive(e), b.arena(256), 0)
		require.Equal(t, ra.Fingerprint, rb.Fingerprint, e.Name)
	}
}

func TestMisfoldedFixedOffset(t *testing.T) {
	h := newHarness(t, "paged")
	for _, name := range []string{"stur1", "ldur1"} {
		e, ok := Lookup(name)
		require.True(t, ok)
		bad := *e
		bad.Fixed++
		p := h.x.Primitive(&bad)
		var res *probe.Result
		if e.Mode == probe.Store {
			res = h.c.RunInstrCheck(p, h.arena(512), 0)
			require.True(t, res.Has(probe.ErrUnderrun), name)
		} else {
			res = h.c.RunLdrInstrCheck(p, h.arena(512), 0)
		}
		require.True(t, res.Has(probe.ErrContentMismatch), name)
	}
}

func TestExecutorFaults(t *testing.T) {
	t.Run("unsupported instruction", func(t *testing.T) {
		h := newHarness(t, "paged")
		bad := &Entry{Name: "bad", Mode: probe.Store, Size: 16, Target: 2, Index: 0xFF,
			Program: []uint32{0x3c810440}} // str q0, [x2], #16
		res := h.c.RunInstrCheck(h.x.Primitive(bad), h.arena(512), 0)
		require.True(t, res.Has(probe.ErrTransferFault))
		var rev *emu.RevertError
		require.ErrorAs(t, res.Err(), &rev)
		require.Zero(t, h.heap.Live())
	})

	t.Run("fault outside mapping", func(t *testing.T) {
		h := newHarness(t, "mapped")
		e, _ := Lookup("str1")
		res := h.c.RunInstrCheck(h.x.Primitive(e), h.arena(512), 0)
		require.True(t, res.Passed())
		err := h.x.Primitive(e).Transfer(testBase-0x1000, testBase+testBackingSize, 0)
		require.ErrorIs(t, err, emu.ErrMemoryFault)
	})

	t.Run("no room for code", func(t *testing.T) {
		h := newHarness(t, "paged")
		h.heap = emu.NewHeap(testBase+testBackingSize, 4)
		h.x.Heap = h.heap
		e, _ := Lookup("str5")
		err := h.x.Primitive(e).Transfer(testBase, testBase+64, 0)
		require.ErrorIs(t, err, emu.ErrOutOfMemory)
	})
}
