package emu

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeap(t *testing.T) {
	t.Run("aligned", func(t *testing.T) {
		h := NewHeap(0x1003, 256)
		require.Equal(t, uint64(0x1003), h.Base())
		a, err := h.Alloc(5)
		require.NoError(t, err)
		require.Equal(t, uint64(0x1010), a)
		b, err := h.Alloc(32)
		require.NoError(t, err)
		require.Equal(t, uint64(0x1020), b)
		require.Equal(t, 2, h.Live())
	})

	t.Run("lifo reuse", func(t *testing.T) {
		h := NewHeap(0x1000, 256)
		a, err := h.Alloc(32)
		require.NoError(t, err)
		b, err := h.Alloc(64)
		require.NoError(t, err)
		require.NoError(t, h.Free(b))
		c, err := h.Alloc(16)
		require.NoError(t, err)
		require.Equal(t, b, c, "freed top is reused")
		require.NoError(t, h.Free(c))
		require.NoError(t, h.Free(a))
		require.Zero(t, h.InUse())
		require.Zero(t, h.Live())
	})

	t.Run("out of order free", func(t *testing.T) {
		h := NewHeap(0x1000, 256)
		a, _ := h.Alloc(16)
		b, _ := h.Alloc(16)
		require.NoError(t, h.Free(a))
		require.Equal(t, uint64(32), h.InUse(), "a is below a live allocation")
		require.NoError(t, h.Free(b))
		require.Zero(t, h.InUse())
	})

	t.Run("exhausted", func(t *testing.T) {
		h := NewHeap(0x1000, 64)
		_, err := h.Alloc(48)
		require.NoError(t, err)
		_, err = h.Alloc(32)
		require.ErrorIs(t, err, ErrOutOfMemory)
		_, err = h.Alloc(0)
		require.Error(t, err)
	})

	t.Run("bad free", func(t *testing.T) {
		h := NewHeap(0x1000, 64)
		a, _ := h.Alloc(16)
		require.Error(t, h.Free(a+1))
		require.NoError(t, h.Free(a))
		require.Error(t, h.Free(a), "double free")
	})
}
