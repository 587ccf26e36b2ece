package emu

import (
	"bytes"
	"crypto/rand"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryReadWrite(t *testing.T) {
	t.Run("large random", func(t *testing.T) {
		m := NewMemory()
		data := make([]byte, 20_000)
		_, err := rand.Read(data[:])
		require.NoError(t, err)
		require.NoError(t, m.SetMemoryRange(0, bytes.NewReader(data)))
		for _, i := range []uint64{0, 1, 2, 3, 4, 5, 6, 7, 1000, 3333, 4095, 4096, 4097, 20_000 - 32} {
			for s := uint64(1); s <= 32; s++ {
				var res [32]byte
				m.GetUnaligned(i, res[:s])
				var expected [32]byte
				copy(expected[:s], data[i:i+s])
				require.Equalf(t, expected, res, "read %d at %d", s, i)
			}
		}
	})

	t.Run("repeat range", func(t *testing.T) {
		m := NewMemory()
		data := []byte(strings.Repeat("under the big bright yellow sun ", 40))
		require.NoError(t, m.SetMemoryRange(0x1337, bytes.NewReader(data)))
		res, err := io.ReadAll(m.ReadMemoryRange(0x1337-10, uint64(len(data)+20)))
		require.NoError(t, err)
		require.Equal(t, make([]byte, 10), res[:10], "empty start")
		require.Equal(t, data, res[10:len(res)-10], "result")
		require.Equal(t, make([]byte, 10), res[len(res)-10:], "empty end")
	})

	t.Run("read-write", func(t *testing.T) {
		m := NewMemory()
		m.SetUnaligned(12, []byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE})
		var tmp [5]byte
		m.GetUnaligned(12, tmp[:])
		require.Equal(t, [5]byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE}, tmp)
		m.SetUnaligned(12, []byte{0xAA, 0xBB, 0x1C, 0xDD, 0xEE})
		m.GetUnaligned(12, tmp[:])
		require.Equal(t, [5]byte{0xAA, 0xBB, 0x1C, 0xDD, 0xEE}, tmp)
	})

	t.Run("cross page", func(t *testing.T) {
		m := NewMemory()
		addr := uint64(PageSize*5 - 7)
		dat := bytes.Repeat([]byte{0x11, 0x22, 0x33, 0x44}, 4)
		m.SetUnaligned(addr, dat)
		require.Equal(t, 2, m.PageCount())
		var tmp [16]byte
		m.GetUnaligned(addr, tmp[:])
		require.Equal(t, dat, tmp[:])
	})

	t.Run("untouched reads zero", func(t *testing.T) {
		m := NewMemory()
		tmp := [8]byte{1, 2, 3, 4, 5, 6, 7, 8}
		m.GetUnaligned(PageSize-4, tmp[:])
		require.Equal(t, [8]byte{}, tmp)
		require.Zero(t, m.PageCount(), "reads do not allocate")
	})

	t.Run("oversized access", func(t *testing.T) {
		m := NewMemory()
		require.Panics(t, func() { m.SetUnaligned(0, make([]byte, MaxAccessSize+1)) })
		require.Panics(t, func() { m.GetUnaligned(0, make([]byte, MaxAccessSize+1)) })
	})
}

func TestFormatUsage(t *testing.T) {
	require.Equal(t, "0 B", NewMemory().Usage())
	m := NewMemory()
	m.SetUnaligned(0, []byte{1})
	m.SetUnaligned(PageSize*9, []byte{1})
	require.Equal(t, "8.0 KiB", m.Usage())
}
