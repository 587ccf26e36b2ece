package emu

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestVectorBytes(t *testing.T) {
	s := NewState(NewMemory())
	s.SetVectorBytes(3, seq(16, 1))
	require.Equal(t, uint256.MustFromHex("0x100f0e0d0c0b0a090807060504030201"), &s.Vectors[3], "memory order is little-endian")

	var out [16]byte
	s.VectorBytes(3, out[:])
	require.Equal(t, seq(16, 1), out[:])

	var low [8]byte
	s.VectorBytes(3, low[:])
	require.Equal(t, seq(8, 1), low[:], "D view is the low half")

	t.Run("narrow load clears the rest", func(t *testing.T) {
		s.Vectors[4].SetAllOne()
		s.SetVectorBytes(4, []byte{0xaa, 0xbb})
		require.Equal(t, uint256.NewInt(0xbbaa), &s.Vectors[4])
	})

	t.Run("bits above 128 are not visible", func(t *testing.T) {
		s.Vectors[5].SetAllOne()
		var q [16]byte
		s.VectorBytes(5, q[:])
		for _, b := range q {
			require.Equal(t, byte(0xff), b)
		}
		s.Vectors[5].Lsh(&s.Vectors[5], 128)
		s.VectorBytes(5, q[:])
		require.Equal(t, [16]byte{}, q)
	})
}
