package emu

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseImmediates(t *testing.T) {
	require.Equal(t, int64(4), ParseImm9(0x3c8041a0))    // stur q0, [x13, #4]
	require.Equal(t, int64(-16), ParseImm9(0x3c9f01a0))  // stur q0, [x13, #-16]
	require.Equal(t, int64(-256), ParseImm9(0x3c9001a0)) // stur q0, [x13, #-256]
	require.Equal(t, uint64(2), parseImm12(0xf9000845))  // str x5, [x2, #0x10]
	require.Equal(t, uint64(^uint64(0)), parseImm7(0xa93f8c22), "stp x2, x3, [x1, #-8]")
}

func TestParseRegisters(t *testing.T) {
	const instr = 0x3ca26861 // str q1, [x3, x2]
	require.Equal(t, uint64(1), parseRt(instr))
	require.Equal(t, uint64(3), ParseRn(instr))
	require.Equal(t, uint64(2), ParseRm(instr))
	require.Equal(t, uint64(1), parseRegOffsetFlag(instr))
	require.Equal(t, uint64(3), parseOption(instr))
	require.Equal(t, uint64(3), parseRt2(0xa9000c22)) // stp x2, x3, [x1]
}
