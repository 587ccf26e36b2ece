package emu

import (
	"encoding/binary"

	"github.com/holiman/uint256"

	"github.com/glmapping/ldstcheck/arm64"
)

type State struct {
	Memory Memory `json:"-"`

	PC   uint64 `json:"pc"`
	Step uint64 `json:"step"`

	// X0-X30. Index 31 is never read: it decodes to XZR or SP depending on the operand.
	Registers [32]uint64 `json:"registers"`
	SP        uint64     `json:"sp"`

	// V0-V31, only the low 128 bits are architecturally visible.
	Vectors [32]uint256.Int `json:"vectors"`
}

func NewState(mem Memory) *State {
	return &State{Memory: mem}
}

// Instr returns the raw instruction word at the current PC.
func (s *State) Instr() uint32 {
	var out [arm64.InstrSize]byte
	s.Memory.GetUnaligned(s.PC, out[:])
	return binary.LittleEndian.Uint32(out[:])
}

func (s *State) ReadReg(r uint64) uint64 {
	if r >= arm64.RegZR {
		return 0
	}
	return s.Registers[r]
}

func (s *State) WriteReg(r uint64, v uint64) {
	if r >= arm64.RegZR {
		return
	}
	s.Registers[r] = v
}

func (s *State) ReadRegOrSP(r uint64) uint64 {
	if r == arm64.RegZR {
		return s.SP
	}
	return s.Registers[r]
}

func (s *State) WriteRegOrSP(r uint64, v uint64) {
	if r == arm64.RegZR {
		s.SP = v
		return
	}
	s.Registers[r] = v
}

// VectorBytes writes the low len(dest) bytes of V[r] in memory order.
func (s *State) VectorBytes(r uint64, dest []byte) {
	var buf [16]byte
	// WriteToSlice fills a short slice with the low bytes, big-endian
	s.Vectors[r&31].WriteToSlice(buf[:])
	reverse16(&buf)
	copy(dest, buf[:])
}

// SetVectorBytes loads V[r] from memory-order bytes. Bits above len(dat) are cleared.
func (s *State) SetVectorBytes(r uint64, dat []byte) {
	var buf [16]byte
	copy(buf[:], dat)
	reverse16(&buf)
	s.Vectors[r&31].SetBytes(buf[:])
}

// reverse16 converts between little-endian memory order and uint256's big-endian byte order.
func reverse16(b *[16]byte) {
	for i := 0; i < 8; i++ {
		b[i], b[15-i] = b[15-i], b[i]
	}
}
