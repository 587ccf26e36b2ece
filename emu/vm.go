package emu

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"

	"github.com/glmapping/ldstcheck/arm64"
)

// RevertError is returned when an instruction cannot be executed.
type RevertError struct {
	Code  uint64
	PC    uint64
	Instr uint32
	Err   error
}

func (e *RevertError) Error() string {
	return fmt.Sprintf("revert %x at pc %016x (instr %08x): %v", e.Code, e.PC, e.Instr, e.Err)
}

func (e *RevertError) Unwrap() error { return e.Err }

// Step runs a single instruction at the current PC.
func Step(s *State) (outErr error) {
	pc := s.PC
	var instr uint32
	var revertCode uint64
	defer func() {
		if r := recover(); r != nil {
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("%v", r)
			}
			if revertCode == 0 && errors.Is(err, ErrMemoryFault) {
				revertCode = arm64.ErrMemoryFault
			}
			outErr = &RevertError{Code: revertCode, PC: pc, Instr: instr, Err: err}
		}
	}()

	revertWithCode := func(code uint64, err error) {
		revertCode = code
		panic(err)
	}

	// access moves width bytes between memory at addr and register rt.
	access := func(rt uint64, vector bool, addr uint64, width uint64, load bool) {
		var buf [16]byte
		b := buf[:width]
		if load {
			s.Memory.GetUnaligned(addr, b)
			if vector {
				s.SetVectorBytes(rt, b)
			} else {
				var w [8]byte
				copy(w[:], b)
				s.WriteReg(rt, binary.LittleEndian.Uint64(w[:])) // zero-extends W loads
			}
			return
		}
		if vector {
			s.VectorBytes(rt, b)
		} else {
			var w [8]byte
			binary.LittleEndian.PutUint64(w[:], s.ReadReg(rt))
			copy(b, w[:])
		}
		s.Memory.SetUnaligned(addr, b)
	}

	// singleWidth decodes size/V/opc of the single-register classes
	singleWidth := func(instr uint64) (width uint64, load bool) {
		size := parseSize(instr)
		opc := parseOpc(instr)
		if parseV(instr) == 0 {
			switch opc {
			case 0: // STR(B/H/W/X)
				return 1 << size, false
			case 1: // LDR(B/H/W/X), zero-extending
				return 1 << size, true
			default:
				revertWithCode(arm64.ErrUnsupportedSize, fmt.Errorf("sign-extending load or prefetch (size %d, opc %d)", size, opc))
			}
		}
		if opc&2 != 0 { // 128-bit Q form only exists for size 00
			if size != 0 {
				revertWithCode(arm64.ErrUnsupportedSize, fmt.Errorf("invalid SIMD size %d with opc %d", size, opc))
			}
			return 16, opc&1 == 1
		}
		return 1 << size, opc&1 == 1
	}

	if pc&(arm64.InstrSize-1) != 0 {
		revertWithCode(arm64.ErrUnalignedInstruction, fmt.Errorf("misaligned pc %016x", pc))
	}
	instr = s.Instr()
	in := uint64(instr)

	switch {
	case in&arm64.MaskLdStUnsignedImm == arm64.ClassLdStUnsignedImm:
		// LDR/STR Rt, [Rn, #imm12 * width]
		width, load := singleWidth(in)
		base := s.ReadRegOrSP(parseRn(in))
		addr := base + parseImm12(in)*width
		access(parseRt(in), parseV(in) == 1, addr, width, load)
	case in&arm64.MaskLdStReg == arm64.ClassLdStReg:
		width, load := singleWidth(in)
		base := s.ReadRegOrSP(parseRn(in))
		mode := parseIdxMode(in)
		var addr uint64
		switch {
		case parseRegOffsetFlag(in) == 0 && mode == arm64.RegUnscaled:
			// LDUR/STUR Rt, [Rn, #simm9]
			addr = base + parseImm9(in)
		case parseRegOffsetFlag(in) == 1 && mode == arm64.RegOffset:
			// LDR/STR Rt, [Rn, Rm{, extend {#amount}}]
			rm := s.ReadReg(parseRm(in))
			var off uint64
			switch parseOption(in) {
			case arm64.ExtendUXTW:
				off = rm & 0xFFFF_FFFF
			case arm64.ExtendLSL, arm64.ExtendSXTX:
				off = rm
			case arm64.ExtendSXTW:
				off = signExtend64(rm&0xFFFF_FFFF, 31)
			default:
				revertWithCode(arm64.ErrUnsupportedExtend, fmt.Errorf("unsupported register extend option %d", parseOption(in)))
			}
			if parseS(in) == 1 {
				off <<= uint(bits.TrailingZeros64(width))
			}
			addr = base + off
		default:
			revertWithCode(arm64.ErrUnsupportedAddrMode, fmt.Errorf("unsupported single register addressing mode %d (reg flag %d)", mode, parseRegOffsetFlag(in)))
		}
		access(parseRt(in), parseV(in) == 1, addr, width, load)
	case in&arm64.MaskLdStPair == arm64.ClassLdStPair:
		// LDP/STP/LDNP/STNP Rt, Rt2, [Rn, #simm7 * width]
		switch mode := parsePairMode(in); mode {
		case arm64.PairOffset, arm64.PairNoAlloc:
		default:
			revertWithCode(arm64.ErrUnsupportedAddrMode, fmt.Errorf("unsupported pair addressing mode %d", mode))
		}
		vector := parseV(in) == 1
		var width uint64
		switch opc := parsePairOpc(in); {
		case opc == 0:
			width = 4
		case opc == 1 && vector:
			width = 8
		case opc == 2 && vector:
			width = 16
		case opc == 2:
			width = 8
		default:
			revertWithCode(arm64.ErrUnsupportedSize, fmt.Errorf("unsupported pair opc %d (vector: %v)", opc, vector))
		}
		load := parseL(in) == 1
		rt, rt2 := parseRt(in), parseRt2(in)
		if load && rt == rt2 {
			revertWithCode(arm64.ErrUnpredictablePair, fmt.Errorf("load pair into the same register %d", rt))
		}
		base := s.ReadRegOrSP(parseRn(in))
		addr := base + parseImm7(in)*width
		access(rt, vector, addr, width, load)
		access(rt2, vector, addr+width, width, load)
	case in&arm64.MaskAddSubImm == arm64.ClassAddSubImm:
		// ADD/SUB Rd, Rn, #imm12{, LSL #12}
		if parseSetFlags(in) == 1 {
			revertWithCode(arm64.ErrFlagSettingArith, fmt.Errorf("flag-setting arithmetic is not modelled"))
		}
		imm := parseImm12(in)
		if parseShift12(in) == 1 {
			imm <<= 12
		}
		rn := s.ReadRegOrSP(parseRn(in))
		var v uint64
		if parseSubOp(in) == 1 {
			v = rn - imm
		} else {
			v = rn + imm
		}
		if parseSf(in) == 0 {
			v &= 0xFFFF_FFFF
		}
		s.WriteRegOrSP(parseRt(in), v)
	default:
		revertWithCode(arm64.ErrUnknownOpCode, fmt.Errorf("unknown instruction %08x", instr))
	}
	s.PC = pc + arm64.InstrSize
	s.Step++
	return nil
}

// Run steps until the PC reaches end.
func Run(s *State, end uint64, maxSteps uint64) error {
	for i := uint64(0); s.PC != end; i++ {
		if i >= maxSteps {
			return &RevertError{Code: arm64.ErrStepLimit, PC: s.PC, Err: fmt.Errorf("did not reach %016x within %d steps", end, maxSteps)}
		}
		if err := Step(s); err != nil {
			return err
		}
	}
	return nil
}

// LoadProgram writes the instruction words little-endian at addr and
// returns the address just past the last instruction.
func LoadProgram(m Memory, addr uint64, program []uint32) (uint64, error) {
	buf := make([]byte, 0, len(program)*arm64.InstrSize)
	for _, w := range program {
		buf = binary.LittleEndian.AppendUint32(buf, w)
	}
	if err := m.SetMemoryRange(addr, bytes.NewReader(buf)); err != nil {
		return 0, fmt.Errorf("failed to load %d instructions at %016x: %w", len(program), addr, err)
	}
	return addr + uint64(len(buf)), nil
}
