package emu

// Field extraction for the AArch64 load/store and add/sub-immediate encodings.
// Fields that do not apply to an instruction class are simply ignored by the caller.

func parseRt(instr uint64) uint64  { return instr & 0x1F }
func parseRn(instr uint64) uint64  { return (instr >> 5) & 0x1F }
func parseRt2(instr uint64) uint64 { return (instr >> 10) & 0x1F }
func parseRm(instr uint64) uint64  { return (instr >> 16) & 0x1F }

func parseSize(instr uint64) uint64 { return (instr >> 30) & 3 }
func parseV(instr uint64) uint64    { return (instr >> 26) & 1 }
func parseOpc(instr uint64) uint64  { return (instr >> 22) & 3 }

func parseImm12(instr uint64) uint64 { return (instr >> 10) & 0xFFF }

func parseImm9(instr uint64) uint64 {
	return signExtend64((instr>>12)&0x1FF, 8)
}

func parseImm7(instr uint64) uint64 {
	return signExtend64((instr>>15)&0x7F, 6)
}

// bits [11:10] of the register/unscaled class
func parseIdxMode(instr uint64) uint64 { return (instr >> 10) & 3 }

// bit 21 of the register/unscaled class
func parseRegOffsetFlag(instr uint64) uint64 { return (instr >> 21) & 1 }

func parseOption(instr uint64) uint64 { return (instr >> 13) & 7 }
func parseS(instr uint64) uint64      { return (instr >> 12) & 1 }

// bits [24:23] of the pair class
func parsePairMode(instr uint64) uint64 { return (instr >> 23) & 3 }
func parsePairOpc(instr uint64) uint64  { return (instr >> 30) & 3 }
func parseL(instr uint64) uint64        { return (instr >> 22) & 1 }

func parseSf(instr uint64) uint64       { return (instr >> 31) & 1 }
func parseSubOp(instr uint64) uint64    { return (instr >> 30) & 1 }
func parseSetFlags(instr uint64) uint64 { return (instr >> 29) & 1 }
func parseShift12(instr uint64) uint64  { return (instr >> 22) & 1 }

// signExtend64 extends bit `bit` of v into the upper bits.
func signExtend64(v uint64, bit uint64) uint64 {
	if v&(1<<bit) == 0 {
		return v & ((1 << (bit + 1)) - 1)
	}
	return v | (^uint64(0) << bit)
}

// Exported decoders, used to cross-check catalogue records against their encodings.

func ParseRn(instr uint32) uint64  { return parseRn(uint64(instr)) }
func ParseRm(instr uint32) uint64  { return parseRm(uint64(instr)) }
func ParseImm9(instr uint32) int64 { return int64(parseImm9(uint64(instr))) }
