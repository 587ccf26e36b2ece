package arm64

const (
	InstrSize = 4

	// RegZR is the encoding of XZR/WZR, or SP when used as a base register.
	RegZR = 31

	// NoReg marks an unused register slot in catalogue records.
	NoReg = 0xFF

	ErrUnknownOpCode        = uint64(0xf001c0de)
	ErrUnsupportedAddrMode  = uint64(0xbadadd00)
	ErrUnsupportedSize      = uint64(0xbad512e0)
	ErrUnpredictablePair    = uint64(0xbad9a1e0)
	ErrFlagSettingArith     = uint64(0xbadf1a90)
	ErrUnsupportedExtend    = uint64(0xbade7e0d)
	ErrMemoryFault          = uint64(0xbadfa017)
	ErrStepLimit            = uint64(0xbad57e90)
	ErrUnalignedInstruction = uint64(0xbad10ad0)
)

// Instruction class masks and values.
const (
	MaskLdStUnsignedImm  = 0x3B000000
	ClassLdStUnsignedImm = 0x39000000

	MaskLdStReg  = 0x3B000000
	ClassLdStReg = 0x38000000

	MaskLdStPair  = 0x3A000000
	ClassLdStPair = 0x28000000

	MaskAddSubImm  = 0x1F800000
	ClassAddSubImm = 0x11000000
)

// Pair addressing variants, bits [24:23].
const (
	PairNoAlloc   = 0
	PairPostIndex = 1
	PairOffset    = 2
	PairPreIndex  = 3
)

// Single-register addressing variants selected by bits [11:10] when bits [25:24] are 00.
const (
	RegUnscaled  = 0
	RegPostIndex = 1
	RegOffset    = 2
	RegPreIndex  = 3
)

// Register-offset extend options, bits [15:13].
const (
	ExtendUXTW = 2
	ExtendLSL  = 3
	ExtendSXTW = 6
	ExtendSXTX = 7
)
