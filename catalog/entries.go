package catalog

import (
	"github.com/glmapping/ldstcheck/arm64"
	"github.com/glmapping/ldstcheck/probe"
)

// Entry describes one primitive. The instruction under test is Tag; the rest of
// Program moves data between the scratch buffer and registers.
//
// Before the program runs, Target holds the probed address minus Fixed, Scratch holds
// the scratch buffer address, and Index (if used) holds Fixed, so every entry ends
// up addressing exactly the probed address.
type Entry struct {
	Name string
	Desc string
	Tag  uint32
	Mode probe.Mode
	Size uint64

	Fixed   int64
	Target  uint8
	Scratch uint8
	Index   uint8

	// Observational entries cannot encode a caller offset and ignore it.
	Observational bool

	Program []uint32
}

// Stores lists the store primitives in driver order.
func Stores() []*Entry {
	return []*Entry{
		{
			Name: "strSIMD128unsignedImm", Desc: "128bit SIMD/FP store", Tag: 0x3d800040, Mode: probe.Store, Size: 16,
			Target: 2, Scratch: 1, Index: arm64.NoReg, Observational: true,
			Program: []uint32{
				0x3dc00020, // ldr q0, [x1]
				0x3d800040, // str q0, [x2]
			},
		},
		{
			Name: "stp1", Desc: "64bit stp", Tag: 0xa9000c22, Mode: probe.Store, Size: 16,
			Target: 1, Scratch: 0, Index: arm64.NoReg,
			Program: []uint32{
				0xa9400c02, // ldp x2, x3, [x0]
				0xa9000c22, // stp x2, x3, [x1]
			},
		},
		{
			Name: "stp2", Desc: "64bit stp", Tag: 0xa9001444, Mode: probe.Store, Size: 16,
			Target: 2, Scratch: 0, Index: arm64.NoReg,
			Program: []uint32{
				0xa9401404, // ldp x4, x5, [x0]
				0xa9001444, // stp x4, x5, [x2]
			},
		},
		{
			Name: "stp3", Desc: "64bit stp", Tag: 0xa9001c46, Mode: probe.Store, Size: 16,
			Target: 2, Scratch: 0, Index: arm64.NoReg,
			Program: []uint32{
				0xa9401c06, // ldp x6, x7, [x0]
				0xa9001c46, // stp x6, x7, [x2]
			},
		},
		{
			Name: "stur1", Desc: "128bit SIMD stur", Tag: 0x3c8041a0, Mode: probe.Store, Size: 16,
			Fixed: 0x4, Target: 13, Scratch: 0, Index: arm64.NoReg,
			Program: []uint32{
				0x3dc00000, // ldr q0, [x0]
				0x3c8041a0, // stur q0, [x13, #4]
			},
		},
		{
			Name: "stur2", Desc: "128bit SIMD stur", Tag: 0x3c80c0e0, Mode: probe.Store, Size: 16,
			Fixed: 0xc, Target: 7, Scratch: 0, Index: arm64.NoReg,
			Program: []uint32{
				0x3dc00000, // ldr q0, [x0]
				0x3c80c0e0, // stur q0, [x7, #0xc]
			},
		},
		{
			Name: "str1", Desc: "128bit SIMD str", Tag: 0x3d8002e0, Mode: probe.Store, Size: 16,
			Target: 23, Scratch: 0, Index: arm64.NoReg,
			Program: []uint32{
				0x3dc00000, // ldr q0, [x0]
				0x3d8002e0, // str q0, [x23]
			},
		},
		{
			Name: "str2", Desc: "64bit str", Tag: 0xf9000845, Mode: probe.Store, Size: 16,
			Fixed: 0x10, Target: 2, Scratch: 0, Index: arm64.NoReg,
			Program: []uint32{
				0xf9400005, // ldr x5, [x0]
				0xf9000845, // str x5, [x2, #0x10]
				0xf9400405, // ldr x5, [x0, #0x8]
				0x91002042, // add x2, x2, #0x8
				0xf9000845, // str x5, [x2, #0x10]
			},
		},
		{
			Name: "str3", Desc: "128bit SIMD str", Tag: 0x3ca26861, Mode: probe.Store, Size: 16,
			Fixed: 0x1, Target: 3, Scratch: 0, Index: 2,
			Program: []uint32{
				0x3dc00001, // ldr q1, [x0]
				0x3ca26861, // str q1, [x3, x2]
			},
		},
		{
			Name: "str4", Desc: "128bit SIMD str", Tag: 0x3d800140, Mode: probe.Store, Size: 16,
			Target: 10, Scratch: 0, Index: arm64.NoReg,
			Program: []uint32{
				0x3dc00000, // ldr q0, [x0]
				0x3d800140, // str q0, [x10]
			},
		},
		{
			Name: "str5", Desc: "32bit str", Tag: 0xb9000051, Mode: probe.Store, Size: 16,
			Target: 2, Scratch: 0, Index: arm64.NoReg,
			Program: []uint32{
				0xb9400011, // ldr w17, [x0]
				0xb9000051, // str w17, [x2]
				0xb9400411, // ldr w17, [x0, #0x4]
				0x91001042, // add x2, x2, #0x4
				0xb9000051, // str w17, [x2]
				0xb9400811, // ldr w17, [x0, #0x8]
				0x91001042, // add x2, x2, #0x4
				0xb9000051, // str w17, [x2]
				0xb9400c11, // ldr w17, [x0, #0xc]
				0x91001042, // add x2, x2, #0x4
				0xb9000051, // str w17, [x2]
			},
		},
		{
			Name: "str6", Desc: "64bit str", Tag: 0xf82468a2, Mode: probe.Store, Size: 16,
			Fixed: 0x1, Target: 5, Scratch: 0, Index: 4,
			Program: []uint32{
				0xf9400002, // ldr x2, [x0]
				0xf82468a2, // str x2, [x5, x4]
				0xf9400402, // ldr x2, [x0, #0x8]
				0x910020a5, // add x5, x5, #0x8
				0xf82468a2, // str x2, [x5, x4]
			},
		},
		{
			Name: "stp4", Desc: "128bit SIMD stp, total 256bit", Tag: 0xad000440, Mode: probe.Store, Size: 32,
			Target: 2, Scratch: 0, Index: arm64.NoReg,
			Program: []uint32{
				0xad400400, // ldp q0, q1, [x0]
				0xad000440, // stp q0, q1, [x2]
			},
		},
		{
			Name: "str7", Desc: "64bit SIMD/FP str", Tag: 0xfd000120, Mode: probe.Store, Size: 8,
			Target: 9, Scratch: 0, Index: arm64.NoReg,
			Program: []uint32{
				0xfd400000, // ldr d0, [x0]
				0xfd000120, // str d0, [x9]
			},
		},
	}
}

// Loads lists the load primitives in driver order.
func Loads() []*Entry {
	return []*Entry{
		{
			Name: "ldrSIMD128unsignedImm", Desc: "128bit SIMD/FP load", Tag: 0x3dc00040, Mode: probe.Load, Size: 16,
			Target: 2, Scratch: 1, Index: arm64.NoReg,
			Program: []uint32{
				0x3dc00040, // ldr q0, [x2]
				0x3d800020, // str q0, [x1]
			},
		},
		{
			Name: "ldp1", Desc: "64bit ldp", Tag: 0xa9400c22, Mode: probe.Load, Size: 16,
			Target: 1, Scratch: 0, Index: arm64.NoReg,
			Program: []uint32{
				0xa9400c22, // ldp x2, x3, [x1]
				0xa9000c02, // stp x2, x3, [x0]
			},
		},
		{
			Name: "ldp2", Desc: "64bit ldp", Tag: 0xa9401444, Mode: probe.Load, Size: 16,
			Target: 2, Scratch: 0, Index: arm64.NoReg,
			Program: []uint32{
				0xa9401444, // ldp x4, x5, [x2]
				0xa9001404, // stp x4, x5, [x0]
			},
		},
		{
			Name: "ldp3", Desc: "64bit ldp", Tag: 0xa9401c46, Mode: probe.Load, Size: 16,
			Target: 2, Scratch: 0, Index: arm64.NoReg,
			Program: []uint32{
				0xa9401c46, // ldp x6, x7, [x2]
				0xa9001c06, // stp x6, x7, [x0]
			},
		},
		{
			Name: "ldur1", Desc: "128bit SIMD ldur", Tag: 0x3cc041a0, Mode: probe.Load, Size: 16,
			Fixed: 0x4, Target: 13, Scratch: 0, Index: arm64.NoReg,
			Program: []uint32{
				0x3cc041a0, // ldur q0, [x13, #4]
				0x3d800000, // str q0, [x0]
			},
		},
		{
			Name: "ldur2", Desc: "128bit SIMD ldur", Tag: 0x3cc0c0e0, Mode: probe.Load, Size: 16,
			Fixed: 0xc, Target: 7, Scratch: 0, Index: arm64.NoReg,
			Program: []uint32{
				0x3cc0c0e0, // ldur q0, [x7, #0xc]
				0x3d800000, // str q0, [x0]
			},
		},
		{
			Name: "ldr1", Desc: "128bit SIMD ldr", Tag: 0x3dc002e0, Mode: probe.Load, Size: 16,
			Target: 23, Scratch: 0, Index: arm64.NoReg,
			Program: []uint32{
				0x3dc002e0, // ldr q0, [x23]
				0x3d800000, // str q0, [x0]
			},
		},
		{
			Name: "ldr2", Desc: "64bit ldr", Tag: 0xf9400845, Mode: probe.Load, Size: 16,
			Fixed: 0x10, Target: 2, Scratch: 0, Index: arm64.NoReg,
			Program: []uint32{
				0xf9400845, // ldr x5, [x2, #0x10]
				0xf9000005, // str x5, [x0]
				0x91002042, // add x2, x2, #0x8
				0xf9400845, // ldr x5, [x2, #0x10]
				0xf9000405, // str x5, [x0, #0x8]
			},
		},
		{
			Name: "ldr3", Desc: "128bit SIMD ldr", Tag: 0x3ce26861, Mode: probe.Load, Size: 16,
			Fixed: 0x1, Target: 3, Scratch: 0, Index: 2,
			Program: []uint32{
				0x3ce26861, // ldr q1, [x3, x2]
				0x3d800001, // str q1, [x0]
			},
		},
		{
			Name: "ldr4", Desc: "128bit SIMD ldr", Tag: 0x3dc00140, Mode: probe.Load, Size: 16,
			Target: 10, Scratch: 0, Index: arm64.NoReg,
			Program: []uint32{
				0x3dc00140, // ldr q0, [x10]
				0x3d800000, // str q0, [x0]
			},
		},
		{
			Name: "ldr5", Desc: "32bit ldr", Tag: 0xb9400051, Mode: probe.Load, Size: 16,
			Target: 2, Scratch: 0, Index: arm64.NoReg,
			Program: []uint32{
				0xb9400051, // ldr w17, [x2]
				0xb9000011, // str w17, [x0]
				0x91001042, // add x2, x2, #0x4
				0xb9400051, // ldr w17, [x2]
				0xb9000411, // str w17, [x0, #0x4]
				0x91001042, // add x2, x2, #0x4
				0xb9400051, // ldr w17, [x2]
				0xb9000811, // str w17, [x0, #0x8]
				0x91001042, // add x2, x2, #0x4
				0xb9400051, // ldr w17, [x2]
				0xb9000c11, // str w17, [x0, #0xc]
			},
		},
		{
			Name: "ldr6", Desc: "64bit ldr", Tag: 0xf86468a2, Mode: probe.Load, Size: 16,
			Fixed: 0x1, Target: 5, Scratch: 0, Index: 4,
			Program: []uint32{
				0xf86468a2, // ldr x2, [x5, x4]
				0xf9000002, // str x2, [x0]
				0x910020a5, // add x5, x5, #0x8
				0xf86468a2, // ldr x2, [x5, x4]
				0xf9000402, // str x2, [x0, #0x8]
			},
		},
		{
			Name: "ldp4", Desc: "128bit SIMD ldp, total 256bit", Tag: 0xad400440, Mode: probe.Load, Size: 32,
			Target: 2, Scratch: 0, Index: arm64.NoReg,
			Program: []uint32{
				0xad400440, // ldp q0, q1, [x2]
				0xad000400, // stp q0, q1, [x0]
			},
		},
		{
			Name: "ldr7", Desc: "64bit SIMD/FP ldr", Tag: 0xfd400120, Mode: probe.Load, Size: 8,
			Target: 9, Scratch: 0, Index: arm64.NoReg,
			Program: []uint32{
				0xfd400120, // ldr d0, [x9]
				0xfd000000, // str d0, [x0]
			},
		},
	}
}
