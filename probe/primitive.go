package probe

import (
	"fmt"
	"strings"
)

type Mode uint8

const (
	// Store primitives place Size bytes from src at dst+offset.
	Store Mode = iota
	// Load primitives copy Size bytes from src to dst and ignore offset.
	Load
)

func (m Mode) String() string {
	switch m {
	case Store:
		return "store"
	case Load:
		return "load"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "store":
		*m = Store
	case "load":
		*m = Load
	default:
		return fmt.Errorf("unknown primitive mode %q", text)
	}
	return nil
}

// Tag is the opaque addressing-mode identifier carried for cross-reference,
// the encoding of the instruction under test.
type Tag uint32

func (v Tag) String() string {
	return fmt.Sprintf("0x%08x", uint32(v))
}

func (v Tag) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// TransferFunc moves bytes between addresses of the memory the primitive is bound to.
type TransferFunc func(dst, src uint64, offset int64) error

type Primitive struct {
	Name string
	Desc string
	Tag  Tag
	Mode Mode

	// Size is the number of bytes one call transfers.
	Size uint64
	// FixedOffset is the immediate baked into the encoding, which the primitive
	// folds out of its target address before executing.
	FixedOffset int64
	// Observational primitives cannot encode a caller offset. Their mismatches at a
	// non-zero offset are reported but not counted as strict failures.
	Observational bool

	Transfer TransferFunc
}

func (p *Primitive) Banner() string {
	return fmt.Sprintf("%s (%s)", p.Desc, p.Tag)
}
