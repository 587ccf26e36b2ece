package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/glmapping/ldstcheck/catalog"
	"github.com/glmapping/ldstcheck/probe"
)

const (
	BackingPaged  = "paged"
	BackingMapped = "mapped"
)

// Config is the full run configuration. It can be loaded from a JSON file,
// flags override individual fields.
type Config struct {
	Backing      string   `json:"backing"`
	BackingBase  uint64   `json:"backingBase"`
	BackingSize  uint64   `json:"backingSize"`
	HeapSize     uint64   `json:"heapSize"`
	ArenaOffsets []uint64 `json:"arenaOffsets"`
	Only         []string `json:"only,omitempty"`
	MaxSteps     uint64   `json:"maxSteps"`

	Report   string `json:"report,omitempty"`
	History  string `json:"history,omitempty"`
	Console  string `json:"console,omitempty"`
	LogLevel string `json:"logLevel"`
}

func DefaultConfig() *Config {
	return &Config{
		Backing:     BackingPaged,
		BackingBase: 0x4000_0000,
		// one 1280x720 32bpp frame
		BackingSize:  1280 * 720 * 4,
		HeapSize:     1 << 20,
		ArenaOffsets: []uint64{512, 256},
		MaxSteps:     catalog.DefaultMaxSteps,
		Console:      ConsoleStdout,
		LogLevel:     "info",
	}
}

// UnmarshalJSON decodes over DefaultConfig, so fields absent from the input keep
// their defaults and explicit zero values are preserved.
func (c *Config) UnmarshalJSON(b []byte) error {
	type plain Config
	p := (*plain)(DefaultConfig())
	if err := json.Unmarshal(b, p); err != nil {
		return err
	}
	*c = Config(*p)
	return nil
}

var (
	ErrInvalidBacking = errors.New("invalid backing")
	ErrInvalidArena   = errors.New("invalid arena offset")
)

func (c *Config) Check() error {
	switch c.Backing {
	case BackingPaged, BackingMapped:
	default:
		return fmt.Errorf("%w %q, expected %q or %q", ErrInvalidBacking, c.Backing, BackingPaged, BackingMapped)
	}
	if c.BackingSize < probe.ArenaSize {
		return fmt.Errorf("%w: backing size %d is smaller than one arena", ErrInvalidBacking, c.BackingSize)
	}
	if c.BackingBase+c.BackingSize+c.HeapSize < c.BackingBase {
		return fmt.Errorf("%w: address space overflows", ErrInvalidBacking)
	}
	if c.HeapSize == 0 {
		return errors.New("heap size must be non-zero")
	}
	if len(c.ArenaOffsets) == 0 {
		return fmt.Errorf("%w: no arena offsets", ErrInvalidArena)
	}
	for _, off := range c.ArenaOffsets {
		if off > c.BackingSize-probe.ArenaSize {
			return fmt.Errorf("%w: arena at +%d does not fit in %d byte backing", ErrInvalidArena, off, c.BackingSize)
		}
	}
	if c.MaxSteps == 0 {
		return errors.New("max steps must be non-zero")
	}
	switch c.Console {
	case ConsoleStdout, ConsoleLog, ConsoleNone:
	default:
		return fmt.Errorf("invalid console mode %q", c.Console)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	if _, _, err := catalog.Select(c.Only); err != nil {
		return err
	}
	return nil
}
