package cmd

import (
	"github.com/urfave/cli/v2"
)

const (
	ConsoleStdout = "stdout"
	ConsoleLog    = "log"
	ConsoleNone   = "none"
)

var (
	ConfigFlag = &cli.PathFlag{
		Name:      "config",
		Usage:     "JSON run configuration, flags override its values",
		TakesFile: true,
	}
	BackingFlag = &cli.StringFlag{
		Name:  "backing",
		Usage: "memory hosting the arenas: " + BackingPaged + " (sparse pages) or " + BackingMapped + " (anonymous mmap)",
		Value: BackingPaged,
	}
	BackingBaseFlag = &cli.Uint64Flag{
		Name:  "backing.base",
		Usage: "emulated address of the backing region",
		Value: DefaultConfig().BackingBase,
	}
	BackingSizeFlag = &cli.Uint64Flag{
		Name:  "backing.size",
		Usage: "size of the backing region in bytes",
		Value: DefaultConfig().BackingSize,
	}
	HeapSizeFlag = &cli.Uint64Flag{
		Name:  "heap.size",
		Usage: "size of the scratch heap placed right after the backing region",
		Value: DefaultConfig().HeapSize,
	}
	ArenaOffsetFlag = &cli.Uint64SliceFlag{
		Name:  "arena.offset",
		Usage: "offset of an arena within the backing region, the driver runs once per offset",
		Value: cli.NewUint64Slice(DefaultConfig().ArenaOffsets...),
	}
	MaxStepsFlag = &cli.Uint64Flag{
		Name:  "max-steps",
		Usage: "instruction limit of a single primitive",
		Value: DefaultConfig().MaxSteps,
	}
	OnlyFlag = &cli.StringSliceFlag{
		Name:  "only",
		Usage: "run only the named primitives",
	}
	ReportFlag = &cli.PathFlag{
		Name:      "report",
		Usage:     "write the JSON report of all runs to this file",
		TakesFile: true,
	}
	HistoryFlag = &cli.PathFlag{
		Name:      "history",
		Usage:     "bbolt database recording every run",
		TakesFile: true,
	}
	ConsoleFlag = &cli.StringFlag{
		Name:  "console",
		Usage: "destination of the human-readable report: " + ConsoleStdout + ", " + ConsoleLog + " or " + ConsoleNone,
		Value: ConsoleStdout,
	}
	LogLevelFlag = &cli.StringFlag{
		Name:  "log.level",
		Usage: "log level: debug, info, warn or error",
		Value: DefaultConfig().LogLevel,
	}
	LastFlag = &cli.IntFlag{
		Name:  "last",
		Usage: "number of most recent runs to show, 0 for all",
		Value: 10,
	}
)
