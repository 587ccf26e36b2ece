package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/pkg/profile"

	cannon "github.com/ethereum-optimism/optimism/cannon/cmd"
	"github.com/ethereum-optimism/optimism/op-service/jsonutil"

	"github.com/glmapping/ldstcheck/catalog"
	"github.com/glmapping/ldstcheck/emu"
	"github.com/glmapping/ldstcheck/history"
	"github.com/glmapping/ldstcheck/probe"
)

var OutFilePerm = os.FileMode(0o644)

var ErrStrictFailures = errors.New("strict failures")

// Report is the JSON report of one invocation.
type Report struct {
	Backing string             `json:"backing"`
	Runs    []*probe.RunReport `json:"runs"`
	Summary probe.Summary      `json:"summary"`
}

type addressSpace struct {
	mem   emu.Memory
	heap  *emu.Heap
	usage func() string
	close func() error
}

func newAddressSpace(cfg *Config) (*addressSpace, error) {
	heap := emu.NewHeap(cfg.BackingBase+cfg.BackingSize, cfg.HeapSize)
	switch cfg.Backing {
	case BackingMapped:
		m, err := emu.NewMappedMemory(cfg.BackingBase, cfg.BackingSize+cfg.HeapSize)
		if err != nil {
			return nil, fmt.Errorf("failed to map backing region: %w", err)
		}
		return &addressSpace{mem: m, heap: heap, usage: m.Usage, close: m.Close}, nil
	case BackingPaged:
		m := emu.NewMemory()
		return &addressSpace{mem: m, heap: heap, usage: m.Usage, close: func() error { return nil }}, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrInvalidBacking, cfg.Backing)
	}
}

func runHeader(i int) string {
	switch i {
	case 0:
		return ""
	case 1:
		return "\n\nSecond run: \n"
	default:
		return fmt.Sprintf("\n\nRun %d: \n", i+1)
	}
}

// Execute runs the driver once per configured arena offset. The returned report
// covers every run that completed, also when the context was cancelled.
func Execute(ctx context.Context, cfg *Config, out io.Writer, l log.Logger) (*Report, error) {
	if err := cfg.Check(); err != nil {
		return nil, err
	}
	stores, loads, err := catalog.Select(cfg.Only)
	if err != nil {
		return nil, err
	}
	space, err := newAddressSpace(cfg)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := space.close(); err != nil {
			l.Error("failed to release backing region", "err", err)
		}
	}()

	exec := catalog.NewExecutor(space.mem, space.heap)
	exec.MaxSteps = cfg.MaxSteps
	driver := &probe.Driver{
		Checker: probe.NewChecker(out, l, space.heap),
		Store:   exec.Primitives(stores),
		Load:    exec.Primitives(loads),
	}

	rep := &Report{Backing: cfg.Backing}
	for i, off := range cfg.ArenaOffsets {
		if h := runHeader(i); h != "" && out != nil {
			_, _ = io.WriteString(out, h)
		}
		arena := &probe.Arena{Mem: space.mem, Addr: cfg.BackingBase + off, Size: probe.ArenaSize}
		l.Info("starting run", "run", i+1, "backing", cfg.Backing, "arena", arena.Addr, "offset", off,
			"stores", len(stores), "loads", len(loads))
		rr, err := driver.RunAsmTests(ctx, arena)
		if rr != nil {
			rr.BackingOffset = off
			rep.Runs = append(rep.Runs, rr)
			rep.Summary.Merge(rr.Summary)
		}
		if err != nil {
			return rep, err
		}
		if live := space.heap.Live(); live != 0 {
			return rep, fmt.Errorf("run %d leaked %d scratch buffers", i+1, live)
		}
	}
	l.Info("all runs complete", "runs", len(rep.Runs), "summary", rep.Summary.String(), "memory", space.usage())
	return rep, nil
}

func configFromCLI(ctx *cli.Context) (*Config, error) {
	cfg := DefaultConfig()
	if path := ctx.Path(ConfigFlag.Name); path != "" {
		loaded, err := jsonutil.LoadJSON[Config](path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if ctx.IsSet(BackingFlag.Name) {
		cfg.Backing = ctx.String(BackingFlag.Name)
	}
	if ctx.IsSet(BackingBaseFlag.Name) {
		cfg.BackingBase = ctx.Uint64(BackingBaseFlag.Name)
	}
	if ctx.IsSet(BackingSizeFlag.Name) {
		cfg.BackingSize = ctx.Uint64(BackingSizeFlag.Name)
	}
	if ctx.IsSet(HeapSizeFlag.Name) {
		cfg.HeapSize = ctx.Uint64(HeapSizeFlag.Name)
	}
	if ctx.IsSet(ArenaOffsetFlag.Name) {
		cfg.ArenaOffsets = ctx.Uint64Slice(ArenaOffsetFlag.Name)
	}
	if ctx.IsSet(MaxStepsFlag.Name) {
		cfg.MaxSteps = ctx.Uint64(MaxStepsFlag.Name)
	}
	if ctx.IsSet(OnlyFlag.Name) {
		cfg.Only = ctx.StringSlice(OnlyFlag.Name)
	}
	if ctx.IsSet(ReportFlag.Name) {
		cfg.Report = ctx.Path(ReportFlag.Name)
	}
	if ctx.IsSet(HistoryFlag.Name) {
		cfg.History = ctx.Path(HistoryFlag.Name)
	}
	if ctx.IsSet(ConsoleFlag.Name) {
		cfg.Console = ctx.String(ConsoleFlag.Name)
	}
	if ctx.IsSet(LogLevelFlag.Name) {
		cfg.LogLevel = ctx.String(LogLevelFlag.Name)
	}
	if err := cfg.Check(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func Run(ctx *cli.Context) error {
	if ctx.Bool(cannon.RunPProfCPU.Name) {
		defer profile.Start(profile.NoShutdownHook, profile.ProfilePath("."), profile.CPUProfile).Stop()
	}

	cfg, err := configFromCLI(ctx)
	if err != nil {
		return err
	}
	lvl, _ := parseLevel(cfg.LogLevel)
	l := Logger(os.Stderr, lvl)

	var out io.Writer
	switch cfg.Console {
	case ConsoleStdout:
		out = ctx.App.Writer
	case ConsoleLog:
		lw := &LoggingWriter{Name: "console", Log: l}
		defer lw.Flush()
		out = lw
	}

	rep, runErr := Execute(ctx.Context, cfg, out, l)
	if rep == nil {
		return runErr
	}
	if out != nil {
		_, _ = fmt.Fprintf(out, "\nSummary: %s\n", rep.Summary)
	}

	if cfg.Report != "" {
		if err := jsonutil.WriteJSON(cfg.Report, rep, OutFilePerm); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}
	if cfg.History != "" {
		if err := recordRun(cfg.History, rep); err != nil {
			return err
		}
	}
	if runErr != nil {
		return runErr
	}
	if n := rep.Summary.Strict(); n > 0 {
		return fmt.Errorf("%w: %d of %d trials", ErrStrictFailures, n, rep.Summary.Passed+rep.Summary.Failed+rep.Summary.Aborted+rep.Summary.Observational)
	}
	return nil
}

func recordRun(path string, rep *Report) error {
	raw, err := json.Marshal(rep.Runs)
	if err != nil {
		return fmt.Errorf("failed to encode runs: %w", err)
	}
	store, err := history.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer store.Close()
	if _, err := store.Put(&history.Record{
		Backing: rep.Backing,
		Summary: rep.Summary,
		Runs:    len(rep.Runs),
		Report:  raw,
	}); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

var RunCommand = &cli.Command{
	Name:        "run",
	Usage:       "Run every load/store primitive against poisoned arenas",
	Description: "Run the store and load verifiers over the primitive catalogue, once per arena offset",
	Action:      Run,
	Flags: []cli.Flag{
		ConfigFlag,
		BackingFlag,
		BackingBaseFlag,
		BackingSizeFlag,
		HeapSizeFlag,
		ArenaOffsetFlag,
		MaxStepsFlag,
		OnlyFlag,
		ReportFlag,
		HistoryFlag,
		ConsoleFlag,
		LogLevelFlag,
		cannon.RunPProfCPU,
	},
}
