package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/ethereum-optimism/optimism/op-service/testlog"

	"github.com/glmapping/ldstcheck/catalog"
	"github.com/glmapping/ldstcheck/history"
)

func newApp(out *bytes.Buffer) *cli.App {
	app := cli.NewApp()
	app.Name = "ldstcheck"
	app.Writer = out
	app.Commands = []*cli.Command{RunCommand, ListCommand, HistoryCommand}
	return app
}

func TestExecute(t *testing.T) {
	for _, backing := range []string{BackingPaged, BackingMapped} {
		t.Run(backing, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Backing = backing
			out := new(bytes.Buffer)
			rep, err := Execute(context.Background(), cfg, out, testlog.Logger(t, log.LevelInfo))
			require.NoError(t, err)
			require.Len(t, rep.Runs, 2)
			total := len(catalog.Stores()) + len(catalog.Loads())
			require.Equal(t, 2*total, rep.Summary.Passed)
			require.Zero(t, rep.Summary.Strict())
			require.Equal(t, uint64(512), rep.Runs[0].BackingOffset)
			require.Equal(t, cfg.BackingBase+256, rep.Runs[1].Arena)

			console := out.String()
			require.Equal(t, 1, strings.Count(console, "\n\nSecond run: \n"))
			require.Equal(t, 2, strings.Count(console, "64bit ldp (0xa9400c22)\n"))
			require.NotContains(t, console, "Data mismatch!")
		})
	}

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		rep, err := Execute(ctx, DefaultConfig(), nil, testlog.Logger(t, log.LevelInfo))
		require.ErrorIs(t, err, context.Canceled)
		require.Len(t, rep.Runs, 1)
		require.Empty(t, rep.Runs[0].Results)
	})

	t.Run("third run header", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.ArenaOffsets = []uint64{0, 256, 4096}
		cfg.Only = []string{"stp1"}
		out := new(bytes.Buffer)
		rep, err := Execute(context.Background(), cfg, out, testlog.Logger(t, log.LevelInfo))
		require.NoError(t, err)
		require.Equal(t, 3, rep.Summary.Passed)
		require.Contains(t, out.String(), "\n\nRun 3: \n")
	})
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	reportPath := filepath.Join(dir, "report.json")
	dbPath := filepath.Join(dir, "history.db")
	cfgPath := writeFile(t, "config.json", `{"backing": "mapped", "only": ["stur1", "ldur1", "stp4"]}`)

	out := new(bytes.Buffer)
	app := newApp(out)
	for i := 0; i < 2; i++ {
		err := app.RunContext(context.Background(), []string{"ldstcheck", "run",
			"--config", cfgPath, "--report", reportPath, "--history", dbPath, "--log.level", "warn"})
		require.NoError(t, err)
	}
	require.Contains(t, out.String(), "\nSummary: 6 passed, 0 failed, 0 aborted, 0 observational mismatches\n")

	raw, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var rep struct {
		Backing string `json:"backing"`
		Runs    []struct {
			Arena   uint64 `json:"arena"`
			Results []struct {
				Name string `json:"name"`
				Tag  string `json:"tag"`
				Mode string `json:"mode"`
			} `json:"results"`
		} `json:"runs"`
		Summary struct {
			Passed int `json:"passed"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(raw, &rep))
	require.Equal(t, BackingMapped, rep.Backing)
	require.Len(t, rep.Runs, 2)
	require.Equal(t, "stur1", rep.Runs[0].Results[0].Name)
	require.Equal(t, "0x3c8041a0", rep.Runs[0].Results[0].Tag)
	require.Equal(t, "load", rep.Runs[0].Results[2].Mode)
	require.Equal(t, 6, rep.Summary.Passed)

	store, err := history.Open(dbPath)
	require.NoError(t, err)
	recs, err := store.Last(0)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, 6, recs[0].Summary.Passed)
	require.Equal(t, 2, recs[0].Runs)
	require.NoError(t, store.Close())

	out.Reset()
	require.NoError(t, app.RunContext(context.Background(), []string{"ldstcheck", "history", "--history", dbPath, "--last", "1"}))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 1)
	require.Contains(t, lines[0], "     2  ")
	require.Contains(t, lines[0], "mapped runs=2  6 passed")
}

func TestRunCommandErrors(t *testing.T) {
	out := new(bytes.Buffer)
	app := newApp(out)
	err := app.RunContext(context.Background(), []string{"ldstcheck", "run", "--backing", "tmpfs"})
	require.ErrorIs(t, err, ErrInvalidBacking)

	err = app.RunContext(context.Background(), []string{"ldstcheck", "run", "--only", "nope", "--console", "none"})
	require.ErrorContains(t, err, "unknown primitives")

	err = app.RunContext(context.Background(), []string{"ldstcheck", "run", "--config", filepath.Join(t.TempDir(), "missing.json")})
	require.ErrorContains(t, err, "failed to load config")

	err = app.RunContext(context.Background(), []string{"ldstcheck", "history"})
	require.ErrorContains(t, err, "--history is required")
}

func TestListCommand(t *testing.T) {
	out := new(bytes.Buffer)
	require.NoError(t, newApp(out).RunContext(context.Background(), []string{"ldstcheck", "list"}))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, len(catalog.Stores())+len(catalog.Loads()))
	require.True(t, strings.HasPrefix(lines[0], "store strSIMD128unsignedImm  3d800040  16   +0  128bit SIMD/FP store (observational)"), lines[0])
	require.Contains(t, out.String(), "load  ldur2                  3cc0c0e0  16  +12  128bit SIMD ldur\n")
}
