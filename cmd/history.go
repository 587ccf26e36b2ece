package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/glmapping/ldstcheck/history"
)

func History(ctx *cli.Context) error {
	path := ctx.Path(HistoryFlag.Name)
	if path == "" {
		return errors.New("--history is required")
	}
	store, err := history.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer store.Close()

	recs, err := store.Last(ctx.Int(LastFlag.Name))
	if err != nil {
		return err
	}
	w := ctx.App.Writer
	for _, r := range recs {
		if _, err := fmt.Fprintf(w, "%6d  %s  %-6s runs=%d  %s\n",
			r.Seq, r.Time.Format(time.RFC3339), r.Backing, r.Runs, r.Summary); err != nil {
			return err
		}
	}
	return nil
}

var HistoryCommand = &cli.Command{
	Name:        "history",
	Usage:       "Show recorded runs",
	Description: "List the most recent runs recorded with run --history, newest first",
	Action:      History,
	Flags: []cli.Flag{
		HistoryFlag,
		LastFlag,
	},
}
