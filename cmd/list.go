package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/glmapping/ldstcheck/catalog"
)

func List(ctx *cli.Context) error {
	stores, loads, err := catalog.Select(ctx.StringSlice(OnlyFlag.Name))
	if err != nil {
		return err
	}
	w := ctx.App.Writer
	for _, e := range append(stores, loads...) {
		flags := ""
		if e.Observational {
			flags = " (observational)"
		}
		if _, err := fmt.Fprintf(w, "%-5s %-22s %08x %3d %+4d  %s%s\n",
			e.Mode, e.Name, e.Tag, e.Size, e.Fixed, e.Desc, flags); err != nil {
			return err
		}
	}
	return nil
}

var ListCommand = &cli.Command{
	Name:        "list",
	Usage:       "List the primitive catalogue",
	Description: "List every primitive with its mode, encoding under test, size and fixed offset",
	Action:      List,
	Flags: []cli.Flag{
		OnlyFlag,
	},
}
