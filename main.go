package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/glmapping/ldstcheck/cmd"
)

func main() {
	app := cli.NewApp()
	app.Name = "ldstcheck"
	app.Usage = "Load/store addressing-mode verification harness"
	app.Description = "Byte-exact verification of AArch64 load/store primitives against poisoned memory arenas"
	app.Commands = []*cli.Command{
		cmd.RunCommand,
		cmd.ListCommand,
		cmd.HistoryCommand,
	}
	ctx, cancel := context.WithCancel(context.Background())

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		for {
			<-c
			cancel()
			fmt.Println("\r\nExiting...")
		}
	}()

	err := app.RunContext(ctx, os.Args)
	if err != nil {
		if errors.Is(err, ctx.Err()) {
			_, _ = fmt.Fprintf(os.Stderr, "command interrupted")
			os.Exit(130)
		} else {
			_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}
}
