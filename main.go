package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/goto/lineage/cli"
	"github.com/goto/lineage/core/graph"
)

const (
	exitOK    = 0
	exitError = 1
)

func main() {
	cliConfig, err := cli.LoadConfig()
	if err != nil {
		fmt.Println(err)
	}
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cmd, err := cli.New(cliConfig).ExecuteContextC(ctx); err != nil {
		printError(err)

		cmdErr := strings.HasPrefix(err.Error(), "unknown command")
		flagErr := strings.HasPrefix(err.Error(), "unknown flag")
		sflagErr := strings.HasPrefix(err.Error(), "unknown shorthand flag")

		if cmdErr || flagErr || sflagErr {
			if !strings.HasSuffix(err.Error(), "\n") {
				fmt.Println()
			}
			fmt.Println(cmd.UsageString())
			os.Exit(exitOK)
		} else {
			os.Exit(exitError)
		}
	}
}

func printError(err error) {
	code := "Internal"
	switch {
	case errors.Is(err, graph.ErrInvalidArgument):
		code = "InvalidArgument"
	case errors.Is(err, graph.ErrNotFound):
		code = "NotFound"
	case errors.Is(err, graph.ErrCancelled):
		code = "Cancelled"
	case errors.Is(err, graph.ErrStoreUnavailable):
		code = "Unavailable"
	default:
		fmt.Fprintln(os.Stderr, err)
		return
	}

	fmt.Fprintln(os.Stderr, "Code: "+code, "Error: "+err.Error())
}
