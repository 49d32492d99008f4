package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/erraggy/oasguard/cmd/oasguard/commands"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the command line and returns the process exit code:
// 0 on success, 1 when a validated message was rejected, 2 on any other error.
func run(args []string) int {
	env, err := commands.LoadEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := commands.NewRootCommand(&commands.App{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Env:    env,
	})
	root.SetArgs(args)

	switch err := root.ExecuteContext(ctx); {
	case err == nil:
		return 0
	case errors.Is(err, commands.ErrInvalid):
		return 1
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
}
