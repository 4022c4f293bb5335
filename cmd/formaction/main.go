package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/goliatone/go-formaction/internal/command"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := command.New()
	if err := app.Command().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "formaction: %v\n", err)
		stop()
		os.Exit(1)
	}
}
