// Command server runs the HTTP API and the reminder scheduler.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"shellfish-ops/internal/adapters/cli"

	"github.com/rs/zerolog/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.ExecuteCommand(ctx, "serve", os.Args[1:]); err != nil {
		stop()
		log.Fatal().Err(err).Msg("serve failed")
	}
}
