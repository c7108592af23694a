// Command verify-db applies pending migrations from ./migrations.
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

	if err := cli.ExecuteCommand(ctx, "migrate", os.Args[1:]); err != nil {
		stop()
		log.Fatal().Err(err).Msg("migrate failed")
	}
}
