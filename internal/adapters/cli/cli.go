// Package cli is the command-line adapter: the HTTP server, the reminder worker
// and the operator commands all hang off one cobra root.
package cli

import (
	"context"
	"encoding/json"
	"io"

	"shellfish-ops/internal/app"
	"shellfish-ops/internal/config"
	"shellfish-ops/internal/logger"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// bootstrapFunc wires the runtime. Tests replace it.
type bootstrapFunc func(ctx context.Context, cfg *config.Config) (*app.Runtime, error)

type cli struct {
	cfg       *config.Config
	bootstrap bootstrapFunc
}

// NewRootCommand builds the command tree. Config is loaded and logging set up
// before any subcommand runs.
func NewRootCommand() *cobra.Command {
	c := &cli{bootstrap: app.Bootstrap}

	root := &cobra.Command{
		Use:           "shellfish-ops",
		Short:         "Order, invoice and reporting backend for a shellfish wholesaler",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger.Setup(cfg.LogLevel, cfg.LogFormat)
			c.cfg = cfg
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			if err := cmd.Help(); err != nil {
				log.Error().Err(err).Msg("failed to display help")
			}
		},
	}

	root.AddCommand(
		c.serveCommand(),
		c.workerCommand(),
		c.remindCommand(),
		c.createAdminCommand(),
		c.exportCommand(),
		c.agingCommand(),
		c.interpretCommand(),
		c.shellCommand(),
		c.migrateCommand(),
		c.seedCommand(),
	)
	return root
}

// Execute runs the root command with ctx and the process arguments.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// ExecuteCommand runs a single subcommand, prefixing name to the process
// arguments. The single-purpose binaries under cmd/ use it.
func ExecuteCommand(ctx context.Context, name string, args []string) error {
	root := NewRootCommand()
	root.SetArgs(append([]string{name}, args...))
	return root.ExecuteContext(ctx)
}

// runtime wires the services for a command and returns a cleanup func.
func (c *cli) runtime(ctx context.Context) (*app.Runtime, error) {
	return c.bootstrap(ctx, c.cfg)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
