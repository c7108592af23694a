package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	webAdapter "shellfish-ops/internal/adapters/web"
	"shellfish-ops/internal/app"
	"shellfish-ops/internal/reminder"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func (c *cli) serveCommand() *cobra.Command {
	var withReminders bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.cfg.RequireServer(); err != nil {
				return err
			}
			ctx := cmd.Context()
			rt, err := c.runtime(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error { return c.listen(ctx, rt) })
			if withReminders {
				g.Go(func() error { return c.scheduler(rt).Start(ctx) })
			}
			return g.Wait()
		},
	}
	cmd.Flags().BoolVar(&withReminders, "reminders", true, "run the order reminder scheduler in-process")
	return cmd
}

// listen serves HTTP until ctx is cancelled, then drains in-flight requests.
func (c *cli) listen(ctx context.Context, rt *app.Runtime) error {
	handler := webAdapter.NewHandler(rt.App, c.cfg.AllowedOrigins, c.cfg.JWTSecret, c.cfg.JWTTTL)
	server := &http.Server{
		Addr:              ":" + c.cfg.ServerPort,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func (c *cli) scheduler(rt *app.Runtime) *reminder.Scheduler {
	runner := reminder.NewRunner(rt.Services.Customers, rt.Mailer, c.cfg.PortalBaseURL)
	return reminder.NewScheduler(runner, c.cfg.Location(), c.cfg.ReminderHour)
}
