package cli

import (
	"fmt"
	"strings"
	"time"

	"shellfish-ops/internal/reminder"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func (c *cli) workerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the daily order reminder scheduler",
		Long: `Run the background worker. Every day at REMINDER_HOUR (local TIMEZONE) it emails
each active customer whose reminder day is today a link to their order portal.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.runtime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := c.scheduler(rt).Start(cmd.Context()); err != nil {
				return err
			}
			log.Info().Msg("worker shutting down gracefully")
			return nil
		},
	}
}

func (c *cli) remindCommand() *cobra.Command {
	var weekday string
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Send today's order reminders once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now().In(c.cfg.Location())
			if weekday != "" {
				day, err := parseWeekday(weekday)
				if err != nil {
					return err
				}
				// Shift to the next occurrence of the requested day.
				now = now.AddDate(0, 0, (int(day)-int(now.Weekday())+7)%7)
			}

			rt, err := c.runtime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			runner := reminder.NewRunner(rt.Services.Customers, rt.Mailer, c.cfg.PortalBaseURL)
			res, err := runner.Run(cmd.Context(), now)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: sent %d, failed %d, skipped %d\n",
				res.Weekday, res.Sent, res.Failed, res.Skipped)
			return err
		},
	}
	cmd.Flags().StringVar(&weekday, "day", "", "send the reminders for this weekday instead of today (e.g. Monday)")
	return cmd
}

// parseWeekday accepts a full or abbreviated (three letters or more) day name.
func parseWeekday(s string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := d.String()
		if len(s) >= 3 && len(s) <= len(name) && strings.EqualFold(name[:len(s)], s) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}
