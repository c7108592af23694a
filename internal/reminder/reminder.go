// Package reminder emails customers a link to the order portal on their chosen weekday.
package reminder

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"shellfish-ops/internal/core"
	"shellfish-ops/internal/mail"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
)

// RecipientLister finds the customers due a reminder on a weekday ("Monday").
type RecipientLister interface {
	ListReminderRecipients(ctx context.Context, weekday string) ([]core.Customer, error)
}

// Sender delivers one reminder email.
type Sender interface {
	SendReminder(ctx context.Context, msg mail.ReminderMessage) error
}

// Result summarises one reminder run.
type Result struct {
	Weekday string
	Sent    int
	Failed  int
	Skipped int
}

// Runner sends the reminders for a given day.
type Runner struct {
	customers  RecipientLister
	sender     Sender
	portalBase string
}

func NewRunner(customers RecipientLister, sender Sender, portalBaseURL string) *Runner {
	return &Runner{customers: customers, sender: sender, portalBase: strings.TrimRight(portalBaseURL, "/")}
}

// PortalURL is the customer's personal ordering link.
func (r *Runner) PortalURL(slug string) string {
	return r.portalBase + "/order/" + url.PathEscape(slug)
}

// Run emails every customer whose reminder day is now's weekday. A failure
// for one customer is logged and does not stop the others.
func (r *Runner) Run(ctx context.Context, now time.Time) (Result, error) {
	res := Result{Weekday: now.Weekday().String()}
	customers, err := r.customers.ListReminderRecipients(ctx, res.Weekday)
	if err != nil {
		return res, fmt.Errorf("failed to list reminder recipients: %w", err)
	}

	for _, c := range customers {
		to := strings.TrimSpace(c.ContactEmail)
		if to == "" {
			to = strings.TrimSpace(c.AccountingEmail)
		}
		if to == "" {
			log.Warn().Int("customer_id", c.ID).Str("customer", c.BusinessName).Msg("reminder skipped: no email")
			res.Skipped++
			continue
		}

		err := r.sender.SendReminder(ctx, mail.ReminderMessage{
			To:           []string{to},
			CustomerName: c.BusinessName,
			PortalURL:    r.PortalURL(c.Slug),
		})
		if err != nil {
			log.Error().Err(err).Int("customer_id", c.ID).Str("customer", c.BusinessName).Msg("reminder failed")
			res.Failed++
			continue
		}
		log.Info().Int("customer_id", c.ID).Str("to", to).Msg("reminder sent")
		res.Sent++
	}
	return res, nil
}

// Scheduler runs the Runner once a day at a fixed local time.
type Scheduler struct {
	runner *Runner
	loc    *time.Location
	hour   uint
	now    func() time.Time
}

// NewScheduler schedules runner daily at hour:00 in loc.
func NewScheduler(runner *Runner, loc *time.Location, hour uint) *Scheduler {
	return &Scheduler{runner: runner, loc: loc, hour: hour, now: time.Now}
}

// Start blocks until ctx is cancelled, running the reminder job every day.
func (s *Scheduler) Start(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler(gocron.WithLocation(s.loc))
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(s.hour, 0, 0))),
		gocron.NewTask(func() {
			res, err := s.runner.Run(ctx, s.now().In(s.loc))
			if err != nil {
				log.Error().Err(err).Msg("reminder run failed")
				return
			}
			log.Info().
				Str("weekday", res.Weekday).
				Int("sent", res.Sent).
				Int("failed", res.Failed).
				Int("skipped", res.Skipped).
				Msg("reminder run complete")
		}),
		gocron.WithName("order-reminders"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule reminders: %w", err)
	}

	log.Info().Uint("hour", s.hour).Str("timezone", s.loc.String()).Msg("reminder scheduler started")
	scheduler.Start()

	<-ctx.Done()
	return scheduler.Shutdown()
}
