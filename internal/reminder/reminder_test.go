package reminder_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"shellfish-ops/internal/core"
	"shellfish-ops/internal/mail"
	"shellfish-ops/internal/reminder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockLister struct{ mock.Mock }

func (m *mockLister) ListReminderRecipients(ctx context.Context, weekday string) ([]core.Customer, error) {
	args := m.Called(ctx, weekday)
	customers, _ := args.Get(0).([]core.Customer)
	return customers, args.Error(1)
}

type mockSender struct{ mock.Mock }

func (m *mockSender) SendReminder(ctx context.Context, msg mail.ReminderMessage) error {
	return m.Called(ctx, msg).Error(0)
}

func TestRunner_Run(t *testing.T) {
	ctx := context.Background()
	monday := time.Date(2025, 6, 9, 7, 0, 0, 0, time.UTC)

	lister := &mockLister{}
	lister.On("ListReminderRecipients", ctx, "Monday").Return([]core.Customer{
		{ID: 1, BusinessName: "Alpha Oyster Bar", Slug: "alpha-oyster-bar", ContactEmail: "chef@alpha.example"},
		{ID: 2, BusinessName: "Bravo Fish Market", Slug: "bravo-fish-market", AccountingEmail: "ap@bravo.example"},
		{ID: 3, BusinessName: "No Email Inc", Slug: "no-email-inc"},
		{ID: 4, BusinessName: "Broken Mailbox", Slug: "broken-mailbox", ContactEmail: "x@broken.example"},
	}, nil)

	sender := &mockSender{}
	sender.On("SendReminder", ctx, mail.ReminderMessage{
		To: []string{"chef@alpha.example"}, CustomerName: "Alpha Oyster Bar",
		PortalURL: "https://order.example.com/order/alpha-oyster-bar",
	}).Return(nil)
	sender.On("SendReminder", ctx, mail.ReminderMessage{
		To: []string{"ap@bravo.example"}, CustomerName: "Bravo Fish Market",
		PortalURL: "https://order.example.com/order/bravo-fish-market",
	}).Return(nil)
	sender.On("SendReminder", ctx, mock.MatchedBy(func(m mail.ReminderMessage) bool {
		return m.CustomerName == "Broken Mailbox"
	})).Return(errors.New("mailbox unavailable"))

	r := reminder.NewRunner(lister, sender, "https://order.example.com/")
	res, err := r.Run(ctx, monday)
	require.NoError(t, err)

	assert.Equal(t, reminder.Result{Weekday: "Monday", Sent: 2, Failed: 1, Skipped: 1}, res)
	lister.AssertExpectations(t)
	sender.AssertExpectations(t)
}

func TestRunner_ListFailure(t *testing.T) {
	ctx := context.Background()
	lister := &mockLister{}
	lister.On("ListReminderRecipients", ctx, "Tuesday").Return(nil, errors.New("db down"))

	r := reminder.NewRunner(lister, &mockSender{}, "https://order.example.com")
	_, err := r.Run(ctx, time.Date(2025, 6, 10, 7, 0, 0, 0, time.UTC))
	assert.Error(t, err)
}

func TestRunner_PortalURL(t *testing.T) {
	r := reminder.NewRunner(nil, nil, "https://order.example.com")
	assert.Equal(t, "https://order.example.com/order/oyster-bar-nyc", r.PortalURL("oyster-bar-nyc"))
}
