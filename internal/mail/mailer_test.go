package mail_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"shellfish-ops/internal/config"
	"shellfish-ops/internal/core"
	"shellfish-ops/internal/mail"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomail "github.com/wneessen/go-mail"
)

type captureSender struct {
	sent []*gomail.Msg
	err  error
}

func (c *captureSender) DialAndSendWithContext(_ context.Context, msgs ...*gomail.Msg) error {
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, msgs...)
	return nil
}

var (
	smtpCfg = config.SMTPConfig{Host: "smtp.example.com", Port: 587, User: "billing@oysterpondsshellfish.com", Pass: "secret"}
	company = core.Company("NY27496SS", "holly@oysterpondsshellfish.com")
)

func sampleEmail() core.InvoiceEmail {
	return core.InvoiceEmail{
		To:            []string{"ap@oysterbar.example", "holly@oysterpondsshellfish.com"},
		InvoiceNumber: "INV-16001",
		CustomerName:  "Oyster Bar NYC",
		Total:         decimal.RequireFromString("115"),
		ShippingDate:  core.NewDate(time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)),
		Attachments: []core.Attachment{
			{Filename: "INV-16001.pdf", ContentType: "application/pdf", Content: []byte("%PDF-1.3")},
			{Filename: "INV-16001-ShippingTag.pdf", Content: []byte("%PDF-1.3")},
		},
	}
}

func TestInvoiceSubject(t *testing.T) {
	assert.Equal(t, "Invoice INV-16001 - Oyster Bar NYC - Oysterponds Shellfish Co.",
		mail.InvoiceSubject("INV-16001", "Oyster Bar NYC"))
}

func TestRenderInvoiceBody(t *testing.T) {
	body, err := mail.RenderInvoiceBody(company, sampleEmail())
	require.NoError(t, err)

	assert.Contains(t, body, "Invoice Notification")
	assert.Contains(t, body, "INV-16001")
	assert.Contains(t, body, "Tuesday, June 10, 2025")
	assert.Contains(t, body, "$115.00")
	assert.Contains(t, body, "PO Box 513, Orient, NY 11957")
	assert.Contains(t, body, "mailto:holly@oysterpondsshellfish.com")
	assert.Contains(t, body, "631.721.7117")
}

func TestRenderInvoiceBody_EscapesCustomerName(t *testing.T) {
	msg := sampleEmail()
	msg.CustomerName = "<script>alert(1)</script>"

	body, err := mail.RenderInvoiceBody(company, msg)
	require.NoError(t, err)
	assert.NotContains(t, body, "<script>")
}

func TestMailer_SendInvoice(t *testing.T) {
	sender := &captureSender{}
	m := mail.NewWithSender(smtpCfg, company, sender)

	require.NoError(t, m.SendInvoice(context.Background(), sampleEmail()))
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	to := msg.GetToString()
	assert.Equal(t, []string{"<ap@oysterbar.example>", "<holly@oysterpondsshellfish.com>"}, to)
	assert.Equal(t, []string{"Invoice INV-16001 - Oyster Bar NYC - Oysterponds Shellfish Co."},
		msg.GetGenHeader(gomail.HeaderSubject))

	from := msg.GetFrom()
	require.Len(t, from, 1)
	assert.Equal(t, "Oysterponds Shellfish Co.", from[0].Name)
	assert.Equal(t, "billing@oysterpondsshellfish.com", from[0].Address)

	var names []string
	for _, f := range msg.GetAttachments() {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"INV-16001.pdf", "INV-16001-ShippingTag.pdf"}, names)
}

func TestMailer_SendReminder(t *testing.T) {
	sender := &captureSender{}
	m := mail.NewWithSender(smtpCfg, company, sender)

	err := m.SendReminder(context.Background(), mail.ReminderMessage{
		To:           []string{"chef@oysterbar.example"},
		CustomerName: "Oyster Bar NYC",
		PortalURL:    "https://order.example/oyster-bar-nyc",
	})
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
}

func TestMailer_NotConfigured(t *testing.T) {
	m, err := mail.New(config.SMTPConfig{Host: "smtp.example.com", Port: 587}, company)
	require.NoError(t, err)

	err = m.SendInvoice(context.Background(), sampleEmail())
	assert.ErrorIs(t, err, mail.ErrNotConfigured)
}

func TestMailer_TransportFailure(t *testing.T) {
	boom := errors.New("connection refused")
	m := mail.NewWithSender(smtpCfg, company, &captureSender{err: boom})

	err := m.SendInvoice(context.Background(), sampleEmail())
	assert.ErrorIs(t, err, boom)
}

func TestMailer_NoRecipients(t *testing.T) {
	m := mail.NewWithSender(smtpCfg, company, &captureSender{})
	msg := sampleEmail()
	msg.To = nil

	assert.Error(t, m.SendInvoice(context.Background(), msg))
}
