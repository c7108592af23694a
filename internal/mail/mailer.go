// Package mail delivers invoices and order reminders over SMTP.
package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"shellfish-ops/internal/config"
	"shellfish-ops/internal/core"

	gomail "github.com/wneessen/go-mail"
)

// ErrNotConfigured is returned when SMTP credentials are missing.
var ErrNotConfigured = errors.New("email service not configured: SMTP_USER and SMTP_PASS are required")

// ReminderMessage asks a customer to place their weekly order.
type ReminderMessage struct {
	To           []string
	CustomerName string
	PortalURL    string
}

// Sender delivers a composed message. *gomail.Client satisfies it.
type Sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*gomail.Msg) error
}

// Mailer composes invoice and reminder emails and hands them to a Sender.
type Mailer struct {
	cfg     config.SMTPConfig
	company core.CompanyInfo
	sender  Sender
}

// New returns a Mailer for cfg. When SMTP credentials are absent the Mailer
// is still usable but every send fails with ErrNotConfigured.
func New(cfg config.SMTPConfig, company core.CompanyInfo) (*Mailer, error) {
	m := &Mailer{cfg: cfg, company: company}
	if !cfg.Configured() {
		return m, nil
	}

	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.User),
		gomail.WithPassword(cfg.Pass),
	}
	if cfg.Secure {
		opts = append(opts, gomail.WithSSL())
	} else {
		opts = append(opts, gomail.WithTLSPortPolicy(gomail.TLSOpportunistic))
	}
	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}
	m.sender = client
	return m, nil
}

// NewWithSender returns a Mailer that delivers through sender.
func NewWithSender(cfg config.SMTPConfig, company core.CompanyInfo, sender Sender) *Mailer {
	return &Mailer{cfg: cfg, company: company, sender: sender}
}

// InvoiceSubject is the subject line of an invoice email.
func InvoiceSubject(invoiceNumber, customerName string) string {
	return fmt.Sprintf("Invoice %s - %s - %s", invoiceNumber, customerName, core.CompanyName)
}

// SendInvoice emails an invoice with its PDF attachments.
func (m *Mailer) SendInvoice(ctx context.Context, msg core.InvoiceEmail) error {
	body, err := RenderInvoiceBody(m.company, msg)
	if err != nil {
		return err
	}
	out, err := m.compose(msg.To, InvoiceSubject(msg.InvoiceNumber, msg.CustomerName), body)
	if err != nil {
		return err
	}
	for _, a := range msg.Attachments {
		ct := a.ContentType
		if ct == "" {
			ct = "application/pdf"
		}
		if err := out.AttachReader(a.Filename, bytes.NewReader(a.Content), gomail.WithFileContentType(gomail.ContentType(ct))); err != nil {
			return fmt.Errorf("failed to attach %s: %w", a.Filename, err)
		}
	}
	return m.send(ctx, out)
}

// SendReminder emails a customer a link to the order portal.
func (m *Mailer) SendReminder(ctx context.Context, msg ReminderMessage) error {
	body, err := RenderReminderBody(m.company, msg)
	if err != nil {
		return err
	}
	out, err := m.compose(msg.To, "Order Reminder - "+core.CompanyName, body)
	if err != nil {
		return err
	}
	return m.send(ctx, out)
}

func (m *Mailer) compose(to []string, subject, html string) (*gomail.Msg, error) {
	if m.sender == nil {
		return nil, ErrNotConfigured
	}
	if len(to) == 0 {
		return nil, fmt.Errorf("no recipients")
	}
	out := gomail.NewMsg()
	if err := out.FromFormat(core.CompanyName, m.cfg.User); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := out.To(to...); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	out.Subject(subject)
	out.SetBodyString(gomail.TypeTextHTML, html)
	return out, nil
}

func (m *Mailer) send(ctx context.Context, out *gomail.Msg) error {
	if err := m.sender.DialAndSendWithContext(ctx, out); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
