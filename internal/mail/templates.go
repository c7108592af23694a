package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"shellfish-ops/internal/core"
	"shellfish-ops/internal/render"

	"github.com/shopspring/decimal"
)

var templates = template.Must(template.New("mail").Funcs(template.FuncMap{
	"money":    render.Money,
	"longDate": render.LongDate,
}).Parse(`
{{define "layout-head"}}<!DOCTYPE html>
<html>
<head>
<style>
  body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
  .container { max-width: 600px; margin: 0 auto; padding: 20px; }
  .header { background-color: #2c5d63; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0; }
  .content { background-color: #f8f9fa; padding: 20px; border-radius: 0 0 8px 8px; }
  .details { background-color: white; padding: 15px; border-radius: 8px; margin: 15px 0; }
  .row { display: flex; justify-content: space-between; padding: 8px 0; border-bottom: 1px solid #eee; }
  .row:last-child { border-bottom: none; font-weight: bold; }
  .footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
</style>
</head>
<body>
<div class="container">{{end}}

{{define "layout-foot"}}
  <div class="footer">
    <p>{{.Company.Name}}<br>
    {{.Company.Address}}<br>
    {{.Company.Phone}} &bull; {{.Company.Website}}</p>
  </div>
</div>
</body>
</html>{{end}}

{{define "invoice"}}{{template "layout-head" .}}
  <div class="header">
    <h1 style="margin: 0;">OYSTERPONDS SHELLFISH CO.</h1>
    <p style="margin: 5px 0 0 0; opacity: 0.9;">Invoice Notification</p>
  </div>
  <div class="content">
    <p>Hello,</p>
    <p>Please find attached your invoice from {{.Company.Name}}</p>
    <div class="details">
      <div class="row"><span>Invoice Number:</span><span>{{.InvoiceNumber}}</span></div>
      <div class="row"><span>Customer:</span><span>{{.CustomerName}}</span></div>
      <div class="row"><span>Shipping Date:</span><span>{{longDate .ShippingDate}}</span></div>
      <div class="row"><span>Total Amount:</span><span>{{money .Total}}</span></div>
    </div>
    <p>Please remit payment to:</p>
    <p style="padding-left: 20px;">
      <strong>{{.Company.Remittance.PayableTo}}</strong><br>
      {{.Company.Remittance.MailingAddress}}
    </p>
    {{with .Company.Remittance.ACHInquiries}}<p style="margin-top: 20px;">For ACH payment inquiries, please contact:<br>
    <a href="mailto:{{.}}">{{.}}</a></p>{{end}}
  </div>
{{template "layout-foot" .}}{{end}}

{{define "reminder"}}{{template "layout-head" .}}
  <div class="header">
    <h1 style="margin: 0;">OYSTERPONDS SHELLFISH CO.</h1>
    <p style="margin: 5px 0 0 0; opacity: 0.9;">Order Reminder</p>
  </div>
  <div class="content">
    <p>Hello {{.CustomerName}},</p>
    <p>This is your weekly reminder to place your oyster order.</p>
    <p><a href="{{.PortalURL}}">Place your order online</a></p>
    <p>Thank you for your business.</p>
  </div>
{{template "layout-foot" .}}{{end}}
`))

type invoiceView struct {
	Company       core.CompanyInfo
	InvoiceNumber string
	CustomerName  string
	ShippingDate  time.Time
	Total         decimal.Decimal
}

// RenderInvoiceBody renders the HTML body of an invoice email.
func RenderInvoiceBody(company core.CompanyInfo, msg core.InvoiceEmail) (string, error) {
	var buf bytes.Buffer
	err := templates.ExecuteTemplate(&buf, "invoice", invoiceView{
		Company:       company,
		InvoiceNumber: msg.InvoiceNumber,
		CustomerName:  msg.CustomerName,
		ShippingDate:  msg.ShippingDate.Time,
		Total:         msg.Total,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render invoice email: %w", err)
	}
	return buf.String(), nil
}

type reminderView struct {
	Company      core.CompanyInfo
	CustomerName string
	PortalURL    string
}

// RenderReminderBody renders the HTML body of an order reminder email.
func RenderReminderBody(company core.CompanyInfo, msg ReminderMessage) (string, error) {
	var buf bytes.Buffer
	err := templates.ExecuteTemplate(&buf, "reminder", reminderView{
		Company:      company,
		CustomerName: msg.CustomerName,
		PortalURL:    msg.PortalURL,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render reminder email: %w", err)
	}
	return buf.String(), nil
}
