package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// ── Report types ──────────────────────────────────────────────────────────────

// CountTotal is an invoice count with its summed total.
type CountTotal struct {
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

func (c *CountTotal) add(amount decimal.Decimal) {
	c.Count++
	c.Total = c.Total.Add(amount)
}

// MonthTotal is one month of the sales breakdown. Month is the short name ("Jan").
type MonthTotal struct {
	Month string          `json:"month"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// SalesSummary sums invoice totals over rolling windows ending now.
// Daily, weekly and monthly windows are only meaningful for the current year.
type SalesSummary struct {
	Year             int             `json:"year"`
	Daily            decimal.Decimal `json:"daily"`
	Weekly           decimal.Decimal `json:"weekly"`
	Monthly          decimal.Decimal `json:"monthly"`
	Yearly           decimal.Decimal `json:"yearly"`
	MonthlyBreakdown []MonthTotal    `json:"monthly_breakdown"`
	TotalInvoices    int             `json:"total_invoices"`
}

type InvoiceSummary struct {
	Year          int             `json:"year"`
	Draft         CountTotal      `json:"draft"`
	Sent          CountTotal      `json:"sent"`
	Paid          CountTotal      `json:"paid"`
	ARTotal       decimal.Decimal `json:"ar_total"`
	TotalInvoices int             `json:"total_invoices"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
}

type CustomerStat struct {
	CustomerID  int             `json:"customer_id"`
	Name        string          `json:"name"`
	Count       int             `json:"count"`
	Total       decimal.Decimal `json:"total"`
	Paid        decimal.Decimal `json:"paid"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

type CustomerAnalytics struct {
	Year           int            `json:"year"`
	Customers      []CustomerStat `json:"customers"`
	TotalCustomers int            `json:"total_customers"`
}

type ProductStat struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

type ProductAnalytics struct {
	Year          int             `json:"year"`
	Products      []ProductStat   `json:"products"`
	TotalQuantity int             `json:"total_quantity"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
}

// AgingInvoice is one outstanding invoice in the A/R aging report.
type AgingInvoice struct {
	InvoiceNumber   string          `json:"invoice_number"`
	CustomerName    string          `json:"customer_name"`
	Total           decimal.Decimal `json:"total"`
	Date            time.Time       `json:"date"`
	DaysOutstanding int             `json:"days_outstanding"`
}

type AgingGroup struct {
	Count    int             `json:"count"`
	Total    decimal.Decimal `json:"total"`
	Invoices []AgingInvoice  `json:"invoices"`
}

// ARAging groups sent invoices by age. Aging always carries all five bucket keys.
type ARAging struct {
	Aging            map[string]*AgingGroup `json:"aging"`
	TotalOutstanding decimal.Decimal        `json:"total_outstanding"`
	TotalInvoices    int                    `json:"total_invoices"`
}

func newARAging() *ARAging {
	r := &ARAging{Aging: make(map[string]*AgingGroup, len(AgingBuckets))}
	for _, b := range AgingBuckets {
		r.Aging[b] = &AgingGroup{Invoices: []AgingInvoice{}}
	}
	return r
}

type Dashboard struct {
	TotalCustomers   int                          `json:"total_customers"`
	TotalOrders      int                          `json:"total_orders"`
	TotalInvoices    int                          `json:"total_invoices"`
	YearlyRevenue    decimal.Decimal              `json:"yearly_revenue"`
	PaidTotal        decimal.Decimal              `json:"paid_total"`
	OutstandingTotal decimal.Decimal              `json:"outstanding_total"`
	InvoicesByStatus map[InvoiceStatus]CountTotal `json:"invoices_by_status"`
}

// ExportInvoice is one invoice row of the yearly billing and receipts workbook.
type ExportInvoice struct {
	InvoiceNumber string
	CustomerName  string
	Date          time.Time // shipping date, or creation date when unset
	Quantity      int
	Total         decimal.Decimal
	Paid          bool
	PaidAt        *time.Time
	CheckNumber   string
}

// Remittance tells customers where to send payment.
type Remittance struct {
	PayableTo      string `json:"payable_to"`
	MailingAddress string `json:"mailing_address"`
	ACHInquiries   string `json:"ach_inquiries"`
}

// CompanyInfo is the static identity printed on documents and shown to staff.
type CompanyInfo struct {
	Name                 string     `json:"name"`
	Address              string     `json:"address"`
	Phone                string     `json:"phone"`
	Website              string     `json:"website"`
	ShipperCertification string     `json:"shipper_certification"`
	Remittance           Remittance `json:"remittance"`
	InternalEmail        string     `json:"internal_email"`
	Drivers              []string   `json:"drivers"`
}

// Company returns the business identity. shipperCert and internalEmail come from configuration.
func Company(shipperCert, internalEmail string) CompanyInfo {
	return CompanyInfo{
		Name:                 CompanyName,
		Address:              CompanyAddress,
		Phone:                "631.721.7117",
		Website:              "www.oysterpondsshellfish.com",
		ShipperCertification: shipperCert,
		Remittance: Remittance{
			PayableTo:      CompanyName,
			MailingAddress: CompanyAddress,
			ACHInquiries:   internalEmail,
		},
		InternalEmail: internalEmail,
		Drivers:       []string{"Phil", "Brian", "Remi"},
	}
}

const (
	CompanyName    = "Oysterponds Shellfish Co."
	CompanyAddress = "PO Box 513, Orient, NY 11957"
)
