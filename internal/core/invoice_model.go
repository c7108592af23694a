package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is the billing state of an invoice: draft → sent → paid.
type InvoiceStatus string

const (
	InvoiceStatusDraft InvoiceStatus = "draft"
	InvoiceStatusSent  InvoiceStatus = "sent"
	InvoiceStatusPaid  InvoiceStatus = "paid"
)

// invoiceTransitions lists the allowed moves out of each status. draft → paid
// covers payments recorded before the invoice was emailed; sent → draft undoes
// a send recorded by mistake.
var invoiceTransitions = map[InvoiceStatus][]InvoiceStatus{
	InvoiceStatusDraft: {InvoiceStatusSent, InvoiceStatusPaid},
	InvoiceStatusSent:  {InvoiceStatusDraft, InvoiceStatusPaid},
	InvoiceStatusPaid:  nil,
}

func (s InvoiceStatus) Valid() bool {
	_, ok := invoiceTransitions[s]
	return ok
}

// CanTransitionTo reports whether from → to is allowed. Staying in place is allowed.
func (s InvoiceStatus) CanTransitionTo(to InvoiceStatus) bool {
	if s == to {
		return true
	}
	for _, next := range invoiceTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// BillTo is the customer's billing identity frozen at invoice creation.
type BillTo struct {
	BusinessName string  `json:"business_name"`
	Attention    string  `json:"attention"`
	Address      Address `json:"address"`
}

// Invoice bills one order. Items and totals are a snapshot of the order when
// the invoice was created; later order edits do not reach it.
type Invoice struct {
	ID                   int             `json:"id"`
	InvoiceNumber        string          `json:"invoice_number"`
	OrderID              int             `json:"order_id"`
	OrderNumber          string          `json:"order_number"`
	CustomerID           int             `json:"customer_id"`
	CustomerName         string          `json:"customer_name"`
	BillTo               BillTo          `json:"bill_to"`
	ShippingDate         Date            `json:"shipping_date"`
	HarvestDate          Date            `json:"harvest_date"`
	HarvestTime          string          `json:"harvest_time"`
	HarvestLocation      string          `json:"harvest_location"`
	ShipperCertification string          `json:"shipper_certification"`
	DepartureTemperature string          `json:"departure_temperature"`
	TimeOnTruck          string          `json:"time_on_truck"`
	DeliveredBy          string          `json:"delivered_by"`
	Items                []OrderItem     `json:"items"`
	Subtotal             decimal.Decimal `json:"subtotal"`
	Tax                  decimal.Decimal `json:"tax"`
	Total                decimal.Decimal `json:"total"`
	Status               InvoiceStatus   `json:"status"`
	EmailSentAt          *time.Time      `json:"email_sent_at,omitempty"`
	EmailSentTo          []string        `json:"email_sent_to"`
	PaidAt               *time.Time      `json:"paid_at,omitempty"`
	CheckNumber          string          `json:"check_number"`
	CheckDate            *Date           `json:"check_date,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// PDFFilename is the attachment name of the rendered invoice.
func (inv *Invoice) PDFFilename() string {
	return inv.InvoiceNumber + ".pdf"
}

// ShippingTagFilename is the attachment name of the rendered shipping tag.
func (inv *Invoice) ShippingTagFilename() string {
	return inv.InvoiceNumber + "-ShippingTag.pdf"
}

// OrderRef points at an order by id on write paths.
type OrderRef struct {
	ID int `json:"id" validate:"required,gt=0"`
}

// CreateInvoiceInput carries the compliance fields captured when billing an order.
// Nil dates and locations fall back to the order's values.
type CreateInvoiceInput struct {
	Order                OrderRef `json:"order" validate:"required"`
	ShippingDate         *Date    `json:"shipping_date"`
	HarvestDate          *Date    `json:"harvest_date"`
	HarvestTime          string   `json:"harvest_time" validate:"max=20"`
	HarvestLocation      *string  `json:"harvest_location" validate:"omitempty,max=40"`
	ShipperCertification *string  `json:"shipper_certification" validate:"omitempty,max=40"`
	DepartureTemperature string   `json:"departure_temperature" validate:"max=20"`
	TimeOnTruck          string   `json:"time_on_truck" validate:"max=20"`
	DeliveredBy          string   `json:"delivered_by" validate:"max=60"`
}

// UpdateInvoiceInput is the allow-list of fields editable after creation.
// Items and money fields are deliberately absent.
type UpdateInvoiceInput struct {
	ShippingDate         *Date          `json:"shipping_date"`
	HarvestDate          *Date          `json:"harvest_date"`
	HarvestTime          *string        `json:"harvest_time" validate:"omitempty,max=20"`
	HarvestLocation      *string        `json:"harvest_location" validate:"omitempty,max=40"`
	ShipperCertification *string        `json:"shipper_certification" validate:"omitempty,max=40"`
	DepartureTemperature *string        `json:"departure_temperature" validate:"omitempty,max=20"`
	TimeOnTruck          *string        `json:"time_on_truck" validate:"omitempty,max=20"`
	DeliveredBy          *string        `json:"delivered_by" validate:"omitempty,max=60"`
	Status               *InvoiceStatus `json:"status" validate:"omitempty,oneof=draft sent paid"`
}

// MarkPaidInput records a payment. A nil PaidAt means now.
type MarkPaidInput struct {
	CheckNumber string     `json:"check_number" validate:"max=40"`
	PaidAt      *time.Time `json:"paid_at"`
	CheckDate   *Date      `json:"check_date"`
}

// MarkEmailSentInput records an email sent outside the application.
type MarkEmailSentInput struct {
	SentTo []string `json:"sent_to" validate:"required,min=1,dive,email"`
}

type InvoiceFilter struct {
	CustomerID int
	Status     InvoiceStatus
	Year       int
	Page       int
	Limit      int
}

type InvoicePage struct {
	Invoices   []Invoice  `json:"invoices"`
	Pagination Pagination `json:"pagination"`
}

// InvoiceDocument is the flat field set handed to the document renderer.
type InvoiceDocument struct {
	InvoiceNumber        string
	OrderNumber          string
	CustomerName         string
	BillTo               BillTo
	ShippingDate         Date
	HarvestDate          Date
	HarvestTime          string
	HarvestLocation      string
	ShipperCertification string
	DepartureTemperature string
	TimeOnTruck          string
	DeliveredBy          string
	Items                []OrderItem
	Subtotal             decimal.Decimal
	Tax                  decimal.Decimal
	Total                decimal.Decimal
}

func (inv *Invoice) Document() InvoiceDocument {
	return InvoiceDocument{
		InvoiceNumber:        inv.InvoiceNumber,
		OrderNumber:          inv.OrderNumber,
		CustomerName:         inv.CustomerName,
		BillTo:               inv.BillTo,
		ShippingDate:         inv.ShippingDate,
		HarvestDate:          inv.HarvestDate,
		HarvestTime:          inv.HarvestTime,
		HarvestLocation:      inv.HarvestLocation,
		ShipperCertification: inv.ShipperCertification,
		DepartureTemperature: inv.DepartureTemperature,
		TimeOnTruck:          inv.TimeOnTruck,
		DeliveredBy:          inv.DeliveredBy,
		Items:                inv.Items,
		Subtotal:             inv.Subtotal,
		Tax:                  inv.Tax,
		Total:                inv.Total,
	}
}

// Attachment is a rendered file attached to an outgoing email.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// InvoiceEmail is what the mail transport needs to deliver an invoice.
type InvoiceEmail struct {
	To            []string
	InvoiceNumber string
	CustomerName  string
	Total         decimal.Decimal
	ShippingDate  Date
	Attachments   []Attachment
}
