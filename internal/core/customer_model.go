package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer is a wholesale account. CustomPricing overrides base prices per product.
type Customer struct {
	ID                        int           `json:"id"`
	Name                      string        `json:"name"`
	BusinessName              string        `json:"business_name"`
	Slug                      string        `json:"slug"`
	BillingAddress            Address       `json:"billing_address"`
	ShippingAddress           Address       `json:"shipping_address"`
	ContactEmail              string        `json:"contact_email"`
	AccountingEmail           string        `json:"accounting_email"`
	AdditionalAccountingEmail string        `json:"additional_accounting_email"`
	Phone                     string        `json:"phone"`
	AccountingPerson          string        `json:"accounting_person"`
	AccountingPhone           string        `json:"accounting_phone"`
	ContactPerson2            string        `json:"contact_person2"`
	ContactPerson2Phone       string        `json:"contact_person2_phone"`
	PaymentAlias              string        `json:"payment_alias"`
	PaymentMethod             string        `json:"payment_method"`
	CustomPricing             []CustomPrice `json:"custom_pricing"`
	ReminderEnabled           bool          `json:"reminder_enabled"`
	ReminderDay               string        `json:"reminder_day"`
	RequiresShippingTag       bool          `json:"requires_shipping_tag"`
	Notes                     string        `json:"notes"`
	IsActive                  bool          `json:"is_active"`
	CreatedAt                 time.Time     `json:"created_at"`
	UpdatedAt                 time.Time     `json:"updated_at"`
}

// CustomPrice is a per-customer price override. It references the product by id only.
type CustomPrice struct {
	ProductID int             `json:"product_id" validate:"required,gt=0"`
	Price     decimal.Decimal `json:"price" validate:"gte=0"`
}

// CustomerRef points at a customer by id on write paths.
type CustomerRef struct {
	ID int `json:"id" validate:"required,gt=0"`
}

// CustomerSummary is the hydrated customer embedded in read views.
type CustomerSummary struct {
	ID              int     `json:"id"`
	BusinessName    string  `json:"business_name"`
	ContactEmail    string  `json:"contact_email"`
	AccountingEmail string  `json:"accounting_email"`
	Phone           string  `json:"phone"`
	BillingAddress  Address `json:"billing_address"`
}

// PriceListEntry is one row of a customer's effective price list.
type PriceListEntry struct {
	ProductID      int             `json:"product_id"`
	ProductName    string          `json:"product_name"`
	Unit           Unit            `json:"unit"`
	BasePrice      decimal.Decimal `json:"base_price"`
	Price          decimal.Decimal `json:"price"`
	HasCustomPrice bool            `json:"has_custom_price"`
}

// CustomerInput creates or replaces a customer. An empty Slug is derived from BusinessName.
type CustomerInput struct {
	Name                      string        `json:"name" validate:"max=120"`
	BusinessName              string        `json:"business_name" validate:"required,max=200"`
	Slug                      string        `json:"slug" validate:"omitempty,max=120"`
	BillingAddress            Address       `json:"billing_address"`
	ShippingAddress           Address       `json:"shipping_address"`
	ContactEmail              string        `json:"contact_email" validate:"omitempty,email"`
	AccountingEmail           string        `json:"accounting_email" validate:"omitempty,email"`
	AdditionalAccountingEmail string        `json:"additional_accounting_email" validate:"omitempty,email"`
	Phone                     string        `json:"phone" validate:"max=40"`
	AccountingPerson          string        `json:"accounting_person" validate:"max=120"`
	AccountingPhone           string        `json:"accounting_phone" validate:"max=40"`
	ContactPerson2            string        `json:"contact_person2" validate:"max=120"`
	ContactPerson2Phone       string        `json:"contact_person2_phone" validate:"max=40"`
	PaymentAlias              string        `json:"payment_alias" validate:"max=120"`
	PaymentMethod             string        `json:"payment_method" validate:"max=60"`
	CustomPricing             []CustomPrice `json:"custom_pricing" validate:"dive"`
	ReminderEnabled           bool          `json:"reminder_enabled"`
	ReminderDay               string        `json:"reminder_day" validate:"omitempty,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	RequiresShippingTag       bool          `json:"requires_shipping_tag"`
	Notes                     string        `json:"notes" validate:"max=2000"`
	IsActive                  *bool         `json:"is_active"`
}

func (in CustomerInput) reminderDay() string {
	if in.ReminderDay == "" {
		return "Monday"
	}
	return in.ReminderDay
}
