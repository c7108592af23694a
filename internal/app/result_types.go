package app

import (
	"shellfish-ops/internal/core"

	"github.com/shopspring/decimal"
)

// PortalCustomer is what the public order portal may see about a customer.
// Contact and billing details are deliberately absent.
type PortalCustomer struct {
	ID           int                   `json:"id"`
	BusinessName string                `json:"business_name"`
	Slug         string                `json:"slug"`
	Pricing      []core.PriceListEntry `json:"pricing"`
}

// InterpretResult is returned by InterpretOrder.
type InterpretResult struct {
	IsClarification      bool   `json:"is_clarification"`
	ClarificationMessage string `json:"clarification_message,omitempty"`

	// Order is ready to submit to CreateOrder. Nil for clarifications.
	Order *core.CreateOrderInput `json:"order,omitempty"`
	// Preview shows the resolved product names and line totals of Order.
	Preview    []core.OrderItem `json:"preview,omitempty"`
	Total      decimal.Decimal  `json:"total"`
	Confidence float64          `json:"confidence"`
	Reasoning  string           `json:"reasoning,omitempty"`
}

// ExportResult is a rendered file ready to download.
type ExportResult struct {
	Filename    string
	ContentType string
	Content     []byte
}
