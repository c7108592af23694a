package app

import (
	"context"

	"shellfish-ops/internal/core"
)

// ApplicationService is the single interface the adapters (web, CLI) call.
// It exposes every domain service plus the operations that span more than one
// of them. Implementations contain no HTTP or terminal concerns.
type ApplicationService interface {
	core.CatalogService
	core.CustomerService
	core.HarvestLocationService
	core.OrderService
	core.InvoiceService
	core.ReportingService
	core.UserService

	// Health reports whether the database is reachable.
	Health(ctx context.Context) error

	// PortalCustomer resolves a customer's order-portal link into the public
	// view the portal renders: identity plus the effective price list.
	PortalCustomer(ctx context.Context, slug string) (*PortalCustomer, error)

	// InterpretOrder asks the AI interpreter to read a free-text order and
	// returns a priced CreateOrderInput, or a clarification question.
	// Nothing is persisted; the caller submits the input through CreateOrder.
	InterpretOrder(ctx context.Context, req InterpretOrderRequest) (*InterpretResult, error)

	// ExportInvoiceWorkbook renders the billing and receipts workbook for a
	// year (0 means the current year).
	ExportInvoiceWorkbook(ctx context.Context, year int) (*ExportResult, error)
}
