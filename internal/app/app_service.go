package app

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"shellfish-ops/internal/ai"
	"shellfish-ops/internal/core"
	"shellfish-ops/internal/export"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Services bundles the domain services the facade delegates to.
type Services struct {
	Catalog   core.CatalogService
	Customers core.CustomerService
	Harvest   core.HarvestLocationService
	Orders    core.OrderService
	Invoices  core.InvoiceService
	Reporting core.ReportingService
	Users     core.UserService
}

type appService struct {
	core.CatalogService
	core.CustomerService
	core.HarvestLocationService
	core.OrderService
	core.InvoiceService
	core.ReportingService
	core.UserService

	pool        *pgxpool.Pool
	interpreter ai.OrderInterpreter
	loc         *time.Location
	now         func() time.Time
}

// NewAppService constructs an appService that satisfies ApplicationService.
// interpreter may be nil when no OpenAI key is configured; InterpretOrder then
// reports Unavailable.
func NewAppService(pool *pgxpool.Pool, svc Services, interpreter ai.OrderInterpreter, loc *time.Location) ApplicationService {
	if loc == nil {
		loc = time.Local
	}
	return &appService{
		CatalogService:         svc.Catalog,
		CustomerService:        svc.Customers,
		HarvestLocationService: svc.Harvest,
		OrderService:           svc.Orders,
		InvoiceService:         svc.Invoices,
		ReportingService:       svc.Reporting,
		UserService:            svc.Users,
		pool:                   pool,
		interpreter:            interpreter,
		loc:                    loc,
		now:                    time.Now,
	}
}

func (s *appService) Health(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return core.Unavailable(err, "database unreachable")
	}
	return nil
}

func (s *appService) PortalCustomer(ctx context.Context, slug string) (*PortalCustomer, error) {
	c, err := s.GetCustomerBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	pricing, err := s.GetCustomerPricing(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	return &PortalCustomer{ID: c.ID, BusinessName: c.BusinessName, Slug: c.Slug, Pricing: pricing}, nil
}

// ── Order interpretation ─────────────────────────────────────────────────────

func (s *appService) InterpretOrder(ctx context.Context, req InterpretOrderRequest) (*InterpretResult, error) {
	if err := core.ValidateStruct(req); err != nil {
		return nil, err
	}
	if s.interpreter == nil {
		return nil, core.Unavailable(nil, "order interpreter is not configured")
	}

	products, err := s.ListProducts(ctx, false)
	if err != nil {
		return nil, err
	}
	customers, err := s.ListCustomers(ctx, "")
	if err != nil {
		return nil, err
	}
	summaries := make([]core.CustomerSummary, 0, len(customers))
	for _, c := range customers {
		if !c.IsActive {
			continue
		}
		summaries = append(summaries, core.CustomerSummary{ID: c.ID, BusinessName: c.BusinessName})
	}

	draft, err := s.interpreter.InterpretOrder(ctx, ai.InterpretRequest{
		Text:      req.Text,
		Today:     s.now().In(s.loc),
		Products:  products,
		Customers: summaries,
	})
	if err != nil {
		return nil, err
	}
	if draft.IsClarification {
		return &InterpretResult{
			IsClarification:      true,
			ClarificationMessage: draft.ClarificationMessage,
			Confidence:           draft.Confidence,
			Reasoning:            draft.Reasoning,
		}, nil
	}

	result, err := s.priceDraft(ctx, draft, products)
	if err != nil {
		return nil, err
	}
	log.Info().
		Int("customer_id", draft.CustomerID).
		Int("lines", len(draft.Items)).
		Float64("confidence", draft.Confidence).
		Msg("order interpreted")
	return result, nil
}

// priceDraft applies the customer's price list to a validated draft.
func (s *appService) priceDraft(ctx context.Context, draft *ai.OrderDraft, products []core.Product) (*InterpretResult, error) {
	customer, err := s.GetCustomer(ctx, draft.CustomerID)
	if err != nil {
		return nil, err
	}
	delivery, err := core.ParseDate(draft.DeliveryDate)
	if err != nil {
		return nil, core.Validationf("invalid delivery date %q", draft.DeliveryDate)
	}

	byID := make(map[int]core.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	in := &core.CreateOrderInput{
		Customer:     core.CustomerRef{ID: customer.ID},
		DeliveryDate: delivery,
		Notes:        draft.Notes,
		Source:       core.OrderSourceInternal,
	}
	preview := make([]core.OrderItem, 0, len(draft.Items))
	for _, line := range draft.Items {
		p, ok := byID[line.ProductID]
		if !ok {
			return nil, core.NotFoundf("product %d not found", line.ProductID)
		}
		price := core.ResolvePrice(customer.CustomPricing, p.ID, p.BasePrice)
		in.Items = append(in.Items, core.OrderLineInput{
			Product:      core.ProductRef{ID: p.ID},
			Quantity:     line.Quantity,
			PricePerUnit: &price,
		})
		preview = append(preview, core.OrderItem{
			ProductID:    p.ID,
			ProductName:  p.Name,
			Quantity:     line.Quantity,
			PricePerUnit: price,
		})
	}
	totals := core.ComputeTotals(preview)

	return &InterpretResult{
		Order:      in,
		Preview:    preview,
		Total:      totals.Total,
		Confidence: draft.Confidence,
		Reasoning:  draft.Reasoning,
	}, nil
}

// ── Export ───────────────────────────────────────────────────────────────────

func (s *appService) ExportInvoiceWorkbook(ctx context.Context, year int) (*ExportResult, error) {
	year, rows, err := s.ExportInvoices(ctx, year)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := export.WriteTo(&buf, year, rows); err != nil {
		return nil, fmt.Errorf("failed to write invoice workbook: %w", err)
	}
	return &ExportResult{
		Filename:    export.Filename(year),
		ContentType: xlsxContentType,
		Content:     buf.Bytes(),
	}, nil
}
