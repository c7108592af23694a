package app_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"shellfish-ops/internal/ai"
	"shellfish-ops/internal/app"
	"shellfish-ops/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// Stubs embed the service interface and override only what a test touches.

type stubCatalog struct {
	core.CatalogService
	products []core.Product
}

func (s stubCatalog) ListProducts(_ context.Context, _ bool) ([]core.Product, error) {
	return s.products, nil
}

type stubCustomers struct {
	core.CustomerService
	customers []core.Customer
}

func (s stubCustomers) ListCustomers(_ context.Context, _ string) ([]core.Customer, error) {
	return s.customers, nil
}

func (s stubCustomers) GetCustomer(_ context.Context, id int) (*core.Customer, error) {
	for i := range s.customers {
		if s.customers[i].ID == id {
			return &s.customers[i], nil
		}
	}
	return nil, core.NotFoundf("customer %d not found", id)
}

type stubReporting struct {
	core.ReportingService
	rows []core.ExportInvoice
}

func (s stubReporting) ExportInvoices(_ context.Context, year int) (int, []core.ExportInvoice, error) {
	if year == 0 {
		year = 2025
	}
	return year, s.rows, nil
}

type mockInterpreter struct{ mock.Mock }

func (m *mockInterpreter) InterpretOrder(ctx context.Context, req ai.InterpretRequest) (*ai.OrderDraft, error) {
	args := m.Called(ctx, req)
	draft, _ := args.Get(0).(*ai.OrderDraft)
	return draft, args.Error(1)
}

func fixtures() app.Services {
	return app.Services{
		Catalog: stubCatalog{products: []core.Product{
			{ID: 1, Name: "OSC Selects", Unit: core.UnitOyster, BasePrice: decimal.RequireFromString("0.80"), IsActive: true},
			{ID: 2, Name: "OP Pearls", Unit: core.UnitOyster, BasePrice: decimal.RequireFromString("0.70"), IsActive: true},
		}},
		Customers: stubCustomers{customers: []core.Customer{
			{ID: 7, BusinessName: "Oyster Bar NYC", IsActive: true,
				CustomPricing: []core.CustomPrice{{ProductID: 1, Price: decimal.RequireFromString("0.75")}}},
			{ID: 8, BusinessName: "Closed Shack", IsActive: false},
		}},
		Reporting: stubReporting{},
	}
}

func TestInterpretOrder_PricesDraft(t *testing.T) {
	ctx := context.Background()
	interp := &mockInterpreter{}
	interp.On("InterpretOrder", ctx, mock.MatchedBy(func(r ai.InterpretRequest) bool {
		// Inactive customers are not offered to the model.
		return len(r.Customers) == 1 && r.Customers[0].ID == 7 && len(r.Products) == 2
	})).Return(&ai.OrderDraft{
		CustomerID:   7,
		DeliveryDate: "2025-06-13",
		Items:        []ai.DraftLine{{ProductID: 1, Quantity: 200}, {ProductID: 2, Quantity: 100}},
		Notes:        "back door",
		Confidence:   0.9,
	}, nil)

	svc := app.NewAppService(nil, fixtures(), interp, time.UTC)
	res, err := svc.InterpretOrder(ctx, app.InterpretOrderRequest{Text: "200 selects and 100 pearls for Friday"})
	require.NoError(t, err)

	require.NotNil(t, res.Order)
	assert.False(t, res.IsClarification)
	assert.Equal(t, 7, res.Order.Customer.ID)
	assert.Equal(t, "2025-06-13", res.Order.DeliveryDate.String())
	assert.Equal(t, core.OrderSourceInternal, res.Order.Source)
	require.Len(t, res.Order.Items, 2)
	assert.True(t, res.Order.Items[0].PricePerUnit.Equal(decimal.RequireFromString("0.75")), "custom price applies")
	assert.True(t, res.Order.Items[1].PricePerUnit.Equal(decimal.RequireFromString("0.70")), "base price applies")
	assert.Equal(t, "OSC Selects", res.Preview[0].ProductName)
	assert.True(t, res.Total.Equal(decimal.RequireFromString("220")), res.Total.String())
	interp.AssertExpectations(t)
}

func TestInterpretOrder_Clarification(t *testing.T) {
	ctx := context.Background()
	interp := &mockInterpreter{}
	interp.On("InterpretOrder", ctx, mock.Anything).Return(&ai.OrderDraft{
		IsClarification:      true,
		ClarificationMessage: "Which customer is this for?",
	}, nil)

	svc := app.NewAppService(nil, fixtures(), interp, time.UTC)
	res, err := svc.InterpretOrder(ctx, app.InterpretOrderRequest{Text: "send 100 oysters"})
	require.NoError(t, err)
	assert.True(t, res.IsClarification)
	assert.Equal(t, "Which customer is this for?", res.ClarificationMessage)
	assert.Nil(t, res.Order)
}

func TestInterpretOrder_Errors(t *testing.T) {
	ctx := context.Background()

	svc := app.NewAppService(nil, fixtures(), nil, time.UTC)
	_, err := svc.InterpretOrder(ctx, app.InterpretOrderRequest{Text: "anything"})
	assert.Equal(t, core.KindUnavailable, core.KindOf(err))

	_, err = svc.InterpretOrder(ctx, app.InterpretOrderRequest{})
	assert.Equal(t, core.KindValidation, core.KindOf(err))
}

func TestExportInvoiceWorkbook(t *testing.T) {
	svcs := fixtures()
	svcs.Reporting = stubReporting{rows: []core.ExportInvoice{{
		InvoiceNumber: "INV-16001", CustomerName: "Oyster Bar NYC",
		Date: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), Quantity: 100, Total: decimal.RequireFromString("75"),
	}}}
	svc := app.NewAppService(nil, svcs, nil, time.UTC)

	res, err := svc.ExportInvoiceWorkbook(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, "2025_Invoices_and_Receipts.xlsx", res.Filename)
	assert.Contains(t, res.ContentType, "spreadsheetml")

	f, err := excelize.OpenReader(bytes.NewReader(res.Content))
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue("2025 Invoices and Receipts", "B4")
	require.NoError(t, err)
	assert.Equal(t, "Oyster Bar NYC", v)
}
