package repl

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"shellfish-ops/internal/app"
	"shellfish-ops/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockApp struct {
	app.ApplicationService
	mock.Mock
}

func (m *mockApp) ListProducts(ctx context.Context, includeInactive bool) ([]core.Product, error) {
	args := m.Called(ctx, includeInactive)
	p, _ := args.Get(0).([]core.Product)
	return p, args.Error(1)
}

func (m *mockApp) UpdateOrderStatus(ctx context.Context, id int, status core.OrderStatus) (*core.OrderView, error) {
	args := m.Called(ctx, id, status)
	o, _ := args.Get(0).(*core.OrderView)
	return o, args.Error(1)
}

func (m *mockApp) InterpretOrder(ctx context.Context, req app.InterpretOrderRequest) (*app.InterpretResult, error) {
	args := m.Called(ctx, req)
	r, _ := args.Get(0).(*app.InterpretResult)
	return r, args.Error(1)
}

func (m *mockApp) CreateOrder(ctx context.Context, in core.CreateOrderInput) (*core.OrderView, error) {
	args := m.Called(ctx, in)
	o, _ := args.Get(0).(*core.OrderView)
	return o, args.Error(1)
}

func (m *mockApp) GetCustomerBySlug(ctx context.Context, slug string) (*core.Customer, error) {
	args := m.Called(ctx, slug)
	c, _ := args.Get(0).(*core.Customer)
	return c, args.Error(1)
}

func (m *mockApp) GetCustomerPricing(ctx context.Context, id int) ([]core.PriceListEntry, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).([]core.PriceListEntry)
	return p, args.Error(1)
}

func run(t *testing.T, svc app.ApplicationService, input string) string {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), svc, strings.NewReader(input), &out))
	return out.String()
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestRun_SlashCommands(t *testing.T) {
	svc := &mockApp{}
	svc.On("ListProducts", mock.Anything, false).Return([]core.Product{
		{ID: 1, Name: "OSC Selects", Unit: core.UnitOyster, BasePrice: d("0.80")},
	}, nil)
	svc.On("UpdateOrderStatus", mock.Anything, 7, core.OrderStatusConfirmed).
		Return(&core.OrderView{Order: core.Order{ID: 7, OrderNumber: "16007", Status: core.OrderStatusConfirmed}}, nil)
	svc.On("UpdateOrderStatus", mock.Anything, 8, core.OrderStatusDelivered).
		Return(nil, core.Validationf("cannot move order 16008 from pending to delivered"))

	out := run(t, svc, "/products\n/confirm 7\n/deliver 8\n/confirm x\n/bogus\n/exit\n")

	assert.Contains(t, out, "OSC Selects")
	assert.Contains(t, out, "$0.80")
	assert.Contains(t, out, "Order 16007 is now confirmed.")
	assert.Contains(t, out, "Error: cannot move order 16008 from pending to delivered")
	assert.Contains(t, out, "Invalid id: x")
	assert.Contains(t, out, "Unknown command: /bogus")
	assert.Contains(t, out, "Goodbye!")
	svc.AssertExpectations(t)
}

func TestRun_FreeTextOrderWithClarification(t *testing.T) {
	draft := &core.CreateOrderInput{
		Customer:     core.CustomerRef{ID: 3},
		DeliveryDate: core.NewDate(time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)),
		Items:        []core.OrderLineInput{{Product: core.ProductRef{ID: 1}, Quantity: 200}},
	}

	svc := &mockApp{}
	svc.On("InterpretOrder", mock.Anything, app.InterpretOrderRequest{Text: "200 selects friday"}).
		Return(&app.InterpretResult{IsClarification: true, ClarificationMessage: "Which customer is this for?"}, nil).Once()
	svc.On("InterpretOrder", mock.Anything, mock.MatchedBy(func(req app.InterpretOrderRequest) bool {
		return strings.Contains(req.Text, "Answer: Oyster Bar NYC")
	})).Return(&app.InterpretResult{
		Order:      draft,
		Preview:    []core.OrderItem{{ProductName: "OSC Selects", Quantity: 200, PricePerUnit: d("0.75"), LineTotal: d("150")}},
		Total:      d("150"),
		Confidence: 0.9,
	}, nil).Once()
	svc.On("CreateOrder", mock.Anything, *draft).
		Return(&core.OrderView{Order: core.Order{OrderNumber: "16010", Total: d("150")}}, nil).Once()

	out := run(t, svc, "200 selects friday\nOyster Bar NYC\ny\n")

	assert.Contains(t, out, "[AI]: Which customer is this for?")
	assert.Contains(t, out, "DELIVERY:   2025-06-20")
	assert.Contains(t, out, "$150.00")
	assert.Contains(t, out, "Order 16010 created ($150.00).")
	svc.AssertExpectations(t)
}

func TestRun_FreeTextOrderDeclined(t *testing.T) {
	svc := &mockApp{}
	svc.On("InterpretOrder", mock.Anything, mock.Anything).Return(&app.InterpretResult{
		Order:      &core.CreateOrderInput{},
		Total:      d("10"),
		Confidence: 0.4,
	}, nil)

	out := run(t, svc, "something vague\nn\n")

	assert.Contains(t, out, "WARNING: low confidence")
	assert.Contains(t, out, "Order discarded.")
	svc.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestRun_NewOrderWizard(t *testing.T) {
	svc := &mockApp{}
	svc.On("GetCustomerBySlug", mock.Anything, "oyster-bar-nyc").
		Return(&core.Customer{ID: 3, BusinessName: "Oyster Bar NYC"}, nil)
	svc.On("GetCustomerPricing", mock.Anything, 3).Return([]core.PriceListEntry{
		{ProductID: 1, ProductName: "OSC Selects", Price: d("0.75"), HasCustomPrice: true},
		{ProductID: 2, ProductName: "OP Pearls", Price: d("0.80")},
	}, nil)
	svc.On("CreateOrder", mock.Anything, mock.MatchedBy(func(in core.CreateOrderInput) bool {
		return in.Customer.ID == 3 &&
			len(in.Items) == 2 &&
			in.Items[0].PricePerUnit.Equal(d("0.75")) &&
			in.Items[1].PricePerUnit.Equal(d("0.65")) &&
			in.DeliveryDate.String() == "2025-06-20" &&
			in.Notes == "back door"
	})).Return(&core.OrderView{Order: core.Order{ID: 11, OrderNumber: "16011", Status: core.OrderStatusPending}}, nil)

	input := strings.Join([]string{
		"/new-order oyster-bar-nyc",
		"9 10",
		"1 200",
		"2 100 0.65",
		"done",
		"2025-06-20",
		"back door",
		"/exit",
	}, "\n") + "\n"
	out := run(t, svc, input)

	assert.Contains(t, out, "product 9 is not on the price list")
	assert.Contains(t, out, "Order 16011 created (pending).")
	assert.Contains(t, out, "/confirm 11")
	svc.AssertExpectations(t)
}

func TestRun_EOFEndsWizard(t *testing.T) {
	svc := &mockApp{}
	svc.On("GetCustomerBySlug", mock.Anything, "bar").Return(&core.Customer{ID: 1}, nil)
	svc.On("GetCustomerPricing", mock.Anything, 1).Return([]core.PriceListEntry{}, nil)

	out := run(t, svc, "/new-order bar\n")
	assert.Contains(t, out, "Order creation cancelled.")
}

func TestPrintAging(t *testing.T) {
	now := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)
	aging := core.BuildARAging([]core.Invoice{
		{InvoiceNumber: "INV-16001", CustomerName: "Oyster Bar NYC", Status: core.InvoiceStatusSent,
			Total: d("1234.5"), CreatedAt: now.AddDate(0, 0, -45)},
		{InvoiceNumber: "INV-16002", CustomerName: "Bravo Fish Market", Status: core.InvoiceStatusSent,
			Total: d("80"), CreatedAt: now},
	}, now)

	var buf bytes.Buffer
	PrintAging(&buf, aging)
	out := buf.String()

	assert.Contains(t, out, "ACCOUNTS RECEIVABLE AGING")
	assert.Contains(t, out, "Current")
	assert.Contains(t, out, "31-60 days")
	assert.Contains(t, out, "INV-16001")
	assert.Contains(t, out, "45d")
	assert.Contains(t, out, "$1,314.50")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Oyster", truncate("Oyster", 10))
	assert.Equal(t, "Oyst…", truncate("Oysterponds", 5))
}
