package core_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"shellfish-ops/internal/core"
	"shellfish-ops/internal/db"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// setupTestDB migrates the test database and empties every table.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	_ = godotenv.Load("../../.env")

	// Integration tests wipe data, so they only run against TEST_DATABASE_URL.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, dbURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = db.Migrate(ctx, pool, os.DirFS("../../migrations"))
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE invoice_items, invoices, order_items, orders, customer_prices,
			customers, products, number_sequences, users RESTART IDENTITY CASCADE
	`)
	require.NoError(t, err)
	return pool
}

type mockRenderer struct{ mock.Mock }

func (m *mockRenderer) InvoicePDF(ctx context.Context, doc core.InvoiceDocument) ([]byte, error) {
	args := m.Called(ctx, doc)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

func (m *mockRenderer) ShippingTagPDF(ctx context.Context, doc core.InvoiceDocument) ([]byte, error) {
	args := m.Called(ctx, doc)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendInvoice(ctx context.Context, msg core.InvoiceEmail) error {
	return m.Called(ctx, msg).Error(0)
}

type fixture struct {
	ctx       context.Context
	catalog   core.CatalogService
	customers core.CustomerService
	orders    core.OrderService
	invoices  core.InvoiceService
	reporting core.ReportingService
	renderer  *mockRenderer
	mailer    *mockMailer

	selects, pearls *core.Product
	bar             *core.Customer
}

const internalEmail = "billing@oysterponds.example"

func newFixture(t *testing.T) *fixture {
	pool := setupTestDB(t)
	seq := core.NewSequenceService()
	now := func() time.Time { return time.Now() }

	f := &fixture{
		ctx:       context.Background(),
		catalog:   core.NewCatalogService(pool),
		customers: core.NewCustomerService(pool),
		orders:    core.NewOrderService(pool, seq, core.OrderOptions{NumberBase: 16000, Location: time.UTC, Now: now}),
		renderer:  &mockRenderer{},
		mailer:    &mockMailer{},
		reporting: core.NewReportingService(pool, core.ReportingOptions{Location: time.UTC, Now: now}),
	}
	f.invoices = core.NewInvoiceService(pool, seq, f.renderer, f.mailer, core.InvoiceOptions{
		NumberBase:           16000,
		ShipperCertification: "NY-1234-SS",
		InternalEmail:        internalEmail,
		Location:             time.UTC,
		Now:                  now,
	})

	var err error
	f.selects, err = f.catalog.CreateProduct(f.ctx, core.ProductInput{Name: "OSC Selects"})
	require.NoError(t, err)
	f.pearls, err = f.catalog.CreateProduct(f.ctx, core.ProductInput{Name: "OP Pearls"})
	require.NoError(t, err)

	f.bar, err = f.customers.CreateCustomer(f.ctx, core.CustomerInput{
		BusinessName:        "Oyster Bar NYC",
		Name:                "Sam Chef",
		AccountingEmail:     "ap@oysterbar.example",
		RequiresShippingTag: true,
		CustomPricing:       []core.CustomPrice{{ProductID: f.selects.ID, Price: d("0.75")}},
	})
	require.NoError(t, err)
	return f
}

func (f *fixture) portalOrder(t *testing.T) *core.OrderView {
	t.Helper()
	order, err := f.orders.CreatePublicOrder(f.ctx, core.PublicOrderInput{
		CustomerSlug: f.bar.Slug,
		DeliveryDate: core.NewDate(time.Now().AddDate(0, 0, 2)),
		Items: []core.PublicLineInput{
			{Product: core.ProductRef{ID: f.selects.ID}, Quantity: 100},
			{Product: core.ProductRef{ID: f.pearls.ID}, Quantity: 200},
		},
	})
	require.NoError(t, err)
	return order
}

func TestCustomer_SlugAndPortalPricing(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, "oyster-bar-nyc", f.bar.Slug)
	assert.Equal(t, "NY", f.bar.BillingAddress.State)

	got, err := f.customers.GetCustomerBySlug(f.ctx, "oyster-bar-nyc")
	require.NoError(t, err)
	assert.Equal(t, f.bar.ID, got.ID)

	pricing, err := f.customers.GetCustomerPricing(f.ctx, f.bar.ID)
	require.NoError(t, err)
	require.Len(t, pricing, 2)
	byName := map[string]core.PriceListEntry{}
	for _, p := range pricing {
		byName[p.ProductName] = p
	}
	assert.Equal(t, "0.75", byName["OSC Selects"].Price.StringFixed(2))
	assert.True(t, byName["OSC Selects"].HasCustomPrice)
	assert.Equal(t, "0.80", byName["OP Pearls"].Price.StringFixed(2))
	assert.False(t, byName["OP Pearls"].HasCustomPrice)

	_, err = f.customers.CreateCustomer(f.ctx, core.CustomerInput{BusinessName: "Oyster Bar, NYC"})
	assert.True(t, core.IsKind(err, core.KindConflict), "same slug is a conflict")

	_, err = f.customers.GetCustomerBySlug(f.ctx, "nobody")
	assert.True(t, core.IsKind(err, core.KindNotFound))
}

func TestOrder_PortalPricingAndNumbering(t *testing.T) {
	f := newFixture(t)

	first := f.portalOrder(t)
	assert.Equal(t, "16001", first.OrderNumber)
	assert.Equal(t, core.OrderStatusPending, first.Status)
	assert.Equal(t, core.OrderSourcePortal, first.Source)
	assert.Equal(t, "Oyster Bar NYC", first.CustomerName)
	require.Len(t, first.Items, 2)
	assert.Equal(t, "0.75", first.Items[0].PricePerUnit.StringFixed(2))
	assert.Equal(t, "0.80", first.Items[1].PricePerUnit.StringFixed(2))
	assert.Equal(t, "235.00", first.Total.StringFixed(2))

	second := f.portalOrder(t)
	assert.Equal(t, "16002", second.OrderNumber)

	// Deleted numbers are never handed out again.
	require.NoError(t, f.orders.DeleteOrder(f.ctx, second.ID))
	third := f.portalOrder(t)
	assert.Equal(t, "16003", third.OrderNumber)
}

func TestOrder_ConcurrentNumbersAreUnique(t *testing.T) {
	f := newFixture(t)

	const n = 8
	numbers := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			order, err := f.orders.CreatePublicOrder(f.ctx, core.PublicOrderInput{
				CustomerSlug: f.bar.Slug,
				DeliveryDate: core.NewDate(time.Now()),
				Items:        []core.PublicLineInput{{Product: core.ProductRef{ID: f.pearls.ID}, Quantity: 10}},
			})
			if assert.NoError(t, err) {
				numbers <- order.OrderNumber
			}
		}()
	}
	wg.Wait()
	close(numbers)

	seen := map[string]bool{}
	for num := range numbers {
		assert.False(t, seen[num], "duplicate order number %s", num)
		seen[num] = true
	}
	assert.Len(t, seen, n)
}

func TestOrder_StatusGuards(t *testing.T) {
	f := newFixture(t)
	order := f.portalOrder(t)

	_, err := f.orders.UpdateOrderStatus(f.ctx, order.ID, core.OrderStatusDelivered)
	assert.True(t, core.IsKind(err, core.KindValidation), "pending cannot jump to delivered")

	order, err = f.orders.UpdateOrderStatus(f.ctx, order.ID, core.OrderStatusConfirmed)
	require.NoError(t, err)
	order, err = f.orders.UpdateOrderStatus(f.ctx, order.ID, core.OrderStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, core.OrderStatusDelivered, order.Status)

	notes := "late change"
	_, err = f.orders.UpdateOrder(f.ctx, order.ID, core.UpdateOrderInput{Notes: &notes})
	assert.True(t, core.IsKind(err, core.KindConflict), "delivered orders are read-only")

	err = f.orders.DeleteOrder(f.ctx, order.ID)
	assert.True(t, core.IsKind(err, core.KindConflict))
}

func TestInvoice_Lifecycle(t *testing.T) {
	f := newFixture(t)
	order := f.portalOrder(t)

	inv, err := f.invoices.CreateInvoice(f.ctx, core.CreateInvoiceInput{
		Order:       core.OrderRef{ID: order.ID},
		HarvestTime: "06:30",
		DeliveredBy: "Remi",
	})
	require.NoError(t, err)
	assert.Equal(t, "INV-16001", inv.InvoiceNumber)
	assert.Equal(t, core.InvoiceStatusDraft, inv.Status)
	assert.Equal(t, order.Total.String(), inv.Total.String())
	assert.Equal(t, "NY-1234-SS", inv.ShipperCertification)
	assert.Equal(t, "Sam Chef", inv.BillTo.Attention)
	require.Len(t, inv.Items, 2)

	_, err = f.invoices.CreateInvoice(f.ctx, core.CreateInvoiceInput{Order: core.OrderRef{ID: order.ID}})
	assert.True(t, core.IsKind(err, core.KindConflict), "one invoice per order")
	first, err := f.invoices.GetInvoice(f.ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.InvoiceNumber, first.InvoiceNumber)
	assert.Equal(t, inv.Total.String(), first.Total.String())
	assert.Equal(t, inv.Status, first.Status)
	assert.Equal(t, inv.DeliveredBy, first.DeliveredBy)

	byOrder, err := f.invoices.GetInvoiceByOrder(f.ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, byOrder.ID)

	f.renderer.On("InvoicePDF", mock.Anything, mock.Anything).Return([]byte("%PDF-invoice"), nil)
	f.renderer.On("ShippingTagPDF", mock.Anything, mock.Anything).Return([]byte("%PDF-tag"), nil)
	f.mailer.On("SendInvoice", mock.Anything, mock.MatchedBy(func(msg core.InvoiceEmail) bool {
		return len(msg.Attachments) == 2 &&
			msg.Attachments[1].Filename == "INV-16001-ShippingTag.pdf" &&
			assert.ObjectsAreEqual([]string{"ap@oysterbar.example", internalEmail}, msg.To)
	})).Return(nil).Once()

	sent, err := f.invoices.SendInvoiceEmail(f.ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, core.InvoiceStatusSent, sent.Status)
	assert.NotNil(t, sent.EmailSentAt)
	assert.Equal(t, []string{"ap@oysterbar.example", internalEmail}, sent.EmailSentTo)
	f.mailer.AssertExpectations(t)

	aging, err := f.reporting.ARAging(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, aging.TotalInvoices)
	assert.Equal(t, 1, aging.Aging[core.AgingCurrent].Count)

	err = f.invoices.DeleteInvoice(f.ctx, inv.ID)
	assert.True(t, core.IsKind(err, core.KindConflict), "sent invoices cannot be deleted")

	paid, err := f.invoices.MarkInvoiceAsPaid(f.ctx, inv.ID, core.MarkPaidInput{CheckNumber: " 1042 "})
	require.NoError(t, err)
	assert.Equal(t, core.InvoiceStatusPaid, paid.Status)
	assert.Equal(t, "1042", paid.CheckNumber)
	require.NotNil(t, paid.PaidAt)

	_, err = f.invoices.MarkInvoiceAsPaid(f.ctx, inv.ID, core.MarkPaidInput{})
	assert.True(t, core.IsKind(err, core.KindValidation), "paying twice is rejected")

	summary, err := f.reporting.InvoiceSummary(f.ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Paid.Count)
	assert.True(t, summary.ARTotal.IsZero())
}

func TestInvoice_DeleteDraftKeepsNumber(t *testing.T) {
	f := newFixture(t)
	order := f.portalOrder(t)

	inv, err := f.invoices.CreateInvoice(f.ctx, core.CreateInvoiceInput{Order: core.OrderRef{ID: order.ID}})
	require.NoError(t, err)
	require.NoError(t, f.invoices.DeleteInvoice(f.ctx, inv.ID))

	none, err := f.invoices.GetInvoiceByOrder(f.ctx, order.ID)
	require.NoError(t, err)
	assert.Nil(t, none)

	again, err := f.invoices.CreateInvoice(f.ctx, core.CreateInvoiceInput{Order: core.OrderRef{ID: order.ID}})
	require.NoError(t, err)
	assert.Equal(t, "INV-16002", again.InvoiceNumber)
}

func TestInvoice_CancelledOrderRejected(t *testing.T) {
	f := newFixture(t)
	order := f.portalOrder(t)

	_, err := f.orders.UpdateOrderStatus(f.ctx, order.ID, core.OrderStatusCancelled)
	require.NoError(t, err)

	_, err = f.invoices.CreateInvoice(f.ctx, core.CreateInvoiceInput{Order: core.OrderRef{ID: order.ID}})
	assert.True(t, core.IsKind(err, core.KindValidation))
}

func TestInvoice_SendWithoutEmailIsValidation(t *testing.T) {
	f := newFixture(t)
	market, err := f.customers.CreateCustomer(f.ctx, core.CustomerInput{BusinessName: "Bravo Fish Market"})
	require.NoError(t, err)

	order, err := f.orders.CreateOrder(f.ctx, core.CreateOrderInput{
		Customer:     core.CustomerRef{ID: market.ID},
		DeliveryDate: core.NewDate(time.Now()),
		Items: []core.OrderLineInput{
			{Product: core.ProductRef{ID: f.pearls.ID}, Quantity: 50, PricePerUnit: ptr(d("0.70"))},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, core.OrderSourceInternal, order.Source)
	assert.Equal(t, "35.00", order.Total.StringFixed(2))

	inv, err := f.invoices.CreateInvoice(f.ctx, core.CreateInvoiceInput{Order: core.OrderRef{ID: order.ID}})
	require.NoError(t, err)

	_, err = f.invoices.SendInvoiceEmail(f.ctx, inv.ID)
	assert.True(t, core.IsKind(err, core.KindValidation))
	f.mailer.AssertNotCalled(t, "SendInvoice", mock.Anything, mock.Anything)
}

func ptr[T any](v T) *T { return &v }
