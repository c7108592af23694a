package core

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// ── Interface ─────────────────────────────────────────────────────────────────

// ReportingService provides read-only reports over invoices. A year of 0
// means the current year in the business timezone; year windows apply to the
// invoice creation time.
type ReportingService interface {
	SalesSummary(ctx context.Context, year int) (*SalesSummary, error)
	InvoiceSummary(ctx context.Context, year int) (*InvoiceSummary, error)
	CustomerAnalytics(ctx context.Context, year int) (*CustomerAnalytics, error)
	ProductAnalytics(ctx context.Context, year int) (*ProductAnalytics, error)

	// ARAging buckets every sent invoice by days since creation.
	ARAging(ctx context.Context) (*ARAging, error)

	Dashboard(ctx context.Context) (*Dashboard, error)

	// ExportInvoices returns the year's invoices ordered by customer name then
	// creation time, flattened for the billing and receipts workbook.
	ExportInvoices(ctx context.Context, year int) (int, []ExportInvoice, error)

	CompanyInfo() CompanyInfo
}

// ReportingOptions supplies the business clock and company identity.
type ReportingOptions struct {
	Location             *time.Location
	Now                  func() time.Time
	ShipperCertification string
	InternalEmail        string
}

// ── Implementation ────────────────────────────────────────────────────────────

type reportingService struct {
	pool *pgxpool.Pool
	opts ReportingOptions
}

// NewReportingService constructs a ReportingService backed by the given pool.
func NewReportingService(pool *pgxpool.Pool, opts ReportingOptions) ReportingService {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &reportingService{pool: pool, opts: opts}
}

func (s *reportingService) now() time.Time {
	return s.opts.Now().In(s.opts.Location)
}

func (s *reportingService) resolveYear(year int) int {
	if year == 0 {
		return s.now().Year()
	}
	return year
}

// invoicesForYear loads the year's invoices with their items.
func (s *reportingService) invoicesForYear(ctx context.Context, year int, orderBy string) ([]Invoice, error) {
	start, end := YearRange(year, s.opts.Location)
	rows, err := s.pool.Query(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY `+orderBy, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices for %d: %w", year, err)
	}
	return collectInvoices(ctx, s.pool, rows)
}

func (s *reportingService) SalesSummary(ctx context.Context, year int) (*SalesSummary, error) {
	year = s.resolveYear(year)
	invoices, err := s.invoicesForYear(ctx, year, "created_at")
	if err != nil {
		return nil, err
	}
	return BuildSalesSummary(invoices, year, s.now()), nil
}

func (s *reportingService) InvoiceSummary(ctx context.Context, year int) (*InvoiceSummary, error) {
	year = s.resolveYear(year)
	invoices, err := s.invoicesForYear(ctx, year, "created_at")
	if err != nil {
		return nil, err
	}
	return BuildInvoiceSummary(invoices, year), nil
}

func (s *reportingService) CustomerAnalytics(ctx context.Context, year int) (*CustomerAnalytics, error) {
	year = s.resolveYear(year)
	invoices, err := s.invoicesForYear(ctx, year, "created_at")
	if err != nil {
		return nil, err
	}
	return BuildCustomerAnalytics(invoices, year), nil
}

func (s *reportingService) ProductAnalytics(ctx context.Context, year int) (*ProductAnalytics, error) {
	year = s.resolveYear(year)
	invoices, err := s.invoicesForYear(ctx, year, "created_at")
	if err != nil {
		return nil, err
	}
	return BuildProductAnalytics(invoices, year), nil
}

func (s *reportingService) ARAging(ctx context.Context) (*ARAging, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE status = 'sent'
		ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to query outstanding invoices: %w", err)
	}
	invoices, err := collectInvoices(ctx, s.pool, rows)
	if err != nil {
		return nil, err
	}
	return BuildARAging(invoices, s.now()), nil
}

// Dashboard runs its independent counts concurrently.
func (s *reportingService) Dashboard(ctx context.Context) (*Dashboard, error) {
	start, end := YearRange(s.now().Year(), s.opts.Location)
	d := &Dashboard{InvoicesByStatus: map[InvoiceStatus]CountTotal{
		InvoiceStatusDraft: {},
		InvoiceStatusSent:  {},
		InvoiceStatusPaid:  {},
	}}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := s.pool.QueryRow(gctx, `SELECT COUNT(*) FROM customers WHERE is_active`).Scan(&d.TotalCustomers)
		if err != nil {
			return fmt.Errorf("failed to count customers: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		err := s.pool.QueryRow(gctx, `SELECT COUNT(*) FROM orders`).Scan(&d.TotalOrders)
		if err != nil {
			return fmt.Errorf("failed to count orders: %w", err)
		}
		return nil
	})
	byStatus := map[InvoiceStatus]CountTotal{}
	g.Go(func() error {
		rows, err := s.pool.Query(gctx, `
			SELECT status, COUNT(*), COALESCE(SUM(total), 0)
			FROM invoices
			WHERE created_at >= $1 AND created_at < $2
			GROUP BY status
		`, start, end)
		if err != nil {
			return fmt.Errorf("failed to summarise invoices: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var st InvoiceStatus
			var ct CountTotal
			if err := rows.Scan(&st, &ct.Count, &ct.Total); err != nil {
				return fmt.Errorf("failed to scan invoice summary: %w", err)
			}
			byStatus[st] = ct
		}
		return rows.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for st, ct := range byStatus {
		d.InvoicesByStatus[st] = ct
		d.TotalInvoices += ct.Count
		d.YearlyRevenue = d.YearlyRevenue.Add(ct.Total)
	}
	d.PaidTotal = d.InvoicesByStatus[InvoiceStatusPaid].Total
	d.OutstandingTotal = d.InvoicesByStatus[InvoiceStatusSent].Total
	return d, nil
}

func (s *reportingService) ExportInvoices(ctx context.Context, year int) (int, []ExportInvoice, error) {
	year = s.resolveYear(year)
	invoices, err := s.invoicesForYear(ctx, year, "customer_name, created_at, id")
	if err != nil {
		return 0, nil, err
	}
	out := make([]ExportInvoice, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, ExportRow(inv, s.opts.Location))
	}
	return year, out, nil
}

func (s *reportingService) CompanyInfo() CompanyInfo {
	return Company(s.opts.ShipperCertification, s.opts.InternalEmail)
}

// ── Aggregation ───────────────────────────────────────────────────────────────

var shortMonths = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// BuildSalesSummary sums invoices created in the daily, weekly (from Sunday),
// monthly and yearly windows ending at now. now must carry the business location.
func BuildSalesSummary(invoices []Invoice, year int, now time.Time) *SalesSummary {
	out := &SalesSummary{
		Year:             year,
		MonthlyBreakdown: make([]MonthTotal, 12),
		TotalInvoices:    len(invoices),
	}
	for i := range out.MonthlyBreakdown {
		out.MonthlyBreakdown[i] = MonthTotal{Month: shortMonths[i], Total: decimal.Zero}
	}

	day, week, month := startOfDay(now), startOfWeek(now), startOfMonth(now)
	for _, inv := range invoices {
		created := inv.CreatedAt.In(now.Location())
		if !created.Before(day) {
			out.Daily = out.Daily.Add(inv.Total)
		}
		if !created.Before(week) {
			out.Weekly = out.Weekly.Add(inv.Total)
		}
		if !created.Before(month) {
			out.Monthly = out.Monthly.Add(inv.Total)
		}
		out.Yearly = out.Yearly.Add(inv.Total)

		m := &out.MonthlyBreakdown[created.Month()-1]
		m.Total = m.Total.Add(inv.Total)
		m.Count++
	}
	return out
}

// BuildInvoiceSummary counts invoices by status. Accounts receivable is the sent total.
func BuildInvoiceSummary(invoices []Invoice, year int) *InvoiceSummary {
	out := &InvoiceSummary{Year: year, TotalInvoices: len(invoices)}
	for _, inv := range invoices {
		switch inv.Status {
		case InvoiceStatusDraft:
			out.Draft.add(inv.Total)
		case InvoiceStatusSent:
			out.Sent.add(inv.Total)
		case InvoiceStatusPaid:
			out.Paid.add(inv.Total)
		}
	}
	out.ARTotal = out.Sent.Total
	out.TotalRevenue = sumTotals(invoices)
	return out
}

// BuildCustomerAnalytics groups invoices by customer, largest total first.
// Every invoice that is not paid counts as outstanding, drafts included.
func BuildCustomerAnalytics(invoices []Invoice, year int) *CustomerAnalytics {
	byID := map[int]*CustomerStat{}
	for _, inv := range invoices {
		st, ok := byID[inv.CustomerID]
		if !ok {
			st = &CustomerStat{CustomerID: inv.CustomerID, Name: inv.CustomerName}
			byID[inv.CustomerID] = st
		}
		st.Count++
		st.Total = st.Total.Add(inv.Total)
		if inv.Status == InvoiceStatusPaid {
			st.Paid = st.Paid.Add(inv.Total)
		} else {
			st.Outstanding = st.Outstanding.Add(inv.Total)
		}
	}

	out := &CustomerAnalytics{Year: year, Customers: make([]CustomerStat, 0, len(byID))}
	for _, st := range byID {
		out.Customers = append(out.Customers, *st)
	}
	sort.Slice(out.Customers, func(i, j int) bool {
		a, b := out.Customers[i], out.Customers[j]
		if c := a.Total.Cmp(b.Total); c != 0 {
			return c > 0
		}
		return a.Name < b.Name
	})
	out.TotalCustomers = len(out.Customers)
	return out
}

// BuildProductAnalytics sums invoice items by product name, highest quantity first.
func BuildProductAnalytics(invoices []Invoice, year int) *ProductAnalytics {
	byName := map[string]*ProductStat{}
	out := &ProductAnalytics{Year: year}
	for _, inv := range invoices {
		for _, it := range inv.Items {
			st, ok := byName[it.ProductName]
			if !ok {
				st = &ProductStat{Name: it.ProductName}
				byName[it.ProductName] = st
			}
			st.Quantity += it.Quantity
			st.Revenue = st.Revenue.Add(it.LineTotal)
			out.TotalQuantity += it.Quantity
			out.TotalRevenue = out.TotalRevenue.Add(it.LineTotal)
		}
	}

	out.Products = make([]ProductStat, 0, len(byName))
	for _, st := range byName {
		out.Products = append(out.Products, *st)
	}
	sort.Slice(out.Products, func(i, j int) bool {
		a, b := out.Products[i], out.Products[j]
		if a.Quantity != b.Quantity {
			return a.Quantity > b.Quantity
		}
		return a.Name < b.Name
	})
	return out
}

// BuildARAging buckets sent invoices by whole days since creation. Other
// statuses are ignored.
func BuildARAging(invoices []Invoice, now time.Time) *ARAging {
	out := newARAging()
	for _, inv := range invoices {
		if inv.Status != InvoiceStatusSent {
			continue
		}
		days := DaysOutstanding(inv.CreatedAt, now)
		g := out.Aging[AgingBucket(days)]
		g.Count++
		g.Total = g.Total.Add(inv.Total)
		g.Invoices = append(g.Invoices, AgingInvoice{
			InvoiceNumber:   inv.InvoiceNumber,
			CustomerName:    inv.CustomerName,
			Total:           inv.Total,
			Date:            inv.CreatedAt,
			DaysOutstanding: days,
		})
		out.TotalOutstanding = out.TotalOutstanding.Add(inv.Total)
		out.TotalInvoices++
	}
	return out
}

// ExportRow flattens an invoice for the workbook. The row date is the
// shipping date, falling back to the creation date in loc.
func ExportRow(inv Invoice, loc *time.Location) ExportInvoice {
	date := inv.ShippingDate.Time
	if inv.ShippingDate.IsZero() {
		date = inv.CreatedAt.In(loc)
	}
	row := ExportInvoice{
		InvoiceNumber: inv.InvoiceNumber,
		CustomerName:  inv.CustomerName,
		Date:          date,
		Quantity:      TotalQuantity(inv.Items),
		Total:         inv.Total,
		Paid:          inv.Status == InvoiceStatusPaid,
		CheckNumber:   inv.CheckNumber,
	}
	if row.Paid && inv.PaidAt != nil {
		paid := inv.PaidAt.In(loc)
		row.PaidAt = &paid
	}
	return row
}
