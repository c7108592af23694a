package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// OrderService manages the order lifecycle: intake, pricing, numbering and status.
type OrderService interface {
	// CreateOrder records an order entered by staff (or any caller that supplies prices).
	CreateOrder(ctx context.Context, in CreateOrderInput) (*OrderView, error)
	// CreatePublicOrder records a portal order; prices come from the customer's price list.
	CreatePublicOrder(ctx context.Context, in PublicOrderInput) (*OrderView, error)
	GetOrder(ctx context.Context, id int) (*OrderView, error)
	ListOrders(ctx context.Context, f OrderFilter) (*OrderPage, error)
	UpdateOrder(ctx context.Context, id int, in UpdateOrderInput) (*OrderView, error)
	UpdateOrderStatus(ctx context.Context, id int, status OrderStatus) (*OrderView, error)
	// DeleteOrder removes a pending order. Its number is not reissued.
	DeleteOrder(ctx context.Context, id int) error
	GetOrderStats(ctx context.Context) (*OrderStats, error)
}

// OrderOptions configures numbering and the business clock.
type OrderOptions struct {
	NumberBase int64
	Location   *time.Location
	Now        func() time.Time
}

type orderService struct {
	pool      *pgxpool.Pool
	sequences SequenceService
	opts      OrderOptions
}

func NewOrderService(pool *pgxpool.Pool, sequences SequenceService, opts OrderOptions) OrderService {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &orderService{pool: pool, sequences: sequences, opts: opts}
}

// ── Order Intake ─────────────────────────────────────────────────────────────

func (s *orderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*OrderView, error) {
	if err := ValidateStruct(in); err != nil {
		return nil, err
	}
	source := in.Source
	if source == "" {
		source = OrderSourceInternal
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	customer, err := getCustomer(ctx, tx, in.Customer.ID)
	if err != nil {
		return nil, err
	}

	items, err := buildItems(ctx, tx, customer, in.Items, source)
	if err != nil {
		return nil, err
	}

	id, err := s.insertOrder(ctx, tx, newOrder{
		customer:        customer,
		items:           items,
		deliveryDate:    in.DeliveryDate,
		harvestLocation: strings.TrimSpace(in.HarvestLocation),
		notes:           in.Notes,
		source:          source,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return s.GetOrder(ctx, id)
}

func (s *orderService) CreatePublicOrder(ctx context.Context, in PublicOrderInput) (*OrderView, error) {
	if err := ValidateStruct(in); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	customer, err := getCustomerBySlug(ctx, tx, in.CustomerSlug)
	if err != nil {
		return nil, err
	}

	lines := make([]OrderLineInput, len(in.Items))
	for i, it := range in.Items {
		lines[i] = OrderLineInput{Product: it.Product, Quantity: it.Quantity}
	}
	items, err := buildItems(ctx, tx, customer, lines, OrderSourcePortal)
	if err != nil {
		return nil, err
	}

	id, err := s.insertOrder(ctx, tx, newOrder{
		customer:     customer,
		items:        items,
		deliveryDate: in.DeliveryDate,
		notes:        in.Notes,
		source:       OrderSourcePortal,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return s.GetOrder(ctx, id)
}

// buildItems resolves every product and fixes each line's price. Portal lines
// always take the customer's price list; internal lines must carry a price.
func buildItems(ctx context.Context, q pgxQuerier, customer *Customer, lines []OrderLineInput, source OrderSource) ([]OrderItem, error) {
	items := make([]OrderItem, 0, len(lines))
	for i, line := range lines {
		product, err := getProduct(ctx, q, line.Product.ID)
		if err != nil {
			return nil, err
		}

		var price decimal.Decimal
		switch {
		case source == OrderSourcePortal:
			if !product.IsActive {
				return nil, Validationf("product %q is no longer available", product.Name)
			}
			price = ResolvePrice(customer.CustomPricing, product.ID, product.BasePrice)
		case line.PricePerUnit == nil:
			return nil, Validationf("items[%d].price_per_unit is required", i)
		default:
			price = line.PricePerUnit.Round(2)
		}

		items = append(items, OrderItem{
			ProductID:    product.ID,
			ProductName:  product.Name,
			Quantity:     line.Quantity,
			PricePerUnit: price,
		})
	}
	return items, nil
}

type newOrder struct {
	customer        *Customer
	items           []OrderItem
	deliveryDate    Date
	harvestLocation string
	notes           string
	source          OrderSource
}

// insertOrder numbers, totals and writes an order with its items inside tx.
func (s *orderService) insertOrder(ctx context.Context, tx pgx.Tx, o newOrder) (int, error) {
	totals := ComputeTotals(o.items)

	n, err := s.sequences.Next(ctx, tx, OrderSequence, s.opts.NumberBase)
	if err != nil {
		return 0, err
	}
	orderNumber := FormatOrderNumber(n)

	var id int
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (order_number, customer_id, customer_name, harvest_location,
			subtotal, tax, total, status, order_source, delivery_date, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`, orderNumber, o.customer.ID, o.customer.BusinessName, o.harvestLocation,
		totals.Subtotal, totals.Tax, totals.Total, string(OrderStatusPending), string(o.source),
		o.deliveryDate.Time, o.notes,
	).Scan(&id)
	if err != nil {
		if uniqueViolation(err, "") {
			return 0, Conflictf("order number %s is already taken", orderNumber)
		}
		return 0, fmt.Errorf("failed to insert order: %w", err)
	}

	if err := insertOrderItems(ctx, tx, id, o.items); err != nil {
		return 0, err
	}
	return id, nil
}

func insertOrderItems(ctx context.Context, tx pgx.Tx, orderID int, items []OrderItem) error {
	for i, it := range items {
		_, err := tx.Exec(ctx, `
			INSERT INTO order_items (order_id, line_no, product_id, product_name, quantity, price_per_unit, line_total)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, orderID, i+1, it.ProductID, it.ProductName, it.Quantity, it.PricePerUnit, it.LineTotal)
		if err != nil {
			return fmt.Errorf("failed to insert order item %d: %w", i+1, err)
		}
	}
	return nil
}

// ── Queries ──────────────────────────────────────────────────────────────────

const orderViewSelect = `
	SELECT o.id, o.order_number, o.customer_id, o.customer_name, o.harvest_location,
	       o.subtotal, o.tax, o.total, o.status, o.order_source, o.delivery_date, o.notes,
	       o.created_at, o.updated_at,
	       c.business_name, c.contact_email, c.accounting_email, c.phone,
	       c.billing_street, c.billing_city, c.billing_state, c.billing_zip,
	       i.id
	FROM orders o
	JOIN customers c ON c.id = o.customer_id
	LEFT JOIN invoices i ON i.order_id = o.id`

func scanOrderView(row pgx.Row) (*OrderView, error) {
	var v OrderView
	var delivery time.Time
	err := row.Scan(
		&v.ID, &v.OrderNumber, &v.CustomerID, &v.CustomerName, &v.HarvestLocation,
		&v.Subtotal, &v.Tax, &v.Total, &v.Status, &v.Source, &delivery, &v.Notes,
		&v.CreatedAt, &v.UpdatedAt,
		&v.Customer.BusinessName, &v.Customer.ContactEmail, &v.Customer.AccountingEmail, &v.Customer.Phone,
		&v.Customer.BillingAddress.Street, &v.Customer.BillingAddress.City,
		&v.Customer.BillingAddress.State, &v.Customer.BillingAddress.Zip,
		&v.InvoiceID,
	)
	if err != nil {
		return nil, err
	}
	v.DeliveryDate = NewDate(delivery)
	v.Customer.ID = v.CustomerID
	v.Items = []OrderItem{}
	return &v, nil
}

func (s *orderService) GetOrder(ctx context.Context, id int) (*OrderView, error) {
	return getOrderView(ctx, s.pool, id)
}

func getOrderView(ctx context.Context, q pgxQuerier, id int) (*OrderView, error) {
	v, err := scanOrderView(q.QueryRow(ctx, orderViewSelect+` WHERE o.id = $1`, id))
	if err != nil {
		return nil, notFoundOr(err, "order", id)
	}
	items, err := loadOrderItems(ctx, q, []int{id})
	if err != nil {
		return nil, err
	}
	v.Items = append(v.Items, items[id]...)
	return v, nil
}

// loadOrderItems returns the items of each order keyed by order id, in line order.
func loadOrderItems(ctx context.Context, q pgxQuerier, orderIDs []int) (map[int][]OrderItem, error) {
	rows, err := q.Query(ctx, `
		SELECT order_id, product_id, product_name, quantity, price_per_unit, line_total
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, line_no
	`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	out := make(map[int][]OrderItem, len(orderIDs))
	for rows.Next() {
		var orderID int
		var it OrderItem
		if err := rows.Scan(&orderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.PricePerUnit, &it.LineTotal); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		out[orderID] = append(out[orderID], it)
	}
	return out, rows.Err()
}

func (s *orderService) ListOrders(ctx context.Context, f OrderFilter) (*OrderPage, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, Validationf("invalid status %q", f.Status)
	}
	page, limit, offset := normalizePage(f.Page, f.Limit)

	var start, end *time.Time
	if f.StartDate != nil {
		start = &f.StartDate.Time
	}
	if f.EndDate != nil {
		end = &f.EndDate.Time
	}

	const where = `
		WHERE ($1 = 0 OR o.customer_id = $1)
		  AND ($2 = '' OR o.status = $2)
		  AND ($3::date IS NULL OR o.delivery_date >= $3::date)
		  AND ($4::date IS NULL OR o.delivery_date <= $4::date)`
	args := []any{f.CustomerID, string(f.Status), start, end}

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders o`+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	rows, err := s.pool.Query(ctx, orderViewSelect+where+`
		ORDER BY o.created_at DESC, o.id DESC
		LIMIT $5 OFFSET $6`, append(args, limit, offset)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []OrderView{}
	var ids []int
	for rows.Next() {
		v, err := scanOrderView(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *v)
		ids = append(ids, v.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}
	rows.Close()

	if len(ids) > 0 {
		items, err := loadOrderItems(ctx, s.pool, ids)
		if err != nil {
			return nil, err
		}
		for i := range orders {
			orders[i].Items = append(orders[i].Items, items[orders[i].ID]...)
		}
	}

	return &OrderPage{Orders: orders, Pagination: newPagination(page, limit, total)}, nil
}

// ── Order Lifecycle ──────────────────────────────────────────────────────────

// lockOrder reads the order header FOR UPDATE so concurrent edits serialise.
func lockOrder(ctx context.Context, tx pgx.Tx, id int) (*Order, error) {
	var o Order
	var delivery time.Time
	err := tx.QueryRow(ctx, `
		SELECT id, order_number, customer_id, customer_name, harvest_location,
		       subtotal, tax, total, status, order_source, delivery_date, notes, created_at, updated_at
		FROM orders WHERE id = $1
		FOR UPDATE
	`, id).Scan(&o.ID, &o.OrderNumber, &o.CustomerID, &o.CustomerName, &o.HarvestLocation,
		&o.Subtotal, &o.Tax, &o.Total, &o.Status, &o.Source, &delivery, &o.Notes, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, notFoundOr(err, "order", id)
	}
	o.DeliveryDate = NewDate(delivery)
	return &o, nil
}

func (s *orderService) UpdateOrder(ctx context.Context, id int, in UpdateOrderInput) (*OrderView, error) {
	if err := ValidateStruct(in); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	order, err := lockOrder(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if order.Status.Terminal() {
		return nil, Conflictf("cannot update %s orders", order.Status)
	}

	if in.Items != nil {
		customer, err := getCustomer(ctx, tx, order.CustomerID)
		if err != nil {
			return nil, err
		}
		items, err := buildItems(ctx, tx, customer, in.Items, order.Source)
		if err != nil {
			return nil, err
		}
		totals := ComputeTotals(items)

		if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, id); err != nil {
			return nil, fmt.Errorf("failed to clear order items: %w", err)
		}
		if err := insertOrderItems(ctx, tx, id, items); err != nil {
			return nil, err
		}
		order.Subtotal, order.Tax, order.Total = totals.Subtotal, totals.Tax, totals.Total
	}
	if in.DeliveryDate != nil {
		order.DeliveryDate = *in.DeliveryDate
	}
	if in.HarvestLocation != nil {
		order.HarvestLocation = strings.TrimSpace(*in.HarvestLocation)
	}
	if in.Notes != nil {
		order.Notes = *in.Notes
	}

	_, err = tx.Exec(ctx, `
		UPDATE orders
		SET subtotal = $2, tax = $3, total = $4, delivery_date = $5, harvest_location = $6,
		    notes = $7, updated_at = now()
		WHERE id = $1
	`, id, order.Subtotal, order.Tax, order.Total, order.DeliveryDate.Time, order.HarvestLocation, order.Notes)
	if err != nil {
		return nil, fmt.Errorf("failed to update order %d: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return s.GetOrder(ctx, id)
}

func (s *orderService) UpdateOrderStatus(ctx context.Context, id int, status OrderStatus) (*OrderView, error) {
	if !status.Valid() {
		return nil, Validationf("invalid status %q: must be one of pending, confirmed, delivered, cancelled", status)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	order, err := lockOrder(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(status) {
		return nil, Validationf("cannot move order %s from %s to %s", order.OrderNumber, order.Status, status)
	}

	if order.Status != status {
		if _, err := tx.Exec(ctx, `UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`, id, string(status)); err != nil {
			return nil, fmt.Errorf("failed to update order status: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return s.GetOrder(ctx, id)
}

func (s *orderService) DeleteOrder(ctx context.Context, id int) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	order, err := lockOrder(ctx, tx, id)
	if err != nil {
		return err
	}
	if order.Status != OrderStatusPending {
		return Conflictf("can only delete pending orders, order %s is %s", order.OrderNumber, order.Status)
	}

	var invoiced bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM invoices WHERE order_id = $1)`, id).Scan(&invoiced); err != nil {
		return fmt.Errorf("failed to check invoices for order %d: %w", id, err)
	}
	if invoiced {
		return Conflictf("order %s has an invoice and cannot be deleted", order.OrderNumber)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete order %d: %w", id, err)
	}
	return tx.Commit(ctx)
}

// ── Stats ────────────────────────────────────────────────────────────────────

func (s *orderService) GetOrderStats(ctx context.Context) (*OrderStats, error) {
	now := s.opts.Now().In(s.opts.Location)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.opts.Location)
	weekAgo := today.AddDate(0, 0, -7)

	var st OrderStats
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'pending'),
		       COUNT(*) FILTER (WHERE created_at >= $1),
		       COALESCE(SUM(total) FILTER (WHERE created_at >= $2), 0),
		       COUNT(*) FILTER (WHERE created_at >= $2)
		FROM orders
	`, today, weekAgo).Scan(&st.TotalOrders, &st.PendingOrders, &st.TodayOrders, &st.WeeklyTotal, &st.WeeklyCount)
	if err != nil {
		return nil, fmt.Errorf("failed to compute order stats: %w", err)
	}
	return &st, nil
}
