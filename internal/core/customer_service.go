package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CustomerService manages customer records and their custom price lists.
type CustomerService interface {
	ListCustomers(ctx context.Context, search string) ([]Customer, error)
	GetCustomer(ctx context.Context, id int) (*Customer, error)
	// GetCustomerBySlug is used by the public order portal and only returns active customers.
	GetCustomerBySlug(ctx context.Context, slug string) (*Customer, error)
	CreateCustomer(ctx context.Context, in CustomerInput) (*Customer, error)
	UpdateCustomer(ctx context.Context, id int, in CustomerInput) (*Customer, error)
	// DeleteCustomer fails with Conflict if any order references the customer.
	DeleteCustomer(ctx context.Context, id int) error
	GetCustomerPricing(ctx context.Context, id int) ([]PriceListEntry, error)
	// ListReminderRecipients returns active customers with reminders enabled for weekday.
	ListReminderRecipients(ctx context.Context, weekday string) ([]Customer, error)
}

type customerService struct {
	pool *pgxpool.Pool
}

func NewCustomerService(pool *pgxpool.Pool) CustomerService {
	return &customerService{pool: pool}
}

const customerColumns = `
	id, name, business_name, slug,
	billing_street, billing_city, billing_state, billing_zip,
	shipping_street, shipping_city, shipping_state, shipping_zip,
	contact_email, accounting_email, additional_accounting_email, phone,
	accounting_person, accounting_phone, contact_person2, contact_person2_phone,
	payment_alias, payment_method, reminder_enabled, reminder_day,
	requires_shipping_tag, notes, is_active, created_at, updated_at`

func scanCustomer(row pgx.Row) (*Customer, error) {
	var c Customer
	err := row.Scan(
		&c.ID, &c.Name, &c.BusinessName, &c.Slug,
		&c.BillingAddress.Street, &c.BillingAddress.City, &c.BillingAddress.State, &c.BillingAddress.Zip,
		&c.ShippingAddress.Street, &c.ShippingAddress.City, &c.ShippingAddress.State, &c.ShippingAddress.Zip,
		&c.ContactEmail, &c.AccountingEmail, &c.AdditionalAccountingEmail, &c.Phone,
		&c.AccountingPerson, &c.AccountingPhone, &c.ContactPerson2, &c.ContactPerson2Phone,
		&c.PaymentAlias, &c.PaymentMethod, &c.ReminderEnabled, &c.ReminderDay,
		&c.RequiresShippingTag, &c.Notes, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.CustomPricing = []CustomPrice{}
	return &c, nil
}

func (s *customerService) ListCustomers(ctx context.Context, search string) ([]Customer, error) {
	pattern := "%" + strings.TrimSpace(search) + "%"
	rows, err := s.pool.Query(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		WHERE business_name ILIKE $1 OR name ILIKE $1
		ORDER BY business_name
	`, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	customers, err := collectCustomers(rows)
	if err != nil {
		return nil, err
	}

	if err := s.attachPricing(ctx, customers); err != nil {
		return nil, err
	}
	return customers, nil
}

func collectCustomers(rows pgx.Rows) ([]Customer, error) {
	defer rows.Close()
	customers := []Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, *c)
	}
	return customers, rows.Err()
}

// attachPricing loads custom prices for all customers in one query.
func (s *customerService) attachPricing(ctx context.Context, customers []Customer) error {
	if len(customers) == 0 {
		return nil
	}
	ids := make([]int, len(customers))
	byID := make(map[int]int, len(customers))
	for i, c := range customers {
		ids[i] = c.ID
		byID[c.ID] = i
	}

	rows, err := s.pool.Query(ctx, `
		SELECT customer_id, product_id, price
		FROM customer_prices
		WHERE customer_id = ANY($1)
		ORDER BY customer_id, product_id
	`, ids)
	if err != nil {
		return fmt.Errorf("failed to query custom pricing: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var customerID int
		var cp CustomPrice
		if err := rows.Scan(&customerID, &cp.ProductID, &cp.Price); err != nil {
			return fmt.Errorf("failed to scan custom price: %w", err)
		}
		i := byID[customerID]
		customers[i].CustomPricing = append(customers[i].CustomPricing, cp)
	}
	return rows.Err()
}

func (s *customerService) GetCustomer(ctx context.Context, id int) (*Customer, error) {
	return getCustomer(ctx, s.pool, id)
}

// getCustomer loads a customer and its custom pricing through any querier.
func getCustomer(ctx context.Context, q pgxQuerier, id int) (*Customer, error) {
	c, err := scanCustomer(q.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id))
	if err != nil {
		return nil, notFoundOr(err, "customer", id)
	}
	if err := loadPricing(ctx, q, c); err != nil {
		return nil, err
	}
	return c, nil
}

func loadPricing(ctx context.Context, q pgxQuerier, c *Customer) error {
	rows, err := q.Query(ctx, `
		SELECT product_id, price FROM customer_prices WHERE customer_id = $1 ORDER BY product_id
	`, c.ID)
	if err != nil {
		return fmt.Errorf("failed to query custom pricing for customer %d: %w", c.ID, err)
	}
	defer rows.Close()
	for rows.Next() {
		var cp CustomPrice
		if err := rows.Scan(&cp.ProductID, &cp.Price); err != nil {
			return fmt.Errorf("failed to scan custom price: %w", err)
		}
		c.CustomPricing = append(c.CustomPricing, cp)
	}
	return rows.Err()
}

func (s *customerService) GetCustomerBySlug(ctx context.Context, slug string) (*Customer, error) {
	return getCustomerBySlug(ctx, s.pool, slug)
}

func getCustomerBySlug(ctx context.Context, q pgxQuerier, slug string) (*Customer, error) {
	c, err := scanCustomer(q.QueryRow(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE slug = $1 AND is_active`, strings.ToLower(slug)))
	if err != nil {
		return nil, notFoundOr(err, "customer", slug)
	}
	if err := loadPricing(ctx, q, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *customerService) CreateCustomer(ctx context.Context, in CustomerInput) (*Customer, error) {
	if err := ValidateStruct(in); err != nil {
		return nil, err
	}
	slug, err := customerSlug(in)
	if err != nil {
		return nil, err
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	billing, shipping := in.BillingAddress.withDefaults(), in.ShippingAddress.withDefaults()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var id int
	err = tx.QueryRow(ctx, `
		INSERT INTO customers (
			name, business_name, slug,
			billing_street, billing_city, billing_state, billing_zip,
			shipping_street, shipping_city, shipping_state, shipping_zip,
			contact_email, accounting_email, additional_accounting_email, phone,
			accounting_person, accounting_phone, contact_person2, contact_person2_phone,
			payment_alias, payment_method, reminder_enabled, reminder_day,
			requires_shipping_tag, notes, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26)
		RETURNING id
	`,
		in.Name, strings.TrimSpace(in.BusinessName), slug,
		billing.Street, billing.City, billing.State, billing.Zip,
		shipping.Street, shipping.City, shipping.State, shipping.Zip,
		strings.ToLower(in.ContactEmail), strings.ToLower(in.AccountingEmail), strings.ToLower(in.AdditionalAccountingEmail), in.Phone,
		in.AccountingPerson, in.AccountingPhone, in.ContactPerson2, in.ContactPerson2Phone,
		in.PaymentAlias, in.PaymentMethod, in.ReminderEnabled, in.reminderDay(),
		in.RequiresShippingTag, in.Notes, active,
	).Scan(&id)
	if err != nil {
		if uniqueViolation(err, "") {
			return nil, Conflictf("customer slug %q is already in use", slug)
		}
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	if err := replacePricing(ctx, tx, id, in.CustomPricing); err != nil {
		return nil, err
	}

	c, err := getCustomer(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return c, nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, id int, in CustomerInput) (*Customer, error) {
	if err := ValidateStruct(in); err != nil {
		return nil, err
	}
	slug, err := customerSlug(in)
	if err != nil {
		return nil, err
	}
	billing, shipping := in.BillingAddress.withDefaults(), in.ShippingAddress.withDefaults()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE customers SET
			name = $2, business_name = $3, slug = $4,
			billing_street = $5, billing_city = $6, billing_state = $7, billing_zip = $8,
			shipping_street = $9, shipping_city = $10, shipping_state = $11, shipping_zip = $12,
			contact_email = $13, accounting_email = $14, additional_accounting_email = $15, phone = $16,
			accounting_person = $17, accounting_phone = $18, contact_person2 = $19, contact_person2_phone = $20,
			payment_alias = $21, payment_method = $22, reminder_enabled = $23, reminder_day = $24,
			requires_shipping_tag = $25, notes = $26, is_active = COALESCE($27, is_active),
			updated_at = now()
		WHERE id = $1
	`,
		id, in.Name, strings.TrimSpace(in.BusinessName), slug,
		billing.Street, billing.City, billing.State, billing.Zip,
		shipping.Street, shipping.City, shipping.State, shipping.Zip,
		strings.ToLower(in.ContactEmail), strings.ToLower(in.AccountingEmail), strings.ToLower(in.AdditionalAccountingEmail), in.Phone,
		in.AccountingPerson, in.AccountingPhone, in.ContactPerson2, in.ContactPerson2Phone,
		in.PaymentAlias, in.PaymentMethod, in.ReminderEnabled, in.reminderDay(),
		in.RequiresShippingTag, in.Notes, in.IsActive,
	)
	if err != nil {
		if uniqueViolation(err, "") {
			return nil, Conflictf("customer slug %q is already in use", slug)
		}
		return nil, fmt.Errorf("failed to update customer %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, NotFoundf("customer %d not found", id)
	}

	if err := replacePricing(ctx, tx, id, in.CustomPricing); err != nil {
		return nil, err
	}

	c, err := getCustomer(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return c, nil
}

func customerSlug(in CustomerInput) (string, error) {
	source := in.Slug
	if strings.TrimSpace(source) == "" {
		source = in.BusinessName
	}
	slug := Slugify(source)
	if slug == "" {
		return "", Validationf("cannot derive a slug from %q", source)
	}
	return slug, nil
}

// replacePricing swaps the customer's override list inside tx. Every entry must
// reference an existing product.
func replacePricing(ctx context.Context, tx pgx.Tx, customerID int, pricing []CustomPrice) error {
	if _, err := tx.Exec(ctx, `DELETE FROM customer_prices WHERE customer_id = $1`, customerID); err != nil {
		return fmt.Errorf("failed to clear custom pricing: %w", err)
	}
	seen := make(map[int]bool, len(pricing))
	for _, cp := range pricing {
		if seen[cp.ProductID] {
			return Validationf("duplicate custom price for product %d", cp.ProductID)
		}
		seen[cp.ProductID] = true

		if _, err := getProduct(ctx, tx, cp.ProductID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO customer_prices (customer_id, product_id, price) VALUES ($1, $2, $3)
		`, customerID, cp.ProductID, cp.Price.Round(2)); err != nil {
			return fmt.Errorf("failed to insert custom price: %w", err)
		}
	}
	return nil
}

func (s *customerService) DeleteCustomer(ctx context.Context, id int) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT true FROM customers WHERE id = $1 FOR UPDATE`, id).Scan(&exists); err != nil {
		return notFoundOr(err, "customer", id)
	}

	var orderCount int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE customer_id = $1`, id).Scan(&orderCount); err != nil {
		return fmt.Errorf("failed to count orders for customer %d: %w", id, err)
	}
	if orderCount > 0 {
		return Conflictf("cannot delete customer with %d existing orders", orderCount)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete customer %d: %w", id, err)
	}
	return tx.Commit(ctx)
}

func (s *customerService) GetCustomerPricing(ctx context.Context, id int) ([]PriceListEntry, error) {
	c, err := getCustomer(ctx, s.pool, id)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `SELECT `+productColumns+` FROM products WHERE is_active ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	entries := []PriceListEntry{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		price := ResolvePrice(c.CustomPricing, p.ID, p.BasePrice)
		entries = append(entries, PriceListEntry{
			ProductID:      p.ID,
			ProductName:    p.Name,
			Unit:           p.Unit,
			BasePrice:      p.BasePrice,
			Price:          price,
			HasCustomPrice: hasOverride(c.CustomPricing, p.ID),
		})
	}
	return entries, rows.Err()
}

func hasOverride(pricing []CustomPrice, productID int) bool {
	for _, cp := range pricing {
		if cp.ProductID == productID {
			return true
		}
	}
	return false
}

func (s *customerService) ListReminderRecipients(ctx context.Context, weekday string) ([]Customer, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		WHERE is_active AND reminder_enabled AND reminder_day = $1
		ORDER BY business_name
	`, weekday)
	if err != nil {
		return nil, fmt.Errorf("failed to query reminder recipients: %w", err)
	}
	return collectCustomers(rows)
}
