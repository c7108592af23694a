package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// DocumentRenderer turns invoice fields into printable documents.
type DocumentRenderer interface {
	InvoicePDF(ctx context.Context, doc InvoiceDocument) ([]byte, error)
	ShippingTagPDF(ctx context.Context, doc InvoiceDocument) ([]byte, error)
}

// InvoiceMailer delivers a rendered invoice.
type InvoiceMailer interface {
	SendInvoice(ctx context.Context, msg InvoiceEmail) error
}

// InvoiceService manages the invoice lifecycle: creation from an order,
// compliance edits, delivery by email and payment recording.
type InvoiceService interface {
	CreateInvoice(ctx context.Context, in CreateInvoiceInput) (*Invoice, error)
	GetInvoice(ctx context.Context, id int) (*Invoice, error)
	// GetInvoiceByOrder returns nil, nil when the order has not been invoiced.
	GetInvoiceByOrder(ctx context.Context, orderID int) (*Invoice, error)
	ListInvoices(ctx context.Context, f InvoiceFilter) (*InvoicePage, error)
	UpdateInvoice(ctx context.Context, id int, in UpdateInvoiceInput) (*Invoice, error)
	DeleteInvoice(ctx context.Context, id int) error

	SendInvoiceEmail(ctx context.Context, id int) (*Invoice, error)
	MarkInvoiceEmailSent(ctx context.Context, id int, in MarkEmailSentInput) (*Invoice, error)
	MarkInvoiceAsPaid(ctx context.Context, id int, in MarkPaidInput) (*Invoice, error)

	// InvoicePDF renders the current invoice data on every call.
	InvoicePDF(ctx context.Context, id int) (string, []byte, error)
	ShippingTagPDF(ctx context.Context, id int) (string, []byte, error)
}

// InvoiceOptions configures numbering, defaults and the business clock.
type InvoiceOptions struct {
	NumberBase           int64
	ShipperCertification string
	InternalEmail        string
	Location             *time.Location
	Now                  func() time.Time
}

type invoiceService struct {
	pool      *pgxpool.Pool
	sequences SequenceService
	renderer  DocumentRenderer
	mailer    InvoiceMailer
	opts      InvoiceOptions
}

func NewInvoiceService(pool *pgxpool.Pool, sequences SequenceService, renderer DocumentRenderer, mailer InvoiceMailer, opts InvoiceOptions) InvoiceService {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &invoiceService{pool: pool, sequences: sequences, renderer: renderer, mailer: mailer, opts: opts}
}

// ── Invoice Creation ─────────────────────────────────────────────────────────

func (s *invoiceService) CreateInvoice(ctx context.Context, in CreateInvoiceInput) (*Invoice, error) {
	if err := ValidateStruct(in); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Locking the order serialises concurrent attempts to invoice it.
	order, err := lockOrder(ctx, tx, in.Order.ID)
	if err != nil {
		return nil, err
	}

	var existing string
	err = tx.QueryRow(ctx, `SELECT invoice_number FROM invoices WHERE order_id = $1`, order.ID).Scan(&existing)
	if err == nil {
		return nil, Conflictf("invoice %s already exists for order %s", existing, order.OrderNumber)
	}
	if err != pgx.ErrNoRows {
		return nil, fmt.Errorf("failed to check existing invoice: %w", err)
	}

	if order.Status == OrderStatusCancelled {
		return nil, Validationf("cannot invoice cancelled order %s", order.OrderNumber)
	}

	customer, err := getCustomer(ctx, tx, order.CustomerID)
	if err != nil {
		return nil, err
	}
	items, err := loadOrderItems(ctx, tx, []int{order.ID})
	if err != nil {
		return nil, err
	}

	inv := s.draftFromOrder(order, customer, in)
	inv.Items = items[order.ID]

	n, err := s.sequences.Next(ctx, tx, InvoiceSequence, s.opts.NumberBase)
	if err != nil {
		return nil, err
	}
	inv.InvoiceNumber = FormatInvoiceNumber(n)

	err = tx.QueryRow(ctx, `
		INSERT INTO invoices (
			invoice_number, order_id, order_number, customer_id, customer_name,
			bill_to_business_name, bill_to_attention, bill_to_street, bill_to_city, bill_to_state, bill_to_zip,
			shipping_date, harvest_date, harvest_time, harvest_location, shipper_certification,
			departure_temperature, time_on_truck, delivered_by,
			subtotal, tax, total, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23)
		RETURNING id
	`,
		inv.InvoiceNumber, inv.OrderID, inv.OrderNumber, inv.CustomerID, inv.CustomerName,
		inv.BillTo.BusinessName, inv.BillTo.Attention, inv.BillTo.Address.Street, inv.BillTo.Address.City,
		inv.BillTo.Address.State, inv.BillTo.Address.Zip,
		inv.ShippingDate.Time, inv.HarvestDate.Time, inv.HarvestTime, inv.HarvestLocation, inv.ShipperCertification,
		inv.DepartureTemperature, inv.TimeOnTruck, inv.DeliveredBy,
		inv.Subtotal, inv.Tax, inv.Total, string(InvoiceStatusDraft),
	).Scan(&inv.ID)
	if err != nil {
		if uniqueViolation(err, "invoices_order_id_key") {
			return nil, Conflictf("an invoice already exists for order %s", order.OrderNumber)
		}
		return nil, fmt.Errorf("failed to insert invoice: %w", err)
	}

	for i, it := range inv.Items {
		_, err := tx.Exec(ctx, `
			INSERT INTO invoice_items (invoice_id, line_no, product_id, product_name, quantity, price_per_unit, line_total)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, inv.ID, i+1, it.ProductID, it.ProductName, it.Quantity, it.PricePerUnit, it.LineTotal)
		if err != nil {
			return nil, fmt.Errorf("failed to insert invoice item %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return s.GetInvoice(ctx, inv.ID)
}

// draftFromOrder snapshots the order and the customer's billing identity.
func (s *invoiceService) draftFromOrder(order *Order, customer *Customer, in CreateInvoiceInput) *Invoice {
	inv := &Invoice{
		OrderID:      order.ID,
		OrderNumber:  order.OrderNumber,
		CustomerID:   customer.ID,
		CustomerName: order.CustomerName,
		BillTo: BillTo{
			BusinessName: customer.BusinessName,
			Attention:    customer.Name,
			Address:      customer.BillingAddress.withDefaults(),
		},
		ShippingDate:         order.DeliveryDate,
		HarvestDate:          NewDate(s.opts.Now().In(s.opts.Location)),
		HarvestTime:          in.HarvestTime,
		HarvestLocation:      order.HarvestLocation,
		ShipperCertification: s.opts.ShipperCertification,
		DepartureTemperature: in.DepartureTemperature,
		TimeOnTruck:          in.TimeOnTruck,
		DeliveredBy:          in.DeliveredBy,
		Subtotal:             order.Subtotal,
		Tax:                  order.Tax,
		Total:                order.Total,
		Status:               InvoiceStatusDraft,
	}
	if in.ShippingDate != nil && !in.ShippingDate.IsZero() {
		inv.ShippingDate = *in.ShippingDate
	}
	if in.HarvestDate != nil && !in.HarvestDate.IsZero() {
		inv.HarvestDate = *in.HarvestDate
	}
	if in.HarvestLocation != nil && *in.HarvestLocation != "" {
		inv.HarvestLocation = strings.TrimSpace(*in.HarvestLocation)
	}
	if in.ShipperCertification != nil && *in.ShipperCertification != "" {
		inv.ShipperCertification = *in.ShipperCertification
	}
	return inv
}

// ── Queries ──────────────────────────────────────────────────────────────────

const invoiceColumns = `
	id, invoice_number, order_id, order_number, customer_id, customer_name,
	bill_to_business_name, bill_to_attention, bill_to_street, bill_to_city, bill_to_state, bill_to_zip,
	shipping_date, harvest_date, harvest_time, harvest_location, shipper_certification,
	departure_temperature, time_on_truck, delivered_by,
	subtotal, tax, total, status, email_sent_at, email_sent_to, paid_at, check_number, check_date,
	created_at, updated_at`

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	var shipping, harvest time.Time
	var checkDate *time.Time
	err := row.Scan(
		&inv.ID, &inv.InvoiceNumber, &inv.OrderID, &inv.OrderNumber, &inv.CustomerID, &inv.CustomerName,
		&inv.BillTo.BusinessName, &inv.BillTo.Attention, &inv.BillTo.Address.Street, &inv.BillTo.Address.City,
		&inv.BillTo.Address.State, &inv.BillTo.Address.Zip,
		&shipping, &harvest, &inv.HarvestTime, &inv.HarvestLocation, &inv.ShipperCertification,
		&inv.DepartureTemperature, &inv.TimeOnTruck, &inv.DeliveredBy,
		&inv.Subtotal, &inv.Tax, &inv.Total, &inv.Status, &inv.EmailSentAt, &inv.EmailSentTo, &inv.PaidAt,
		&inv.CheckNumber, &checkDate,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.ShippingDate = NewDate(shipping)
	inv.HarvestDate = NewDate(harvest)
	if checkDate != nil {
		d := NewDate(*checkDate)
		inv.CheckDate = &d
	}
	if inv.EmailSentTo == nil {
		inv.EmailSentTo = []string{}
	}
	inv.Items = []OrderItem{}
	return &inv, nil
}

// loadInvoiceItems returns the snapshot items of each invoice keyed by invoice id.
func loadInvoiceItems(ctx context.Context, q pgxQuerier, invoiceIDs []int) (map[int][]OrderItem, error) {
	rows, err := q.Query(ctx, `
		SELECT invoice_id, product_id, product_name, quantity, price_per_unit, line_total
		FROM invoice_items
		WHERE invoice_id = ANY($1)
		ORDER BY invoice_id, line_no
	`, invoiceIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoice items: %w", err)
	}
	defer rows.Close()

	out := make(map[int][]OrderItem, len(invoiceIDs))
	for rows.Next() {
		var invoiceID int
		var it OrderItem
		if err := rows.Scan(&invoiceID, &it.ProductID, &it.ProductName, &it.Quantity, &it.PricePerUnit, &it.LineTotal); err != nil {
			return nil, fmt.Errorf("failed to scan invoice item: %w", err)
		}
		out[invoiceID] = append(out[invoiceID], it)
	}
	return out, rows.Err()
}

// collectInvoices scans rows and attaches items to every invoice.
func collectInvoices(ctx context.Context, q pgxQuerier, rows pgx.Rows) ([]Invoice, error) {
	invoices := []Invoice{}
	var ids []int
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, *inv)
		ids = append(ids, inv.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invoices: %w", err)
	}
	if len(ids) == 0 {
		return invoices, nil
	}

	items, err := loadInvoiceItems(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	for i := range invoices {
		invoices[i].Items = append(invoices[i].Items, items[invoices[i].ID]...)
	}
	return invoices, nil
}

func getInvoice(ctx context.Context, q pgxQuerier, where string, arg any) (*Invoice, error) {
	inv, err := scanInvoice(q.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE `+where, arg))
	if err != nil {
		return nil, err
	}
	items, err := loadInvoiceItems(ctx, q, []int{inv.ID})
	if err != nil {
		return nil, err
	}
	inv.Items = append(inv.Items, items[inv.ID]...)
	return inv, nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, id int) (*Invoice, error) {
	inv, err := getInvoice(ctx, s.pool, "id = $1", id)
	if err != nil {
		return nil, notFoundOr(err, "invoice", id)
	}
	return inv, nil
}

func (s *invoiceService) GetInvoiceByOrder(ctx context.Context, orderID int) (*Invoice, error) {
	inv, err := getInvoice(ctx, s.pool, "order_id = $1", orderID)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice for order %d: %w", orderID, err)
	}
	return inv, nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, f InvoiceFilter) (*InvoicePage, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, Validationf("invalid status %q", f.Status)
	}
	page, limit, offset := normalizePage(f.Page, f.Limit)

	var from, to *time.Time
	if f.Year != 0 {
		start, end := YearRange(f.Year, s.opts.Location)
		from, to = &start, &end
	}

	const where = `
		WHERE ($1 = 0 OR customer_id = $1)
		  AND ($2 = '' OR status = $2)
		  AND ($3::timestamptz IS NULL OR created_at >= $3)
		  AND ($4::timestamptz IS NULL OR created_at < $4)`
	args := []any{f.CustomerID, string(f.Status), from, to}

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM invoices`+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count invoices: %w", err)
	}

	rows, err := s.pool.Query(ctx, `SELECT `+invoiceColumns+` FROM invoices`+where+`
		ORDER BY created_at DESC, id DESC
		LIMIT $5 OFFSET $6`, append(args, limit, offset)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	invoices, err := collectInvoices(ctx, s.pool, rows)
	if err != nil {
		return nil, err
	}
	return &InvoicePage{Invoices: invoices, Pagination: newPagination(page, limit, total)}, nil
}

// ── Invoice Lifecycle ────────────────────────────────────────────────────────

func lockInvoice(ctx context.Context, tx pgx.Tx, id int) (*Invoice, error) {
	inv, err := scanInvoice(tx.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, notFoundOr(err, "invoice", id)
	}
	return inv, nil
}

func (s *invoiceService) UpdateInvoice(ctx context.Context, id int, in UpdateInvoiceInput) (*Invoice, error) {
	if err := ValidateStruct(in); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	inv, err := lockInvoice(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if in.ShippingDate != nil {
		inv.ShippingDate = *in.ShippingDate
	}
	if in.HarvestDate != nil {
		inv.HarvestDate = *in.HarvestDate
	}
	setIf(&inv.HarvestTime, in.HarvestTime)
	setIf(&inv.HarvestLocation, in.HarvestLocation)
	setIf(&inv.ShipperCertification, in.ShipperCertification)
	setIf(&inv.DepartureTemperature, in.DepartureTemperature)
	setIf(&inv.TimeOnTruck, in.TimeOnTruck)
	setIf(&inv.DeliveredBy, in.DeliveredBy)

	if inv.ShippingDate.IsZero() || inv.HarvestDate.IsZero() {
		return nil, Validationf("shipping_date and harvest_date cannot be cleared")
	}

	if in.Status != nil {
		if !inv.Status.CanTransitionTo(*in.Status) {
			return nil, Validationf("cannot move invoice %s from %s to %s", inv.InvoiceNumber, inv.Status, *in.Status)
		}
		if *in.Status == InvoiceStatusPaid && inv.PaidAt == nil {
			now := s.opts.Now()
			inv.PaidAt = &now
		}
		inv.Status = *in.Status
	}

	_, err = tx.Exec(ctx, `
		UPDATE invoices
		SET shipping_date = $2, harvest_date = $3, harvest_time = $4, harvest_location = $5,
		    shipper_certification = $6, departure_temperature = $7, time_on_truck = $8,
		    delivered_by = $9, status = $10, paid_at = $11, updated_at = now()
		WHERE id = $1
	`, id, inv.ShippingDate.Time, inv.HarvestDate.Time, inv.HarvestTime, inv.HarvestLocation,
		inv.ShipperCertification, inv.DepartureTemperature, inv.TimeOnTruck,
		inv.DeliveredBy, string(inv.Status), inv.PaidAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update invoice %d: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return s.GetInvoice(ctx, id)
}

func setIf(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func (s *invoiceService) DeleteInvoice(ctx context.Context, id int) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	inv, err := lockInvoice(ctx, tx, id)
	if err != nil {
		return err
	}
	if inv.Status != InvoiceStatusDraft {
		return Conflictf("can only delete draft invoices, invoice %s is %s", inv.InvoiceNumber, inv.Status)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete invoice %d: %w", id, err)
	}
	return tx.Commit(ctx)
}

// ── Delivery ─────────────────────────────────────────────────────────────────

// InvoiceRecipients resolves the customer's billing addresses: the accounting
// email (or the contact email when absent) plus any additional accounting email,
// followed by the internal copy address. Duplicates are removed case-insensitively.
func InvoiceRecipients(c *Customer, internal string) ([]string, error) {
	primary := strings.TrimSpace(c.AccountingEmail)
	if primary == "" {
		primary = strings.TrimSpace(c.ContactEmail)
	}
	if primary == "" {
		return nil, Validationf("customer %s has no accounting or contact email", c.BusinessName)
	}

	var out []string
	seen := map[string]bool{}
	for _, addr := range []string{primary, c.AdditionalAccountingEmail, internal} {
		addr = strings.TrimSpace(addr)
		key := strings.ToLower(addr)
		if addr == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, addr)
	}
	return out, nil
}

func (s *invoiceService) SendInvoiceEmail(ctx context.Context, id int) (*Invoice, error) {
	inv, err := s.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	customer, err := getCustomer(ctx, s.pool, inv.CustomerID)
	if err != nil {
		return nil, err
	}

	recipients, err := InvoiceRecipients(customer, s.opts.InternalEmail)
	if err != nil {
		return nil, err
	}

	doc := inv.Document()
	pdf, err := s.renderer.InvoicePDF(ctx, doc)
	if err != nil {
		return nil, Unavailable(err, "failed to render invoice %s", inv.InvoiceNumber)
	}
	attachments := []Attachment{{Filename: inv.PDFFilename(), ContentType: "application/pdf", Content: pdf}}

	if customer.RequiresShippingTag {
		tag, err := s.renderer.ShippingTagPDF(ctx, doc)
		if err != nil {
			return nil, Unavailable(err, "failed to render shipping tag for %s", inv.InvoiceNumber)
		}
		attachments = append(attachments, Attachment{Filename: inv.ShippingTagFilename(), ContentType: "application/pdf", Content: tag})
	}

	err = s.mailer.SendInvoice(ctx, InvoiceEmail{
		To:            recipients,
		InvoiceNumber: inv.InvoiceNumber,
		CustomerName:  inv.CustomerName,
		Total:         inv.Total,
		ShippingDate:  inv.ShippingDate,
		Attachments:   attachments,
	})
	if err != nil {
		return nil, Unavailable(err, "failed to email invoice %s", inv.InvoiceNumber)
	}

	log.Info().
		Str("invoice", inv.InvoiceNumber).
		Strs("to", recipients).
		Bool("shipping_tag", customer.RequiresShippingTag).
		Msg("invoice emailed")

	return s.recordSent(ctx, id, recipients)
}

func (s *invoiceService) MarkInvoiceEmailSent(ctx context.Context, id int, in MarkEmailSentInput) (*Invoice, error) {
	if err := ValidateStruct(in); err != nil {
		return nil, err
	}
	return s.recordSent(ctx, id, in.SentTo)
}

// recordSent moves a draft to sent and stamps the delivery. Sent and paid
// invoices keep their status but record the latest delivery.
func (s *invoiceService) recordSent(ctx context.Context, id int, sentTo []string) (*Invoice, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE invoices
		SET status = CASE WHEN status = 'draft' THEN 'sent' ELSE status END,
		    email_sent_at = $2, email_sent_to = $3, updated_at = now()
		WHERE id = $1
	`, id, s.opts.Now(), sentTo)
	if err != nil {
		return nil, fmt.Errorf("failed to record email for invoice %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, NotFoundf("invoice %d not found", id)
	}
	return s.GetInvoice(ctx, id)
}

func (s *invoiceService) MarkInvoiceAsPaid(ctx context.Context, id int, in MarkPaidInput) (*Invoice, error) {
	if err := ValidateStruct(in); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	inv, err := lockInvoice(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if inv.Status == InvoiceStatusPaid {
		return nil, Validationf("invoice %s is already paid", inv.InvoiceNumber)
	}

	paidAt := s.opts.Now()
	if in.PaidAt != nil && !in.PaidAt.IsZero() {
		paidAt = *in.PaidAt
	}
	var checkDate *time.Time
	if in.CheckDate != nil && !in.CheckDate.IsZero() {
		checkDate = &in.CheckDate.Time
	}

	_, err = tx.Exec(ctx, `
		UPDATE invoices
		SET status = 'paid', paid_at = $2, check_number = $3, check_date = $4, updated_at = now()
		WHERE id = $1
	`, id, paidAt, strings.TrimSpace(in.CheckNumber), checkDate)
	if err != nil {
		return nil, fmt.Errorf("failed to mark invoice %d paid: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return s.GetInvoice(ctx, id)
}

// ── Documents ────────────────────────────────────────────────────────────────

func (s *invoiceService) InvoicePDF(ctx context.Context, id int) (string, []byte, error) {
	inv, err := s.GetInvoice(ctx, id)
	if err != nil {
		return "", nil, err
	}
	pdf, err := s.renderer.InvoicePDF(ctx, inv.Document())
	if err != nil {
		return "", nil, Unavailable(err, "failed to render invoice %s", inv.InvoiceNumber)
	}
	return inv.PDFFilename(), pdf, nil
}

func (s *invoiceService) ShippingTagPDF(ctx context.Context, id int) (string, []byte, error) {
	inv, err := s.GetInvoice(ctx, id)
	if err != nil {
		return "", nil, err
	}
	pdf, err := s.renderer.ShippingTagPDF(ctx, inv.Document())
	if err != nil {
		return "", nil, Unavailable(err, "failed to render shipping tag for %s", inv.InvoiceNumber)
	}
	return inv.ShippingTagFilename(), pdf, nil
}
