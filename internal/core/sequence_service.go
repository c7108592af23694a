package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Sequence identifies a durable document-number counter.
type Sequence struct {
	Name string
	// seedQuery returns the highest number already stored for this document type.
	seedQuery string
}

var (
	OrderSequence = Sequence{
		Name: "order",
		seedQuery: `SELECT COALESCE(MAX(NULLIF(regexp_replace(order_number, '\D', '', 'g'), '')::bigint), 0)
			FROM orders`,
	}
	InvoiceSequence = Sequence{
		Name: "invoice",
		seedQuery: `SELECT COALESCE(MAX(NULLIF(regexp_replace(invoice_number, '\D', '', 'g'), '')::bigint), 0)
			FROM invoices`,
	}
)

// SequenceService hands out strictly increasing numbers. Each call is a single
// atomic increment on number_sequences, so numbers are unique across processes
// and are never reused, even when the document holding one is later deleted.
type SequenceService interface {
	// Next returns the next number for seq inside the caller's transaction.
	// An unused counter is seeded from max(base, highest stored number).
	Next(ctx context.Context, tx pgx.Tx, seq Sequence, base int64) (int64, error)
}

type sequenceService struct{}

func NewSequenceService() SequenceService {
	return &sequenceService{}
}

func (s *sequenceService) Next(ctx context.Context, tx pgx.Tx, seq Sequence, base int64) (int64, error) {
	var n int64
	err := tx.QueryRow(ctx, `
		UPDATE number_sequences SET last_number = last_number + 1
		WHERE name = $1
		RETURNING last_number
	`, seq.Name).Scan(&n)
	if err == nil {
		return n, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("failed to advance %s sequence: %w", seq.Name, err)
	}

	// First use: seed from existing data. ON CONFLICT covers a concurrent first use.
	err = tx.QueryRow(ctx, `
		INSERT INTO number_sequences (name, last_number)
		VALUES ($1, GREATEST($2::bigint, (`+seq.seedQuery+`)) + 1)
		ON CONFLICT (name) DO UPDATE SET last_number = number_sequences.last_number + 1
		RETURNING last_number
	`, seq.Name, base).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to seed %s sequence: %w", seq.Name, err)
	}
	return n, nil
}

// FormatOrderNumber renders an order number as a plain decimal string.
func FormatOrderNumber(n int64) string {
	return fmt.Sprintf("%d", n)
}

// FormatInvoiceNumber renders an invoice number as INV-NNNNN.
func FormatInvoiceNumber(n int64) string {
	return fmt.Sprintf("INV-%05d", n)
}
