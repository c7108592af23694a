package render

import (
	"context"

	"shellfish-ops/internal/core"

	"golang.org/x/sync/semaphore"
)

// Bounded limits how many documents render at once. Callers that cannot get
// a slot before their context ends receive an Unavailable error.
type Bounded struct {
	next core.DocumentRenderer
	sem  *semaphore.Weighted
}

// NewBounded wraps next so that at most limit renders run concurrently.
func NewBounded(next core.DocumentRenderer, limit int64) *Bounded {
	if limit < 1 {
		limit = 1
	}
	return &Bounded{next: next, sem: semaphore.NewWeighted(limit)}
}

func (b *Bounded) InvoicePDF(ctx context.Context, doc core.InvoiceDocument) ([]byte, error) {
	if err := b.sem.Acquire(ctx, 1); err != nil {
		return nil, core.Unavailable(err, "renderer busy")
	}
	defer b.sem.Release(1)
	return b.next.InvoicePDF(ctx, doc)
}

func (b *Bounded) ShippingTagPDF(ctx context.Context, doc core.InvoiceDocument) ([]byte, error) {
	if err := b.sem.Acquire(ctx, 1); err != nil {
		return nil, core.Unavailable(err, "renderer busy")
	}
	defer b.sem.Release(1)
	return b.next.ShippingTagPDF(ctx, doc)
}
