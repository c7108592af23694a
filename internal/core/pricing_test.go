package core_test

import (
	"testing"

	"shellfish-ops/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Oyster Bar NYC":         "oyster-bar-nyc",
		"  Joe's Crab & Clam  ":  "joe-s-crab-clam",
		"Naked--Cowboy!!":        "naked-cowboy",
		"Café 22":                "caf-22",
		"---":                    "",
		"ALREADY-a-slug":         "already-a-slug",
		"Pipe's Cove Darlings 2": "pipe-s-cove-darlings-2",
	}
	for in, want := range tests {
		assert.Equal(t, want, core.Slugify(in), in)
	}
}

func TestResolvePrice(t *testing.T) {
	pricing := []core.CustomPrice{
		{ProductID: 1, Price: d("0.75")},
		{ProductID: 3, Price: d("0")},
	}
	base := d("0.80")

	assert.True(t, d("0.75").Equal(core.ResolvePrice(pricing, 1, base)))
	assert.True(t, base.Equal(core.ResolvePrice(pricing, 2, base)))
	assert.True(t, decimal.Zero.Equal(core.ResolvePrice(pricing, 3, base)), "a zero override still wins")
	assert.True(t, base.Equal(core.ResolvePrice(nil, 1, base)))
}

func TestComputeTotals(t *testing.T) {
	items := []core.OrderItem{
		{ProductID: 1, Quantity: 100, PricePerUnit: d("0.75")},
		{ProductID: 2, Quantity: 200, PricePerUnit: d("0.70")},
		{ProductID: 3, Quantity: 3, PricePerUnit: d("0.333")},
	}
	totals := core.ComputeTotals(items)

	assert.Equal(t, "75", items[0].LineTotal.String())
	assert.Equal(t, "140", items[1].LineTotal.String())
	assert.Equal(t, "1", items[2].LineTotal.String())
	assert.Equal(t, "216", totals.Subtotal.String())
	assert.True(t, totals.Tax.IsZero())
	assert.True(t, totals.Total.Equal(totals.Subtotal))
	assert.Equal(t, 303, core.TotalQuantity(items))
}

func TestComputeTotals_Empty(t *testing.T) {
	totals := core.ComputeTotals(nil)
	assert.True(t, totals.Total.IsZero())
}
