package core

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s, collapses every run of characters outside [a-z0-9]
// into a single hyphen and trims hyphens from both ends.
func Slugify(s string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(slug, "-")
}

// ResolvePrice returns the customer's override for productID if one exists,
// otherwise basePrice.
func ResolvePrice(pricing []CustomPrice, productID int, basePrice decimal.Decimal) decimal.Decimal {
	for _, cp := range pricing {
		if cp.ProductID == productID {
			return cp.Price
		}
	}
	return basePrice
}

// Totals are the derived money fields of an order or invoice.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// ComputeTotals fills each item's LineTotal (quantity × price per unit) and
// returns subtotal, tax and total. Tax is always zero.
func ComputeTotals(items []OrderItem) Totals {
	subtotal := decimal.Zero
	for i := range items {
		items[i].LineTotal = lineTotal(items[i].Quantity, items[i].PricePerUnit)
		subtotal = subtotal.Add(items[i].LineTotal)
	}
	tax := decimal.Zero
	return Totals{Subtotal: subtotal, Tax: tax, Total: subtotal.Add(tax)}
}

func lineTotal(qty int, price decimal.Decimal) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(qty))).Round(2)
}

// TotalQuantity sums item quantities.
func TotalQuantity(items []OrderItem) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}
