package render

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// Money formats an amount as US dollars with grouping, e.g. $1,234.50.
func Money(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	if f < 0 {
		return printer.Sprintf("-$%.2f", -f)
	}
	return printer.Sprintf("$%.2f", f)
}

// ShortDate formats a date as MM/DD/YYYY. The zero time renders as "-".
func ShortDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("01/02/2006")
}

// LongDate formats a date as "Monday, January 2, 2006".
func LongDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("Monday, January 2, 2006")
}

// orDash substitutes "-" for blank values.
func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// DisplayNumber strips the INV- prefix from an invoice number.
func DisplayNumber(invoiceNumber string) string {
	return strings.TrimPrefix(invoiceNumber, "INV-")
}
