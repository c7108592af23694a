package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Aging bucket keys, oldest last.
const (
	AgingCurrent = "current"
	Aging1To30   = "1-30"
	Aging31To60  = "31-60"
	Aging61To90  = "61-90"
	AgingOver90  = "90+"
)

// AgingBuckets is the display order of the aging report.
var AgingBuckets = []string{AgingCurrent, Aging1To30, Aging31To60, Aging61To90, AgingOver90}

// DaysOutstanding counts whole days elapsed since issued. Negative spans count as zero.
func DaysOutstanding(issued, now time.Time) int {
	d := now.Sub(issued)
	if d <= 0 {
		return 0
	}
	return int(d / (24 * time.Hour))
}

// AgingBucket places an invoice that has been outstanding for days.
func AgingBucket(days int) string {
	switch {
	case days <= 0:
		return AgingCurrent
	case days <= 30:
		return Aging1To30
	case days <= 60:
		return Aging31To60
	case days <= 90:
		return Aging61To90
	default:
		return AgingOver90
	}
}

// YearRange returns [Jan 1 year, Jan 1 year+1) in loc.
func YearRange(year int, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(1, 0, 0)
}

// startOfDay truncates t to local midnight.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// startOfWeek is the most recent Sunday at midnight.
func startOfWeek(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, -int(t.Weekday()))
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func sumTotals(invoices []Invoice) decimal.Decimal {
	sum := decimal.Zero
	for _, inv := range invoices {
		sum = sum.Add(inv.Total)
	}
	return sum
}
