package repl

import (
	"fmt"
	"io"
	"strings"

	"shellfish-ops/internal/app"
	"shellfish-ops/internal/core"
	"shellfish-ops/internal/render"

	"github.com/shopspring/decimal"
)

func money(d decimal.Decimal) string { return render.Money(d) }

func rule(w io.Writer, ch string, n int) {
	fmt.Fprintln(w, strings.Repeat(ch, n))
}

func printCustomers(w io.Writer, customers []core.Customer) {
	fmt.Fprintln(w)
	rule(w, "=", 78)
	fmt.Fprintf(w, "  %-74s\n", "CUSTOMERS")
	rule(w, "=", 78)
	if len(customers) == 0 {
		fmt.Fprintln(w, "  No customers found.")
		rule(w, "=", 78)
		return
	}
	fmt.Fprintf(w, "  %-5s %-28s %-24s %s\n", "ID", "BUSINESS", "SLUG", "BILLING EMAIL")
	rule(w, "-", 78)
	for _, c := range customers {
		email := c.AccountingEmail
		if email == "" {
			email = c.ContactEmail
		}
		fmt.Fprintf(w, "  %-5d %-28s %-24s %s\n", c.ID, truncate(c.BusinessName, 28), truncate(c.Slug, 24), email)
	}
	rule(w, "=", 78)
}

func printProducts(w io.Writer, products []core.Product) {
	fmt.Fprintln(w)
	rule(w, "=", 62)
	fmt.Fprintf(w, "  %-58s\n", "PRODUCTS")
	rule(w, "=", 62)
	if len(products) == 0 {
		fmt.Fprintln(w, "  No products found.")
		rule(w, "=", 62)
		return
	}
	fmt.Fprintf(w, "  %-5s %-30s %-8s %12s\n", "ID", "NAME", "UNIT", "BASE PRICE")
	rule(w, "-", 62)
	for _, p := range products {
		fmt.Fprintf(w, "  %-5d %-30s %-8s %12s\n", p.ID, truncate(p.Name, 30), p.Unit, money(p.BasePrice))
	}
	rule(w, "=", 62)
}

func printPriceList(w io.Writer, entries []core.PriceListEntry) {
	fmt.Fprintf(w, "  %-5s %-30s %10s\n", "ID", "PRODUCT", "PRICE")
	for _, e := range entries {
		mark := ""
		if e.HasCustomPrice {
			mark = " *"
		}
		fmt.Fprintf(w, "  %-5d %-30s %10s%s\n", e.ProductID, truncate(e.ProductName, 30), money(e.Price), mark)
	}
}

func printOrders(w io.Writer, page *core.OrderPage) {
	fmt.Fprintln(w)
	rule(w, "=", 80)
	fmt.Fprintf(w, "  %-76s\n", "ORDERS")
	rule(w, "=", 80)
	if len(page.Orders) == 0 {
		fmt.Fprintln(w, "  No orders found.")
		rule(w, "=", 80)
		return
	}
	fmt.Fprintf(w, "  %-5s %-8s %-26s %-10s %12s  %s\n", "ID", "NUMBER", "CUSTOMER", "STATUS", "TOTAL", "DELIVERY")
	rule(w, "-", 80)
	for _, o := range page.Orders {
		fmt.Fprintf(w, "  %-5d %-8s %-26s %-10s %12s  %s\n",
			o.ID, o.OrderNumber, truncate(o.CustomerName, 26), o.Status, money(o.Total), o.DeliveryDate)
	}
	rule(w, "=", 80)
	fmt.Fprintf(w, "  page %d of %d (%d orders)\n", page.Pagination.Page, page.Pagination.Pages, page.Pagination.Total)
}

func printOrderDetail(w io.Writer, o *core.OrderView) {
	fmt.Fprintln(w)
	rule(w, "-", 60)
	fmt.Fprintf(w, "  Order    : %s (ID %d)\n", o.OrderNumber, o.ID)
	fmt.Fprintf(w, "  Customer : %s\n", o.CustomerName)
	fmt.Fprintf(w, "  Status   : %s  Source: %s\n", o.Status, o.Source)
	fmt.Fprintf(w, "  Delivery : %s\n", o.DeliveryDate)
	if o.HarvestLocation != "" {
		fmt.Fprintf(w, "  Harvest  : %s\n", o.HarvestLocation)
	}
	if o.Notes != "" {
		fmt.Fprintf(w, "  Notes    : %s\n", o.Notes)
	}
	rule(w, "-", 60)
	printItems(w, o.Items)
	fmt.Fprintf(w, "  %-42s %15s\n", "TOTAL", money(o.Total))
	rule(w, "-", 60)
}

func printItems(w io.Writer, items []core.OrderItem) {
	for _, it := range items {
		fmt.Fprintf(w, "  %-26s %6d x %8s %15s\n", truncate(it.ProductName, 26), it.Quantity, money(it.PricePerUnit), money(it.LineTotal))
	}
}

func printDraft(w io.Writer, res *app.InterpretResult) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "DELIVERY:   %s\n", res.Order.DeliveryDate)
	if res.Reasoning != "" {
		fmt.Fprintf(w, "REASONING:  %s\n", res.Reasoning)
	}
	fmt.Fprintf(w, "CONFIDENCE: %.2f\n", res.Confidence)
	fmt.Fprintln(w, "LINES:")
	printItems(w, res.Preview)
	fmt.Fprintf(w, "  %-42s %15s\n", "TOTAL", money(res.Total))
}

// PrintAging renders the accounts receivable aging report as a text table.
func PrintAging(w io.Writer, aging *core.ARAging) {
	rule(w, "=", 72)
	fmt.Fprintf(w, "  %-68s\n", "ACCOUNTS RECEIVABLE AGING")
	rule(w, "=", 72)
	for _, bucket := range core.AgingBuckets {
		g := aging.Aging[bucket]
		if g == nil {
			continue
		}
		fmt.Fprintf(w, "  %-10s %5d invoices %20s\n", bucketLabel(bucket), g.Count, money(g.Total))
		for _, inv := range g.Invoices {
			fmt.Fprintf(w, "      %-12s %-30s %4dd %14s\n",
				inv.InvoiceNumber, truncate(inv.CustomerName, 30), inv.DaysOutstanding, money(inv.Total))
		}
	}
	rule(w, "-", 72)
	fmt.Fprintf(w, "  %-10s %5d invoices %20s\n", "TOTAL", aging.TotalInvoices, money(aging.TotalOutstanding))
	rule(w, "=", 72)
}

func bucketLabel(b string) string {
	if b == core.AgingCurrent {
		return "Current"
	}
	return b + " days"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func printHelp(w io.Writer) {
	lines := []string{
		"",
		"COMMANDS",
		strings.Repeat("=", 62),
		"",
		"  MASTER DATA",
		"  /customers [search]              List customers",
		"  /products                        List active products",
		"",
		"  ORDERS",
		"  /orders [status]                 Latest orders, optionally by status",
		"  /order <id>                      Order detail",
		"  /new-order <customer-slug>       Enter an order line by line",
		"  /confirm <id>                    pending -> confirmed",
		"  /deliver <id>                    confirmed -> delivered",
		"  /cancel <id>                     Cancel a pending or confirmed order",
		"",
		"  INVOICES",
		"  /invoice <order-id>              Create the draft invoice for an order",
		"  /send <invoice-id>               Email the invoice PDF (and shipping tag)",
		"  /paid <invoice-id> [check-no]    Record payment",
		"  /aging                           Accounts receivable aging",
		"",
		"  SESSION",
		"  /help                            Show this help",
		"  /exit                            Exit",
		"",
		"  ORDER MODE  (no / prefix)",
		"  Type an order in plain words, for example:",
		"  \"200 selects and 100 pearls for Oyster Bar NYC on friday\"",
		strings.Repeat("=", 62),
	}
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
}
