package repl

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"shellfish-ops/internal/core"

	"github.com/shopspring/decimal"
)

// newOrder walks the operator through entering an order line by line. Lines
// without a price take the customer's price list.
func (s *session) newOrder(slug string) error {
	customer, err := s.svc.GetCustomerBySlug(s.ctx, slug)
	if err != nil {
		return err
	}
	pricing, err := s.svc.GetCustomerPricing(s.ctx, customer.ID)
	if err != nil {
		return err
	}
	prices := make(map[int]core.PriceListEntry, len(pricing))
	for _, p := range pricing {
		prices[p.ProductID] = p
	}

	fmt.Fprintf(s.out, "Creating order for %s\n", customer.BusinessName)
	printPriceList(s.out, pricing)
	fmt.Fprintln(s.out, "Enter order lines. Type 'done' when finished, 'cancel' to abort.")
	fmt.Fprintln(s.out, "Format per line: <product-id> <quantity> [price-per-unit]")

	var lines []core.OrderLineInput
	for {
		raw := s.prompt(fmt.Sprintf("  Line %d: ", len(lines)+1))
		if s.eof || strings.EqualFold(raw, "cancel") {
			fmt.Fprintln(s.out, "Order creation cancelled.")
			return nil
		}
		if strings.EqualFold(raw, "done") {
			break
		}
		if raw == "" {
			continue
		}
		line, err := parseLine(raw, prices)
		if err != nil {
			fmt.Fprintf(s.out, "  %v\n", err)
			continue
		}
		lines = append(lines, line)
	}

	if len(lines) == 0 {
		fmt.Fprintln(s.out, "No lines entered. Order not created.")
		return nil
	}

	delivery := core.NewDate(time.Now())
	if raw := s.prompt("Delivery date (YYYY-MM-DD, blank for today): "); raw != "" {
		delivery, err = core.ParseDate(raw)
		if err != nil {
			return err
		}
	}
	notes := s.prompt("Notes (optional): ")

	order, err := s.svc.CreateOrder(s.ctx, core.CreateOrderInput{
		Customer:     core.CustomerRef{ID: customer.ID},
		Items:        lines,
		DeliveryDate: delivery,
		Notes:        notes,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(s.out, "\nOrder %s created (pending).\n", order.OrderNumber)
	printOrderDetail(s.out, order)
	fmt.Fprintf(s.out, "Use '/confirm %d' once it is accepted.\n", order.ID)
	return nil
}

func parseLine(raw string, prices map[int]core.PriceListEntry) (core.OrderLineInput, error) {
	parts := strings.Fields(raw)
	if len(parts) < 2 {
		return core.OrderLineInput{}, fmt.Errorf("invalid format, use: <product-id> <quantity> [price-per-unit]")
	}
	id, err := strconv.Atoi(parts[0])
	if err != nil {
		return core.OrderLineInput{}, fmt.Errorf("invalid product id %q", parts[0])
	}
	entry, ok := prices[id]
	if !ok {
		return core.OrderLineInput{}, fmt.Errorf("product %d is not on the price list", id)
	}
	qty, err := strconv.Atoi(parts[1])
	if err != nil || qty < 1 {
		return core.OrderLineInput{}, fmt.Errorf("invalid quantity %q", parts[1])
	}

	price := entry.Price
	if len(parts) >= 3 {
		price, err = decimal.NewFromString(strings.TrimPrefix(parts[2], "$"))
		if err != nil || price.IsNegative() {
			return core.OrderLineInput{}, fmt.Errorf("invalid price %q", parts[2])
		}
	}
	return core.OrderLineInput{Product: core.ProductRef{ID: id}, Quantity: qty, PricePerUnit: &price}, nil
}
