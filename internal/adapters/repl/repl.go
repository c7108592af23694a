// Package repl is the interactive operator shell. Slash commands are
// dispatched directly; any other line is read as a free-text order.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"shellfish-ops/internal/app"
	"shellfish-ops/internal/core"
)

var errExit = errors.New("exit")

// maxClarifications bounds the back-and-forth on one free-text order.
const maxClarifications = 3

type session struct {
	ctx    context.Context
	svc    app.ApplicationService
	reader *bufio.Reader
	out    io.Writer
	eof    bool
}

// Run reads commands from in until /exit, EOF or ctx cancellation.
func Run(ctx context.Context, svc app.ApplicationService, in io.Reader, out io.Writer) error {
	s := &session{ctx: ctx, svc: svc, reader: bufio.NewReader(in), out: out}

	fmt.Fprintln(out, core.CompanyName)
	fmt.Fprintln(out, "Type an order in plain words, or use /help for commands.")
	fmt.Fprintln(out, strings.Repeat("-", 70))

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		fmt.Fprint(out, "\n> ")
		input, ok := s.readLine()
		if !ok {
			fmt.Fprintln(out)
			return nil
		}
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if err := s.dispatch(input); err != nil {
				if errors.Is(err, errExit) {
					fmt.Fprintln(out, "Goodbye!")
					return nil
				}
				s.printErr(err)
			}
			continue
		}

		if err := s.interpret(input); err != nil {
			if errors.Is(err, errExit) {
				fmt.Fprintln(out, "Goodbye!")
				return nil
			}
			s.printErr(err)
		}
	}
}

// readLine returns the next trimmed line. ok is false at EOF with nothing read.
func (s *session) readLine() (string, bool) {
	line, err := s.reader.ReadString('\n')
	if err != nil && line == "" {
		s.eof = true
		return "", false
	}
	return strings.TrimSpace(line), true
}

func (s *session) prompt(label string) string {
	fmt.Fprint(s.out, label)
	line, _ := s.readLine()
	return line
}

func (s *session) printErr(err error) {
	var e *core.Error
	if errors.As(err, &e) {
		fmt.Fprintf(s.out, "Error: %s\n", e.Message)
		return
	}
	fmt.Fprintf(s.out, "Error: %v\n", err)
}

func (s *session) dispatch(input string) error {
	tokens := strings.Fields(strings.TrimPrefix(input, "/"))
	if len(tokens) == 0 {
		return nil
	}
	cmd := strings.ToLower(tokens[0])
	args := tokens[1:]

	switch cmd {
	case "customers":
		customers, err := s.svc.ListCustomers(s.ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		printCustomers(s.out, customers)

	case "products":
		products, err := s.svc.ListProducts(s.ctx, false)
		if err != nil {
			return err
		}
		printProducts(s.out, products)

	case "orders":
		f := core.OrderFilter{Limit: 20}
		if len(args) > 0 {
			f.Status = core.OrderStatus(strings.ToLower(args[0]))
		}
		page, err := s.svc.ListOrders(s.ctx, f)
		if err != nil {
			return err
		}
		printOrders(s.out, page)

	case "order":
		id, ok := s.idArg(args, "/order <order-id>")
		if !ok {
			return nil
		}
		order, err := s.svc.GetOrder(s.ctx, id)
		if err != nil {
			return err
		}
		printOrderDetail(s.out, order)

	case "new-order":
		if len(args) < 1 {
			fmt.Fprintln(s.out, "Usage: /new-order <customer-slug>")
			return nil
		}
		return s.newOrder(args[0])

	case "confirm", "deliver", "cancel":
		id, ok := s.idArg(args, "/"+cmd+" <order-id>")
		if !ok {
			return nil
		}
		order, err := s.svc.UpdateOrderStatus(s.ctx, id, statusFor(cmd))
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Order %s is now %s.\n", order.OrderNumber, order.Status)

	case "invoice":
		id, ok := s.idArg(args, "/invoice <order-id>")
		if !ok {
			return nil
		}
		inv, err := s.svc.CreateInvoice(s.ctx, core.CreateInvoiceInput{Order: core.OrderRef{ID: id}})
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Invoice %s created for order %s (%s, draft).\n", inv.InvoiceNumber, inv.OrderNumber, money(inv.Total))

	case "send":
		id, ok := s.idArg(args, "/send <invoice-id>")
		if !ok {
			return nil
		}
		inv, err := s.svc.SendInvoiceEmail(s.ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Invoice %s emailed to %s.\n", inv.InvoiceNumber, strings.Join(inv.EmailSentTo, ", "))

	case "paid":
		id, ok := s.idArg(args, "/paid <invoice-id> [check-number]")
		if !ok {
			return nil
		}
		in := core.MarkPaidInput{}
		if len(args) > 1 {
			in.CheckNumber = args[1]
		}
		inv, err := s.svc.MarkInvoiceAsPaid(s.ctx, id, in)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Invoice %s marked paid.\n", inv.InvoiceNumber)

	case "aging":
		aging, err := s.svc.ARAging(s.ctx)
		if err != nil {
			return err
		}
		PrintAging(s.out, aging)

	case "help", "h":
		printHelp(s.out)

	case "exit", "quit", "q":
		return errExit

	default:
		fmt.Fprintf(s.out, "Unknown command: /%s  (type /help for all commands)\n", cmd)
	}
	return nil
}

func (s *session) idArg(args []string, usage string) (int, bool) {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "Usage:", usage)
		return 0, false
	}
	id, err := strconv.Atoi(args[0])
	if err != nil || id <= 0 {
		fmt.Fprintf(s.out, "Invalid id: %s\n", args[0])
		return 0, false
	}
	return id, true
}

func statusFor(cmd string) core.OrderStatus {
	switch cmd {
	case "confirm":
		return core.OrderStatusConfirmed
	case "deliver":
		return core.OrderStatusDelivered
	default:
		return core.OrderStatusCancelled
	}
}

// interpret runs a free-text order through the interpreter, asking the
// operator for clarification when needed, and creates it once approved.
func (s *session) interpret(text string) error {
	fmt.Fprintln(s.out, "[AI] Reading order...")
	accumulated := text

	for round := 1; ; round++ {
		if round > maxClarifications {
			fmt.Fprintln(s.out, "Could not read that order. Try /new-order instead.")
			return nil
		}

		res, err := s.svc.InterpretOrder(s.ctx, app.InterpretOrderRequest{Text: accumulated})
		if err != nil {
			return err
		}

		if res.IsClarification {
			fmt.Fprintf(s.out, "\n[AI]: %s\n", res.ClarificationMessage)
			reply := s.prompt("> ")
			if s.eof {
				return errExit
			}
			if strings.HasPrefix(reply, "/") {
				fmt.Fprintln(s.out, "(order cancelled)")
				return s.dispatch(reply)
			}
			if reply == "" || strings.EqualFold(reply, "cancel") {
				fmt.Fprintln(s.out, "Cancelled.")
				return nil
			}
			accumulated = fmt.Sprintf("Original order: %s\nQuestion asked: %s\nAnswer: %s",
				accumulated, res.ClarificationMessage, reply)
			continue
		}

		printDraft(s.out, res)
		if res.Confidence < 0.6 {
			fmt.Fprintln(s.out, "\nWARNING: low confidence, check the lines carefully.")
		}

		choice := strings.ToLower(s.prompt("\nCreate this order? (y/n): "))
		if choice != "y" && choice != "yes" {
			fmt.Fprintln(s.out, "Order discarded.")
			return nil
		}
		order, err := s.svc.CreateOrder(s.ctx, *res.Order)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Order %s created (%s).\n", order.OrderNumber, money(order.Total))
		return nil
	}
}
