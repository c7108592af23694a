// Package export writes the yearly billing and receipts workbook.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"shellfish-ops/internal/core"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	dollarFormat     = `"$"#,##0.00`
	priceFormat      = `0.00`
	outstandingColor = "FF0000FF"
)

var (
	columns      = []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L", "M"}
	columnWidths = []float64{5, 25, 12, 12, 12, 10, 15, 15, 12, 15, 12, 15, 15}
	headers      = []string{"", "", "Inv. No.", "Date", "# Oys Ship", "$/oys", "Total Value", "sum, $", "Chk Date", "Value", "Check No.", "sum,$", "Outstan"}
)

// SheetName is the worksheet title for year.
func SheetName(year int) string {
	return fmt.Sprintf("%d Invoices and Receipts", year)
}

// Filename is the download name of the workbook for year.
func Filename(year int) string {
	return fmt.Sprintf("%d_Invoices_and_Receipts.xlsx", year)
}

// styles holds the style ids registered on a workbook.
type styles struct {
	title, section, header, headerPlain, bold         int
	dollar, price, outstandingLabel, outstandingValue int
}

func registerStyles(f *excelize.File) (*styles, error) {
	medium := []excelize.Border{
		{Type: "left", Color: "000000", Style: 2},
		{Type: "right", Color: "000000", Style: 2},
		{Type: "top", Color: "000000", Style: 2},
		{Type: "bottom", Color: "000000", Style: 2},
	}
	dollar := dollarFormat
	price := priceFormat
	s := &styles{}
	defs := []struct {
		dst   *int
		style *excelize.Style
	}{
		{&s.title, &excelize.Style{Font: &excelize.Font{Bold: true, Size: 16}, Alignment: &excelize.Alignment{Horizontal: "left"}}},
		{&s.section, &excelize.Style{Font: &excelize.Font{Bold: true}, Alignment: &excelize.Alignment{Horizontal: "center"}, Border: medium}},
		{&s.header, &excelize.Style{Font: &excelize.Font{Bold: true}, Alignment: &excelize.Alignment{Horizontal: "center"},
			Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 1}}}},
		{&s.headerPlain, &excelize.Style{Font: &excelize.Font{Bold: true}, Alignment: &excelize.Alignment{Horizontal: "center"}}},
		{&s.bold, &excelize.Style{Font: &excelize.Font{Bold: true}}},
		{&s.dollar, &excelize.Style{CustomNumFmt: &dollar}},
		{&s.price, &excelize.Style{CustomNumFmt: &price}},
		{&s.outstandingLabel, &excelize.Style{Font: &excelize.Font{Color: outstandingColor}}},
		{&s.outstandingValue, &excelize.Style{Font: &excelize.Font{Color: outstandingColor}, CustomNumFmt: &dollar}},
	}
	for _, d := range defs {
		id, err := f.NewStyle(d.style)
		if err != nil {
			return nil, fmt.Errorf("failed to register style: %w", err)
		}
		*d.dst = id
	}
	return s, nil
}

// sheet wraps the active worksheet and collects the first write error.
type sheet struct {
	f    *excelize.File
	name string
	err  error
}

func (s *sheet) set(cell string, v any) {
	if s.err == nil {
		s.err = s.f.SetCellValue(s.name, cell, v)
	}
}

func (s *sheet) style(cell string, id int) {
	if s.err == nil {
		s.err = s.f.SetCellStyle(s.name, cell, cell, id)
	}
}

func (s *sheet) setStyled(cell string, v any, id int) {
	s.set(cell, v)
	s.style(cell, id)
}

func (s *sheet) merge(from, to string) {
	if s.err == nil {
		s.err = s.f.MergeCell(s.name, from, to)
	}
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func monthDay(t time.Time) string {
	return fmt.Sprintf("%d/%d", int(t.Month()), t.Day())
}

func money(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

// WriteInvoicesWorkbook builds the billing and receipts workbook for year.
// invoices must already be ordered by customer name then creation time.
func WriteInvoicesWorkbook(year int, invoices []core.ExportInvoice) (*excelize.File, error) {
	f := excelize.NewFile()
	name := SheetName(year)
	if err := f.SetSheetName("Sheet1", name); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetDocProps(&excelize.DocProperties{Creator: core.CompanyName}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set document properties: %w", err)
	}

	st, err := registerStyles(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	s := &sheet{f: f, name: name}

	for i, col := range columns {
		if s.err == nil {
			s.err = f.SetColWidth(name, col, col, columnWidths[i])
		}
	}

	// Title and section headers.
	s.merge("B1", "M1")
	s.setStyled("B1", fmt.Sprintf("%d Invoices and Receipts", year), st.title)

	s.merge("C2", "H2")
	s.set("C2", "BILLING")
	s.merge("I2", "L2")
	s.set("I2", "RECEIPTS")
	if s.err == nil {
		s.err = f.SetCellStyle(name, "C2", "H2", st.section)
	}
	if s.err == nil {
		s.err = f.SetCellStyle(name, "I2", "L2", st.section)
	}

	for i, h := range headers {
		id := st.headerPlain
		if i >= 2 {
			id = st.header
		}
		s.setStyled(cell(columns[i], 3), h, id)
	}

	row := 4
	for _, group := range groupByCustomer(invoices) {
		s.setStyled(cell("B", row), group[0].CustomerName, st.bold)
		row++

		billing, receipts := decimal.Zero, decimal.Zero
		for _, inv := range group {
			avg := 0.0
			if inv.Quantity > 0 {
				avg = money(inv.Total) / float64(inv.Quantity)
			}
			s.set(cell("C", row), strings.TrimPrefix(inv.InvoiceNumber, "INV-"))
			s.set(cell("D", row), monthDay(inv.Date))
			s.set(cell("E", row), inv.Quantity)
			s.setStyled(cell("F", row), avg, st.price)
			s.setStyled(cell("G", row), money(inv.Total), st.dollar)
			billing = billing.Add(inv.Total)

			if inv.Paid && inv.PaidAt != nil {
				s.set(cell("I", row), monthDay(*inv.PaidAt))
				s.setStyled(cell("J", row), money(inv.Total), st.dollar)
				s.set(cell("K", row), inv.CheckNumber)
				receipts = receipts.Add(inv.Total)
			}
			row++
		}

		s.set(cell("B", row), "Cum")
		s.setStyled(cell("H", row), money(billing), st.dollar)
		s.setStyled(cell("L", row), money(receipts), st.dollar)
		row++

		s.setStyled(cell("B", row), "Outstanding", st.outstandingLabel)
		s.setStyled(cell("M", row), money(billing.Sub(receipts)), st.outstandingValue)
		row += 2
	}

	if s.err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to build workbook: %w", s.err)
	}
	return f, nil
}

// WriteTo builds the workbook and streams it to w.
func WriteTo(w io.Writer, year int, invoices []core.ExportInvoice) error {
	f, err := WriteInvoicesWorkbook(year, invoices)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// groupByCustomer splits consecutive invoices into per-customer runs.
func groupByCustomer(invoices []core.ExportInvoice) [][]core.ExportInvoice {
	var groups [][]core.ExportInvoice
	for i, inv := range invoices {
		if i == 0 || inv.CustomerName != invoices[i-1].CustomerName {
			groups = append(groups, nil)
		}
		groups[len(groups)-1] = append(groups[len(groups)-1], inv)
	}
	return groups
}
