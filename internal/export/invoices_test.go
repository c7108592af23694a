package export_test

import (
	"bytes"
	"testing"
	"time"

	"shellfish-ops/internal/core"
	"shellfish-ops/internal/export"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var raw = excelize.Options{RawCellValue: true}

func reopen(t *testing.T, year int, invoices []core.ExportInvoice) *excelize.File {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, export.WriteTo(&buf, year, invoices))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func cellValue(t *testing.T, f *excelize.File, sheet, axis string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, axis, raw)
	require.NoError(t, err)
	return v
}

func TestWorkbook_Layout(t *testing.T) {
	f := reopen(t, 2025, nil)
	sheet := "2025 Invoices and Receipts"

	assert.Equal(t, []string{sheet}, f.GetSheetList())
	assert.Equal(t, "2025 Invoices and Receipts", cellValue(t, f, sheet, "B1"))
	assert.Equal(t, "BILLING", cellValue(t, f, sheet, "C2"))
	assert.Equal(t, "RECEIPTS", cellValue(t, f, sheet, "I2"))

	want := []string{"", "", "Inv. No.", "Date", "# Oys Ship", "$/oys", "Total Value", "sum, $", "Chk Date", "Value", "Check No.", "sum,$", "Outstan"}
	for i, h := range want {
		axis, _ := excelize.CoordinatesToCellName(i+1, 3)
		assert.Equal(t, h, cellValue(t, f, sheet, axis), axis)
	}

	widths := map[string]float64{"A": 5, "B": 25, "F": 10, "G": 15, "M": 15}
	for col, w := range widths {
		got, err := f.GetColWidth(sheet, col)
		require.NoError(t, err)
		assert.InDelta(t, w, got, 0.01, col)
	}

	merges, err := f.GetMergeCells(sheet)
	require.NoError(t, err)
	var ranges []string
	for _, m := range merges {
		ranges = append(ranges, m.GetStartAxis()+":"+m.GetEndAxis())
	}
	assert.ElementsMatch(t, []string{"B1:M1", "C2:H2", "I2:L2"}, ranges)

	props, err := f.GetDocProps()
	require.NoError(t, err)
	assert.Equal(t, "Oysterponds Shellfish Co.", props.Creator)

	// An empty year has nothing below the header row.
	assert.Equal(t, "", cellValue(t, f, sheet, "B4"))
}

func TestWorkbook_CustomerBlocks(t *testing.T) {
	paidAt := time.Date(2025, 7, 2, 15, 0, 0, 0, time.UTC)
	invoices := []core.ExportInvoice{
		{InvoiceNumber: "INV-16001", CustomerName: "Alpha Oyster Bar", Date: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
			Quantity: 100, Total: decimal.RequireFromString("80.00"), Paid: true, PaidAt: &paidAt, CheckNumber: "1042"},
		{InvoiceNumber: "INV-16003", CustomerName: "Alpha Oyster Bar", Date: time.Date(2025, 6, 17, 0, 0, 0, 0, time.UTC),
			Quantity: 200, Total: decimal.RequireFromString("150.00")},
		{InvoiceNumber: "INV-16002", CustomerName: "Bravo Fish Market", Date: time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC),
			Quantity: 0, Total: decimal.Zero},
	}
	f := reopen(t, 2025, invoices)
	sheet := export.SheetName(2025)

	// Alpha block: customer row, two invoices, Cum, Outstanding, blank.
	assert.Equal(t, "Alpha Oyster Bar", cellValue(t, f, sheet, "B4"))
	assert.Equal(t, "16001", cellValue(t, f, sheet, "C5"))
	assert.Equal(t, "6/10", cellValue(t, f, sheet, "D5"))
	assert.Equal(t, "100", cellValue(t, f, sheet, "E5"))
	assert.Equal(t, "0.8", cellValue(t, f, sheet, "F5"))
	assert.Equal(t, "80", cellValue(t, f, sheet, "G5"))
	assert.Equal(t, "7/2", cellValue(t, f, sheet, "I5"))
	assert.Equal(t, "80", cellValue(t, f, sheet, "J5"))
	assert.Equal(t, "1042", cellValue(t, f, sheet, "K5"))

	assert.Equal(t, "16003", cellValue(t, f, sheet, "C6"))
	assert.Equal(t, "0.75", cellValue(t, f, sheet, "F6"))
	assert.Equal(t, "", cellValue(t, f, sheet, "I6"))

	assert.Equal(t, "Cum", cellValue(t, f, sheet, "B7"))
	assert.Equal(t, "230", cellValue(t, f, sheet, "H7"))
	assert.Equal(t, "80", cellValue(t, f, sheet, "L7"))
	assert.Equal(t, "Outstanding", cellValue(t, f, sheet, "B8"))
	assert.Equal(t, "150", cellValue(t, f, sheet, "M8"))
	assert.Equal(t, "", cellValue(t, f, sheet, "B9"))

	// Bravo block starts after the blank row; zero quantity gives a zero average.
	assert.Equal(t, "Bravo Fish Market", cellValue(t, f, sheet, "B10"))
	assert.Equal(t, "16002", cellValue(t, f, sheet, "C11"))
	assert.Equal(t, "0", cellValue(t, f, sheet, "F11"))
	assert.Equal(t, "Cum", cellValue(t, f, sheet, "B12"))
	assert.Equal(t, "Outstanding", cellValue(t, f, sheet, "B13"))
}

func TestWorkbook_OutstandingStyle(t *testing.T) {
	invoices := []core.ExportInvoice{
		{InvoiceNumber: "INV-16001", CustomerName: "Alpha Oyster Bar", Date: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
			Quantity: 10, Total: decimal.RequireFromString("8")},
	}
	f := reopen(t, 2025, invoices)
	sheet := export.SheetName(2025)

	id, err := f.GetCellStyle(sheet, "M7")
	require.NoError(t, err)
	style, err := f.GetStyle(id)
	require.NoError(t, err)
	require.NotNil(t, style.Font)
	assert.Contains(t, style.Font.Color, "0000FF")

	id, err = f.GetCellStyle(sheet, "B1")
	require.NoError(t, err)
	style, err = f.GetStyle(id)
	require.NoError(t, err)
	assert.True(t, style.Font.Bold)
	assert.Equal(t, 16.0, style.Font.Size)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "2025_Invoices_and_Receipts.xlsx", export.Filename(2025))
}
