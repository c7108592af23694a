// Package render draws invoices and shellfish shipping tags as PDF documents.
package render

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"shellfish-ops/internal/core"

	"github.com/go-pdf/fpdf"
)

// Brand colour used for rules, headings and the certification band.
var brand = [3]int{44, 93, 99}

// Renderer produces invoice and shipping tag PDFs for one company.
type Renderer struct {
	company core.CompanyInfo
}

// New returns a Renderer that prints the given company identity.
func New(company core.CompanyInfo) *Renderer {
	return &Renderer{company: company}
}

// ── Invoice ───────────────────────────────────────────────────────────────────

// InvoicePDF renders a letter-size invoice.
func (r *Renderer) InvoicePDF(ctx context.Context, doc core.InvoiceDocument) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(12.7, 12.7, 12.7)
	pdf.SetAutoPageBreak(true, 12.7)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	width := pageW - left - right

	// Header: company on the left, invoice number on the right.
	top := pdf.GetY()
	pdf.SetFont("Helvetica", "B", 16)
	setRGB(pdf.SetTextColor, brand)
	pdf.CellFormat(width*0.65, 8, strings.ToUpper(r.company.Name), "", 2, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(80, 80, 80)
	pdf.CellFormat(width*0.65, 5, r.company.Address, "", 2, "L", false, 0, "")
	pdf.CellFormat(width*0.65, 5, tr(r.company.Phone+" • "+r.company.Website), "", 0, "L", false, 0, "")

	pdf.SetXY(left+width*0.65, top)
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(width*0.35, 5, "INVOICE", "", 2, "R", false, 0, "")
	pdf.SetFont("Helvetica", "B", 18)
	setRGB(pdf.SetTextColor, brand)
	pdf.CellFormat(width*0.35, 9, DisplayNumber(doc.InvoiceNumber), "", 2, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(width*0.35, 4, "Order #"+doc.OrderNumber, "", 1, "R", false, 0, "")

	pdf.SetY(top + 22)
	rule(pdf, left, width, 0.6)
	pdf.Ln(3)

	// Shipping and harvest block.
	half := width / 2
	pdf.SetTextColor(0, 0, 0)
	fieldPair(pdf, tr, half, "SHIPPING DATE:", dateOrDash(doc.ShippingDate), "HARVEST TIME:", orDash(doc.HarvestTime))
	fieldPair(pdf, tr, half, "HARVEST DATE:", dateOrDash(doc.HarvestDate), "HARVEST LOCATION:", orDash(doc.HarvestLocation))
	fieldPair(pdf, tr, half, "SHIPPERS CERTIFICATION:", orDash(doc.ShipperCertification), "", "")
	pdf.Ln(2)
	rule(pdf, left, width, 0.2)
	pdf.Ln(3)

	// Bill to.
	fieldPair(pdf, tr, half, "BILL TO:", doc.BillTo.BusinessName, "ATTENTION:", orDash(doc.BillTo.Attention))
	if line := addressLine(doc.BillTo.Address); line != "" {
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetX(left + 16)
		pdf.CellFormat(half, 5, tr(line), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// Items table.
	cols := []float64{width * 0.40, width * 0.15, width * 0.20, width * 0.25}
	pdf.SetFont("Helvetica", "B", 9)
	setRGB(pdf.SetFillColor, brand)
	pdf.SetTextColor(255, 255, 255)
	for i, h := range []string{"Description", "Quantity", "Unit Price", "Cost"} {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(cols[i], 7, h, "", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetDrawColor(221, 221, 221)
	for _, it := range doc.Items {
		pdf.CellFormat(cols[0], 7, tr(it.ProductName), "B", 0, "L", false, 0, "")
		pdf.CellFormat(cols[1], 7, strconv.Itoa(it.Quantity), "B", 0, "R", false, 0, "")
		pdf.CellFormat(cols[2], 7, Money(it.PricePerUnit), "B", 0, "R", false, 0, "")
		pdf.CellFormat(cols[3], 7, Money(it.LineTotal), "B", 1, "R", false, 0, "")
	}
	pdf.Ln(3)

	// Totals. Subtotal and tax only appear when tax was charged.
	labelW, valueW := width*0.25, width*0.20
	totalX := left + width - labelW - valueW
	if doc.Tax.IsPositive() {
		totalLine(pdf, totalX, labelW, valueW, "Subtotal:", Money(doc.Subtotal), false)
		totalLine(pdf, totalX, labelW, valueW, "Tax:", Money(doc.Tax), false)
	}
	totalLine(pdf, totalX, labelW, valueW, "TOTAL:", Money(doc.Total), true)
	pdf.Ln(4)

	// Compliance row.
	rule(pdf, left, width, 0.2)
	pdf.Ln(2)
	third := width / 3
	for _, f := range [][2]string{
		{"TIME ON TRUCK:", orDash(doc.TimeOnTruck)},
		{"SHIPPED AT OR BELOW 45°F:", orDash(doc.DepartureTemperature)},
		{"DELIVERED BY:", orDash(doc.DeliveredBy)},
	} {
		pdf.SetFont("Helvetica", "B", 8)
		pdf.CellFormat(third, 5, tr(f[0]), "", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
	for _, v := range []string{orDash(doc.TimeOnTruck), orDash(doc.DepartureTemperature), orDash(doc.DeliveredBy)} {
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(third, 5, tr(v), "", 0, "L", false, 0, "")
	}
	pdf.Ln(10)

	// Remittance box.
	boxY := pdf.GetY()
	pdf.SetDrawColor(0, 0, 0)
	pdf.Rect(left, boxY, width*0.5, 20, "D")
	pdf.SetXY(left+3, boxY+2)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(width*0.5-6, 5, "Please remit payment to:", "", 2, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(width*0.5-6, 5, strings.ToUpper(r.company.Remittance.PayableTo), "", 2, "L", false, 0, "")
	pdf.CellFormat(width*0.5-6, 5, r.company.Remittance.MailingAddress, "", 2, "L", false, 0, "")

	return output(pdf)
}

// ── Shipping tag ──────────────────────────────────────────────────────────────

// ShippingTagPDF renders a 4x6 inch tag that travels with the product.
func (r *Renderer) ShippingTagPDF(ctx context.Context, doc core.InvoiceDocument) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "in",
		Size:           fpdf.SizeType{Wd: 4, Ht: 6},
	})
	pdf.SetMargins(0.25, 0.25, 0.25)
	pdf.SetAutoPageBreak(true, 0.25)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	width := 3.5

	setRGB(pdf.SetDrawColor, brand)
	pdf.SetLineWidth(0.02)
	pdf.Rect(0.2, 0.2, 3.6, 5.6, "D")

	pdf.SetXY(0.25, 0.3)
	pdf.SetFont("Helvetica", "B", 12)
	setRGB(pdf.SetTextColor, brand)
	pdf.CellFormat(width, 0.22, strings.ToUpper(r.company.Name), "", 2, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(102, 102, 102)
	pdf.CellFormat(width, 0.18, "Orient, NY 11957", "", 2, "C", false, 0, "")
	pdf.Ln(0.05)
	rule(pdf, 0.25, width, 0.02)
	pdf.Ln(0.1)

	pdf.SetFont("Helvetica", "B", 13)
	setRGB(pdf.SetTextColor, brand)
	pdf.CellFormat(width, 0.3, "SHELLFISH SHIPPING TAG", "", 1, "C", false, 0, "")
	pdf.Ln(0.05)

	pdf.SetTextColor(0, 0, 0)
	pdf.SetDrawColor(238, 238, 238)
	for _, f := range [][2]string{
		{"Invoice #:", doc.InvoiceNumber},
		{"Customer:", doc.CustomerName},
		{"Harvest Date:", dateOrDash(doc.HarvestDate)},
		{"Harvest Time:", orDash(doc.HarvestTime)},
		{"Harvest Location:", orDash(doc.HarvestLocation)},
		{"Departure Temp:", orDash(doc.DepartureTemperature)},
	} {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(width*0.45, 0.26, f[0], "B", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(width*0.55, 0.26, tr(f[1]), "B", 1, "R", false, 0, "")
	}
	pdf.Ln(0.12)

	pdf.SetFont("Helvetica", "B", 9)
	setRGB(pdf.SetTextColor, brand)
	pdf.CellFormat(width, 0.22, "Products:", "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 9)
	for _, it := range doc.Items {
		pdf.CellFormat(width, 0.22, tr(fmt.Sprintf("%s: %d", it.ProductName, it.Quantity)), "B", 1, "L", false, 0, "")
	}
	pdf.Ln(0.15)

	setRGB(pdf.SetFillColor, brand)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(width, 0.35, "NYS Shellfish Shipper Certification: "+doc.ShipperCertification, "", 1, "C", true, 0, "")

	return output(pdf)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func output(pdf *fpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func setRGB(set func(r, g, b int), c [3]int) {
	set(c[0], c[1], c[2])
}

func rule(pdf *fpdf.Fpdf, x, width, lineWidth float64) {
	y := pdf.GetY()
	setRGB(pdf.SetDrawColor, brand)
	pdf.SetLineWidth(lineWidth)
	pdf.Line(x, y, x+width, y)
	pdf.SetLineWidth(0.2)
}

func fieldPair(pdf *fpdf.Fpdf, tr func(string) string, half float64, l1, v1, l2, v2 string) {
	field(pdf, tr, half, l1, v1)
	if l2 != "" {
		field(pdf, tr, half, l2, v2)
	}
	pdf.Ln(-1)
}

func field(pdf *fpdf.Fpdf, tr func(string) string, w float64, label, value string) {
	pdf.SetFont("Helvetica", "B", 8)
	lw := pdf.GetStringWidth(label) + 2
	pdf.CellFormat(lw, 6, label, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(w-lw, 6, tr(value), "", 0, "L", false, 0, "")
}

func totalLine(pdf *fpdf.Fpdf, x, labelW, valueW float64, label, value string, grand bool) {
	pdf.SetX(x)
	style, size := "", 9.0
	if grand {
		style, size = "B", 11
	}
	pdf.SetFont("Helvetica", style, size)
	pdf.CellFormat(labelW, 6, label, "", 0, "R", false, 0, "")
	pdf.CellFormat(valueW, 6, value, "", 1, "R", false, 0, "")
}

func dateOrDash(d core.Date) string {
	return ShortDate(d.Time)
}

// addressLine joins the non-empty address parts with ", ".
func addressLine(a core.Address) string {
	var parts []string
	for _, p := range []string{a.Street, a.City, a.State, a.Zip} {
		if s := strings.TrimSpace(p); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}
