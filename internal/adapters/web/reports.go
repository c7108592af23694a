package web

import (
	"context"
	"net/http"
)

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Dashboard(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, d)
}

func (h *Handler) arAging(w http.ResponseWriter, r *http.Request) {
	aging, err := h.svc.ARAging(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, aging)
}

// yearReport adapts a per-year report to a handler reading ?year= (0 means current).
func yearReport[T any](fn func(ctx context.Context, year int) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, ok := queryInt(w, r, "year", 0)
		if !ok {
			return
		}
		report, err := fn(r.Context(), year)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, report)
	}
}

func (h *Handler) salesSummary(w http.ResponseWriter, r *http.Request) {
	yearReport(h.svc.SalesSummary)(w, r)
}

func (h *Handler) invoiceSummary(w http.ResponseWriter, r *http.Request) {
	yearReport(h.svc.InvoiceSummary)(w, r)
}

func (h *Handler) customerAnalytics(w http.ResponseWriter, r *http.Request) {
	yearReport(h.svc.CustomerAnalytics)(w, r)
}

func (h *Handler) productAnalytics(w http.ResponseWriter, r *http.Request) {
	yearReport(h.svc.ProductAnalytics)(w, r)
}

// exportInvoices handles GET /api/reports/export/invoices?year= and streams the xlsx workbook.
func (h *Handler) exportInvoices(w http.ResponseWriter, r *http.Request) {
	year, ok := queryInt(w, r, "year", 0)
	if !ok {
		return
	}
	res, err := h.svc.ExportInvoiceWorkbook(r.Context(), year)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeFile(w, res.Filename, res.ContentType, res.Content, false)
}
