package web

import (
	"net/http"

	"shellfish-ops/internal/core"
)

const pdfContentType = "application/pdf"

// listInvoices handles GET /api/invoices with optional customer_id, status,
// year, page and limit.
func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	var f core.InvoiceFilter
	var ok bool
	if f.CustomerID, ok = queryInt(w, r, "customer_id", 0); !ok {
		return
	}
	if f.Year, ok = queryInt(w, r, "year", 0); !ok {
		return
	}
	if f.Page, ok = queryInt(w, r, "page", 1); !ok {
		return
	}
	if f.Limit, ok = queryInt(w, r, "limit", 50); !ok {
		return
	}
	if s := r.URL.Query().Get("status"); s != "" {
		f.Status = core.InvoiceStatus(s)
		if !f.Status.Valid() {
			writeError(w, r, "invalid status "+s, "BAD_REQUEST", http.StatusBadRequest)
			return
		}
	}

	page, err := h.svc.ListInvoices(r.Context(), f)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, page)
}

func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	inv, err := h.svc.GetInvoice(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, inv)
}

// invoiceByOrder handles GET /api/invoices/order/{orderId}. An order without
// an invoice is a 404 so the UI can offer "create invoice".
func (h *Handler) invoiceByOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := idParam(w, r, "orderId")
	if !ok {
		return
	}
	inv, err := h.svc.GetInvoiceByOrder(r.Context(), orderID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if inv == nil {
		writeError(w, r, "no invoice for this order", "NOT_FOUND", http.StatusNotFound)
		return
	}
	writeJSON(w, inv)
}

func (h *Handler) createInvoice(w http.ResponseWriter, r *http.Request) {
	var in core.CreateInvoiceInput
	if !decodeJSON(w, r, &in) {
		return
	}
	inv, err := h.svc.CreateInvoice(r.Context(), in)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, inv)
}

func (h *Handler) updateInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var in core.UpdateInvoiceInput
	if !decodeJSON(w, r, &in) {
		return
	}
	inv, err := h.svc.UpdateInvoice(r.Context(), id, in)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, inv)
}

func (h *Handler) deleteInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteInvoice(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── Documents ─────────────────────────────────────────────────────────────────

func (h *Handler) invoicePDF(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	name, content, err := h.svc.InvoicePDF(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeFile(w, name, pdfContentType, content, queryBool(r, "inline"))
}

func (h *Handler) shippingTagPDF(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	name, content, err := h.svc.ShippingTagPDF(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeFile(w, name, pdfContentType, content, queryBool(r, "inline"))
}

// ── Email and payment ─────────────────────────────────────────────────────────

// sendInvoiceEmail handles POST /api/invoices/{id}/send-email. 503 when SMTP
// is not configured or the relay fails; the invoice is left unchanged.
func (h *Handler) sendInvoiceEmail(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	inv, err := h.svc.SendInvoiceEmail(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, inv)
}

func (h *Handler) markEmailSent(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var in core.MarkEmailSentInput
	if !decodeJSON(w, r, &in) {
		return
	}
	inv, err := h.svc.MarkInvoiceEmailSent(r.Context(), id, in)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, inv)
}

func (h *Handler) markPaid(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var in core.MarkPaidInput
	if !decodeJSON(w, r, &in) {
		return
	}
	inv, err := h.svc.MarkInvoiceAsPaid(r.Context(), id, in)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, inv)
}

func (h *Handler) companyInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.svc.CompanyInfo())
}
