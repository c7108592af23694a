package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"shellfish-ops/internal/app"
	"shellfish-ops/internal/core"

	"github.com/go-chi/chi/v5"
)

// Handler holds the ApplicationService, the chi router and the auth settings.
type Handler struct {
	svc       app.ApplicationService
	router    chi.Router
	jwtSecret string
	tokenTTL  time.Duration
	now       func() time.Time
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins, jwtSecret string, tokenTTL time.Duration) http.Handler {
	if tokenTTL <= 0 {
		tokenTTL = 7 * 24 * time.Hour
	}
	h := &Handler{
		svc:       svc,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		now:       time.Now,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))
	r.Use(RequestBodyLimit(1 << 20)) // 1 MB

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.health)

		// ── Public order portal ──────────────────────────────────────────────
		r.Route("/public", func(r chi.Router) {
			r.Get("/products", h.publicProducts)
			r.Get("/customers/slug/{slug}", h.publicCustomerBySlug)
			r.Get("/customers/{id}/pricing", h.customerPricing)
			r.Get("/harvest-locations", h.publicHarvestLocations)
			r.Post("/orders", h.publicCreateOrder)
		})

		r.Post("/auth/login", h.login)

		// ── Protected API routes (401 JSON if unauthenticated) ───────────────
		r.Group(func(r chi.Router) {
			r.Use(h.RequireAuth)

			r.Get("/auth/verify", h.verify)
			r.Post("/auth/logout", h.logout)

			r.Route("/products", func(r chi.Router) {
				r.Get("/", h.listProducts)
				r.Post("/", h.createProduct)
				r.Get("/{id}", h.getProduct)
				r.Put("/{id}", h.updateProduct)
				r.Delete("/{id}", h.deleteProduct)
			})

			r.Route("/customers", func(r chi.Router) {
				r.Get("/", h.listCustomers)
				r.Post("/", h.createCustomer)
				r.Get("/{id}", h.getCustomer)
				r.Put("/{id}", h.updateCustomer)
				r.Delete("/{id}", h.deleteCustomer)
				r.Get("/{id}/pricing", h.customerPricing)
			})

			r.Route("/harvest-locations", func(r chi.Router) {
				r.Get("/", h.listHarvestLocations)
				r.Post("/", h.createHarvestLocation)
				r.Put("/{id}", h.updateHarvestLocation)
				r.Delete("/{id}", h.deleteHarvestLocation)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", h.listOrders)
				r.Post("/", h.createOrder)
				r.Get("/stats", h.orderStats)
				r.Post("/interpret", h.interpretOrder)
				r.Get("/{id}", h.getOrder)
				r.Put("/{id}", h.updateOrder)
				r.Patch("/{id}/status", h.updateOrderStatus)
				r.Delete("/{id}", h.deleteOrder)
			})

			r.Route("/invoices", func(r chi.Router) {
				r.Get("/", h.listInvoices)
				r.Post("/", h.createInvoice)
				r.Get("/company-info", h.companyInfo)
				r.Get("/order/{orderId}", h.invoiceByOrder)
				r.Get("/{id}", h.getInvoice)
				r.Put("/{id}", h.updateInvoice)
				r.Delete("/{id}", h.deleteInvoice)
				r.Get("/{id}/pdf", h.invoicePDF)
				r.Get("/{id}/shipping-tag", h.shippingTagPDF)
				r.Post("/{id}/send-email", h.sendInvoiceEmail)
				r.Put("/{id}/email-sent", h.markEmailSent)
				r.Put("/{id}/mark-paid", h.markPaid)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Get("/dashboard", h.dashboard)
				r.Get("/sales-summary", h.salesSummary)
				r.Get("/invoice-summary", h.invoiceSummary)
				r.Get("/customer-analytics", h.customerAnalytics)
				r.Get("/product-analytics", h.productAnalytics)
				r.Get("/ar-aging", h.arAging)
				r.Get("/export/invoices", h.exportInvoices)
			})
		})
	})

	h.router = r
	return r
}

// health reports service and database status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status   string `json:"status"`
		Database string `json:"database"`
		Time     string `json:"time"`
	}
	resp := response{Status: "ok", Database: "ok", Time: h.now().UTC().Format(time.RFC3339)}
	if err := h.svc.Health(r.Context()); err != nil {
		resp.Status, resp.Database = "degraded", "unreachable"
		writeJSONStatus(w, http.StatusServiceUnavailable, resp)
		return
	}
	writeJSON(w, resp)
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Unknown fields are rejected. Returns HTTP 413 when the body
// exceeds the size limit set by RequestBodyLimit middleware; HTTP 400 for all other
// decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	err := dec.Decode(v)
	if err == nil {
		return true
	}

	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytesErr):
		writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
	case errors.Is(err, io.EOF):
		writeError(w, r, "request body is required", "BAD_REQUEST", http.StatusBadRequest)
	case core.KindOf(err) == core.KindValidation:
		writeDomainError(w, r, err)
	default:
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
	}
	return false
}

// idParam parses a positive integer URL parameter, writing 400 on failure.
func idParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id < 1 {
		writeError(w, r, "invalid "+name, "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// queryInt parses an optional integer query parameter. Absent means def.
func queryInt(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		writeError(w, r, "invalid "+name, "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return n, true
}

// queryBool treats "true" and "1" as true.
func queryBool(r *http.Request, name string) bool {
	v := r.URL.Query().Get(name)
	return v == "true" || v == "1"
}

// queryDate parses an optional YYYY-MM-DD query parameter.
func queryDate(w http.ResponseWriter, r *http.Request, name string) (*core.Date, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	d, err := core.ParseDate(raw)
	if err != nil {
		writeDomainError(w, r, err)
		return nil, false
	}
	return &d, true
}
