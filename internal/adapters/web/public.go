package web

import (
	"net/http"

	"shellfish-ops/internal/core"

	"github.com/go-chi/chi/v5"
)

// Routes under /api/public serve the customer order portal without auth.

func (h *Handler) publicProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.ListProducts(r.Context(), false)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, products)
}

func (h *Handler) publicCustomerBySlug(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.PortalCustomer(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, c)
}

func (h *Handler) publicHarvestLocations(w http.ResponseWriter, r *http.Request) {
	locs, err := h.svc.ListHarvestLocations(r.Context(), false)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, locs)
}

// publicCreateOrder handles POST /api/public/orders. Prices are never taken from the body.
func (h *Handler) publicCreateOrder(w http.ResponseWriter, r *http.Request) {
	var in core.PublicOrderInput
	if !decodeJSON(w, r, &in) {
		return
	}
	order, err := h.svc.CreatePublicOrder(r.Context(), in)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, order)
}
