package web

import (
	"net/http"

	"shellfish-ops/internal/core"
)

// ── Products ──────────────────────────────────────────────────────────────────

// listProducts handles GET /api/products?include_inactive=true.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.ListProducts(r.Context(), queryBool(r, "include_inactive"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, products)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	p, err := h.svc.GetProduct(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, p)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var in core.ProductInput
	if !decodeJSON(w, r, &in) {
		return
	}
	p, err := h.svc.CreateProduct(r.Context(), in)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, p)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var in core.ProductInput
	if !decodeJSON(w, r, &in) {
		return
	}
	p, err := h.svc.UpdateProduct(r.Context(), id, in)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, p)
}

// deleteProduct handles DELETE /api/products/{id}. Products are deactivated, not removed.
func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeactivateProduct(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── Harvest locations ─────────────────────────────────────────────────────────

func (h *Handler) listHarvestLocations(w http.ResponseWriter, r *http.Request) {
	locs, err := h.svc.ListHarvestLocations(r.Context(), queryBool(r, "include_inactive"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, locs)
}

func (h *Handler) createHarvestLocation(w http.ResponseWriter, r *http.Request) {
	var in core.HarvestLocationInput
	if !decodeJSON(w, r, &in) {
		return
	}
	loc, err := h.svc.CreateHarvestLocation(r.Context(), in)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, loc)
}

func (h *Handler) updateHarvestLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var in core.HarvestLocationInput
	if !decodeJSON(w, r, &in) {
		return
	}
	loc, err := h.svc.UpdateHarvestLocation(r.Context(), id, in)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, loc)
}

func (h *Handler) deleteHarvestLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeactivateHarvestLocation(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
