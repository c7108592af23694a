package web

import (
	"net/http"

	"shellfish-ops/internal/app"
	"shellfish-ops/internal/core"
)

// listOrders handles GET /api/orders with optional customer_id, status,
// start_date, end_date, page and limit.
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	var f core.OrderFilter
	var ok bool
	if f.CustomerID, ok = queryInt(w, r, "customer_id", 0); !ok {
		return
	}
	if f.Page, ok = queryInt(w, r, "page", 1); !ok {
		return
	}
	if f.Limit, ok = queryInt(w, r, "limit", 50); !ok {
		return
	}
	if f.StartDate, ok = queryDate(w, r, "start_date"); !ok {
		return
	}
	if f.EndDate, ok = queryDate(w, r, "end_date"); !ok {
		return
	}
	if s := r.URL.Query().Get("status"); s != "" {
		f.Status = core.OrderStatus(s)
		if !f.Status.Valid() {
			writeError(w, r, "invalid status "+s, "BAD_REQUEST", http.StatusBadRequest)
			return
		}
	}

	page, err := h.svc.ListOrders(r.Context(), f)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, page)
}

func (h *Handler) orderStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.GetOrderStats(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, stats)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	order, err := h.svc.GetOrder(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, order)
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var in core.CreateOrderInput
	if !decodeJSON(w, r, &in) {
		return
	}
	order, err := h.svc.CreateOrder(r.Context(), in)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, order)
}

func (h *Handler) updateOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var in core.UpdateOrderInput
	if !decodeJSON(w, r, &in) {
		return
	}
	order, err := h.svc.UpdateOrder(r.Context(), id, in)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, order)
}

// updateOrderStatus handles PATCH /api/orders/{id}/status with {"status": "..."}.
func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var body struct {
		Status core.OrderStatus `json:"status"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	order, err := h.svc.UpdateOrderStatus(r.Context(), id, body.Status)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, order)
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteOrder(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// interpretOrder handles POST /api/orders/interpret. The result is a draft;
// the client submits it to POST /api/orders once confirmed.
func (h *Handler) interpretOrder(w http.ResponseWriter, r *http.Request) {
	var req app.InterpretOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.InterpretOrder(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result)
}
