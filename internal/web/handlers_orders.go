package web

import (
	"net/http"

	"github.com/JonMunkholm/stockledger/internal/core"
)

// PlaceOrderRequest is the body of POST /api/orders. Item is a display
// name or key; it is normalized before lookup.
type PlaceOrderRequest struct {
	Item string `json:"item"`
	Qty  int    `json:"qty"`
}

// CancelResponse reports a cancelled order and whether stock came back.
type CancelResponse struct {
	Order    core.Order `json:"order"`
	Restored bool       `json:"restored"`
}

// handleListOrders lists orders most recent first.
func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	status, err := core.ParseStatusFilter(r.URL.Query().Get("status"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	orders := s.service.Orders(core.OrderQuery{
		Search: r.URL.Query().Get("search"),
		Status: status,
	})
	writeJSON(w, http.StatusOK, orders)
}

// handlePlaceOrder deducts stock and records a pending order.
func (s *Server) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	order, err := s.service.PlaceOrder(ctx, req.Item, req.Qty)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

// handleToggleOrder flips Pending and Delivered.
func (s *Server) handleToggleOrder(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")

	ctx := WithRequestMetadata(r.Context(), r)
	order, found, err := s.service.ToggleDelivered(ctx, id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if !found {
		s.respondError(w, r, &core.NotFoundError{Kind: "order", ID: id})
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// handleCancelOrder removes an order and restores stock when the item
// still exists.
func (s *Server) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")

	ctx := WithRequestMetadata(r.Context(), r)
	res, err := s.service.CancelOrder(ctx, id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if !res.Found {
		s.respondError(w, r, &core.NotFoundError{Kind: "order", ID: id})
		return
	}
	writeJSON(w, http.StatusOK, CancelResponse{Order: res.Order, Restored: res.Restored})
}
