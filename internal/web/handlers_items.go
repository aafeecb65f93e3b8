package web

import (
	"encoding/json"
	"net/http"

	"github.com/JonMunkholm/stockledger/internal/core"
	"github.com/shopspring/decimal"
)

// ItemResponse is returned by item mutations.
type ItemResponse struct {
	Item          core.Item    `json:"item"`
	Created       bool         `json:"created,omitempty"`
	OrdersUpdated []core.Order `json:"ordersUpdated,omitempty"`
}

// handleListItems lists inventory with optional search, sort and low filter.
func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	sortMode, err := core.ParseInventorySort(r.URL.Query().Get("sort"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	items := s.service.Items(core.InventoryQuery{
		Search:  r.URL.Query().Get("search"),
		Sort:    sortMode,
		LowOnly: parseBoolParam(r, "low"),
	})
	writeJSON(w, http.StatusOK, items)
}

// handleAddItem creates an item or adds stock to an existing one.
func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var in core.ItemInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.respondError(w, r, err)
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	item, created, err := s.service.AddItem(ctx, in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, ItemResponse{Item: item, Created: created})
}

// EditItemRequest is the body of PUT /api/items/{key}. Stock is required.
// Omitted name, threshold and price keep their current value; "price": null
// clears the price.
type EditItemRequest struct {
	Name      *string         `json:"name"`
	Stock     *int            `json:"stock"`
	Threshold *int            `json:"threshold"`
	Price     json.RawMessage `json:"price"`
}

func (req EditItemRequest) patch() (core.ItemPatch, error) {
	if req.Stock == nil {
		return core.ItemPatch{}, &core.ValidationError{Field: "stock", Message: "stock is required"}
	}
	p := core.ItemPatch{Name: req.Name, Stock: req.Stock, Threshold: req.Threshold}
	switch {
	case len(req.Price) == 0:
	case string(req.Price) == "null":
		p.ClearPrice = true
	default:
		var d decimal.Decimal
		if err := json.Unmarshal(req.Price, &d); err != nil {
			return core.ItemPatch{}, &core.ValidationError{Field: "price", Message: "price must be a number"}
		}
		p.Price = &d
	}
	return p, nil
}

// handleEditItem updates an item and renames its orders.
func (s *Server) handleEditItem(w http.ResponseWriter, r *http.Request) {
	key := core.NormalizeKey(pathParam(r, "key"))

	var req EditItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	patch, err := req.patch()
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	item, affected, err := s.service.UpdateItem(ctx, key, patch)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ItemResponse{Item: item, OrdersUpdated: affected})
}

// handleRemoveItem deletes an item. Its orders keep their name snapshot.
func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	key := core.NormalizeKey(pathParam(r, "key"))

	ctx := WithRequestMetadata(r.Context(), r)
	removed, err := s.service.RemoveItem(ctx, key)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if !removed {
		s.respondError(w, r, &core.NotFoundError{Kind: "item", ID: key})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSuggestions returns item names for an order picker.
func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Suggestions())
}
