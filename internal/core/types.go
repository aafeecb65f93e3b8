// Package core provides the ledger engine for stock and orders.
// This package has no UI dependencies and can be used by any frontend.
package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultThreshold is the reorder level applied when none is given.
const DefaultThreshold = 5

// Item is a stocked product identified by its normalized key.
type Item struct {
	Key         string           `json:"key"`
	DisplayName string           `json:"displayName"`
	Stock       int              `json:"stock"`
	Threshold   int              `json:"threshold"`
	Price       *decimal.Decimal `json:"price"` // nil means unpriced
}

// IsLow reports whether the item is at or below its reorder threshold.
func (i Item) IsLow() bool {
	return i.Stock <= i.Threshold
}

// OrderStatus is the delivery marker of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "Pending"
	StatusDelivered OrderStatus = "Delivered"
)

// Toggled returns the opposite status.
func (s OrderStatus) Toggled() OrderStatus {
	if s == StatusDelivered {
		return StatusPending
	}
	return StatusDelivered
}

// Order records stock committed out of inventory.
//
// ItemName is a snapshot of the item's display name taken at placement and
// rewritten only by an explicit rename; it survives removal of the item.
type Order struct {
	ID        string      `json:"id"`
	ItemKey   string      `json:"itemKey"`
	ItemName  string      `json:"itemName"`
	Qty       int         `json:"qty"`
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
}

// ItemInput carries user-supplied item fields. A nil Threshold resolves to
// DefaultThreshold.
type ItemInput struct {
	Name      string           `json:"name"`
	Stock     int              `json:"stock"`
	Threshold *int             `json:"threshold,omitempty"`
	Price     *decimal.Decimal `json:"price,omitempty"`
}

func (in ItemInput) threshold() int {
	if in.Threshold == nil {
		return DefaultThreshold
	}
	return *in.Threshold
}

// ItemPatch changes selected fields of an existing item. Nil fields keep
// their current value. ClearPrice removes the price and wins over Price.
type ItemPatch struct {
	Name       *string
	Stock      *int
	Threshold  *int
	Price      *decimal.Decimal
	ClearPrice bool
}

// resolve fills the fields the patch leaves unset from cur.
func (p ItemPatch) resolve(cur Item) ItemInput {
	in := ItemInput{
		Name:      cur.DisplayName,
		Stock:     cur.Stock,
		Threshold: &cur.Threshold,
		Price:     cur.Price,
	}
	if p.Name != nil {
		in.Name = *p.Name
	}
	if p.Stock != nil {
		in.Stock = *p.Stock
	}
	if p.Threshold != nil {
		in.Threshold = p.Threshold
	}
	switch {
	case p.ClearPrice:
		in.Price = nil
	case p.Price != nil:
		in.Price = p.Price
	}
	return in
}

// Rename describes the order rewrite that must accompany an item edit.
type Rename struct {
	OldKey  string
	NewKey  string
	NewName string
}

// SalesRow is the derived per-item sales total.
type SalesRow struct {
	ItemKey  string           `json:"itemKey"`
	ItemName string           `json:"itemName"`
	Units    int              `json:"units"`
	Revenue  *decimal.Decimal `json:"revenue"` // nil when the item is unpriced or gone
}

// ImportedItem is one well-formed row from an inventory CSV.
type ImportedItem struct {
	Key         string           `json:"key"`
	DisplayName string           `json:"displayName"`
	Stock       int              `json:"stock"`
	Threshold   int              `json:"threshold"`
	Price       *decimal.Decimal `json:"price"`
}

// ImportResult summarizes a merged import.
type ImportResult struct {
	Imported int `json:"imported"`
	Created  int `json:"created"`
	Merged   int `json:"merged"`
}

// Stats are the dashboard counters.
type Stats struct {
	Items     int `json:"items"`
	LowStock  int `json:"lowStock"`
	Orders    int `json:"orders"`
	Pending   int `json:"pending"`
	Delivered int `json:"delivered"`
}

// Dashboard combines counters with the low-stock alert list.
type Dashboard struct {
	Stats    Stats  `json:"stats"`
	LowStock []Item `json:"lowStock"`
}

// NormalizeKey canonicalizes a display name into an item key by trimming
// surrounding whitespace and lower-casing. Two names collide iff their keys
// are equal.
func NormalizeKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// FormatMoney renders an optional amount with exactly two decimals, or ""
// when absent.
func FormatMoney(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.StringFixed(2)
}

// trimName is the stored display form of a user-supplied name.
func trimName(name string) string {
	return strings.TrimSpace(name)
}
