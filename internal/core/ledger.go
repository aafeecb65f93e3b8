package core

import (
	"strings"
	"time"
)

// Ledger owns the order sequence, most recent first, and the stock
// reservation rules that tie it to an Inventory.
//
// Ledger is not safe for concurrent use. Service serializes access.
type Ledger struct {
	orders []Order
}

// NewLedger wraps orders in the given sequence.
func NewLedger(orders []Order) *Ledger {
	l := &Ledger{orders: make([]Order, len(orders))}
	copy(l.orders, orders)
	return l
}

// Len returns the number of orders.
func (l *Ledger) Len() int { return len(l.orders) }

// List returns a copy of all orders, most recent first.
func (l *Ledger) List() []Order {
	out := make([]Order, len(l.orders))
	copy(out, l.orders)
	return out
}

// Find returns the order with id.
func (l *Ledger) Find(id string) (Order, bool) {
	if i := l.indexOf(id); i >= 0 {
		return l.orders[i], true
	}
	return Order{}, false
}

// Place reserves qty units of itemKey and records a pending order at the
// front of the ledger. The inventory and ledger change together or not at
// all.
func (l *Ledger) Place(inv *Inventory, itemKey string, qty int, id string, now time.Time) (Order, error) {
	itemKey = strings.TrimSpace(itemKey)
	if itemKey == "" {
		return Order{}, invalid("item", "item is required")
	}
	if qty <= 0 {
		return Order{}, invalid("qty", "quantity must be a whole number greater than 0")
	}
	item, ok := inv.Find(itemKey)
	if !ok {
		return Order{}, &NotFoundError{Kind: "item", ID: itemKey}
	}
	if item.Stock < qty {
		return Order{}, &InsufficientStockError{Key: itemKey, Requested: qty, Available: item.Stock}
	}

	inv.adjustStock(itemKey, -qty)
	o := Order{
		ID:        id,
		ItemKey:   itemKey,
		ItemName:  item.DisplayName,
		Qty:       qty,
		Status:    StatusPending,
		CreatedAt: now,
	}
	l.orders = append([]Order{o}, l.orders...)
	return o, nil
}

// ToggleDelivered flips the order between Pending and Delivered. Stock is
// not touched. It reports false when no order has id.
func (l *Ledger) ToggleDelivered(id string) (Order, bool) {
	i := l.indexOf(id)
	if i < 0 {
		return Order{}, false
	}
	l.orders[i].Status = l.orders[i].Status.Toggled()
	return l.orders[i], true
}

// Cancel removes the order and returns its quantity to stock when the item
// still exists. The restored flag is false for orders whose item was
// removed. It reports found=false when no order has id.
func (l *Ledger) Cancel(inv *Inventory, id string) (o Order, restored, found bool) {
	i := l.indexOf(id)
	if i < 0 {
		return Order{}, false, false
	}
	o = l.orders[i]
	restored = inv.adjustStock(o.ItemKey, o.Qty)
	l.orders = append(l.orders[:i], l.orders[i+1:]...)
	return o, restored, true
}

// ApplyRename points every order for r.OldKey at r.NewKey and its new name.
// It runs even when the key is unchanged so a pure display rename still
// propagates. The rewritten orders are returned.
func (l *Ledger) ApplyRename(r Rename) []Order {
	var changed []Order
	for i := range l.orders {
		if l.orders[i].ItemKey != r.OldKey {
			continue
		}
		l.orders[i].ItemKey = r.NewKey
		l.orders[i].ItemName = r.NewName
		changed = append(changed, l.orders[i])
	}
	return changed
}

func (l *Ledger) indexOf(id string) int {
	for i := range l.orders {
		if l.orders[i].ID == id {
			return i
		}
	}
	return -1
}

func (l *Ledger) clone() *Ledger {
	return NewLedger(l.orders)
}
