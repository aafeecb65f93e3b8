package core

// snapshot.go converts the in-memory ledger to and from the two persisted
// documents. Orders carry createdAt as epoch milliseconds; prices are kept
// as JSON numbers without a float round trip.

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/JonMunkholm/stockledger/internal/storage"
	"github.com/shopspring/decimal"
)

// Snapshot document keys.
const (
	DocInventory = "inventory"
	DocOrders    = "orders"
)

type itemRecord struct {
	Key         string       `json:"key"`
	DisplayName string       `json:"displayName"`
	Stock       int          `json:"stock"`
	Threshold   *int         `json:"threshold"`
	Price       *json.Number `json:"price"`
}

type orderRecord struct {
	ID        string `json:"id"`
	ItemKey   string `json:"itemKey"`
	ItemName  string `json:"itemName"`
	Qty       int    `json:"qty"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"createdAt"`
}

func encodeSnapshot(inv *Inventory, l *Ledger) (map[string][]byte, error) {
	items := make([]itemRecord, 0, inv.Len())
	for _, it := range inv.items {
		threshold := it.Threshold
		rec := itemRecord{
			Key:         it.Key,
			DisplayName: it.DisplayName,
			Stock:       it.Stock,
			Threshold:   &threshold,
		}
		if it.Price != nil {
			n := json.Number(it.Price.String())
			rec.Price = &n
		}
		items = append(items, rec)
	}

	orders := make([]orderRecord, 0, l.Len())
	for _, o := range l.orders {
		orders = append(orders, orderRecord{
			ID:        o.ID,
			ItemKey:   o.ItemKey,
			ItemName:  o.ItemName,
			Qty:       o.Qty,
			Status:    string(o.Status),
			CreatedAt: o.CreatedAt.UnixMilli(),
		})
	}

	invDoc, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	ordDoc, err := json.Marshal(orders)
	if err != nil {
		return nil, err
	}
	return map[string][]byte{DocInventory: invDoc, DocOrders: ordDoc}, nil
}

// loadSnapshot reads both documents. A missing or corrupt document loads
// as empty; only a store failure is returned.
func loadSnapshot(ctx context.Context, store storage.Store, logger *slog.Logger) (*Inventory, *Ledger, error) {
	items, err := loadDoc[itemRecord](ctx, store, DocInventory, logger)
	if err != nil {
		return nil, nil, err
	}
	orders, err := loadDoc[orderRecord](ctx, store, DocOrders, logger)
	if err != nil {
		return nil, nil, err
	}

	return NewInventory(itemsFromRecords(items, logger)), NewLedger(ordersFromRecords(orders, logger)), nil
}

func loadDoc[T any](ctx context.Context, store storage.Store, key string, logger *slog.Logger) ([]T, error) {
	doc, err := store.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var recs []T
	if err := json.Unmarshal(doc, &recs); err != nil {
		logger.Warn("discarding unreadable snapshot document", "doc", key, "error", err)
		return nil, nil
	}
	return recs, nil
}

func itemsFromRecords(recs []itemRecord, logger *slog.Logger) []Item {
	items := make([]Item, 0, len(recs))
	for _, r := range recs {
		key := r.Key
		if key == "" {
			key = NormalizeKey(r.DisplayName)
		}
		if key == "" || r.Stock < 0 {
			logger.Warn("skipping invalid inventory record", "key", r.Key, "stock", r.Stock)
			continue
		}
		it := Item{
			Key:         key,
			DisplayName: r.DisplayName,
			Stock:       r.Stock,
			Threshold:   DefaultThreshold,
		}
		if r.Threshold != nil && *r.Threshold >= 0 {
			it.Threshold = *r.Threshold
		}
		if r.Price != nil {
			if d, err := decimal.NewFromString(r.Price.String()); err == nil && !d.IsNegative() {
				it.Price = &d
			}
		}
		items = append(items, it)
	}
	return items
}

func ordersFromRecords(recs []orderRecord, logger *slog.Logger) []Order {
	orders := make([]Order, 0, len(recs))
	for _, r := range recs {
		if r.ID == "" || r.Qty <= 0 {
			logger.Warn("skipping invalid order record", "id", r.ID, "qty", r.Qty)
			continue
		}
		status := StatusPending
		if OrderStatus(r.Status) == StatusDelivered {
			status = StatusDelivered
		}
		orders = append(orders, Order{
			ID:        r.ID,
			ItemKey:   r.ItemKey,
			ItemName:  r.ItemName,
			Qty:       r.Qty,
			Status:    status,
			CreatedAt: time.UnixMilli(r.CreatedAt),
		})
	}
	return orders
}
