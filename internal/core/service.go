package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/JonMunkholm/stockledger/internal/storage"
	"github.com/google/uuid"
)

// DefaultSaveTimeout bounds a single snapshot write.
const DefaultSaveTimeout = 10 * time.Second

// Service is the ledger session: one inventory, one order ledger and the
// store their snapshot is persisted to.
//
// Every mutation runs under one lock against a copy of the state. The copy
// replaces the live state only after the snapshot is saved, so a failed
// save leaves both memory and storage as they were.
type Service struct {
	store       storage.Store
	now         func() time.Time
	newID       func() string
	saveTimeout time.Duration

	mu     sync.Mutex
	inv    *Inventory
	ledger *Ledger
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the time source for order timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator sets the order id generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// WithSaveTimeout bounds each snapshot write.
func WithSaveTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.saveTimeout = d
		}
	}
}

// NewService loads the persisted snapshot from store. Missing or corrupt
// documents load as empty collections.
func NewService(ctx context.Context, store storage.Store, opts ...Option) (*Service, error) {
	s := &Service{
		store:       store,
		now:         time.Now,
		newID:       uuid.NewString,
		saveTimeout: DefaultSaveTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	inv, ledger, err := loadSnapshot(ctx, store, slog.Default())
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	s.inv, s.ledger = inv, ledger
	slog.Info("ledger loaded", "items", inv.Len(), "orders", ledger.Len())
	return s, nil
}

// commit applies mutate to a copy of the state and persists it. mutate
// reports whether anything changed; unchanged state is not written.
func (s *Service) commit(ctx context.Context, op string, mutate func(*Inventory, *Ledger) (bool, error)) error {
	inv, ledger := s.inv.clone(), s.ledger.clone()

	changed, err := mutate(inv, ledger)
	if err != nil || !changed {
		return err
	}

	docs, err := encodeSnapshot(inv, ledger)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	saveCtx, cancel := context.WithTimeout(ctx, s.saveTimeout)
	defer cancel()
	if err := s.store.SetMany(saveCtx, docs); err != nil {
		opLogger(ctx, op).Error("save failed, changes discarded", "error", err)
		return fmt.Errorf("save snapshot: %w", err)
	}

	s.inv, s.ledger = inv, ledger
	return nil
}

// AddItem adds stock to an existing item or creates it. created reports
// which happened.
func (s *Service) AddItem(ctx context.Context, in ItemInput) (item Item, created bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.commit(ctx, "add_item", func(inv *Inventory, _ *Ledger) (bool, error) {
		var uerr error
		item, created, uerr = inv.UpsertByAdd(in)
		return uerr == nil, uerr
	})
	if err != nil {
		return Item{}, false, err
	}
	opLogger(ctx, "add_item").Info("item stocked",
		"item_key", item.Key, "added", in.Stock, "stock", item.Stock, "created", created)
	return item, created, nil
}

// EditItem replaces the item under oldKey and carries the new key and name
// onto every order that referenced it. Both change in one commit.
func (s *Service) EditItem(ctx context.Context, oldKey string, in ItemInput) (Item, []Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		item     Item
		affected []Order
	)
	err := s.commit(ctx, "edit_item", func(inv *Inventory, l *Ledger) (bool, error) {
		it, rename, err := inv.Edit(oldKey, in)
		if err != nil {
			return false, err
		}
		item = it
		affected = l.ApplyRename(rename)
		return true, nil
	})
	if err != nil {
		return Item{}, nil, err
	}
	opLogger(ctx, "edit_item").Info("item updated",
		"old_key", oldKey, "item_key", item.Key, "orders_updated", len(affected))
	return item, affected, nil
}

// UpdateItem applies patch to the item under key, reading the current
// values and writing the result in one commit. Renames carry onto orders
// as in EditItem.
func (s *Service) UpdateItem(ctx context.Context, key string, patch ItemPatch) (Item, []Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		item     Item
		affected []Order
	)
	err := s.commit(ctx, "update_item", func(inv *Inventory, l *Ledger) (bool, error) {
		cur, ok := inv.Find(key)
		if !ok {
			return false, &NotFoundError{Kind: "item", ID: key}
		}
		it, rename, err := inv.Edit(key, patch.resolve(cur))
		if err != nil {
			return false, err
		}
		item = it
		affected = l.ApplyRename(rename)
		return true, nil
	})
	if err != nil {
		return Item{}, nil, err
	}
	opLogger(ctx, "update_item").Info("item updated",
		"old_key", key, "item_key", item.Key, "orders_updated", len(affected))
	return item, affected, nil
}

// RemoveItem deletes the item under key. Orders keep their name snapshot.
// Removing an unknown key is a no-op that reports false.
func (s *Service) RemoveItem(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed bool
	err := s.commit(ctx, "remove_item", func(inv *Inventory, _ *Ledger) (bool, error) {
		removed = inv.Remove(key)
		return removed, nil
	})
	if err != nil {
		return false, err
	}
	if removed {
		opLogger(ctx, "remove_item").Info("item removed", "item_key", key)
	}
	return removed, nil
}

// PlaceOrder reserves qty units of the named item. The name is normalized
// into a key before lookup.
func (s *Service) PlaceOrder(ctx context.Context, itemName string, qty int) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var order Order
	err := s.commit(ctx, "place_order", func(inv *Inventory, l *Ledger) (bool, error) {
		now := time.UnixMilli(s.now().UnixMilli())
		o, err := l.Place(inv, NormalizeKey(itemName), qty, s.newID(), now)
		if err != nil {
			return false, err
		}
		order = o
		return true, nil
	})
	if err != nil {
		return Order{}, err
	}
	opLogger(ctx, "place_order").Info("order placed",
		"order_id", order.ID, "item_key", order.ItemKey, "qty", order.Qty)
	return order, nil
}

// ToggleDelivered flips an order's status. An unknown id is a no-op that
// reports false.
func (s *Service) ToggleDelivered(ctx context.Context, id string) (Order, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		order Order
		found bool
	)
	err := s.commit(ctx, "toggle_order", func(_ *Inventory, l *Ledger) (bool, error) {
		order, found = l.ToggleDelivered(id)
		return found, nil
	})
	if err != nil {
		return Order{}, false, err
	}
	if found {
		opLogger(ctx, "toggle_order").Info("order status changed", "order_id", id, "status", order.Status)
	}
	return order, found, nil
}

// CancelResult describes a cancellation.
type CancelResult struct {
	Order    Order `json:"order"`
	Found    bool  `json:"found"`
	Restored bool  `json:"restored"` // stock returned to a still-existing item
}

// CancelOrder removes an order and returns its stock when the item still
// exists. An unknown id is a no-op.
func (s *Service) CancelOrder(ctx context.Context, id string) (CancelResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res CancelResult
	err := s.commit(ctx, "cancel_order", func(inv *Inventory, l *Ledger) (bool, error) {
		res.Order, res.Restored, res.Found = l.Cancel(inv, id)
		return res.Found, nil
	})
	if err != nil {
		return CancelResult{}, err
	}
	if res.Found {
		opLogger(ctx, "cancel_order").Info("order cancelled",
			"order_id", id, "item_key", res.Order.ItemKey, "qty", res.Order.Qty, "restored", res.Restored)
	}
	return res, nil
}

// ImportInventory reads CSV from r and merges its rows into inventory. A
// read failure or a file with no usable rows is an *ImportParseError and
// leaves the ledger unchanged.
func (s *Service) ImportInventory(ctx context.Context, r io.Reader, maxBytes int64) (ImportResult, error) {
	text, err := ReadImportText(ctx, r, maxBytes)
	if err != nil {
		opLogger(ctx, "import").Warn("import read failed", "error", err)
		return ImportResult{}, err
	}
	return s.ImportInventoryText(ctx, text)
}

// ImportInventoryText merges already-read CSV text into inventory.
func (s *Service) ImportInventoryText(ctx context.Context, text string) (ImportResult, error) {
	rows := ParseInventoryCSV(text)
	if len(rows) == 0 {
		return ImportResult{}, &ImportParseError{Reason: "no valid rows found"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var res ImportResult
	err := s.commit(ctx, "import", func(inv *Inventory, _ *Ledger) (bool, error) {
		res = inv.MergeImported(rows)
		return true, nil
	})
	if err != nil {
		return ImportResult{}, err
	}
	opLogger(ctx, "import").Info("inventory imported",
		"imported", res.Imported, "created", res.Created, "merged", res.Merged)
	return res, nil
}

// Reset clears inventory and orders.
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var items, orders int
	err := s.commit(ctx, "reset", func(inv *Inventory, l *Ledger) (bool, error) {
		items, orders = inv.Len(), l.Len()
		*inv = *NewInventory(nil)
		*l = *NewLedger(nil)
		return true, nil
	})
	if err != nil {
		return err
	}
	opLogger(ctx, "reset").Info("ledger reset", "items_cleared", items, "orders_cleared", orders)
	return nil
}
