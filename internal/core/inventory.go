package core

import (
	"github.com/shopspring/decimal"
)

// Inventory owns the set of items. Keys are unique; List preserves
// insertion order.
//
// Inventory is not safe for concurrent use. Service serializes access.
type Inventory struct {
	items []Item
	index map[string]int
}

// NewInventory builds an inventory from items, keeping the first item for
// any duplicated key.
func NewInventory(items []Item) *Inventory {
	inv := &Inventory{index: make(map[string]int, len(items))}
	for _, it := range items {
		if _, dup := inv.index[it.Key]; dup {
			continue
		}
		inv.index[it.Key] = len(inv.items)
		inv.items = append(inv.items, it)
	}
	return inv
}

// Len returns the number of items.
func (inv *Inventory) Len() int { return len(inv.items) }

// List returns a copy of all items in insertion order.
func (inv *Inventory) List() []Item {
	out := make([]Item, len(inv.items))
	copy(out, inv.items)
	return out
}

// Find returns the item stored under key.
func (inv *Inventory) Find(key string) (Item, bool) {
	i, ok := inv.index[key]
	if !ok {
		return Item{}, false
	}
	return inv.items[i], true
}

// UpsertByAdd adds stock to the item named in.Name, creating it if needed.
// An existing item has its display name, threshold and price overwritten.
func (inv *Inventory) UpsertByAdd(in ItemInput) (Item, bool, error) {
	key := NormalizeKey(in.Name)
	if key == "" {
		return Item{}, false, invalid("name", "name is required")
	}
	if in.Stock <= 0 {
		return Item{}, false, invalid("stock", "quantity must be a positive whole number")
	}
	threshold := in.threshold()
	if threshold < 0 {
		return Item{}, false, invalid("threshold", "threshold must be zero or more")
	}
	if err := validatePrice(in.Price); err != nil {
		return Item{}, false, err
	}

	displayName := trimName(in.Name)
	if i, ok := inv.index[key]; ok {
		it := &inv.items[i]
		it.Stock += in.Stock
		it.DisplayName = displayName
		it.Threshold = threshold
		it.Price = copyPrice(in.Price)
		return *it, false, nil
	}

	it := Item{
		Key:         key,
		DisplayName: displayName,
		Stock:       in.Stock,
		Threshold:   threshold,
		Price:       copyPrice(in.Price),
	}
	inv.insert(it)
	return it, true, nil
}

// Edit replaces the item under oldKey. The returned Rename must be applied
// to the ledger in the same commit.
func (inv *Inventory) Edit(oldKey string, in ItemInput) (Item, Rename, error) {
	i, ok := inv.index[oldKey]
	if !ok {
		return Item{}, Rename{}, &NotFoundError{Kind: "item", ID: oldKey}
	}
	newKey := NormalizeKey(in.Name)
	if newKey == "" {
		return Item{}, Rename{}, invalid("name", "name is required")
	}
	if in.Stock < 0 {
		return Item{}, Rename{}, invalid("stock", "stock must be zero or more")
	}
	threshold := in.threshold()
	if threshold < 0 {
		return Item{}, Rename{}, invalid("threshold", "threshold must be zero or more")
	}
	if err := validatePrice(in.Price); err != nil {
		return Item{}, Rename{}, err
	}
	if newKey != oldKey {
		if _, taken := inv.index[newKey]; taken {
			return Item{}, Rename{}, &ConflictError{Key: newKey}
		}
	}

	it := Item{
		Key:         newKey,
		DisplayName: trimName(in.Name),
		Stock:       in.Stock,
		Threshold:   threshold,
		Price:       copyPrice(in.Price),
	}
	inv.items[i] = it
	if newKey != oldKey {
		delete(inv.index, oldKey)
		inv.index[newKey] = i
	}
	return it, Rename{OldKey: oldKey, NewKey: newKey, NewName: it.DisplayName}, nil
}

// Remove deletes the item under key. It reports whether an item was removed.
func (inv *Inventory) Remove(key string) bool {
	i, ok := inv.index[key]
	if !ok {
		return false
	}
	inv.items = append(inv.items[:i], inv.items[i+1:]...)
	inv.reindex()
	return true
}

// MergeImported applies imported rows with add-stock, overwrite-the-rest
// semantics. Rows are assumed to have been validated by the parser.
func (inv *Inventory) MergeImported(rows []ImportedItem) ImportResult {
	res := ImportResult{Imported: len(rows)}
	for _, r := range rows {
		if i, ok := inv.index[r.Key]; ok {
			it := &inv.items[i]
			it.Stock += r.Stock
			it.DisplayName = r.DisplayName
			it.Threshold = r.Threshold
			it.Price = copyPrice(r.Price)
			res.Merged++
			continue
		}
		inv.insert(Item{
			Key:         r.Key,
			DisplayName: r.DisplayName,
			Stock:       r.Stock,
			Threshold:   r.Threshold,
			Price:       copyPrice(r.Price),
		})
		res.Created++
	}
	return res
}

// adjustStock changes stock by delta. It reports false when the item is
// missing or the result would be negative.
func (inv *Inventory) adjustStock(key string, delta int) bool {
	i, ok := inv.index[key]
	if !ok || inv.items[i].Stock+delta < 0 {
		return false
	}
	inv.items[i].Stock += delta
	return true
}

func (inv *Inventory) insert(it Item) {
	inv.index[it.Key] = len(inv.items)
	inv.items = append(inv.items, it)
}

func (inv *Inventory) reindex() {
	clear(inv.index)
	for i, it := range inv.items {
		inv.index[it.Key] = i
	}
}

func (inv *Inventory) clone() *Inventory {
	c := &Inventory{
		items: make([]Item, len(inv.items)),
		index: make(map[string]int, len(inv.index)),
	}
	copy(c.items, inv.items)
	for k, v := range inv.index {
		c.index[k] = v
	}
	return c
}

func validatePrice(p *decimal.Decimal) error {
	if p != nil && p.IsNegative() {
		return invalid("price", "price must be zero or more")
	}
	return nil
}

func copyPrice(p *decimal.Decimal) *decimal.Decimal {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
