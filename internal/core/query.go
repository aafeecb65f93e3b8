package core

import (
	"sort"
	"strings"
)

// InventorySort selects the ordering of an inventory listing.
type InventorySort string

const (
	SortNone      InventorySort = ""
	SortNameAsc   InventorySort = "name_asc"
	SortNameDesc  InventorySort = "name_desc"
	SortStockAsc  InventorySort = "stock_asc"
	SortStockDesc InventorySort = "stock_desc"
)

// ParseInventorySort validates a sort mode from user input.
func ParseInventorySort(s string) (InventorySort, error) {
	switch mode := InventorySort(strings.ToLower(strings.TrimSpace(s))); mode {
	case SortNone, SortNameAsc, SortNameDesc, SortStockAsc, SortStockDesc:
		return mode, nil
	}
	return SortNone, invalid("sort", "sort must be one of name_asc, name_desc, stock_asc, stock_desc")
}

// StatusFilter selects orders by status.
type StatusFilter string

const (
	FilterAll       StatusFilter = "all"
	FilterPending   StatusFilter = "pending"
	FilterDelivered StatusFilter = "delivered"
)

// ParseStatusFilter validates a status filter. Empty means all.
func ParseStatusFilter(s string) (StatusFilter, error) {
	switch f := StatusFilter(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FilterAll:
		return FilterAll, nil
	case FilterPending, FilterDelivered:
		return f, nil
	}
	return FilterAll, invalid("status", "status must be one of all, pending, delivered")
}

// InventoryQuery narrows and orders an inventory listing.
type InventoryQuery struct {
	Search  string
	Sort    InventorySort
	LowOnly bool
}

// FilterInventory applies q to items. Search matches a substring of the
// normalized display name. Unsorted results keep insertion order.
func FilterInventory(items []Item, q InventoryQuery) []Item {
	needle := NormalizeKey(q.Search)
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if needle != "" && !strings.Contains(NormalizeKey(it.DisplayName), needle) {
			continue
		}
		if q.LowOnly && !it.IsLow() {
			continue
		}
		out = append(out, it)
	}

	switch q.Sort {
	case SortNameAsc:
		sort.SliceStable(out, func(a, b int) bool { return lessName(out[a].DisplayName, out[b].DisplayName) })
	case SortNameDesc:
		sort.SliceStable(out, func(a, b int) bool { return lessName(out[b].DisplayName, out[a].DisplayName) })
	case SortStockAsc:
		sort.SliceStable(out, func(a, b int) bool { return out[a].Stock < out[b].Stock })
	case SortStockDesc:
		sort.SliceStable(out, func(a, b int) bool { return out[a].Stock > out[b].Stock })
	}
	return out
}

// OrderQuery narrows an order listing.
type OrderQuery struct {
	Search string
	Status StatusFilter
}

// FilterOrders applies q to orders, keeping ledger order. Search matches a
// substring of the item name or the status.
func FilterOrders(orders []Order, q OrderQuery) []Order {
	needle := NormalizeKey(q.Search)
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		if needle != "" &&
			!strings.Contains(NormalizeKey(o.ItemName), needle) &&
			!strings.Contains(NormalizeKey(string(o.Status)), needle) {
			continue
		}
		switch q.Status {
		case FilterPending:
			if o.Status != StatusPending {
				continue
			}
		case FilterDelivered:
			if o.Status != StatusDelivered {
				continue
			}
		}
		out = append(out, o)
	}
	return out
}

// FilterSales keeps rows whose label contains search.
func FilterSales(rows []SalesRow, search string) []SalesRow {
	needle := NormalizeKey(search)
	out := make([]SalesRow, 0, len(rows))
	for _, r := range rows {
		if strings.Contains(NormalizeKey(r.ItemName), needle) {
			out = append(out, r)
		}
	}
	return out
}

// BuildDashboard counts items and orders and lists low-stock items by
// stock ascending.
func BuildDashboard(items []Item, orders []Order) Dashboard {
	d := Dashboard{
		Stats:    Stats{Items: len(items), Orders: len(orders)},
		LowStock: []Item{},
	}
	for _, it := range items {
		if it.IsLow() {
			d.LowStock = append(d.LowStock, it)
		}
	}
	d.Stats.LowStock = len(d.LowStock)
	sort.SliceStable(d.LowStock, func(a, b int) bool { return d.LowStock[a].Stock < d.LowStock[b].Stock })

	for _, o := range orders {
		switch o.Status {
		case StatusPending:
			d.Stats.Pending++
		case StatusDelivered:
			d.Stats.Delivered++
		}
	}
	return d
}

// Suggestions returns display names sorted for an item picker.
func Suggestions(items []Item) []string {
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.DisplayName
	}
	sort.SliceStable(names, func(a, b int) bool { return lessName(names[a], names[b]) })
	return names
}

func lessName(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}
