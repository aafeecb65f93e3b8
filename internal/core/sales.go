package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ComputeSales totals every remaining order per item key, Pending and
// Delivered alike. Names and prices come from the current inventory; an
// order whose item is gone is labelled by its key and has no revenue.
//
// Rows are sorted by units descending. Ties keep the order in which each
// key was first seen in the ledger.
func ComputeSales(inv *Inventory, orders []Order) []SalesRow {
	pos := make(map[string]int)
	var rows []SalesRow
	for _, o := range orders {
		if i, ok := pos[o.ItemKey]; ok {
			rows[i].Units += o.Qty
			continue
		}
		pos[o.ItemKey] = len(rows)
		rows = append(rows, SalesRow{ItemKey: o.ItemKey, Units: o.Qty})
	}

	for i := range rows {
		r := &rows[i]
		item, ok := inv.Find(r.ItemKey)
		if !ok {
			r.ItemName = r.ItemKey
			continue
		}
		r.ItemName = item.DisplayName
		if item.Price != nil {
			rev := item.Price.Mul(decimal.NewFromInt(int64(r.Units)))
			r.Revenue = &rev
		}
	}

	sort.SliceStable(rows, func(a, b int) bool {
		return rows[a].Units > rows[b].Units
	})
	return rows
}
