package core

import (
	"strconv"
	"time"

	"github.com/JonMunkholm/stockledger/internal/csvcodec"
)

// ExportTimeLayout renders order dates as a UTC ISO-8601 instant with
// millisecond precision.
const ExportTimeLayout = "2006-01-02T15:04:05.000Z"

// Export view names.
const (
	ViewInventory = "inventory"
	ViewOrders    = "orders"
	ViewSales     = "sales"
)

var (
	inventoryHeader = []string{"name", "stock", "threshold", "price"}
	ordersHeader    = []string{"date", "item", "qty", "status"}
	salesHeader     = []string{"item", "units_sold", "est_revenue"}
)

// ExportInventory renders items as CSV with header name,stock,threshold,price.
func ExportInventory(items []Item) string {
	rows := make([][]string, 0, len(items)+1)
	rows = append(rows, inventoryHeader)
	for _, it := range items {
		price := ""
		if it.Price != nil {
			price = it.Price.String()
		}
		rows = append(rows, []string{
			it.DisplayName,
			strconv.Itoa(it.Stock),
			strconv.Itoa(it.Threshold),
			price,
		})
	}
	return csvcodec.Encode(rows)
}

// ExportOrders renders orders as CSV with header date,item,qty,status.
func ExportOrders(orders []Order) string {
	rows := make([][]string, 0, len(orders)+1)
	rows = append(rows, ordersHeader)
	for _, o := range orders {
		rows = append(rows, []string{
			o.CreatedAt.UTC().Format(ExportTimeLayout),
			o.ItemName,
			strconv.Itoa(o.Qty),
			string(o.Status),
		})
	}
	return csvcodec.Encode(rows)
}

// ExportSales renders sales rows as CSV with header
// item,units_sold,est_revenue. Unknown revenue is an empty cell.
func ExportSales(sales []SalesRow) string {
	rows := make([][]string, 0, len(sales)+1)
	rows = append(rows, salesHeader)
	for _, s := range sales {
		rows = append(rows, []string{
			s.ItemName,
			strconv.Itoa(s.Units),
			FormatMoney(s.Revenue),
		})
	}
	return csvcodec.Encode(rows)
}

// ExportFilename returns the download name for an export view.
func ExportFilename(view string, now time.Time) string {
	return "stockledger_" + view + "_" + now.UTC().Format("20060102") + ".csv"
}

// ParseInventoryCSV extracts well-formed item rows from CSV text.
//
// The header must contain name and stock columns, matched after key
// normalization; threshold and price are optional. Rows without a name or
// with an empty, malformed or negative stock are skipped. A missing or bad
// threshold becomes DefaultThreshold. A missing, empty or bad price
// becomes no price. Stock and threshold are floored.
//
// A text with no header, no required columns or no data rows yields an
// empty result.
func ParseInventoryCSV(text string) []ImportedItem {
	rows := csvcodec.Decode(text)
	if len(rows) < 2 {
		return nil
	}

	header := MakeHeaderIndex(rows[0])
	if _, ok := header["name"]; !ok {
		return nil
	}
	if _, ok := header["stock"]; !ok {
		return nil
	}

	var items []ImportedItem
	for _, row := range rows[1:] {
		nameCell, _ := header.Cell(row, "name")
		name := trimName(nameCell)
		key := NormalizeKey(name)
		if key == "" {
			continue
		}

		stockCell, _ := header.Cell(row, "stock")
		stock, ok := ParseCount(stockCell)
		if !ok {
			continue
		}

		threshold := DefaultThreshold
		if cell, present := header.Cell(row, "threshold"); present {
			if n, ok := ParseCount(cell); ok {
				threshold = n
			}
		}

		item := ImportedItem{
			Key:         key,
			DisplayName: name,
			Stock:       stock,
			Threshold:   threshold,
		}
		if cell, present := header.Cell(row, "price"); present {
			if d, ok := ParseNumber(cell); ok && !d.IsNegative() {
				item.Price = &d
			}
		}
		items = append(items, item)
	}
	return items
}
