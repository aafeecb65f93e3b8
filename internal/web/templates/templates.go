// Package templates renders the HTML views of the ledger.
//
// Components are built with templ.ComponentFunc so they compose with any
// templ handler; every dynamic value goes through templ.EscapeString.
package templates

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/JonMunkholm/stockledger/internal/core"
	"github.com/a-h/templ"
)

// DashboardPage is everything the dashboard shows.
type DashboardPage = core.Overview

// htmlWriter accumulates the first write error so components can emit
// markup without checking every call.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) cell(s string) {
	h.raw("<td>")
	h.text(s)
	h.raw("</td>")
}

// ErrorAlert renders an error fragment for HTMX swaps.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<div class="alert alert-error" role="alert"><p class="alert-message">`)
		h.text(message)
		h.raw(`</p>`)
		if action != "" {
			h.raw(`<p class="alert-action">`)
			h.text(action)
			h.raw(`</p>`)
		}
		if code != "" {
			h.raw(`<p class="alert-code">Code: `)
			h.text(code)
			h.raw(`</p>`)
		}
		h.raw(`</div>`)
		return h.err
	})
}

// Dashboard renders the full page.
func Dashboard(p DashboardPage) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>Stock Ledger</title></head><body>`)
		h.raw(`<h1>Stock Ledger</h1>`)
		if h.err != nil {
			return h.err
		}

		for _, c := range []templ.Component{
			statsSection(p.Dashboard.Stats),
			alertsSection(p.Dashboard.LowStock),
			inventorySection(p.Items),
			ordersSection(p.Orders),
			salesSection(p.Sales),
		} {
			if err := c.Render(ctx, w); err != nil {
				return err
			}
		}

		h.raw(`<footer><a href="/api/export/inventory">Export inventory</a> `)
		h.raw(`<a href="/api/export/orders">Export orders</a> `)
		h.raw(`<a href="/api/export/sales">Export sales</a></footer></body></html>`)
		return h.err
	})
}

func statsSection(s core.Stats) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<section id="stats"><dl>`)
		for _, st := range []struct {
			label string
			value int
		}{
			{"Items", s.Items},
			{"Low stock", s.LowStock},
			{"Orders", s.Orders},
			{"Pending", s.Pending},
			{"Delivered", s.Delivered},
		} {
			h.raw(`<dt>`)
			h.text(st.label)
			h.raw(`</dt><dd>`)
			h.text(strconv.Itoa(st.value))
			h.raw(`</dd>`)
		}
		h.raw(`</dl></section>`)
		return h.err
	})
}

func alertsSection(low []core.Item) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<section id="alerts">`)
		if len(low) == 0 {
			h.raw(`<div class="alert alert-ok">No low-stock items.</div>`)
		}
		for _, it := range low {
			h.raw(`<div class="alert">`)
			h.text(fmt.Sprintf("Low stock: %s (Stock: %d, Threshold: %d)", it.DisplayName, it.Stock, it.Threshold))
			h.raw(`</div>`)
		}
		h.raw(`</section>`)
		return h.err
	})
}

func inventorySection(items []core.Item) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<section id="inventory"><h2>Inventory</h2><table><thead><tr><th>Item</th><th>Stock</th><th>Threshold</th><th>Price</th></tr></thead><tbody>`)
		if len(items) == 0 {
			h.raw(`<tr><td colspan="4">No items yet.</td></tr>`)
		}
		for _, it := range items {
			if it.IsLow() {
				h.raw(`<tr class="low">`)
			} else {
				h.raw(`<tr>`)
			}
			h.cell(it.DisplayName)
			h.cell(strconv.Itoa(it.Stock))
			h.cell(strconv.Itoa(it.Threshold))
			h.cell(core.FormatMoney(it.Price))
			h.raw(`</tr>`)
		}
		h.raw(`</tbody></table></section>`)
		return h.err
	})
}

func ordersSection(orders []core.Order) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<section id="orders"><h2>Orders</h2><table><thead><tr><th>Date</th><th>Item</th><th>Qty</th><th>Status</th></tr></thead><tbody>`)
		if len(orders) == 0 {
			h.raw(`<tr><td colspan="4">No orders yet.</td></tr>`)
		}
		for _, o := range orders {
			h.raw(`<tr>`)
			h.cell(o.CreatedAt.Format("2006-01-02 15:04"))
			h.cell(o.ItemName)
			h.cell(strconv.Itoa(o.Qty))
			h.cell(string(o.Status))
			h.raw(`</tr>`)
		}
		h.raw(`</tbody></table></section>`)
		return h.err
	})
}

func salesSection(rows []core.SalesRow) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<section id="sales"><h2>Sales</h2><table><thead><tr><th>Item</th><th>Units sold</th><th>Est. revenue</th></tr></thead><tbody>`)
		if len(rows) == 0 {
			h.raw(`<tr><td colspan="3">No sales data yet.</td></tr>`)
		}
		for _, r := range rows {
			rev := core.FormatMoney(r.Revenue)
			if rev == "" {
				rev = "-"
			}
			h.raw(`<tr>`)
			h.cell(r.ItemName)
			h.cell(strconv.Itoa(r.Units))
			h.cell(rev)
			h.raw(`</tr>`)
		}
		h.raw(`</tbody></table></section>`)
		return h.err
	})
}
