package core

import (
	"errors"
	"reflect"
	"testing"
)

func queryFixture() []Item {
	return []Item{
		{Key: "pen", DisplayName: "pen", Stock: 10, Threshold: 5},
		{Key: "apple", DisplayName: "Apple", Stock: 2, Threshold: 5},
		{Key: "zebra pad", DisplayName: "Zebra Pad", Stock: 5, Threshold: 5},
		{Key: "bolt", DisplayName: "Bolt", Stock: 40, Threshold: 0},
	}
}

func keys(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Key
	}
	return out
}

func TestFilterInventory(t *testing.T) {
	tests := []struct {
		name string
		q    InventoryQuery
		want []string
	}{
		{"insertion order", InventoryQuery{}, []string{"pen", "apple", "zebra pad", "bolt"}},
		{"name asc", InventoryQuery{Sort: SortNameAsc}, []string{"apple", "bolt", "pen", "zebra pad"}},
		{"name desc", InventoryQuery{Sort: SortNameDesc}, []string{"zebra pad", "pen", "bolt", "apple"}},
		{"stock asc", InventoryQuery{Sort: SortStockAsc}, []string{"apple", "zebra pad", "pen", "bolt"}},
		{"stock desc", InventoryQuery{Sort: SortStockDesc}, []string{"bolt", "pen", "zebra pad", "apple"}},
		{"low only", InventoryQuery{LowOnly: true}, []string{"apple", "zebra pad"}},
		{"search", InventoryQuery{Search: " PA"}, []string{"zebra pad"}},
		{"search no match", InventoryQuery{Search: "xyz"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := keys(FilterInventory(queryFixture(), tt.q))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseInventorySort(t *testing.T) {
	if s, err := ParseInventorySort(" NAME_ASC "); err != nil || s != SortNameAsc {
		t.Errorf("got %q, %v", s, err)
	}
	if s, err := ParseInventorySort(""); err != nil || s != SortNone {
		t.Errorf("empty: %q, %v", s, err)
	}
	if _, err := ParseInventorySort("price"); !errors.Is(err, ErrValidation) {
		t.Errorf("err = %v", err)
	}
}

func TestFilterOrders(t *testing.T) {
	orders := []Order{
		{ID: "1", ItemName: "Blue Pen", Status: StatusPending},
		{ID: "2", ItemName: "Red Pen", Status: StatusDelivered},
		{ID: "3", ItemName: "Pad", Status: StatusPending},
	}
	ids := func(os []Order) []string {
		out := []string{}
		for _, o := range os {
			out = append(out, o.ID)
		}
		return out
	}

	tests := []struct {
		name string
		q    OrderQuery
		want []string
	}{
		{"all", OrderQuery{Status: FilterAll}, []string{"1", "2", "3"}},
		{"pending", OrderQuery{Status: FilterPending}, []string{"1", "3"}},
		{"delivered", OrderQuery{Status: FilterDelivered}, []string{"2"}},
		{"search name", OrderQuery{Search: "red"}, []string{"2"}},
		{"search matches status too", OrderQuery{Search: "pen"}, []string{"1", "2", "3"}},
		{"search status", OrderQuery{Search: "deliv"}, []string{"2"}},
		{"search and status", OrderQuery{Search: "pen", Status: FilterDelivered}, []string{"2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ids(FilterOrders(orders, tt.q)); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseStatusFilter(t *testing.T) {
	for in, want := range map[string]StatusFilter{"": FilterAll, "ALL": FilterAll, "pending": FilterPending, "Delivered": FilterDelivered} {
		got, err := ParseStatusFilter(in)
		if err != nil || got != want {
			t.Errorf("ParseStatusFilter(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseStatusFilter("shipped"); !errors.Is(err, ErrValidation) {
		t.Errorf("err = %v", err)
	}
}

func TestFilterSales(t *testing.T) {
	rows := []SalesRow{{ItemName: "Blue Pen"}, {ItemName: "Pad"}}
	if got := FilterSales(rows, ""); len(got) != 2 {
		t.Errorf("empty search = %d rows", len(got))
	}
	if got := FilterSales(rows, "BLUE"); len(got) != 1 || got[0].ItemName != "Blue Pen" {
		t.Errorf("got %+v", got)
	}
}

func TestBuildDashboard(t *testing.T) {
	orders := []Order{
		{ID: "1", Status: StatusPending},
		{ID: "2", Status: StatusDelivered},
		{ID: "3", Status: StatusPending},
	}
	d := BuildDashboard(queryFixture(), orders)

	want := Stats{Items: 4, LowStock: 2, Orders: 3, Pending: 2, Delivered: 1}
	if d.Stats != want {
		t.Errorf("stats = %+v, want %+v", d.Stats, want)
	}
	if got := keys(d.LowStock); !reflect.DeepEqual(got, []string{"apple", "zebra pad"}) {
		t.Errorf("low stock = %v", got)
	}
}

func TestBuildDashboard_EmptyHasNonNilAlerts(t *testing.T) {
	d := BuildDashboard(nil, nil)
	if d.LowStock == nil {
		t.Error("LowStock is nil")
	}
}

func TestSuggestions(t *testing.T) {
	got := Suggestions(queryFixture())
	want := []string{"Apple", "Bolt", "pen", "Zebra Pad"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
