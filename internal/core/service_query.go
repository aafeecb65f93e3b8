package core

import "time"

// FindItem returns the item stored under key.
func (s *Service) FindItem(key string) (Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inv.Find(key)
}

// Items lists inventory matching q.
func (s *Service) Items(q InventoryQuery) []Item {
	s.mu.Lock()
	items := s.inv.List()
	s.mu.Unlock()
	return FilterInventory(items, q)
}

// Orders lists orders matching q, most recent first.
func (s *Service) Orders(q OrderQuery) []Order {
	s.mu.Lock()
	orders := s.ledger.List()
	s.mu.Unlock()
	return FilterOrders(orders, q)
}

// FindOrder returns the order with id.
func (s *Service) FindOrder(id string) (Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Find(id)
}

// Sales returns the sales aggregation filtered by search.
func (s *Service) Sales(search string) []SalesRow {
	s.mu.Lock()
	rows := ComputeSales(s.inv, s.ledger.orders)
	s.mu.Unlock()
	return FilterSales(rows, search)
}

// Dashboard returns counters and low-stock alerts.
func (s *Service) Dashboard() Dashboard {
	s.mu.Lock()
	defer s.mu.Unlock()
	return BuildDashboard(s.inv.items, s.ledger.orders)
}

// Overview is every view the dashboard page shows, taken from one state.
type Overview struct {
	Dashboard Dashboard
	Items     []Item
	Orders    []Order
	Sales     []SalesRow
}

// Overview builds the dashboard, inventory, orders and sales views under a
// single lock so they agree with each other.
func (s *Service) Overview() Overview {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Overview{
		Dashboard: BuildDashboard(s.inv.items, s.ledger.orders),
		Items:     FilterInventory(s.inv.List(), InventoryQuery{}),
		Orders:    FilterOrders(s.ledger.List(), OrderQuery{Status: FilterAll}),
		Sales:     ComputeSales(s.inv, s.ledger.orders),
	}
}

// Suggestions returns item names for a picker.
func (s *Service) Suggestions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Suggestions(s.inv.items)
}

// Export renders one of the inventory, orders or sales views as CSV.
func (s *Service) Export(view string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch view {
	case ViewInventory:
		return ExportInventory(s.inv.items), nil
	case ViewOrders:
		return ExportOrders(s.ledger.orders), nil
	case ViewSales:
		return ExportSales(ComputeSales(s.inv, s.ledger.orders)), nil
	}
	return "", invalid("view", "view must be one of inventory, orders, sales")
}

// ExportFilename names the download for view at the service clock's date.
func (s *Service) ExportFilename(view string) string {
	return ExportFilename(view, s.now())
}

// Now returns the service clock's current time.
func (s *Service) Now() time.Time {
	return s.now()
}
