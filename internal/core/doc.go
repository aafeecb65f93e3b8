// Package core implements the stock and order ledger.
//
// It contains all domain logic independent of any UI or transport layer
// and is shared by the web server and the ledgerctl command.
//
// # Architecture
//
//   - Inventory: the set of items keyed by [NormalizeKey] of their name.
//   - Ledger: orders, most recent first, plus the stock reservation rules.
//   - Sales: [ComputeSales] derives per-item units and revenue on demand.
//   - Import/export: CSV views of inventory, orders and sales, and a
//     best-effort inventory import with add-stock merge semantics.
//   - Service: the session that serializes mutations and persists the
//     snapshot through a [storage.Store].
//
// # Commit Protocol
//
// Each mutation runs against a copy of the inventory and ledger. The copy
// is written as one snapshot and becomes live only if the write succeeds:
//
//	svc.PlaceOrder(ctx, "Blue Pen", 3)
//	  -> clone inventory + ledger
//	  -> reserve stock, prepend order
//	  -> store.SetMany(inventory, orders)
//	  -> swap in the copy
//
// A failed write returns an error wrapping "save snapshot" and nothing
// changes.
//
// # Errors
//
// Domain failures are typed ([ValidationError], [ConflictError],
// [NotFoundError], [InsufficientStockError], [ImportParseError]) and match
// the sentinels [ErrValidation], [ErrConflict], [ErrNotFound],
// [ErrInsufficientStock] and [ErrImport] with errors.Is. [MapError] turns
// any error into a [UserMessage] with a support code.
package core
