package core

import (
	"errors"
	"fmt"
)

// Sentinels matched by errors.Is against the typed errors below.
var (
	ErrValidation        = errors.New("validation failed")
	ErrConflict          = errors.New("key conflict")
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrImport            = errors.New("import failed")
)

// ValidationError reports malformed input to a mutating operation.
type ValidationError struct {
	Field   string // Field name
	Message string // Corrective message for the user
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// ConflictError reports a rename onto a key held by another item.
type ConflictError struct {
	Key string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("item %q already exists", e.Key)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// NotFoundError reports a reference to an unknown item or order.
type NotFoundError struct {
	Kind string // "item" or "order"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// InsufficientStockError reports an order larger than the stock on hand.
type InsufficientStockError struct {
	Key       string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d", e.Key, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// ImportParseError is the soft failure of a CSV import. The ledger is
// unchanged when it is returned.
type ImportParseError struct {
	Reason string
	Err    error
}

func (e *ImportParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("import failed: %s: %v", e.Reason, e.Err)
	}
	return "import failed: " + e.Reason
}

func (e *ImportParseError) Unwrap() error { return e.Err }

func (e *ImportParseError) Is(target error) bool { return target == ErrImport }
