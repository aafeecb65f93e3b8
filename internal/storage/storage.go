// Package storage persists the ledger snapshot as named JSON documents.
//
// A backend is a small key-value store: Get returns one document and
// SetMany replaces several documents in a single write so that inventory
// and orders are never persisted out of step with each other.
package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/JonMunkholm/stockledger/internal/config"
)

// ErrNotFound is returned by Get when no document is stored under the key.
var ErrNotFound = errors.New("snapshot document not found")

// keyPattern restricts document keys to names safe for every backend.
var keyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

// Store is implemented by every snapshot backend.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetMany(ctx context.Context, docs map[string][]byte) error
	Close() error
}

// ValidateKey rejects keys that could escape a directory or table row.
func ValidateKey(key string) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("invalid document key %q", key)
	}
	return nil
}

// Open builds the backend selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case config.DriverMemory:
		return NewMemoryStore(), nil
	case config.DriverFile, "":
		return NewFileStore(cfg.Path)
	case config.DriverPostgres:
		return NewPostgresStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Driver)
	}
}
