package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"

	"github.com/JonMunkholm/stockledger/internal/config"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createSnapshotTable = `
CREATE TABLE IF NOT EXISTS ledger_snapshot (
	doc_key    TEXT PRIMARY KEY,
	doc        JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const upsertSnapshotDoc = `
INSERT INTO ledger_snapshot (doc_key, doc, updated_at)
VALUES ($1, $2::jsonb, now())
ON CONFLICT (doc_key) DO UPDATE SET doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at`

// DBTX is the subset of pgx used by the store.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

// PostgresStore keeps documents in a single JSONB table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects, pings and ensures the snapshot table exists.
func NewPostgresStore(ctx context.Context, cfg config.StorageConfig) (*PostgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns >= 0 {
		poolConfig.MinConns = int32(cfg.MinConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, createSnapshotTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create snapshot table: %w", err)
	}

	if u, err := url.Parse(cfg.DatabaseURL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	}
	return &PostgresStore{pool: pool}, nil
}

// Get reads one document.
func (p *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	return getDoc(ctx, p.pool, key)
}

// SetMany upserts all documents inside one transaction.
func (p *PostgresStore) SetMany(ctx context.Context, docs map[string][]byte) error {
	keys := make([]string, 0, len(docs))
	for key := range docs {
		if err := ValidateKey(key); err != nil {
			return err
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		for _, key := range keys {
			if err := putDoc(ctx, tx, key, docs[key]); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close releases the pool.
func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}

func getDoc(ctx context.Context, db DBTX, key string) ([]byte, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	var doc []byte
	err := db.QueryRow(ctx, `SELECT doc FROM ledger_snapshot WHERE doc_key = $1`, key).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return doc, nil
}

func putDoc(ctx context.Context, db DBTX, key string, doc []byte) error {
	if _, err := db.Exec(ctx, upsertSnapshotDoc, key, string(doc)); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}
