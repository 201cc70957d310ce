// Package postgres provides a PostgreSQL-backed per-client storage driver.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/target/vista-ui/internal/adapters/postgres/pgxutil"
	"github.com/target/vista-ui/internal/ports"
)

var (
	// ErrSchemaMissing is returned when the client_storage table does not exist.
	ErrSchemaMissing = errors.New("client_storage table missing; run migrations")
	// ErrClientIDRequired is returned by admin operations without a client id.
	ErrClientIDRequired = errors.New("client id is required")
)

var (
	_ ports.StorageProvider = (*StorageProvider)(nil)
	_ ports.StorageAdmin    = (*StorageProvider)(nil)
	_ ports.BatchStorage    = (*Storage)(nil)
)

const (
	selectValue = `SELECT value FROM client_storage WHERE client_id = $1 AND key = $2`
	upsertValue = `
		INSERT INTO client_storage (client_id, key, value, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (client_id, key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	deleteValue = `DELETE FROM client_storage WHERE client_id = $1 AND key = $2`
	selectAll   = `SELECT key, value FROM client_storage WHERE client_id = $1 ORDER BY key`
	deleteAll   = `DELETE FROM client_storage WHERE client_id = $1`
)

// StorageProvider stores client entries in the client_storage table.
type StorageProvider struct {
	DB *sql.DB
}

// NewStorageProvider creates a StorageProvider over db.
func NewStorageProvider(db *sql.DB) *StorageProvider {
	return &StorageProvider{DB: db}
}

// For returns the storage scoped to clientID.
//
//nolint:ireturn // callers depend on the port.
func (p *StorageProvider) For(clientID string) ports.Storage {
	return &Storage{db: p.DB, clientID: clientID}
}

// Dump returns all entries for clientID.
func (p *StorageProvider) Dump(ctx context.Context, clientID string) (map[string]string, error) {
	if clientID == "" {
		return nil, ErrClientIDRequired
	}
	rows, err := p.DB.QueryContext(ctx, selectAll, clientID)
	if err != nil {
		return nil, mapErr("dump client storage", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan client storage: %w", err)
		}
		out[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("iterate client storage", err)
	}
	return out, nil
}

// Purge deletes every entry for clientID.
func (p *StorageProvider) Purge(ctx context.Context, clientID string) error {
	if clientID == "" {
		return ErrClientIDRequired
	}
	if _, err := p.DB.ExecContext(ctx, deleteAll, clientID); err != nil {
		return mapErr("purge client storage", err)
	}
	return nil
}

// Storage is one client's view of the client_storage table.
type Storage struct {
	db       *sql.DB
	clientID string
}

// Get returns the value stored under key.
func (s *Storage) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, selectValue, s.clientID, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, mapErr("get client storage", err)
	}
	return v, true, nil
}

// Set upserts value under key.
func (s *Storage) Set(ctx context.Context, key, value string) error {
	if _, err := s.db.ExecContext(ctx, upsertValue, s.clientID, key, value); err != nil {
		return mapErr("set client storage", err)
	}
	return nil
}

// Remove deletes key.
func (s *Storage) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, deleteValue, s.clientID, key); err != nil {
		return mapErr("remove client storage", err)
	}
	return nil
}

// SetMany upserts all values in one transaction.
func (s *Storage) SetMany(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for k, v := range values {
		batch.Queue(upsertValue, s.clientID, k, v)
	}
	return s.sendBatch(ctx, "set many client storage", batch)
}

// RemoveMany deletes all keys in one transaction.
func (s *Storage) RemoveMany(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, k := range keys {
		batch.Queue(deleteValue, s.clientID, k)
	}
	return s.sendBatch(ctx, "remove many client storage", batch)
}

func (s *Storage) sendBatch(ctx context.Context, op string, batch *pgx.Batch) error {
	err := pgxutil.WithPgxTx(ctx, s.db, pgxutil.TxConfig{
		Fn: func(tx pgx.Tx) error {
			return tx.SendBatch(ctx, batch).Close()
		},
	})
	if err != nil {
		return mapErr(op, err)
	}
	return nil
}

func mapErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UndefinedTable {
		return fmt.Errorf("%s: %w", op, ErrSchemaMissing)
	}
	return fmt.Errorf("%s: %w", op, err)
}
