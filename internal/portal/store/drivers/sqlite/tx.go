package sqlite

import (
	"context"
	"database/sql"

	"github.com/openreport/portal/internal/portal/store"
)

type txStore struct {
	tx *sql.Tx
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // nothing to close; the outer DB stays open

// Ping is a no-op inside a transaction; the connection already exists.
func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) ApplyMigrations() error { return nil } // migrations run before any tx starts

func (t *txStore) Keys() store.Keys           { return &keysRepo{db: t.tx} }
func (t *txStore) Inquiries() store.Inquiries { return &inquiriesRepo{db: t.tx} }
func (t *txStore) Replies() store.Replies     { return &repliesRepo{db: t.tx} }
func (t *txStore) Outbox() store.Outbox       { return &outboxRepo{db: t.tx} }
func (t *txStore) Admins() store.Admins       { return &adminsRepo{db: t.tx} }
