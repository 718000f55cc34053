package core

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/liliang-cn/docmirror/pkg/model"
)

// Tx exposes the cache operations bound to a single SQLite transaction.
// All reads and writes made through a Tx commit or roll back together.
type Tx struct {
	store *SQLiteStore
	tx    *sql.Tx
}

// Add inserts or replaces the stored state for doc's key.
func (t *Tx) Add(ctx context.Context, doc model.MaybeDocument) error {
	return t.store.add(ctx, t.tx, doc)
}

// Remove deletes the stored state for key. Idempotent.
func (t *Tx) Remove(ctx context.Context, key model.DocumentKey) error {
	return t.store.remove(ctx, t.tx, key)
}

// Get returns the stored state for key, or nil when absent.
func (t *Tx) Get(ctx context.Context, key model.DocumentKey) (model.MaybeDocument, error) {
	return t.store.get(ctx, t.tx, key)
}

// GetAll returns the stored states for the given keys, in key order.
func (t *Tx) GetAll(ctx context.Context, keys []model.DocumentKey) ([]model.MaybeDocument, error) {
	results := make([]model.MaybeDocument, 0, len(keys))
	if len(keys) == 0 {
		return results, nil
	}
	return t.store.getAll(ctx, t.tx, keys, results)
}

// GetAllMatchingQuery returns every existing document matching query.
func (t *Tx) GetAllMatchingQuery(ctx context.Context, query model.Query) (*model.DocumentMap, error) {
	return t.store.getAllMatchingQuery(ctx, t.tx, query)
}

// RunInTransaction executes fn inside a single SQLite transaction. The
// transaction commits when fn returns nil and rolls back otherwise; the
// error from fn is returned unchanged.
func (s *SQLiteStore) RunInTransaction(ctx context.Context, fn func(tx *Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return wrapError("transaction", ErrStoreClosed)
	}

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapError("transaction", fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer func() {
		if rollErr := sqlTx.Rollback(); rollErr != nil && !errors.Is(rollErr, sql.ErrTxDone) {
			s.logger.Warn("failed to rollback transaction", "error", rollErr)
		}
	}()

	if err := fn(&Tx{store: s, tx: sqlTx}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return wrapError("transaction", fmt.Errorf("failed to commit transaction: %w", err))
	}

	return nil
}
