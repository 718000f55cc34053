package core

import (
	"context"
	"fmt"

	"github.com/liliang-cn/docmirror/internal/encoding"
	"github.com/liliang-cn/docmirror/pkg/model"
)

// Add inserts or replaces the stored state for doc's key. The previous
// record at that key, if any, is fully overwritten; there is no merging at
// this layer.
func (s *SQLiteStore) Add(ctx context.Context, doc model.MaybeDocument) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return wrapError("add", ErrStoreClosed)
	}

	return s.add(ctx, s.db, doc)
}

func (s *SQLiteStore) add(ctx context.Context, q querier, doc model.MaybeDocument) error {
	if doc == nil {
		return wrapError("add", ErrNilDocument)
	}

	path := encoding.EncodePath(doc.Key().Path())
	contents, err := encoding.EncodeMaybeDocument(doc)
	if err != nil {
		return wrapError("add", err)
	}

	_, err = q.ExecContext(ctx,
		"INSERT OR REPLACE INTO remote_documents (path, contents) VALUES (?, ?)",
		path, contents)
	if err != nil {
		return wrapError("add", fmt.Errorf("failed to upsert document: %w", err))
	}

	return nil
}

// Remove deletes the stored state for key. Removing an absent key is not an
// error.
func (s *SQLiteStore) Remove(ctx context.Context, key model.DocumentKey) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return wrapError("remove", ErrStoreClosed)
	}

	return s.remove(ctx, s.db, key)
}

func (s *SQLiteStore) remove(ctx context.Context, q querier, key model.DocumentKey) error {
	path := encoding.EncodePath(key.Path())

	_, err := q.ExecContext(ctx, "DELETE FROM remote_documents WHERE path = ?", path)
	if err != nil {
		return wrapError("remove", fmt.Errorf("failed to delete document: %w", err))
	}

	return nil
}
