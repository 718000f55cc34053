package core

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/liliang-cn/docmirror/internal/encoding"
	"github.com/liliang-cn/docmirror/pkg/model"
)

// Get returns the stored state for key, or nil when no record is present.
// Absence is a normal result, never an error.
func (s *SQLiteStore) Get(ctx context.Context, key model.DocumentKey) (model.MaybeDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, wrapError("get", ErrStoreClosed)
	}

	return s.get(ctx, s.db, key)
}

func (s *SQLiteStore) get(ctx context.Context, q querier, key model.DocumentKey) (model.MaybeDocument, error) {
	path := encoding.EncodePath(key.Path())

	var contents []byte
	err := q.QueryRowContext(ctx,
		"SELECT contents FROM remote_documents WHERE path = ?", path).Scan(&contents)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapError("get", fmt.Errorf("failed to query document: %w", err))
	}

	doc, err := encoding.DecodeMaybeDocument(contents)
	if err != nil {
		return nil, wrapError("get", err)
	}

	return doc, nil
}

// GetAll returns the stored states for the given keys, in key order. Keys
// with no stored record are omitted. An empty input yields an empty result
// without touching storage.
func (s *SQLiteStore) GetAll(ctx context.Context, keys []model.DocumentKey) ([]model.MaybeDocument, error) {
	results := make([]model.MaybeDocument, 0, len(keys))
	if len(keys) == 0 {
		return results, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, wrapError("get_all", ErrStoreClosed)
	}

	return s.getAll(ctx, s.db, keys, results)
}

func (s *SQLiteStore) getAll(ctx context.Context, q querier, keys []model.DocumentKey, results []model.MaybeDocument) ([]model.MaybeDocument, error) {
	// Split the key set into chunks so no single query exceeds SQLite's
	// host parameter ceiling.
	limit := s.config.ChunkSize
	queriesPerformed := 0
	for start := 0; start < len(keys); start += limit {
		end := start + limit
		if end > len(keys) {
			end = len(keys)
		}
		chunk := keys[start:end]
		queriesPerformed++

		placeholders := make([]string, len(chunk))
		args := make([]any, len(chunk))
		for i, key := range chunk {
			placeholders[i] = "?"
			args[i] = encoding.EncodePath(key.Path())
		}

		query := fmt.Sprintf(
			"SELECT contents FROM remote_documents WHERE path IN (%s) ORDER BY path",
			strings.Join(placeholders, ", "))
		chunkResults, err := s.scanContents(ctx, q, query, args...)
		if err != nil {
			return nil, wrapError("get_all", err)
		}
		results = append(results, chunkResults...)
	}

	// Results are ordered within each chunk but not across chunks. Re-sort
	// only when several queries were issued so the common single-chunk path
	// pays no sort cost.
	if queriesPerformed > 1 {
		sort.Slice(results, func(i, j int) bool {
			return results[i].Key().Compare(results[j].Key()) < 0
		})
	}

	return results, nil
}

// scanContents runs a contents-only query and decodes every row.
func (s *SQLiteStore) scanContents(ctx context.Context, q querier, query string, args ...any) ([]model.MaybeDocument, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Warn("failed to close rows during batched lookup", "error", closeErr)
		}
	}()

	var docs []model.MaybeDocument
	for rows.Next() {
		var contents []byte
		if err := rows.Scan(&contents); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		doc, err := encoding.DecodeMaybeDocument(contents)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return docs, nil
}

// GetAllMatchingQuery returns every existing document directly inside the
// queried collection that satisfies the query, as an immutable mapping
// ordered by document key.
func (s *SQLiteStore) GetAllMatchingQuery(ctx context.Context, query model.Query) (*model.DocumentMap, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, wrapError("get_all_matching_query", ErrStoreClosed)
	}

	return s.getAllMatchingQuery(ctx, s.db, query)
}

func (s *SQLiteStore) getAllMatchingQuery(ctx context.Context, q querier, query model.Query) (*model.DocumentMap, error) {
	prefix := query.Path()
	immediateChildLength := prefix.Length() + 1

	prefixPath := encoding.EncodePath(prefix)
	successorPath, bounded := encoding.PrefixSuccessor(prefixPath)

	var rows *sql.Rows
	var err error
	if bounded {
		rows, err = q.QueryContext(ctx,
			"SELECT path, contents FROM remote_documents WHERE path >= ? AND path < ?",
			prefixPath, successorPath)
	} else {
		rows, err = q.QueryContext(ctx,
			"SELECT path, contents FROM remote_documents WHERE path >= ?",
			prefixPath)
	}
	if err != nil {
		return nil, wrapError("get_all_matching_query", fmt.Errorf("failed to scan prefix range: %w", err))
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Warn("failed to close rows during query scan", "error", closeErr)
		}
	}()

	var matches []*model.Document
	for rows.Next() {
		var pathKey string
		var contents []byte
		if err := rows.Scan(&pathKey, &contents); err != nil {
			return nil, wrapError("get_all_matching_query", fmt.Errorf("failed to scan row: %w", err))
		}

		// The prefix range necessarily covers nested subcollections too: a
		// scan over "rooms" also yields rooms/abc/messages/xyz. Those rows
		// are discarded by depth rather than narrowing the range bound.
		path, err := encoding.DecodePath(pathKey)
		if err != nil {
			return nil, wrapError("get_all_matching_query", fmt.Errorf("%w: %v", ErrCorrupt, err))
		}
		if path.Length() != immediateChildLength {
			continue
		}

		maybeDoc, err := encoding.DecodeMaybeDocument(contents)
		if err != nil {
			return nil, wrapError("get_all_matching_query", err)
		}

		// Tombstones and unknown states never satisfy a query.
		doc, ok := maybeDoc.(*model.Document)
		if !ok {
			continue
		}
		if !query.Matches(doc) {
			continue
		}

		matches = append(matches, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError("get_all_matching_query", fmt.Errorf("error iterating rows: %w", err))
	}

	return model.BuildDocumentMap(matches...), nil
}
