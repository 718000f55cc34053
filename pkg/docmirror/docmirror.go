// Package docmirror provides a lightweight SQLite-backed mirror of remote
// documents for offline-capable clients.
package docmirror

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/liliang-cn/docmirror/pkg/core"
	"github.com/liliang-cn/docmirror/pkg/model"
)

// DB represents an opened document mirror.
type DB struct {
	store *core.SQLiteStore
}

// Config represents database configuration
type Config struct {
	Path   string      // Database file path
	Logger core.Logger // Diagnostics sink (default: discard)
}

// DefaultConfig returns default configuration
func DefaultConfig(path string) Config {
	return Config{Path: path}
}

// Open opens or creates a document mirror database.
func Open(config Config) (*DB, error) {
	coreConfig := core.DefaultConfig(config.Path)
	if config.Logger != nil {
		coreConfig.Logger = config.Logger
	}

	store, err := core.NewWithConfig(coreConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	if err := store.Init(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	return &DB{store: store}, nil
}

// Cache returns the remote document cache.
func (db *DB) Cache() *core.SQLiteStore {
	return db.store
}

// Close closes the database
func (db *DB) Close() error {
	return db.store.Close()
}

// AutoID returns a random document ID suitable for a path segment.
func AutoID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// NewDocumentKey returns a key for a fresh, randomly named document in the
// given collection.
func NewDocumentKey(collection model.ResourcePath) (model.DocumentKey, error) {
	return model.NewDocumentKey(collection.Append(AutoID()))
}
