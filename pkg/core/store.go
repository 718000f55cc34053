package core

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver
)

// maxParametersPerQuery caps the number of host parameters bound to one
// batched lookup. SQLite limits host parameters to 999 (see
// https://www.sqlite.org/limits.html); staying at 900 leaves headroom for
// any fixed bindings in the statement.
const maxParametersPerQuery = 900

// Config holds the store configuration.
type Config struct {
	// Path is the SQLite database file path.
	Path string

	// ChunkSize caps the number of keys bound to a single batched lookup
	// query. Defaults to maxParametersPerQuery; tests lower it to exercise
	// the multi-chunk path.
	ChunkSize int

	// Logger receives store diagnostics. Defaults to a no-op logger.
	Logger Logger
}

// DefaultConfig returns the default store configuration for the given
// database path.
func DefaultConfig(path string) Config {
	return Config{
		Path:      path,
		ChunkSize: maxParametersPerQuery,
		Logger:    NopLogger(),
	}
}

// querier is the subset of database/sql shared by *sql.DB and *sql.Tx. All
// cache reads and writes go through it so the same code path serves both
// ambient-transaction and standalone use.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteStore is a durable mirror of server-authoritative document states,
// keyed by the order-preserving encoded form of each document's path. It is
// a stateless facade over SQLite: it holds no caches or background work of
// its own, performs no retries, and leaves atomicity to the surrounding
// transaction scope.
type SQLiteStore struct {
	db     *sql.DB
	config Config
	logger Logger
	mu     sync.RWMutex
	closed bool
}

// New creates a store with the default configuration.
func New(path string) (*SQLiteStore, error) {
	return NewWithConfig(DefaultConfig(path))
}

// NewWithConfig creates a store with a custom configuration. Call Init
// before use.
func NewWithConfig(config Config) (*SQLiteStore, error) {
	if config.Path == "" {
		return nil, wrapError("init", fmt.Errorf("database path cannot be empty"))
	}
	if config.ChunkSize <= 0 {
		config.ChunkSize = maxParametersPerQuery
	}
	if config.Logger == nil {
		config.Logger = NopLogger()
	}

	return &SQLiteStore{
		config: config,
		logger: config.Logger,
	}, nil
}
