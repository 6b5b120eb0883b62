// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package sqlite provides an adapter that stores objects as JSON documents
// in a SQLite database.
//
// Every adapter opened on the same DB shares its tag and its transaction.
// Objects are kept in an identity map so that fetching the same primary key
// twice returns the same instance, as the mapper expects. A rollback
// empties the identity map because instances may hold changes that were
// never committed.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/stacklok/jsonbind/pkg/adapter"
	"github.com/stacklok/jsonbind/pkg/logger"
)

// TagPrefix prefixes the tag of every DB.
const TagPrefix = "sqlite"

// InMemory opens a private in-memory database.
const InMemory = ":memory:"

// DefaultLockTimeout bounds the wait for another process to release a
// database file.
const DefaultLockTimeout = 5 * time.Second

// DB is a SQLite object store.
type DB struct {
	db          *sql.DB
	path        string
	tag         string
	logger      *slog.Logger
	lock        *flock.Flock
	lockTimeout time.Duration

	// txMu is held for the duration of a transaction.
	txMu sync.Mutex

	mu       sync.Mutex
	tx       *sql.Tx
	identity map[string]map[string]any
}

// Option configures a DB.
type Option func(*DB)

// WithLogger sets the logger used for transaction events.
func WithLogger(l *slog.Logger) Option {
	return func(d *DB) {
		d.logger = l
	}
}

// WithLockTimeout sets how long Open waits for the database file lock.
func WithLockTimeout(d time.Duration) Option {
	return func(db *DB) {
		db.lockTimeout = d
	}
}

// Open opens or creates the database at path and applies pending
// migrations.
func Open(ctx context.Context, path string, opts ...Option) (*DB, error) {
	if path == "" {
		return nil, errors.New("database path is required")
	}

	d := &DB{
		path:        path,
		tag:         fmt.Sprintf("%s:%s", TagPrefix, path),
		logger:      logger.Get(),
		lockTimeout: DefaultLockTimeout,
		identity:    make(map[string]map[string]any),
	}
	for _, opt := range opts {
		opt(d)
	}

	if path != InMemory {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		// Objects are cached per process, so a file has a single owner.
		if err := d.acquire(ctx); err != nil {
			return nil, err
		}
	}

	sqlDB, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		d.release()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps every statement of a mapping pass on the
	// connection that holds its transaction.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		d.release()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := runMigrations(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		d.release()
		return nil, err
	}

	d.db = sqlDB
	return d, nil
}

func (d *DB) acquire(ctx context.Context) error {
	lockPath := d.path + ".lock"
	fileLock := flock.New(lockPath)
	lockCtx, cancel := context.WithTimeout(ctx, d.lockTimeout)
	defer cancel()

	locked, err := fileLock.TryLockContext(lockCtx, 100*time.Millisecond)
	if err != nil {
		return fmt.Errorf("failed to lock %s: %w", lockPath, err)
	}
	if !locked {
		return fmt.Errorf("failed to lock %s: timeout after %v", lockPath, d.lockTimeout)
	}
	d.lock = fileLock
	return nil
}

func (d *DB) release() {
	if d.lock == nil {
		return
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release database lock", "path", d.path, "error", err)
	}
}

func dsn(path string) string {
	if path == InMemory {
		return "file::memory:?_pragma=busy_timeout(5000)"
	}
	return "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// Close closes the database.
func (d *DB) Close() error {
	err := d.db.Close()
	d.release()
	return err
}

// DB returns the underlying connection pool.
func (d *DB) DB() *sql.DB { return d.db }

// Path returns the database path.
func (d *DB) Path() string { return d.path }

// Tag returns the transaction scope shared by the DB's adapters.
func (d *DB) Tag() string { return d.tag }

// InTransaction reports whether a transaction is open.
func (d *DB) InTransaction() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tx != nil
}

// Begin opens a transaction, waiting for any other transaction to finish.
func (d *DB) Begin(ctx context.Context) error {
	d.txMu.Lock()
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		d.txMu.Unlock()
		return fmt.Errorf("beginning transaction: %w", err)
	}

	d.mu.Lock()
	d.tx = tx
	d.mu.Unlock()
	d.logger.Debug("sqlite transaction started", "tag", d.tag)
	return nil
}

// Commit commits the open transaction.
func (d *DB) Commit(_ context.Context) error {
	tx := d.takeTx()
	if tx == nil {
		return adapter.ErrNoTransaction
	}
	defer d.txMu.Unlock()

	if err := tx.Commit(); err != nil {
		d.forgetAll()
		return fmt.Errorf("committing transaction: %w", err)
	}
	d.logger.Debug("sqlite transaction committed", "tag", d.tag)
	return nil
}

// Rollback rolls the open transaction back. It does nothing when no
// transaction is open.
func (d *DB) Rollback(_ context.Context) {
	tx := d.takeTx()
	if tx == nil {
		return
	}
	defer d.txMu.Unlock()

	rollback(tx)
	d.forgetAll()
	d.logger.Debug("sqlite transaction rolled back", "tag", d.tag)
}

func (d *DB) takeTx() *sql.Tx {
	d.mu.Lock()
	defer d.mu.Unlock()
	tx := d.tx
	d.tx = nil
	return tx
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// conn returns the open transaction, or the pool outside of one.
func (d *DB) conn() querier {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.tx != nil {
		return d.tx
	}
	return d.db
}

func (d *DB) lookup(kind, pk string) (any, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	obj, ok := d.identity[kind][pk]
	return obj, ok
}

func (d *DB) remember(kind, pk string, obj any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.identity[kind] == nil {
		d.identity[kind] = make(map[string]any)
	}
	d.identity[kind][pk] = obj
}

func (d *DB) forget(kind, pk string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.identity[kind], pk)
}

func (d *DB) forgetAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.identity = make(map[string]map[string]any)
}

// rollback rolls back tx, ignoring errors (tx may already be committed).
func rollback(tx *sql.Tx) { _ = tx.Rollback() }
