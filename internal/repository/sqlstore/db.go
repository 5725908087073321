package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"usermgr/internal/repository"
)

// Options selects the driver and location of the store.
type Options struct {
	Driver string
	Path   string
	URL    string
}

// Store owns the connection pool and hands out scoped sessions.
type Store struct {
	db      *sql.DB
	dialect dialect
}

// Open connects to the configured store. Connection failures wrap repository.ErrConnection.
func Open(ctx context.Context, opts Options) (*Store, error) {
	d, err := dialectFor(opts.Driver)
	if err != nil {
		return nil, err
	}

	var db *sql.DB
	switch d.name {
	case DriverSQLite:
		db, err = openSQLite(opts.Path)
	case DriverPostgres:
		db, err = sql.Open(d.driverName, opts.URL)
	}
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping %s: %w", repository.ErrConnection, d.name, err)
	}

	return &Store{db: db, dialect: d}, nil
}

// openSQLite opens (or creates) a sqlite database at the given path and ensures directories exist.
func openSQLite(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("%w: create db dir: %w", repository.ErrConnection, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// one writer at a time; sessions hold the connection for their transaction
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return db, nil
}

// Driver reports which dialect the store speaks.
func (s *Store) Driver() string {
	return s.dialect.name
}

func (s *Store) Close() error {
	return s.db.Close()
}
