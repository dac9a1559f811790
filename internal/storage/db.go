package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/claude/fittrack/internal/metrics"
	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/prometheus/client_golang/prometheus"
	_ "modernc.org/sqlite"
)

// DB is the local document store: named collections of JSON records in a
// single SQLite file. Each call is atomic on its own; nothing spans calls.
type DB struct {
	conn        *sql.DB
	path        string
	collections map[string]Collection
}

// Open opens (or creates) the database at path and applies the embedded
// schema migrations up to version. Re-opening an up-to-date database changes
// nothing. Any failure is reported as ErrStorageUnavailable.
func Open(ctx context.Context, path string, version uint) (*DB, error) {
	timer := prometheus.NewTimer(metrics.StoreOperationDuration.WithLabelValues("", metrics.StoreOpOpen))
	defer timer.ObserveDuration()

	db, err := open(ctx, path, version)
	if err != nil {
		metrics.StoreOperationErrorsTotal.WithLabelValues("", metrics.StoreOpOpen).Inc()
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return db, nil
}

func open(ctx context.Context, path string, version uint) (*DB, error) {
	if version == 0 || version > SchemaVersion {
		return nil, fmt.Errorf("schema version %d out of range 1..%d", version, SchemaVersion)
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating database dir: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite works best with a single writer.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(time.Hour)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if err := runMigrations(conn, version); err != nil {
		conn.Close()
		return nil, err
	}

	db := &DB{conn: conn, path: path, collections: make(map[string]Collection, len(Schema))}
	for _, c := range Schema {
		db.collections[c.Name] = c
	}
	return db, nil
}

// runMigrations brings the schema to version. A database already past
// version is refused rather than migrated down.
func runMigrations(conn *sql.DB, version uint) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}

	driver, err := migratesqlite.WithInstance(conn, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("creating migration driver: %w", err)
	}

	// m.Close would also close conn, so only the source is released here.
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		src.Close()
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer src.Close()

	current, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("reading schema version: %w", err)
	}
	if dirty {
		return fmt.Errorf("schema version %d is dirty", current)
	}
	if err == nil && current > version {
		return fmt.Errorf("database schema version %d is newer than requested %d", current, version)
	}

	if err := m.Migrate(version); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// Close closes the database.
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// Path returns the file the database lives in.
func (db *DB) Path() string {
	return db.path
}

// Version returns the applied schema version.
func (db *DB) Version(ctx context.Context) (uint, error) {
	var v uint
	err := db.conn.QueryRowContext(ctx, `SELECT version FROM schema_migrations LIMIT 1`).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return v, nil
}

// Health checks if the database connection is healthy.
func (db *DB) Health(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}
