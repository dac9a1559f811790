package storage

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/claude/fittrack/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// Add inserts record into the collection. A record without a key (zero or
// missing) gets the next id from the collection's generator, and the stored
// document carries that id. A key that is already taken fails with
// ErrConstraintViolation.
func (db *DB) Add(ctx context.Context, collection string, record any) (int64, error) {
	timer := prometheus.NewTimer(metrics.StoreOperationDuration.WithLabelValues(collection, metrics.StoreOpAdd))
	defer timer.ObserveDuration()

	id, err := db.write(ctx, collection, record, false)
	if err != nil {
		return 0, db.failed(collection, metrics.StoreOpAdd, err)
	}
	return id, nil
}

// Put inserts or replaces record by key. Records in an auto-increment
// collection without a key are inserted as by Add. The returned id is zero
// for collections keyed by string.
func (db *DB) Put(ctx context.Context, collection string, record any) (int64, error) {
	timer := prometheus.NewTimer(metrics.StoreOperationDuration.WithLabelValues(collection, metrics.StoreOpPut))
	defer timer.ObserveDuration()

	id, err := db.write(ctx, collection, record, true)
	if err != nil {
		return 0, db.failed(collection, metrics.StoreOpPut, err)
	}
	return id, nil
}

// Get returns the raw record stored under key, or nil if there is none.
func (db *DB) Get(ctx context.Context, collection string, key any) (json.RawMessage, error) {
	timer := prometheus.NewTimer(metrics.StoreOperationDuration.WithLabelValues(collection, metrics.StoreOpGet))
	defer timer.ObserveDuration()

	c, err := db.collection(collection)
	if err != nil {
		return nil, db.failed(collection, metrics.StoreOpGet, err)
	}

	var doc string
	err = db.conn.QueryRowContext(ctx, `SELECT doc FROM `+c.Name+` WHERE pk = ?`, key).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, db.failed(collection, metrics.StoreOpGet, fmt.Errorf("getting %s record: %w", c.Name, err))
	}
	return json.RawMessage(doc), nil
}

// GetAll returns every record of the collection in key order.
func (db *DB) GetAll(ctx context.Context, collection string) ([]json.RawMessage, error) {
	timer := prometheus.NewTimer(metrics.StoreOperationDuration.WithLabelValues(collection, metrics.StoreOpGetAll))
	defer timer.ObserveDuration()

	c, err := db.collection(collection)
	if err != nil {
		return nil, db.failed(collection, metrics.StoreOpGetAll, err)
	}

	docs, err := db.queryDocs(ctx, `SELECT doc FROM `+c.Name+` ORDER BY pk`)
	if err != nil {
		return nil, db.failed(collection, metrics.StoreOpGetAll, fmt.Errorf("listing %s: %w", c.Name, err))
	}
	return docs, nil
}

// GetByIndex returns, in key order, every record whose indexed field equals value.
func (db *DB) GetByIndex(ctx context.Context, collection, index string, value any) ([]json.RawMessage, error) {
	timer := prometheus.NewTimer(metrics.StoreOperationDuration.WithLabelValues(collection, metrics.StoreOpGetByIndex))
	defer timer.ObserveDuration()

	c, err := db.collection(collection)
	if err != nil {
		return nil, db.failed(collection, metrics.StoreOpGetByIndex, err)
	}
	if !c.HasIndex(index) {
		return nil, db.failed(collection, metrics.StoreOpGetByIndex, fmt.Errorf("%w: %s.%s", ErrUnknownIndex, c.Name, index))
	}

	// The expression must match the index definition for SQLite to use it.
	query := `SELECT doc FROM ` + c.Name + ` WHERE json_extract(doc, '$.` + index + `') = ? ORDER BY pk`
	docs, err := db.queryDocs(ctx, query, value)
	if err != nil {
		return nil, db.failed(collection, metrics.StoreOpGetByIndex, fmt.Errorf("querying %s by %s: %w", c.Name, index, err))
	}
	return docs, nil
}

// Delete removes the record stored under key. Missing keys are not an error.
func (db *DB) Delete(ctx context.Context, collection string, key any) error {
	timer := prometheus.NewTimer(metrics.StoreOperationDuration.WithLabelValues(collection, metrics.StoreOpDelete))
	defer timer.ObserveDuration()

	c, err := db.collection(collection)
	if err != nil {
		return db.failed(collection, metrics.StoreOpDelete, err)
	}
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM `+c.Name+` WHERE pk = ?`, key); err != nil {
		return db.failed(collection, metrics.StoreOpDelete, fmt.Errorf("deleting %s record: %w", c.Name, err))
	}
	return nil
}

// Clear removes every record of the collection. The id generator keeps
// counting from where it was.
func (db *DB) Clear(ctx context.Context, collection string) error {
	timer := prometheus.NewTimer(metrics.StoreOperationDuration.WithLabelValues(collection, metrics.StoreOpClear))
	defer timer.ObserveDuration()

	c, err := db.collection(collection)
	if err != nil {
		return db.failed(collection, metrics.StoreOpClear, err)
	}
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM `+c.Name); err != nil {
		return db.failed(collection, metrics.StoreOpClear, fmt.Errorf("clearing %s: %w", c.Name, err))
	}
	return nil
}

// Count returns the number of records in the collection.
func (db *DB) Count(ctx context.Context, collection string) (int, error) {
	timer := prometheus.NewTimer(metrics.StoreOperationDuration.WithLabelValues(collection, metrics.StoreOpCount))
	defer timer.ObserveDuration()

	c, err := db.collection(collection)
	if err != nil {
		return 0, db.failed(collection, metrics.StoreOpCount, err)
	}
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+c.Name).Scan(&n); err != nil {
		return 0, db.failed(collection, metrics.StoreOpCount, fmt.Errorf("counting %s: %w", c.Name, err))
	}
	return n, nil
}

func (db *DB) collection(name string) (Collection, error) {
	c, ok := db.collections[name]
	if !ok {
		return Collection{}, fmt.Errorf("%w: %q", ErrUnknownCollection, name)
	}
	return c, nil
}

func (db *DB) failed(collection, op string, err error) error {
	metrics.StoreOperationErrorsTotal.WithLabelValues(collection, op).Inc()
	return err
}

func (db *DB) queryDocs(ctx context.Context, query string, args ...any) ([]json.RawMessage, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []json.RawMessage{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		docs = append(docs, json.RawMessage(doc))
	}
	return docs, rows.Err()
}

// write performs Add (upsert false) and Put (upsert true) in one transaction.
func (db *DB) write(ctx context.Context, collection string, record any, upsert bool) (int64, error) {
	c, err := db.collection(collection)
	if err != nil {
		return 0, err
	}

	fields, err := decodeFields(record)
	if err != nil {
		return 0, err
	}
	key, err := extractKey(c, fields)
	if err != nil {
		return 0, err
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning %s write: %w", c.Name, err)
	}
	defer tx.Rollback() //nolint:errcheck

	var id int64
	switch {
	case c.AutoIncrement && key == nil:
		id, err = insertGenerated(ctx, tx, c, fields)
	case !upsert:
		id, err = insertKeyed(ctx, tx, c, key, fields)
	default:
		id, err = upsertKeyed(ctx, tx, c, key, fields)
	}
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing %s write: %w", c.Name, err)
	}
	return id, nil
}

func insertGenerated(ctx context.Context, tx *sql.Tx, c Collection, fields map[string]json.RawMessage) (int64, error) {
	res, err := tx.ExecContext(ctx, `INSERT INTO `+c.Name+` (doc) VALUES ('{}')`)
	if err != nil {
		return 0, fmt.Errorf("inserting %s record: %w", c.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading generated %s id: %w", c.Name, err)
	}

	fields[c.KeyPath] = json.RawMessage(fmt.Sprintf("%d", id))
	doc, err := json.Marshal(fields)
	if err != nil {
		return 0, fmt.Errorf("encoding %s record: %w", c.Name, err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE `+c.Name+` SET doc = ? WHERE pk = ?`, string(doc), id); err != nil {
		return 0, fmt.Errorf("storing %s record: %w", c.Name, err)
	}
	return id, nil
}

func insertKeyed(ctx context.Context, tx *sql.Tx, c Collection, key any, fields map[string]json.RawMessage) (int64, error) {
	var exists int
	err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+c.Name+` WHERE pk = ?`, key).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("checking %s key: %w", c.Name, err)
	}
	if exists > 0 {
		return 0, fmt.Errorf("%w: %s key %v already exists", ErrConstraintViolation, c.Name, key)
	}

	doc, err := json.Marshal(fields)
	if err != nil {
		return 0, fmt.Errorf("encoding %s record: %w", c.Name, err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO `+c.Name+` (pk, doc) VALUES (?, ?)`, key, string(doc)); err != nil {
		return 0, fmt.Errorf("inserting %s record: %w", c.Name, err)
	}
	return keyID(key), nil
}

func upsertKeyed(ctx context.Context, tx *sql.Tx, c Collection, key any, fields map[string]json.RawMessage) (int64, error) {
	doc, err := json.Marshal(fields)
	if err != nil {
		return 0, fmt.Errorf("encoding %s record: %w", c.Name, err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO `+c.Name+` (pk, doc) VALUES (?, ?)
		 ON CONFLICT(pk) DO UPDATE SET doc = excluded.doc`,
		key, string(doc))
	if err != nil {
		return 0, fmt.Errorf("upserting %s record: %w", c.Name, err)
	}
	return keyID(key), nil
}

// decodeFields turns any JSON-encodable value into its top-level fields.
func decodeFields(record any) (map[string]json.RawMessage, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return nil, fmt.Errorf("%w: record must be a JSON object", ErrInvalidRecord)
	}
	return fields, nil
}

// extractKey reads the key field of a record. It returns nil for an
// auto-increment record that has no key yet.
func extractKey(c Collection, fields map[string]json.RawMessage) (any, error) {
	raw, ok := fields[c.KeyPath]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		if c.AutoIncrement {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %s record has no %q", ErrInvalidRecord, c.Name, c.KeyPath)
	}

	if c.AutoIncrement {
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, fmt.Errorf("%w: %s.%s must be a number", ErrInvalidRecord, c.Name, c.KeyPath)
		}
		id, err := n.Int64()
		if err != nil || id < 0 {
			return nil, fmt.Errorf("%w: %s.%s must be a non-negative integer", ErrInvalidRecord, c.Name, c.KeyPath)
		}
		if id == 0 {
			delete(fields, c.KeyPath)
			return nil, nil
		}
		return id, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return nil, fmt.Errorf("%w: %s.%s must be a non-empty string", ErrInvalidRecord, c.Name, c.KeyPath)
	}
	return s, nil
}

func keyID(key any) int64 {
	if id, ok := key.(int64); ok {
		return id
	}
	return 0
}
