// Package repository keeps the workout data consistent on top of the
// document store. The store knows nothing about relationships, so cascades
// and guards are issued here as sequences of single-collection calls.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/claude/fittrack/internal/metrics"
	"github.com/claude/fittrack/internal/storage"
	"go.uber.org/multierr"
)

// Repository is the domain API over a storage.DB.
type Repository struct {
	db     *storage.DB
	logger *slog.Logger
	now    func() time.Time
}

// New creates a Repository.
func New(db *storage.DB, logger *slog.Logger) *Repository {
	return &Repository{db: db, logger: logger, now: time.Now}
}

// DB returns the underlying store.
func (r *Repository) DB() *storage.DB {
	return r.db
}

// keyed is the part of every auto-id record needed to delete it.
type keyed struct {
	ID int64 `json:"id"`
}

func decode[T any](raw json.RawMessage) (T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("decoding record: %w", err)
	}
	return v, nil
}

func decodeAll[T any](raws []json.RawMessage) ([]T, error) {
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		v, err := decode[T](raw)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func getOne[T any](ctx context.Context, db *storage.DB, collection string, key any) (*T, error) {
	raw, err := db.Get(ctx, collection, key)
	if err != nil || raw == nil {
		return nil, err
	}
	v, err := decode[T](raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func getAll[T any](ctx context.Context, db *storage.DB, collection string) ([]T, error) {
	raws, err := db.GetAll(ctx, collection)
	if err != nil {
		return nil, err
	}
	return decodeAll[T](raws)
}

func getByIndex[T any](ctx context.Context, db *storage.DB, collection, index string, value any) ([]T, error) {
	raws, err := db.GetByIndex(ctx, collection, index, value)
	if err != nil {
		return nil, err
	}
	return decodeAll[T](raws)
}

// deleteWithChildren deletes a parent record and then, one at a time, every
// child record whose index field points at it. Child deletions continue past
// individual failures; everything that failed is reported together.
func (r *Repository) deleteWithChildren(ctx context.Context, op, parent string, id int64, child, index string) error {
	if err := r.db.Delete(ctx, parent, id); err != nil {
		return fmt.Errorf("deleting %s %d: %w", parent, id, err)
	}

	children, err := getByIndex[keyed](ctx, r.db, child, index, id)
	if err != nil {
		return r.partial(op, 1, fmt.Errorf("listing %s: %w", child, err))
	}

	completed := 1
	var errs error
	for _, c := range children {
		if err := r.db.Delete(ctx, child, c.ID); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("deleting %s %d: %w", child, c.ID, err))
			continue
		}
		completed++
	}
	if errs != nil {
		return r.partial(op, completed, errs)
	}
	return nil
}

// partial records and wraps a failure that left earlier steps applied.
func (r *Repository) partial(op string, completed int, err error) error {
	metrics.PartialFailuresTotal.WithLabelValues(op).Inc()
	r.logger.Warn("sequence stopped partway", "op", op, "completed", completed, "error", err)
	return &PartialError{Op: op, Completed: completed, Err: err}
}
