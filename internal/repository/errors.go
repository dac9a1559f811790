package repository

import (
	"errors"
	"fmt"

	"github.com/claude/fittrack/internal/storage"
)

var (
	// ErrImportParse means a backup document could not be decoded. Nothing
	// has been changed when it is returned.
	ErrImportParse = errors.New("import parse error")

	ErrInvalidExercise = errors.New("invalid exercise")
	ErrInvalidCategory = errors.New("invalid category")

	// ErrCategoryInUse is returned by DeleteCategory while exercises still
	// belong to the category.
	ErrCategoryInUse = fmt.Errorf("category in use: %w", storage.ErrConstraintViolation)

	// ErrMissingReference is returned when a relationship would point at an
	// exercise or category that does not exist.
	ErrMissingReference = fmt.Errorf("missing reference: %w", storage.ErrConstraintViolation)
)

// PartialError reports a multi-step sequence that failed after Completed
// steps had already changed the database. The changes are not rolled back.
type PartialError struct {
	Op        string
	Completed int
	Err       error
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("%s stopped after %d completed steps: %v", e.Op, e.Completed, e.Err)
}

func (e *PartialError) Unwrap() error {
	return e.Err
}
