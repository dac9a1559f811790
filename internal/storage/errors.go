package storage

import "errors"

var (
	// ErrStorageUnavailable means the database file could not be opened or
	// brought to the requested schema version. Nothing else will work.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrConstraintViolation is returned by Add when the key is already taken.
	ErrConstraintViolation = errors.New("constraint violation")

	ErrUnknownCollection = errors.New("unknown collection")
	ErrUnknownIndex      = errors.New("unknown index")

	// ErrInvalidRecord is returned when a record is not a JSON object or its
	// key field has the wrong type.
	ErrInvalidRecord = errors.New("invalid record")
)
