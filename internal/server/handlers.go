package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/claude/fittrack/internal/deload"
	"github.com/claude/fittrack/internal/repository"
	"github.com/claude/fittrack/internal/storage"
	"github.com/claude/fittrack/internal/workout"
	"github.com/go-chi/chi/v5"
)

// maxBodyBytes bounds request bodies; a full backup is the largest.
const maxBodyBytes = 32 << 20

var (
	errNotFound   = errors.New("not found")
	errBadRequest = errors.New("bad request")
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errNotFound),
		errors.Is(err, workout.ErrSessionNotFound),
		errors.Is(err, workout.ErrCategoryNotFound),
		errors.Is(err, workout.ErrExerciseNotInPlan):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrImportParse),
		errors.Is(err, repository.ErrInvalidExercise),
		errors.Is(err, repository.ErrInvalidCategory),
		errors.Is(err, repository.ErrMissingReference),
		errors.Is(err, deload.ErrInvalidConfig),
		errors.Is(err, workout.ErrEmptyPlan),
		errors.Is(err, workout.ErrNoTimer),
		errors.Is(err, storage.ErrInvalidRecord),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrCategoryInUse),
		errors.Is(err, storage.ErrConstraintViolation),
		errors.Is(err, workout.ErrSessionClosed),
		errors.Is(err, workout.ErrNoCandidates):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers with the mapped status. Server-side failures are logged
// here and nowhere else.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	body := map[string]any{"error": err.Error()}
	var pe *repository.PartialError
	if errors.As(err, &pe) {
		body["completed"] = pe.Completed
	}
	writeJSON(w, status, body)
}

func decodeBody(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON: %w", errBadRequest, err)
	}
	return nil
}

// writeBadRequest answers 400 with msg.
func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

// intParam parses the named path parameter as a record id.
func intParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, chi.URLParam(r, name))
	}
	return id, nil
}

// mustID parses the {id} parameter or answers 400.
func mustID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := intParam(r, "id")
	if err != nil {
		writeBadRequest(w, err.Error())
		return 0, false
	}
	return id, true
}

// found turns a soft miss into errNotFound.
func found[T any](v *T, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, errNotFound
	}
	return v, nil
}
