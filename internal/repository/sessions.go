package repository

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/claude/fittrack/internal/metrics"
	"github.com/claude/fittrack/internal/models"
)

// AddWorkoutSession stores a completed session. A zero date is set to now.
func (r *Repository) AddWorkoutSession(ctx context.Context, s models.WorkoutSession) (int64, error) {
	s.ID = 0
	if s.Date == 0 {
		s.Date = r.now().UnixMilli()
	}
	id, err := r.db.Add(ctx, models.CollWorkoutSessions, s)
	if err != nil {
		return 0, fmt.Errorf("adding workout session: %w", err)
	}
	return id, nil
}

// GetWorkoutSession returns the session, or nil if it does not exist.
func (r *Repository) GetWorkoutSession(ctx context.Context, id int64) (*models.WorkoutSession, error) {
	s, err := getOne[models.WorkoutSession](ctx, r.db, models.CollWorkoutSessions, id)
	if err != nil {
		return nil, fmt.Errorf("getting workout session %d: %w", id, err)
	}
	return s, nil
}

// GetAllWorkoutSessions returns every session, newest first.
func (r *Repository) GetAllWorkoutSessions(ctx context.Context) ([]models.WorkoutSession, error) {
	ss, err := getAll[models.WorkoutSession](ctx, r.db, models.CollWorkoutSessions)
	if err != nil {
		return nil, fmt.Errorf("listing workout sessions: %w", err)
	}
	slices.SortStableFunc(ss, func(a, b models.WorkoutSession) int {
		return cmp.Compare(b.Date, a.Date)
	})
	return ss, nil
}

// DeleteWorkoutSession deletes the session and then its exercise records.
// History entries are kept.
func (r *Repository) DeleteWorkoutSession(ctx context.Context, id int64) error {
	return r.deleteWithChildren(ctx, metrics.SeqDeleteSession,
		models.CollWorkoutSessions, id, models.CollWorkoutExerciseRecords, "workoutSessionId")
}

func (r *Repository) AddWorkoutExerciseRecord(ctx context.Context, rec models.WorkoutExerciseRecord) (int64, error) {
	rec.ID = 0
	id, err := r.db.Add(ctx, models.CollWorkoutExerciseRecords, rec)
	if err != nil {
		return 0, fmt.Errorf("adding workout record: %w", err)
	}
	return id, nil
}

// GetWorkoutExerciseRecords returns a session's records in insertion order.
func (r *Repository) GetWorkoutExerciseRecords(ctx context.Context, sessionID int64) ([]models.WorkoutExerciseRecord, error) {
	recs, err := getByIndex[models.WorkoutExerciseRecord](ctx, r.db, models.CollWorkoutExerciseRecords, "workoutSessionId", sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing records of session %d: %w", sessionID, err)
	}
	return recs, nil
}

// AddExerciseHistory appends a history entry. A zero date is set to now.
// There is no way to change or remove an entry afterwards.
func (r *Repository) AddExerciseHistory(ctx context.Context, h models.ExerciseHistory) (int64, error) {
	h.ID = 0
	if h.Date == 0 {
		h.Date = r.now().UnixMilli()
	}
	id, err := r.db.Add(ctx, models.CollExerciseHistory, h)
	if err != nil {
		return 0, fmt.Errorf("adding exercise history: %w", err)
	}
	return id, nil
}

// GetExerciseHistory returns an exercise's history, newest first.
func (r *Repository) GetExerciseHistory(ctx context.Context, exerciseID int64) ([]models.ExerciseHistory, error) {
	hs, err := getByIndex[models.ExerciseHistory](ctx, r.db, models.CollExerciseHistory, "exerciseId", exerciseID)
	if err != nil {
		return nil, fmt.Errorf("listing history of exercise %d: %w", exerciseID, err)
	}
	slices.SortStableFunc(hs, func(a, b models.ExerciseHistory) int {
		return cmp.Compare(b.Date, a.Date)
	})
	return hs, nil
}
