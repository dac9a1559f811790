package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/claude/fittrack/internal/metrics"
	"github.com/claude/fittrack/internal/models"
)

func validateExercise(e models.Exercise) error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidExercise)
	}
	if e.TimerSeconds < 0 || e.RestTimerSeconds < 0 {
		return fmt.Errorf("%w: timers must not be negative", ErrInvalidExercise)
	}
	if e.ProgressionThreshold < 0 || e.ProgressionIncrement < 0 {
		return fmt.Errorf("%w: progression settings must not be negative", ErrInvalidExercise)
	}
	return nil
}

// AddExercise creates an exercise with defaults for the progression settings
// and a fresh rotation state. Any id on e is ignored.
func (r *Repository) AddExercise(ctx context.Context, e models.Exercise) (int64, error) {
	if err := validateExercise(e); err != nil {
		return 0, err
	}
	e.ID = 0
	applyProgressionDefaults(&e)
	e.LastUsedDate = 0
	e.WorkoutsSinceLastUse = 0

	id, err := r.db.Add(ctx, models.CollExercises, e)
	if err != nil {
		return 0, fmt.Errorf("adding exercise: %w", err)
	}
	return id, nil
}

func applyProgressionDefaults(e *models.Exercise) {
	if e.ProgressionThreshold == 0 {
		e.ProgressionThreshold = models.DefaultProgressionThreshold
	}
	if e.ProgressionIncrement == 0 {
		e.ProgressionIncrement = models.DefaultProgressionIncrement
	}
}

// UpdateExercise replaces the stored exercise with e. Zero progression
// settings fall back to the defaults.
func (r *Repository) UpdateExercise(ctx context.Context, e models.Exercise) error {
	if e.ID <= 0 {
		return fmt.Errorf("%w: id is required", ErrInvalidExercise)
	}
	if err := validateExercise(e); err != nil {
		return err
	}
	applyProgressionDefaults(&e)
	if _, err := r.db.Put(ctx, models.CollExercises, e); err != nil {
		return fmt.Errorf("updating exercise %d: %w", e.ID, err)
	}
	return nil
}

// GetExercise returns the exercise, or nil if it does not exist.
func (r *Repository) GetExercise(ctx context.Context, id int64) (*models.Exercise, error) {
	e, err := getOne[models.Exercise](ctx, r.db, models.CollExercises, id)
	if err != nil {
		return nil, fmt.Errorf("getting exercise %d: %w", id, err)
	}
	return e, nil
}

func (r *Repository) GetAllExercises(ctx context.Context) ([]models.Exercise, error) {
	es, err := getAll[models.Exercise](ctx, r.db, models.CollExercises)
	if err != nil {
		return nil, fmt.Errorf("listing exercises: %w", err)
	}
	return es, nil
}

// GetExerciseByName returns the first exercise with exactly this name, or nil.
func (r *Repository) GetExerciseByName(ctx context.Context, name string) (*models.Exercise, error) {
	es, err := getByIndex[models.Exercise](ctx, r.db, models.CollExercises, "name", name)
	if err != nil {
		return nil, fmt.Errorf("finding exercise %q: %w", name, err)
	}
	if len(es) == 0 {
		return nil, nil
	}
	return &es[0], nil
}

// DeleteExercise deletes the exercise and then its category relationships.
// History and past session records keep their denormalised copies.
func (r *Repository) DeleteExercise(ctx context.Context, id int64) error {
	return r.deleteWithChildren(ctx, metrics.SeqDeleteExercise,
		models.CollExercises, id, models.CollExerciseCategoryRefs, "exerciseId")
}
