package repository

import (
	"context"
	"fmt"

	"github.com/claude/fittrack/internal/metrics"
	"github.com/claude/fittrack/internal/models"
)

// AddExerciseCategoryRef links an exercise to a category. Both must exist.
// Linking the same pair twice creates two relationships.
func (r *Repository) AddExerciseCategoryRef(ctx context.Context, exerciseID, categoryID int64) (int64, error) {
	if err := r.checkRefTargets(ctx, exerciseID, []int64{categoryID}); err != nil {
		return 0, err
	}
	return r.addRef(ctx, exerciseID, categoryID)
}

func (r *Repository) addRef(ctx context.Context, exerciseID, categoryID int64) (int64, error) {
	id, err := r.db.Add(ctx, models.CollExerciseCategoryRefs, models.ExerciseCategoryRef{
		ExerciseID: exerciseID,
		CategoryID: categoryID,
	})
	if err != nil {
		return 0, fmt.Errorf("linking exercise %d to category %d: %w", exerciseID, categoryID, err)
	}
	return id, nil
}

func (r *Repository) checkRefTargets(ctx context.Context, exerciseID int64, categoryIDs []int64) error {
	e, err := r.GetExercise(ctx, exerciseID)
	if err != nil {
		return err
	}
	if e == nil {
		return fmt.Errorf("%w: exercise %d", ErrMissingReference, exerciseID)
	}
	for _, cid := range categoryIDs {
		c, err := r.GetCategory(ctx, cid)
		if err != nil {
			return err
		}
		if c == nil {
			return fmt.Errorf("%w: category %d", ErrMissingReference, cid)
		}
	}
	return nil
}

// GetExerciseCategories returns the categories an exercise belongs to, in
// relationship order. Relationships to deleted categories are skipped.
func (r *Repository) GetExerciseCategories(ctx context.Context, exerciseID int64) ([]models.Category, error) {
	refs, err := getByIndex[models.ExerciseCategoryRef](ctx, r.db, models.CollExerciseCategoryRefs, "exerciseId", exerciseID)
	if err != nil {
		return nil, fmt.Errorf("listing categories of exercise %d: %w", exerciseID, err)
	}
	out := []models.Category{}
	for _, ref := range refs {
		c, err := r.GetCategory(ctx, ref.CategoryID)
		if err != nil {
			return nil, err
		}
		if c != nil {
			out = append(out, *c)
		}
	}
	return out, nil
}

// GetCategoryExercises returns the exercises of a category, in relationship
// order. Relationships to deleted exercises are skipped.
func (r *Repository) GetCategoryExercises(ctx context.Context, categoryID int64) ([]models.Exercise, error) {
	refs, err := getByIndex[models.ExerciseCategoryRef](ctx, r.db, models.CollExerciseCategoryRefs, "categoryId", categoryID)
	if err != nil {
		return nil, fmt.Errorf("listing exercises of category %d: %w", categoryID, err)
	}
	out := []models.Exercise{}
	for _, ref := range refs {
		e, err := r.GetExercise(ctx, ref.ExerciseID)
		if err != nil {
			return nil, err
		}
		if e != nil {
			out = append(out, *e)
		}
	}
	return out, nil
}

// SetExerciseCategories replaces an exercise's relationships: every existing
// one is deleted, then one is added per entry of categoryIDs. Duplicate ids
// give duplicate relationships. The targets are checked before anything is
// deleted.
func (r *Repository) SetExerciseCategories(ctx context.Context, exerciseID int64, categoryIDs []int64) error {
	if err := r.checkRefTargets(ctx, exerciseID, categoryIDs); err != nil {
		return err
	}

	existing, err := getByIndex[keyed](ctx, r.db, models.CollExerciseCategoryRefs, "exerciseId", exerciseID)
	if err != nil {
		return fmt.Errorf("listing categories of exercise %d: %w", exerciseID, err)
	}

	completed := 0
	for _, ref := range existing {
		if err := r.db.Delete(ctx, models.CollExerciseCategoryRefs, ref.ID); err != nil {
			return r.stopped(metrics.SeqSetCategories, completed, fmt.Errorf("deleting relationship %d: %w", ref.ID, err))
		}
		completed++
	}
	for _, cid := range categoryIDs {
		if _, err := r.addRef(ctx, exerciseID, cid); err != nil {
			return r.stopped(metrics.SeqSetCategories, completed, err)
		}
		completed++
	}
	return nil
}

// stopped reports a sequence failure as partial only if something changed.
func (r *Repository) stopped(op string, completed int, err error) error {
	if completed == 0 {
		return err
	}
	return r.partial(op, completed, err)
}
