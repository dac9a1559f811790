package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/claude/fittrack/internal/metrics"
	"github.com/claude/fittrack/internal/models"
)

func validateCategory(c models.Category) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidCategory)
	}
	if c.RotationFrequency < 0 || c.ExercisesPerWorkout < 0 {
		return fmt.Errorf("%w: rotation settings must not be negative", ErrInvalidCategory)
	}
	return nil
}

// AddCategory creates a category, filling in the default color and
// rotation settings. Any id on c is ignored.
func (r *Repository) AddCategory(ctx context.Context, c models.Category) (int64, error) {
	if err := validateCategory(c); err != nil {
		return 0, err
	}
	c.ID = 0
	if c.Color == "" {
		c.Color = models.DefaultCategoryColor
	}
	if c.RotationFrequency == 0 {
		c.RotationFrequency = models.DefaultRotationFrequency
	}
	if c.ExercisesPerWorkout == 0 {
		c.ExercisesPerWorkout = models.DefaultExercisesPerWorkout
	}

	id, err := r.db.Add(ctx, models.CollCategories, c)
	if err != nil {
		return 0, fmt.Errorf("adding category: %w", err)
	}
	return id, nil
}

func (r *Repository) UpdateCategory(ctx context.Context, c models.Category) error {
	if c.ID <= 0 {
		return fmt.Errorf("%w: id is required", ErrInvalidCategory)
	}
	if err := validateCategory(c); err != nil {
		return err
	}
	if _, err := r.db.Put(ctx, models.CollCategories, c); err != nil {
		return fmt.Errorf("updating category %d: %w", c.ID, err)
	}
	return nil
}

// GetCategory returns the category, or nil if it does not exist.
func (r *Repository) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	c, err := getOne[models.Category](ctx, r.db, models.CollCategories, id)
	if err != nil {
		return nil, fmt.Errorf("getting category %d: %w", id, err)
	}
	return c, nil
}

func (r *Repository) GetAllCategories(ctx context.Context) ([]models.Category, error) {
	cs, err := getAll[models.Category](ctx, r.db, models.CollCategories)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return cs, nil
}

// DeleteCategory deletes a category that no existing exercise belongs to,
// along with any leftover relationships. It fails with ErrCategoryInUse
// otherwise and changes nothing.
func (r *Repository) DeleteCategory(ctx context.Context, id int64) error {
	members, err := r.GetCategoryExercises(ctx, id)
	if err != nil {
		return err
	}
	if len(members) > 0 {
		return fmt.Errorf("%w: %d exercises belong to category %d", ErrCategoryInUse, len(members), id)
	}
	return r.ForceDeleteCategory(ctx, id)
}

// ForceDeleteCategory deletes the category and all its relationships even
// while exercises belong to it. The exercises themselves are kept.
func (r *Repository) ForceDeleteCategory(ctx context.Context, id int64) error {
	return r.deleteWithChildren(ctx, metrics.SeqDeleteCategory,
		models.CollCategories, id, models.CollExerciseCategoryRefs, "categoryId")
}
