package repository

import (
	"context"

	"github.com/claude/fittrack/internal/models"
)

type sampleExercise struct {
	exercise models.Exercise
	category int
}

var sampleCategories = []models.Category{
	{Name: "Upper Body", Color: "#4CAF50", IsRandom: true, RotationFrequency: 3, ExercisesPerWorkout: 5},
	{Name: "Lower Body", Color: "#2196F3", IsRandom: true, RotationFrequency: 3, ExercisesPerWorkout: 5},
	{Name: "Core", Color: "#FF9800", IsRandom: true, RotationFrequency: 2, ExercisesPerWorkout: 4},
}

var sampleExercises = []sampleExercise{
	{models.Exercise{Name: "Bench Press", Sets: "3", Reps: "10", Weight: "135 lbs", ProgressionThreshold: 3}, 0},
	{models.Exercise{Name: "Squats", Sets: "4", Reps: "12", Weight: "185 lbs", ProgressionThreshold: 3}, 1},
	{models.Exercise{Name: "Pull-ups", Sets: "3", Reps: "8", Weight: "bodyweight", ProgressionThreshold: 4}, 0},
	{models.Exercise{Name: "Plank", Sets: "3", TimerSeconds: 60, RestTimerSeconds: 30, ProgressionThreshold: 3}, 2},
	{models.Exercise{Name: "Deadlifts", Sets: "3", Reps: "8", Weight: "225 lbs", ProgressionThreshold: 3}, 1},
	{models.Exercise{Name: "Shoulder Press", Sets: "3", Reps: "10", Weight: "75 lbs", ProgressionThreshold: 3}, 0},
	{models.Exercise{Name: "Lunges", Sets: "3", Reps: "12", Weight: "bodyweight", ProgressionThreshold: 5}, 1},
	{models.Exercise{Name: "Russian Twists", Sets: "3", Reps: "20", Weight: "25 lbs", ProgressionThreshold: 3}, 2},
	{models.Exercise{Name: "Bicep Curls", Sets: "3", Reps: "12", Weight: "30 lbs", ProgressionThreshold: 3}, 0},
	{models.Exercise{Name: "Leg Press", Sets: "4", Reps: "15", Weight: "270 lbs", ProgressionThreshold: 3}, 1},
}

// SeedSampleData adds three starter categories and ten exercises on first
// run. It does nothing and returns false if any category exists.
func (r *Repository) SeedSampleData(ctx context.Context) (bool, error) {
	existing, err := r.GetAllCategories(ctx)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}

	categoryIDs := make([]int64, len(sampleCategories))
	for i, c := range sampleCategories {
		if categoryIDs[i], err = r.AddCategory(ctx, c); err != nil {
			return false, err
		}
	}
	for _, s := range sampleExercises {
		id, err := r.AddExercise(ctx, s.exercise)
		if err != nil {
			return false, err
		}
		if err := r.SetExerciseCategories(ctx, id, []int64{categoryIDs[s.category]}); err != nil {
			return false, err
		}
	}

	r.logger.Info("seeded sample data", "categories", len(sampleCategories), "exercises", len(sampleExercises))
	return true, nil
}
