// Package rotation chooses which exercises of a category go into a workout.
package rotation

import (
	"math/rand/v2"
	"slices"

	"github.com/claude/fittrack/internal/models"
)

// SelectExercisesForWorkout picks up to count exercises from pool.
//
// Exercises that have waited longest come first: the pool is ordered by
// workoutsSinceLastUse descending, then lastUsedDate ascending (never used
// sorts oldest). Overdue exercises (workoutsSinceLastUse >= rotationFrequency)
// fill the workout first, the stalest of the rest fill any remaining slots,
// and the selection is shuffled. A pool no larger than count is returned
// whole, shuffled. The input is not modified.
func SelectExercisesForWorkout(pool []models.Exercise, rotationFrequency, count int) []models.Exercise {
	if count <= 0 {
		return []models.Exercise{}
	}
	if len(pool) <= count {
		return shuffle(append(make([]models.Exercise, 0, len(pool)), pool...))
	}

	sorted := slices.Clone(pool)
	slices.SortStableFunc(sorted, byStaleness)

	selected := make([]models.Exercise, 0, count)
	var rest []models.Exercise
	for _, e := range sorted {
		if e.WorkoutsSinceLastUse >= rotationFrequency && len(selected) < count {
			selected = append(selected, e)
		} else {
			rest = append(rest, e)
		}
	}
	for _, e := range rest {
		if len(selected) == count {
			break
		}
		selected = append(selected, e)
	}
	return shuffle(selected)
}

// PickLeastRecent returns the pool member with the oldest lastUsedDate whose
// id is not in exclude. It reports false when every member is excluded.
func PickLeastRecent(pool []models.Exercise, exclude map[int64]bool) (models.Exercise, bool) {
	var (
		best  models.Exercise
		found bool
	)
	for _, e := range pool {
		if exclude[e.ID] {
			continue
		}
		if !found || e.LastUsedDate < best.LastUsedDate {
			best, found = e, true
		}
	}
	return best, found
}

func byStaleness(a, b models.Exercise) int {
	if a.WorkoutsSinceLastUse != b.WorkoutsSinceLastUse {
		return b.WorkoutsSinceLastUse - a.WorkoutsSinceLastUse
	}
	switch {
	case a.LastUsedDate < b.LastUsedDate:
		return -1
	case a.LastUsedDate > b.LastUsedDate:
		return 1
	}
	return 0
}

// shuffle is a Fisher-Yates shuffle in place.
func shuffle(s []models.Exercise) []models.Exercise {
	for i := len(s) - 1; i > 0; i-- {
		j := rand.IntN(i + 1)
		s[i], s[j] = s[j], s[i]
	}
	return s
}
