// Package progression derives streaks, load suggestions and personal records
// from an exercise's history.
package progression

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/claude/fittrack/internal/models"
	"github.com/claude/fittrack/internal/weight"
)

// AddWeight is suggested when a bodyweight exercise has hit its threshold.
const AddWeight = "add weight"

// completedByRecency returns the completed entries, newest first.
func completedByRecency(history []models.ExerciseHistory) []models.ExerciseHistory {
	var done []models.ExerciseHistory
	for _, h := range history {
		if h.Completed {
			done = append(done, h)
		}
	}
	slices.SortStableFunc(done, func(a, b models.ExerciseHistory) int {
		return cmp.Compare(b.Date, a.Date)
	})
	return done
}

// streak counts entries from the front of done while match holds.
func streak(done []models.ExerciseHistory, match func(models.ExerciseHistory) bool) int {
	n := 0
	for _, h := range done {
		if !match(h) {
			break
		}
		n++
	}
	return n
}

// CountConsecutiveCompletions counts the most recent completed sessions,
// newest first, whose weight string equals currentValue exactly. "100 lbs"
// and "100.0 lbs" are different values.
func CountConsecutiveCompletions(history []models.ExerciseHistory, currentValue string) int {
	return streak(completedByRecency(history), func(h models.ExerciseHistory) bool {
		return h.Weight == currentValue
	})
}

// CalculateProgression suggests the next load once the most recent value has
// been completed threshold times in a row. It reports false when there are
// fewer than threshold completed entries or the streak is too short.
//
// Timed exercises (isTimed with timerSeconds > 0) compare timer values and
// suggest "<n> seconds". Weighted exercises compare weight strings and
// suggest the magnitude plus increment in the same unit, or AddWeight for a
// plain bodyweight exercise.
//
// currentWeight is not consulted: the streak is anchored on the most recent
// completed entry.
func CalculateProgression(history []models.ExerciseHistory, currentWeight string, threshold int, isTimed bool, timerSeconds, increment int) (string, bool) {
	done := completedByRecency(history)
	if len(done) == 0 || len(done) < threshold {
		return "", false
	}

	if isTimed && timerSeconds > 0 {
		recent := done[0].TimerSeconds
		if recent == 0 {
			recent = timerSeconds
		}
		n := streak(done, func(h models.ExerciseHistory) bool { return h.TimerSeconds == recent })
		if n < threshold {
			return "", false
		}
		return fmt.Sprintf("%d seconds", recent+increment), true
	}

	recent := done[0].Weight
	n := streak(done, func(h models.ExerciseHistory) bool { return h.Weight == recent })
	if n < threshold {
		return "", false
	}

	w := weight.Parse(recent)
	if w.Magnitude > 0 {
		unit := weight.Lbs
		if w.Unit == weight.Kg {
			unit = weight.Kg
		}
		return weight.Weight{Magnitude: w.Magnitude + float64(increment), Unit: unit}.String(), true
	}
	if weight.IsBodyweight(recent) {
		return AddWeight, true
	}
	return "", false
}

// FindPersonalRecord returns the completed entry with the heaviest parsed
// weight, the earliest in input order on ties. It returns nil when nothing
// completed has a positive weight.
func FindPersonalRecord(history []models.ExerciseHistory) *models.ExerciseHistory {
	var (
		pr   *models.ExerciseHistory
		best float64
	)
	for i := range history {
		if !history[i].Completed {
			continue
		}
		if m := weight.ParseMagnitude(history[i].Weight); m > best {
			best = m
			pr = &history[i]
		}
	}
	if pr == nil {
		return nil
	}
	out := *pr
	return &out
}
