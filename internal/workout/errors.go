package workout

import "errors"

var (
	ErrSessionNotFound = errors.New("workout session not found")

	// ErrSessionClosed is returned for any change to a session that was
	// finished or abandoned.
	ErrSessionClosed = errors.New("workout session closed")

	ErrEmptyPlan         = errors.New("workout plan needs a category or exercises")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrExerciseNotInPlan = errors.New("exercise is not part of this workout")
	ErrNoTimer           = errors.New("exercise has no timer")

	// ErrNoCandidates is returned by AddRandomExercise when every exercise of
	// the category is already in the workout, or the workout has no category.
	ErrNoCandidates = errors.New("no exercise left to add")
)
