package mcp

import (
	"context"

	"github.com/claude/fittrack/internal/deload"
	"github.com/claude/fittrack/internal/models"
	"github.com/claude/fittrack/internal/repository"
	"github.com/claude/fittrack/internal/workout"
)

// DataSource abstracts the data layer for MCP tools. Local (the database
// file) and HTTPClient (a running fittrack server on this machine) satisfy
// this interface.
type DataSource interface {
	Exercises(ctx context.Context) ([]models.Exercise, error)
	Exercise(ctx context.Context, id int64) (*models.Exercise, error)
	ExerciseHistory(ctx context.Context, exerciseID int64) ([]models.ExerciseHistory, error)
	Progression(ctx context.Context, exerciseID int64) (workout.Suggestion, error)
	Categories(ctx context.Context) ([]models.Category, error)
	CategoryExercises(ctx context.Context, categoryID int64) ([]models.Exercise, error)
	PreviewCategory(ctx context.Context, categoryID int64) ([]models.Exercise, error)
	DeloadStatus(ctx context.Context) (deload.Status, error)
	WorkoutSessions(ctx context.Context) ([]models.WorkoutSession, error)
}

// Local reads straight from the database.
type Local struct {
	repo     *repository.Repository
	workouts *workout.Service
	deload   *deload.Scheduler
}

// Compile-time check: *Local satisfies DataSource.
var _ DataSource = (*Local)(nil)

func NewLocal(repo *repository.Repository, workouts *workout.Service, scheduler *deload.Scheduler) *Local {
	return &Local{repo: repo, workouts: workouts, deload: scheduler}
}

func (l *Local) Exercises(ctx context.Context) ([]models.Exercise, error) {
	return l.repo.GetAllExercises(ctx)
}

func (l *Local) Exercise(ctx context.Context, id int64) (*models.Exercise, error) {
	return l.repo.GetExercise(ctx, id)
}

func (l *Local) ExerciseHistory(ctx context.Context, exerciseID int64) ([]models.ExerciseHistory, error) {
	return l.repo.GetExerciseHistory(ctx, exerciseID)
}

func (l *Local) Progression(ctx context.Context, exerciseID int64) (workout.Suggestion, error) {
	e, err := l.repo.GetExercise(ctx, exerciseID)
	if err != nil {
		return workout.Suggestion{}, err
	}
	if e == nil {
		return workout.Suggestion{}, errExerciseNotFound
	}
	return l.workouts.Suggest(ctx, *e)
}

func (l *Local) Categories(ctx context.Context) ([]models.Category, error) {
	return l.repo.GetAllCategories(ctx)
}

func (l *Local) CategoryExercises(ctx context.Context, categoryID int64) ([]models.Exercise, error) {
	return l.repo.GetCategoryExercises(ctx, categoryID)
}

func (l *Local) PreviewCategory(ctx context.Context, categoryID int64) ([]models.Exercise, error) {
	return l.workouts.Preview(ctx, workout.Plan{CategoryID: &categoryID})
}

func (l *Local) DeloadStatus(ctx context.Context) (deload.Status, error) {
	return l.deload.Status(ctx)
}

func (l *Local) WorkoutSessions(ctx context.Context) ([]models.WorkoutSession, error) {
	return l.repo.GetAllWorkoutSessions(ctx)
}
