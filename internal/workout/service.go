// Package workout runs a workout from start to finish: it picks the
// exercises, applies deload and progression, tracks what is done during the
// session and writes the results back.
package workout

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/claude/fittrack/internal/deload"
	"github.com/claude/fittrack/internal/models"
	"github.com/claude/fittrack/internal/progression"
	"github.com/claude/fittrack/internal/repository"
	"github.com/claude/fittrack/internal/rotation"
	"github.com/google/uuid"
)

// CustomCategoryName labels sessions started from a hand-picked list.
const CustomCategoryName = "Custom"

// Plan says what to train. With ExerciseIDs set those exercises are used in
// that order and CategoryID only names the session. With just CategoryID
// the exercises are chosen by rotation.
type Plan struct {
	CategoryID  *int64  `json:"categoryId,omitempty"`
	ExerciseIDs []int64 `json:"exerciseIds,omitempty"`
}

// Service starts workout sessions.
type Service struct {
	repo   *repository.Repository
	deload *deload.Scheduler
	logger *slog.Logger
	now    func() time.Time

	// second is how long one timer second lasts.
	second time.Duration
}

// NewService creates a Service.
func NewService(repo *repository.Repository, scheduler *deload.Scheduler, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		deload: scheduler,
		logger: logger,
		now:    time.Now,
		second: time.Second,
	}
}

// Start loads the planned exercises and opens a session for them. On a
// deload week every load is reduced; otherwise a pending progression
// suggestion replaces the starting weight of weighted exercises.
func (s *Service) Start(ctx context.Context, plan Plan) (*Session, error) {
	exercises, category, err := s.resolve(ctx, plan)
	if err != nil {
		return nil, err
	}

	isDeload, err := s.deload.ShouldDeload(ctx)
	if err != nil {
		return nil, err
	}
	percent := 0
	if isDeload {
		if percent, err = s.deload.Percent(ctx); err != nil {
			return nil, err
		}
	}

	sess := &Session{
		ID:            uuid.NewString(),
		svc:           s,
		categoryName:  CustomCategoryName,
		isDeload:      isDeload,
		deloadPercent: percent,
		startedAt:     s.now(),
		completed:     make(map[int64]bool),
		weights:       make(map[int64]string),
		timerSecs:     make(map[int64]int),
		restSecs:      make(map[int64]int),
		notes:         make(map[int64]string),
		timers:        newTimers(),
	}
	if category != nil {
		id := category.ID
		sess.categoryID = &id
		sess.categoryName = category.Name
	}

	for _, ex := range exercises {
		if _, err := sess.addItem(ctx, ex); err != nil {
			return nil, err
		}
	}

	s.logger.Info("workout started",
		"session", sess.ID,
		"category", sess.categoryName,
		"exercises", len(sess.items),
		"deload", isDeload,
	)
	return sess, nil
}

// resolve turns a plan into exercises and the session's category.
func (s *Service) resolve(ctx context.Context, plan Plan) ([]models.Exercise, *models.Category, error) {
	var category *models.Category
	if plan.CategoryID != nil {
		c, err := s.repo.GetCategory(ctx, *plan.CategoryID)
		if err != nil {
			return nil, nil, err
		}
		category = c
	}

	if len(plan.ExerciseIDs) > 0 {
		var exercises []models.Exercise
		for _, id := range plan.ExerciseIDs {
			e, err := s.repo.GetExercise(ctx, id)
			if err != nil {
				return nil, nil, err
			}
			if e != nil {
				exercises = append(exercises, *e)
			}
		}
		return exercises, category, nil
	}

	if plan.CategoryID == nil {
		return nil, nil, ErrEmptyPlan
	}
	if category == nil {
		return nil, nil, fmt.Errorf("%w: %d", ErrCategoryNotFound, *plan.CategoryID)
	}
	pool, err := s.repo.GetCategoryExercises(ctx, category.ID)
	if err != nil {
		return nil, nil, err
	}
	return rotation.SelectExercisesForWorkout(pool, category.RotationFrequency, category.ExercisesPerWorkout), category, nil
}

// Preview returns what a plan would contain without opening a session or
// touching the deload window.
func (s *Service) Preview(ctx context.Context, plan Plan) ([]models.Exercise, error) {
	exercises, _, err := s.resolve(ctx, plan)
	if err != nil {
		return nil, err
	}
	if exercises == nil {
		exercises = []models.Exercise{}
	}
	return exercises, nil
}

// Suggestion is the progression state of one exercise.
type Suggestion struct {
	Streak         int                     `json:"streak"`
	Threshold      int                     `json:"threshold"`
	Suggestion     string                  `json:"suggestion,omitempty"`
	PersonalRecord *models.ExerciseHistory `json:"personalRecord,omitempty"`
}

// Suggest computes the progression state of an exercise from its history.
// The streak only counts once the exercise has been used in a workout.
func (s *Service) Suggest(ctx context.Context, ex models.Exercise) (Suggestion, error) {
	history, err := s.repo.GetExerciseHistory(ctx, ex.ID)
	if err != nil {
		return Suggestion{}, err
	}

	threshold := ex.ProgressionThreshold
	if threshold <= 0 {
		threshold = models.DefaultProgressionThreshold
	}
	increment := ex.ProgressionIncrement
	if increment <= 0 {
		increment = models.DefaultProgressionIncrement
	}

	out := Suggestion{Threshold: threshold, PersonalRecord: progression.FindPersonalRecord(history)}
	if ex.LastUsedDate > 0 {
		out.Streak = progression.CountConsecutiveCompletions(history, ex.Weight)
	}
	out.Suggestion, _ = progression.CalculateProgression(history, ex.Weight, threshold, ex.IsTimed(), ex.TimerSeconds, increment)
	return out, nil
}
