package workout

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/claude/fittrack/internal/deload"
	"github.com/claude/fittrack/internal/metrics"
	"github.com/claude/fittrack/internal/models"
	"github.com/claude/fittrack/internal/repository"
	"github.com/claude/fittrack/internal/rotation"
	"github.com/claude/fittrack/internal/weight"
)

// item is one exercise of a session as it was when added.
type item struct {
	exercise       models.Exercise
	weight         string // starting weight, after deload
	originalWeight string // set when deload changed weight
	suggestion     Suggestion
}

// Session holds the in-memory state of one workout until it is finished or
// abandoned. It is safe for concurrent use; timer callbacks complete
// exercises from their own goroutines.
type Session struct {
	ID string

	svc           *Service
	categoryID    *int64
	categoryName  string
	isDeload      bool
	deloadPercent int
	startedAt     time.Time

	mu        sync.Mutex
	items     []*item
	completed map[int64]bool
	weights   map[int64]string
	timerSecs map[int64]int
	restSecs  map[int64]int
	notes     map[int64]string
	timers    *Timers
	closed    bool
}

// addItem prepares an exercise for the session. Callers hold mu or own the
// session exclusively.
func (s *Session) addItem(ctx context.Context, ex models.Exercise) (*item, error) {
	it := &item{exercise: ex, weight: ex.Weight}
	if s.isDeload {
		d := deload.ApplyDeload([]models.Exercise{ex}, s.deloadPercent)[0]
		it.weight = d.Weight
		it.originalWeight = d.OriginalWeight
	}

	sug, err := s.svc.Suggest(ctx, ex)
	if err != nil {
		return nil, err
	}
	it.suggestion = sug
	if sug.Suggestion != "" && !ex.IsTimed() && !s.isDeload {
		if _, ok := s.weights[ex.ID]; !ok {
			s.weights[ex.ID] = sug.Suggestion
		}
	}

	s.items = append(s.items, it)
	return it, nil
}

func (s *Session) find(exerciseID int64) (*item, error) {
	for _, it := range s.items {
		if it.exercise.ID == exerciseID {
			return it, nil
		}
	}
	return nil, fmt.Errorf("%w: %d", ErrExerciseNotInPlan, exerciseID)
}

// edit runs fn under the lock after checking the session is open and the
// exercise belongs to it.
func (s *Session) edit(exerciseID int64, fn func(it *item) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	it, err := s.find(exerciseID)
	if err != nil {
		return err
	}
	return fn(it)
}

// SetCompleted marks an exercise done or not done. Completing it stops its
// timer.
func (s *Session) SetCompleted(exerciseID int64, done bool) error {
	return s.edit(exerciseID, func(it *item) error {
		if done {
			s.completed[exerciseID] = true
			s.timers.Stop(exerciseID)
		} else {
			delete(s.completed, exerciseID)
		}
		return nil
	})
}

// SetWeight overrides the weight recorded for an exercise.
func (s *Session) SetWeight(exerciseID int64, w string) error {
	return s.edit(exerciseID, func(it *item) error {
		s.weights[exerciseID] = w
		return nil
	})
}

// AdjustWeight steps an exercise's current weight by delta and returns the
// new value.
func (s *Session) AdjustWeight(exerciseID int64, delta float64) (string, error) {
	var out string
	err := s.edit(exerciseID, func(it *item) error {
		out = weight.Adjust(s.currentWeight(it), delta)
		s.weights[exerciseID] = out
		return nil
	})
	return out, err
}

// SetTimer overrides the work and rest seconds for a timed exercise.
func (s *Session) SetTimer(exerciseID int64, seconds, restSeconds int) error {
	if seconds < 0 || restSeconds < 0 {
		return fmt.Errorf("%w: timers must not be negative", repository.ErrInvalidExercise)
	}
	return s.edit(exerciseID, func(it *item) error {
		s.timerSecs[exerciseID] = seconds
		s.restSecs[exerciseID] = restSeconds
		return nil
	})
}

// SetNotes stores the workout notes for an exercise.
func (s *Session) SetNotes(exerciseID int64, notes string) error {
	return s.edit(exerciseID, func(it *item) error {
		s.notes[exerciseID] = notes
		return nil
	})
}

// StartTimer starts the exercise's countdown. When it runs out the exercise
// is marked completed.
func (s *Session) StartTimer(exerciseID int64) error {
	return s.edit(exerciseID, func(it *item) error {
		secs := s.currentTimer(it)
		if secs <= 0 {
			return fmt.Errorf("%w: %d", ErrNoTimer, exerciseID)
		}
		if !s.timers.Start(exerciseID, secs, time.Duration(secs)*s.svc.second, func() {
			if err := s.SetCompleted(exerciseID, true); err == nil {
				s.svc.logger.Debug("timer finished", "session", s.ID, "exercise", exerciseID)
			}
		}) {
			return ErrSessionClosed
		}
		return nil
	})
}

// StopTimer cancels the exercise's countdown, if one is running.
func (s *Session) StopTimer(exerciseID int64) error {
	return s.edit(exerciseID, func(it *item) error {
		s.timers.Stop(exerciseID)
		return nil
	})
}

// AddRandomExercise adds the least recently used exercise of the session's
// category that is not already in the workout.
func (s *Session) AddRandomExercise(ctx context.Context) (*ExerciseView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	if s.categoryID == nil {
		return nil, fmt.Errorf("%w: workout has no category", ErrNoCandidates)
	}

	pool, err := s.svc.repo.GetCategoryExercises(ctx, *s.categoryID)
	if err != nil {
		return nil, err
	}
	inWorkout := make(map[int64]bool, len(s.items))
	for _, it := range s.items {
		inWorkout[it.exercise.ID] = true
	}
	pick, ok := rotation.PickLeastRecent(pool, inWorkout)
	if !ok {
		return nil, ErrNoCandidates
	}

	it, err := s.addItem(ctx, pick)
	if err != nil {
		return nil, err
	}
	v := s.view(it)
	return &v, nil
}

// Close abandons the session: every timer is cancelled and nothing is saved.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.timers.Close()
}

// Finish stops the timers and saves the workout: the session, one record and
// one history entry per exercise, the new rotation state of completed
// exercises and of category members left out. A deload session restarts the
// deload window.
//
// A failure before the session is written leaves the workout open so Finish
// can be retried. Later failures close it and return a
// *repository.PartialError.
func (s *Session) Finish(ctx context.Context) (*models.WorkoutSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	s.timers.Close()

	now := s.svc.now()
	ws := models.WorkoutSession{
		Date:           now.UnixMilli(),
		CategoryID:     s.categoryID,
		CategoryName:   s.categoryName,
		Duration:       int(now.Sub(s.startedAt) / time.Minute),
		CompletedCount: len(s.completed),
		TotalCount:     len(s.items),
		IsDeloadWeek:   s.isDeload,
	}
	id, err := s.svc.repo.AddWorkoutSession(ctx, ws)
	if err != nil {
		s.timers = newTimers()
		return nil, err
	}
	ws.ID = id
	s.closed = true

	steps := 1
	fail := func(err error) (*models.WorkoutSession, error) {
		metrics.PartialFailuresTotal.WithLabelValues(metrics.SeqFinishWorkout).Inc()
		s.svc.logger.Warn("workout saved partially", "session", s.ID, "completed", steps, "error", err)
		return &ws, &repository.PartialError{Op: metrics.SeqFinishWorkout, Completed: steps, Err: err}
	}

	if s.isDeload {
		if err := s.svc.deload.MarkCompleted(ctx); err != nil {
			return fail(err)
		}
		steps++
	}

	for _, it := range s.items {
		if err := s.save(ctx, id, it, now); err != nil {
			return fail(err)
		}
		steps++
	}

	if s.categoryID != nil {
		if err := s.ageUnchosen(ctx, *s.categoryID); err != nil {
			return fail(err)
		}
	}

	metrics.WorkoutsCompletedTotal.WithLabelValues(strconv.FormatBool(s.isDeload)).Inc()
	s.svc.logger.Info("workout finished",
		"session", s.ID,
		"workout_session_id", id,
		"completed", ws.CompletedCount,
		"total", ws.TotalCount,
		"duration_min", ws.Duration,
	)
	return &ws, nil
}

// save writes the record and history entry for one exercise and updates the
// stored exercise if it was completed.
func (s *Session) save(ctx context.Context, sessionID int64, it *item, now time.Time) error {
	ex := it.exercise
	done := s.completed[ex.ID]
	finalWeight := s.currentWeight(it)
	finalTimer := s.currentTimer(it)
	notes := s.notes[ex.ID]

	if _, err := s.svc.repo.AddWorkoutExerciseRecord(ctx, models.WorkoutExerciseRecord{
		WorkoutSessionID: sessionID,
		ExerciseName:     ex.Name,
		Sets:             ex.Sets,
		Reps:             ex.Reps,
		Weight:           finalWeight,
		Notes:            ex.Notes,
		TimerSeconds:     finalTimer,
		Completed:        done,
		WorkoutNotes:     notes,
	}); err != nil {
		return err
	}

	if _, err := s.svc.repo.AddExerciseHistory(ctx, models.ExerciseHistory{
		ExerciseID:   ex.ID,
		ExerciseName: ex.Name,
		Date:         now.UnixMilli(),
		Weight:       finalWeight,
		Reps:         ex.Reps,
		Sets:         ex.Sets,
		TimerSeconds: finalTimer,
		Notes:        notes,
		Completed:    done,
	}); err != nil {
		return err
	}

	if !done {
		return nil
	}
	stored, err := s.svc.repo.GetExercise(ctx, ex.ID)
	if err != nil {
		return err
	}
	if stored == nil {
		return nil
	}
	stored.LastUsedDate = now.UnixMilli()
	stored.WorkoutsSinceLastUse = 0
	if w, ok := s.weights[ex.ID]; ok {
		stored.Weight = w
	} else if !s.isDeload {
		stored.Weight = finalWeight
	}
	stored.TimerSeconds = finalTimer
	stored.RestTimerSeconds = s.currentRest(it)
	return s.svc.repo.UpdateExercise(ctx, *stored)
}

// ageUnchosen bumps workoutsSinceLastUse for category members that were not
// in the workout.
func (s *Session) ageUnchosen(ctx context.Context, categoryID int64) error {
	members, err := s.svc.repo.GetCategoryExercises(ctx, categoryID)
	if err != nil {
		return err
	}
	used := make(map[int64]bool, len(s.items))
	for _, it := range s.items {
		used[it.exercise.ID] = true
	}
	for _, ex := range members {
		if used[ex.ID] {
			continue
		}
		ex.WorkoutsSinceLastUse++
		if err := s.svc.repo.UpdateExercise(ctx, ex); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) currentWeight(it *item) string {
	if w, ok := s.weights[it.exercise.ID]; ok {
		return w
	}
	return it.weight
}

func (s *Session) currentTimer(it *item) int {
	if v, ok := s.timerSecs[it.exercise.ID]; ok {
		return v
	}
	return it.exercise.TimerSeconds
}

func (s *Session) currentRest(it *item) int {
	if v, ok := s.restSecs[it.exercise.ID]; ok {
		return v
	}
	return it.exercise.RestTimerSeconds
}
