package workout

import (
	"time"

	"github.com/claude/fittrack/internal/models"
)

// ExerciseView is the current state of one exercise in a session.
type ExerciseView struct {
	models.Exercise
	CurrentWeight    string     `json:"currentWeight"`
	OriginalWeight   string     `json:"originalWeight,omitempty"`
	CurrentTimer     int        `json:"currentTimerSeconds"`
	CurrentRestTimer int        `json:"currentRestTimerSeconds"`
	Completed        bool       `json:"completed"`
	WorkoutNotes     string     `json:"workoutNotes"`
	Progression      Suggestion `json:"progression"`
	TimerRemaining   *float64   `json:"timerRemainingSeconds,omitempty"`
}

// View is a point-in-time copy of a session.
type View struct {
	ID             string         `json:"id"`
	CategoryID     *int64         `json:"categoryId"`
	CategoryName   string         `json:"categoryName"`
	IsDeloadWeek   bool           `json:"isDeloadWeek"`
	DeloadPercent  int            `json:"deloadPercent,omitempty"`
	StartedAt      int64          `json:"startedAt"`
	CompletedCount int            `json:"completedCount"`
	TotalCount     int            `json:"totalCount"`
	Exercises      []ExerciseView `json:"exercises"`
}

// View returns the session's current state.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		ID:             s.ID,
		CategoryID:     s.categoryID,
		CategoryName:   s.categoryName,
		IsDeloadWeek:   s.isDeload,
		DeloadPercent:  s.deloadPercent,
		StartedAt:      s.startedAt.UnixMilli(),
		CompletedCount: len(s.completed),
		TotalCount:     len(s.items),
		Exercises:      make([]ExerciseView, 0, len(s.items)),
	}
	for _, it := range s.items {
		v.Exercises = append(v.Exercises, s.view(it))
	}
	return v
}

// view builds one exercise's state. Callers hold mu.
func (s *Session) view(it *item) ExerciseView {
	id := it.exercise.ID
	ev := ExerciseView{
		Exercise:         it.exercise,
		CurrentWeight:    s.currentWeight(it),
		OriginalWeight:   it.originalWeight,
		CurrentTimer:     s.currentTimer(it),
		CurrentRestTimer: s.currentRest(it),
		Completed:        s.completed[id],
		WorkoutNotes:     s.notes[id],
		Progression:      it.suggestion,
	}
	if c, ok := s.timers.Get(id); ok {
		secs := c.Remaining(time.Now()).Seconds()
		ev.TimerRemaining = &secs
	}
	return ev
}
