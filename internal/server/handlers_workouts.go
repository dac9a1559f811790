package server

import (
	"errors"
	"net/http"

	"github.com/claude/fittrack/internal/repository"
	"github.com/claude/fittrack/internal/workout"
	"github.com/go-chi/chi/v5"
)

// session looks up the open workout named by {wid} or answers 404.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*workout.Session, bool) {
	sess, err := s.open.Get(chi.URLParam(r, "wid"))
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return sess, true
}

// exerciseEdit resolves {wid} and {eid} for the per-exercise endpoints.
func (s *Server) exerciseEdit(w http.ResponseWriter, r *http.Request) (*workout.Session, int64, bool) {
	sess, ok := s.session(w, r)
	if !ok {
		return nil, 0, false
	}
	eid, err := intParam(r, "eid")
	if err != nil {
		writeBadRequest(w, err.Error())
		return nil, 0, false
	}
	return sess, eid, true
}

func (s *Server) handleStartWorkout(w http.ResponseWriter, r *http.Request) {
	var plan workout.Plan
	if err := decodeBody(r, &plan); err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := s.workouts.Start(r.Context(), plan)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.open.Add(sess)
	writeJSON(w, http.StatusCreated, sess.View())
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.View())
}

// handleAbandonWorkout drops an open workout without saving anything.
func (s *Server) handleAbandonWorkout(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Close()
	s.open.Remove(sess.ID)
	w.WriteHeader(http.StatusNoContent)
}

// handleFinishWorkout saves the workout. A workout that could not be saved
// at all stays open for a retry; once anything is written it is closed.
func (s *Server) handleFinishWorkout(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	ws, err := sess.Finish(r.Context())
	var pe *repository.PartialError
	if err == nil || errors.As(err, &pe) || errors.Is(err, workout.ErrSessionClosed) {
		s.open.Remove(sess.ID)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ws)
}

func (s *Server) handleAddRandomExercise(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	ev, err := sess.AddRandomExercise(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ev)
}

func (s *Server) handleCompleteExercise(done bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, eid, ok := s.exerciseEdit(w, r)
		if !ok {
			return
		}
		if err := sess.SetCompleted(eid, done); err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, sess.View())
	}
}

// handleWorkoutWeight sets the weight outright with {"weight": "..."} or
// steps it with {"delta": n}.
func (s *Server) handleWorkoutWeight(w http.ResponseWriter, r *http.Request) {
	sess, eid, ok := s.exerciseEdit(w, r)
	if !ok {
		return
	}
	var body struct {
		Weight *string  `json:"weight"`
		Delta  *float64 `json:"delta"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	var err error
	switch {
	case body.Weight != nil:
		err = sess.SetWeight(eid, *body.Weight)
	case body.Delta != nil:
		_, err = sess.AdjustWeight(eid, *body.Delta)
	default:
		writeBadRequest(w, "weight or delta required")
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.View())
}

func (s *Server) handleWorkoutTimer(w http.ResponseWriter, r *http.Request) {
	sess, eid, ok := s.exerciseEdit(w, r)
	if !ok {
		return
	}
	var body struct {
		Seconds     int `json:"timerSeconds"`
		RestSeconds int `json:"restTimerSeconds"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := sess.SetTimer(eid, body.Seconds, body.RestSeconds); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.View())
}

func (s *Server) handleStartTimer(w http.ResponseWriter, r *http.Request) {
	sess, eid, ok := s.exerciseEdit(w, r)
	if !ok {
		return
	}
	if err := sess.StartTimer(eid); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.View())
}

func (s *Server) handleStopTimer(w http.ResponseWriter, r *http.Request) {
	sess, eid, ok := s.exerciseEdit(w, r)
	if !ok {
		return
	}
	if err := sess.StopTimer(eid); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.View())
}

func (s *Server) handleWorkoutNotes(w http.ResponseWriter, r *http.Request) {
	sess, eid, ok := s.exerciseEdit(w, r)
	if !ok {
		return
	}
	var body struct {
		Notes string `json:"notes"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := sess.SetNotes(eid, body.Notes); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.View())
}
