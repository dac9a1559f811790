package server

import (
	"net/http"

	"github.com/claude/fittrack/internal/models"
)

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	if name := r.URL.Query().Get("name"); name != "" {
		e, err := found(s.repo.GetExerciseByName(r.Context(), name))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, []models.Exercise{*e})
		return
	}
	exercises, err := s.repo.GetAllExercises(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, exercises)
}

func (s *Server) handleCreateExercise(w http.ResponseWriter, r *http.Request) {
	var e models.Exercise
	if err := decodeBody(r, &e); err != nil {
		s.writeError(w, r, err)
		return
	}
	id, err := s.repo.AddExercise(r.Context(), e)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	created, err := s.repo.GetExercise(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetExercise(w http.ResponseWriter, r *http.Request) {
	id, ok := mustID(w, r)
	if !ok {
		return
	}
	e, err := found(s.repo.GetExercise(r.Context(), id))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// handleUpdateExercise replaces the editable fields of the exercise. The path
// id wins over any id in the body, and the rotation state is kept from the
// stored record.
func (s *Server) handleUpdateExercise(w http.ResponseWriter, r *http.Request) {
	id, ok := mustID(w, r)
	if !ok {
		return
	}
	stored, err := found(s.repo.GetExercise(r.Context(), id))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var e models.Exercise
	if err := decodeBody(r, &e); err != nil {
		s.writeError(w, r, err)
		return
	}
	e.ID = id
	e.LastUsedDate = stored.LastUsedDate
	e.WorkoutsSinceLastUse = stored.WorkoutsSinceLastUse
	if err := s.repo.UpdateExercise(r.Context(), e); err != nil {
		s.writeError(w, r, err)
		return
	}
	updated, err := found(s.repo.GetExercise(r.Context(), id))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteExercise(w http.ResponseWriter, r *http.Request) {
	id, ok := mustID(w, r)
	if !ok {
		return
	}
	if err := s.repo.DeleteExercise(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExerciseCategories(w http.ResponseWriter, r *http.Request) {
	id, ok := mustID(w, r)
	if !ok {
		return
	}
	categories, err := s.repo.GetExerciseCategories(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleSetExerciseCategories(w http.ResponseWriter, r *http.Request) {
	id, ok := mustID(w, r)
	if !ok {
		return
	}
	var body struct {
		CategoryIDs []int64 `json:"categoryIds"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.repo.SetExerciseCategories(r.Context(), id, body.CategoryIDs); err != nil {
		s.writeError(w, r, err)
		return
	}
	categories, err := s.repo.GetExerciseCategories(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleExerciseHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := mustID(w, r)
	if !ok {
		return
	}
	history, err := s.repo.GetExerciseHistory(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleExerciseProgression(w http.ResponseWriter, r *http.Request) {
	id, ok := mustID(w, r)
	if !ok {
		return
	}
	e, err := found(s.repo.GetExercise(r.Context(), id))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sug, err := s.workouts.Suggest(r.Context(), *e)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sug)
}
