package server

import (
	"net/http"
	"strconv"

	"github.com/claude/fittrack/internal/models"
	"github.com/claude/fittrack/internal/workout"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.repo.GetAllCategories(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var c models.Category
	if err := decodeBody(r, &c); err != nil {
		s.writeError(w, r, err)
		return
	}
	id, err := s.repo.AddCategory(r.Context(), c)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	created, err := s.repo.GetCategory(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := mustID(w, r)
	if !ok {
		return
	}
	c, err := found(s.repo.GetCategory(r.Context(), id))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := mustID(w, r)
	if !ok {
		return
	}
	if _, err := found(s.repo.GetCategory(r.Context(), id)); err != nil {
		s.writeError(w, r, err)
		return
	}
	var c models.Category
	if err := decodeBody(r, &c); err != nil {
		s.writeError(w, r, err)
		return
	}
	c.ID = id
	if err := s.repo.UpdateCategory(r.Context(), c); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// handleDeleteCategory refuses to delete a category with members unless
// ?force=true is given.
func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := mustID(w, r)
	if !ok {
		return
	}
	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))

	var err error
	if force {
		err = s.repo.ForceDeleteCategory(r.Context(), id)
	} else {
		err = s.repo.DeleteCategory(r.Context(), id)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCategoryExercises(w http.ResponseWriter, r *http.Request) {
	id, ok := mustID(w, r)
	if !ok {
		return
	}
	exercises, err := s.repo.GetCategoryExercises(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, exercises)
}

func (s *Server) handleAddCategoryExercise(w http.ResponseWriter, r *http.Request) {
	id, ok := mustID(w, r)
	if !ok {
		return
	}
	var body struct {
		ExerciseID int64 `json:"exerciseId"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	refID, err := s.repo.AddExerciseCategoryRef(r.Context(), body.ExerciseID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, models.ExerciseCategoryRef{ID: refID, ExerciseID: body.ExerciseID, CategoryID: id})
}

// handlePreviewCategory shows which exercises rotation would pick now. The
// pick is random among equals, so two calls can differ.
func (s *Server) handlePreviewCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := mustID(w, r)
	if !ok {
		return
	}
	exercises, err := s.workouts.Preview(r.Context(), workout.Plan{CategoryID: &id})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, exercises)
}
