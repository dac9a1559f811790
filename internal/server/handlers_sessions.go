package server

import (
	"net/http"
	"strconv"
)

// handleListSessions returns past workouts, newest first. ?limit=n keeps the
// n most recent.
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.repo.GetAllWorkoutSessions(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n >= 0 && n < len(sessions) {
			sessions = sessions[:n]
		}
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := mustID(w, r)
	if !ok {
		return
	}
	ws, err := found(s.repo.GetWorkoutSession(r.Context(), id))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ws)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := mustID(w, r)
	if !ok {
		return
	}
	if err := s.repo.DeleteWorkoutSession(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSessionRecords(w http.ResponseWriter, r *http.Request) {
	id, ok := mustID(w, r)
	if !ok {
		return
	}
	records, err := s.repo.GetWorkoutExerciseRecords(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}
