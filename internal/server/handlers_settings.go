package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/claude/fittrack/internal/repository"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.repo.GetAllSettings(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleGetSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	var value json.RawMessage
	ok, err := s.repo.GetSetting(r.Context(), key, &value)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !ok {
		s.writeError(w, r, fmt.Errorf("setting %q: %w", key, errNotFound))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"key": key, "value": value})
}

// handlePutSetting stores the request body, any JSON value, under key.
func (s *Server) handlePutSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	var value json.RawMessage
	if err := decodeBody(r, &value); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.repo.SetSetting(r.Context(), key, value); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"key": key, "value": value})
}

func (s *Server) handleDeloadStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.deload.Status(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleConfigureDeload(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Weeks   int `json:"weeks"`
		Percent int `json:"percent"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.deload.Configure(r.Context(), body.Weeks, body.Percent); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.handleDeloadStatus(w, r)
}

// handleExport streams a full backup as a download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	snap, err := s.repo.ExportData(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	name := fmt.Sprintf("fittrack-backup-%s.json", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	writeJSON(w, http.StatusOK, snap)
}

// handleImport replaces all data with the uploaded backup and abandons open
// workouts, whose exercise ids refer to the replaced data. A body that does
// not parse changes nothing.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	snap, err := repository.ParseSnapshot(r.Body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if n := s.open.Len(); n > 0 {
		s.log.Warn("import abandons open workouts", "count", n)
		s.open.CloseAll()
	}
	if err := s.repo.ImportData(r.Context(), snap); err != nil {
		s.writeError(w, r, err)
		return
	}
	info, err := s.repo.BackupInfo(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleBackupInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.repo.BackupInfo(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}
