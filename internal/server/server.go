package server

import (
	"log/slog"
	"net/http"

	"github.com/claude/fittrack/internal/deload"
	"github.com/claude/fittrack/internal/repository"
	"github.com/claude/fittrack/internal/workout"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	repo     *repository.Repository
	workouts *workout.Service
	deload   *deload.Scheduler
	open     *workout.Registry
	opts     Options
	log      *slog.Logger
	router   chi.Router
}

// Options controls access to the API.
type Options struct {
	// APIKey must accompany every /api/v1 request in X-API-Key.
	APIKey string
	// AllowedOrigin is the browser origin granted CORS access.
	AllowedOrigin string
}

// New creates a new Server with all routes configured.
func New(repo *repository.Repository, workouts *workout.Service, scheduler *deload.Scheduler, open *workout.Registry, opts Options, log *slog.Logger) *Server {
	s := &Server{
		repo:     repo,
		workouts: workouts,
		deload:   scheduler,
		open:     open,
		opts:     opts,
		log:      log,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS(s.opts.AllowedOrigin))

	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(APIKeyAuth(s.opts.APIKey))

		r.Route("/exercises", func(r chi.Router) {
			r.Get("/", s.handleListExercises)
			r.Post("/", s.handleCreateExercise)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetExercise)
				r.Put("/", s.handleUpdateExercise)
				r.Delete("/", s.handleDeleteExercise)
				r.Get("/categories", s.handleExerciseCategories)
				r.Put("/categories", s.handleSetExerciseCategories)
				r.Get("/history", s.handleExerciseHistory)
				r.Get("/progression", s.handleExerciseProgression)
			})
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", s.handleListCategories)
			r.Post("/", s.handleCreateCategory)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetCategory)
				r.Put("/", s.handleUpdateCategory)
				r.Delete("/", s.handleDeleteCategory)
				r.Get("/exercises", s.handleCategoryExercises)
				r.Post("/exercises", s.handleAddCategoryExercise)
				r.Get("/preview", s.handlePreviewCategory)
			})
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", s.handleListSessions)
			r.Get("/{id}", s.handleGetSession)
			r.Delete("/{id}", s.handleDeleteSession)
			r.Get("/{id}/records", s.handleSessionRecords)
		})

		r.Get("/settings", s.handleListSettings)
		r.Get("/settings/{key}", s.handleGetSetting)
		r.Put("/settings/{key}", s.handlePutSetting)

		r.Get("/deload", s.handleDeloadStatus)
		r.Put("/deload", s.handleConfigureDeload)

		r.Get("/export", s.handleExport)
		r.Post("/import", s.handleImport)
		r.Get("/backup", s.handleBackupInfo)

		r.Route("/workouts", func(r chi.Router) {
			r.Post("/", s.handleStartWorkout)
			r.Route("/{wid}", func(r chi.Router) {
				r.Get("/", s.handleGetWorkout)
				r.Delete("/", s.handleAbandonWorkout)
				r.Post("/finish", s.handleFinishWorkout)
				r.Post("/random", s.handleAddRandomExercise)
				r.Route("/exercises/{eid}", func(r chi.Router) {
					r.Post("/complete", s.handleCompleteExercise(true))
					r.Delete("/complete", s.handleCompleteExercise(false))
					r.Put("/weight", s.handleWorkoutWeight)
					r.Put("/timer", s.handleWorkoutTimer)
					r.Post("/timer/start", s.handleStartTimer)
					r.Post("/timer/stop", s.handleStopTimer)
					r.Put("/notes", s.handleWorkoutNotes)
				})
			})
		})
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.DB().Health(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
