package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Store operation label values.
const (
	StoreOpOpen       = "open"
	StoreOpAdd        = "add"
	StoreOpPut        = "put"
	StoreOpGet        = "get"
	StoreOpGetAll     = "get_all"
	StoreOpGetByIndex = "get_by_index"
	StoreOpDelete     = "delete"
	StoreOpClear      = "clear"
	StoreOpCount      = "count"
)

// Multi-step repository sequences that can stop halfway.
const (
	SeqDeleteExercise = "delete_exercise"
	SeqDeleteCategory = "delete_category"
	SeqDeleteSession  = "delete_workout_session"
	SeqSetCategories  = "set_exercise_categories"
	SeqImport         = "import"
	SeqFinishWorkout  = "finish_workout"
)

// Store metrics
var (
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fittrack_store_operation_duration_seconds",
			Help:    "Duration of document store operations",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"collection", "op"},
	)

	StoreOperationErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fittrack_store_operation_errors_total",
			Help: "Total number of failed document store operations",
		},
		[]string{"collection", "op"},
	)
)

// Repository and workout metrics
var (
	PartialFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fittrack_partial_failures_total",
			Help: "Multi-step sequences that failed after changing some data",
		},
		[]string{"op"},
	)

	WorkoutsCompletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fittrack_workouts_completed_total",
			Help: "Total number of finished workout sessions",
		},
		[]string{"deload"},
	)

	OpenWorkoutSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fittrack_open_workout_sessions",
			Help: "Workout sessions started but not yet finished or abandoned",
		},
	)
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fittrack_http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fittrack_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)
