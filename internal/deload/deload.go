// Package deload decides when a recovery week is due and lightens loads for it.
package deload

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/claude/fittrack/internal/models"
	"github.com/claude/fittrack/internal/weight"
)

// Setting keys.
const (
	KeyWeeks    = "deloadWeeks"
	KeyLastDate = "lastDeloadDate"
	KeyPercent  = "deloadPercent"
)

// DefaultPercent is the load reduction used when none is configured.
const DefaultPercent = 50

const msPerWeek = 7 * 24 * 60 * 60 * 1000

// ErrInvalidConfig is returned by Configure for out-of-range values.
var ErrInvalidConfig = errors.New("invalid deload config")

// Settings reads and writes app settings. GetSetting leaves dst untouched
// and reports false when key is absent.
type Settings interface {
	GetSetting(ctx context.Context, key string, dst any) (bool, error)
	SetSetting(ctx context.Context, key string, value any) error
}

// Scheduler tracks the deload window stored in settings.
type Scheduler struct {
	settings Settings
	now      func() time.Time
}

// NewScheduler creates a Scheduler. A nil now uses time.Now.
func NewScheduler(settings Settings, now func() time.Time) *Scheduler {
	if now == nil {
		now = time.Now
	}
	return &Scheduler{settings: settings, now: now}
}

// ShouldDeload reports whether at least deloadWeeks whole weeks have passed
// since lastDeloadDate. It is always false while deloadWeeks is 0. The first
// call with no lastDeloadDate stores the current time and returns false.
func (s *Scheduler) ShouldDeload(ctx context.Context) (bool, error) {
	weeks, err := s.intervalWeeks(ctx)
	if err != nil || weeks == 0 {
		return false, err
	}

	last, err := s.lastDate(ctx)
	if err != nil {
		return false, err
	}
	now := s.now().UnixMilli()
	if last == 0 {
		if err := s.settings.SetSetting(ctx, KeyLastDate, now); err != nil {
			return false, fmt.Errorf("starting deload window: %w", err)
		}
		return false, nil
	}
	return weeksBetween(last, now) >= weeks, nil
}

// MarkCompleted restarts the window from now. Call it when a deload session
// is finished.
func (s *Scheduler) MarkCompleted(ctx context.Context) error {
	if err := s.settings.SetSetting(ctx, KeyLastDate, s.now().UnixMilli()); err != nil {
		return fmt.Errorf("recording deload: %w", err)
	}
	return nil
}

// Percent returns the configured load reduction in percent.
func (s *Scheduler) Percent(ctx context.Context) (int, error) {
	p := DefaultPercent
	if _, err := s.settings.GetSetting(ctx, KeyPercent, &p); err != nil {
		return 0, fmt.Errorf("reading %s: %w", KeyPercent, err)
	}
	return p, nil
}

// Configure stores the interval and reduction. weeks 0 disables deloads.
// Enabling deloads with no window yet starts one now.
func (s *Scheduler) Configure(ctx context.Context, weeks, percent int) error {
	if weeks < 0 {
		return fmt.Errorf("%w: weeks must not be negative", ErrInvalidConfig)
	}
	if percent < 1 || percent > 100 {
		return fmt.Errorf("%w: percent must be between 1 and 100", ErrInvalidConfig)
	}
	if err := s.settings.SetSetting(ctx, KeyWeeks, weeks); err != nil {
		return fmt.Errorf("saving %s: %w", KeyWeeks, err)
	}
	if err := s.settings.SetSetting(ctx, KeyPercent, percent); err != nil {
		return fmt.Errorf("saving %s: %w", KeyPercent, err)
	}
	if weeks == 0 {
		return nil
	}

	last, err := s.lastDate(ctx)
	if err != nil {
		return err
	}
	if last == 0 {
		return s.MarkCompleted(ctx)
	}
	return nil
}

// Status describes the deload window without changing it.
type Status struct {
	Enabled        bool  `json:"enabled"`
	IntervalWeeks  int   `json:"intervalWeeks"`
	Percent        int   `json:"percent"`
	LastDeloadDate int64 `json:"lastDeloadDate"`
	WeeksSinceLast int   `json:"weeksSinceLast"`
	WeeksUntilNext int   `json:"weeksUntilNext"`
	Due            bool  `json:"due"`
}

// Status reports the current window.
func (s *Scheduler) Status(ctx context.Context) (Status, error) {
	weeks, err := s.intervalWeeks(ctx)
	if err != nil {
		return Status{}, err
	}
	percent, err := s.Percent(ctx)
	if err != nil {
		return Status{}, err
	}
	last, err := s.lastDate(ctx)
	if err != nil {
		return Status{}, err
	}

	st := Status{Enabled: weeks > 0, IntervalWeeks: weeks, Percent: percent, LastDeloadDate: last}
	if !st.Enabled {
		return st, nil
	}
	if last == 0 {
		st.WeeksUntilNext = weeks
		return st, nil
	}
	st.WeeksSinceLast = weeksBetween(last, s.now().UnixMilli())
	st.Due = st.WeeksSinceLast >= weeks
	st.WeeksUntilNext = max(0, weeks-st.WeeksSinceLast)
	return st, nil
}

func (s *Scheduler) intervalWeeks(ctx context.Context) (int, error) {
	var weeks int
	if _, err := s.settings.GetSetting(ctx, KeyWeeks, &weeks); err != nil {
		return 0, fmt.Errorf("reading %s: %w", KeyWeeks, err)
	}
	return weeks, nil
}

func (s *Scheduler) lastDate(ctx context.Context) (int64, error) {
	var last int64
	if _, err := s.settings.GetSetting(ctx, KeyLastDate, &last); err != nil {
		return 0, fmt.Errorf("reading %s: %w", KeyLastDate, err)
	}
	return last, nil
}

// weeksBetween counts whole weeks between two epoch-ms instants.
func weeksBetween(a, b int64) int {
	d := b - a
	if d < 0 {
		d = -d
	}
	return int(d / msPerWeek)
}

// Deloaded is an exercise with its load reduced for a deload session.
// OriginalWeight is set only when Weight was changed.
type Deloaded struct {
	models.Exercise
	OriginalWeight string `json:"originalWeight,omitempty"`
}

// ApplyDeload returns copies of exercises with every numeric load reduced by
// percent. Bodyweight, empty and weightless loads pass through unchanged.
// The input is not modified.
func ApplyDeload(exercises []models.Exercise, percent int) []Deloaded {
	factor := 1 - float64(percent)/100
	out := make([]Deloaded, len(exercises))
	for i, ex := range exercises {
		out[i] = Deloaded{Exercise: ex}
		if w, ok := weight.Scale(ex.Weight, factor); ok {
			out[i].Weight = w
			out[i].OriginalWeight = ex.Weight
		}
	}
	return out
}
