package deload

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/claude/fittrack/internal/models"
)

// memSettings keeps settings as JSON, the way the repository stores them.
type memSettings map[string]json.RawMessage

func (m memSettings) GetSetting(_ context.Context, key string, dst any) (bool, error) {
	raw, ok := m[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (m memSettings) SetSetting(_ context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m[key] = raw
	return nil
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

// TestShouldDeloadWindow walks the first call, an immediate second call and a
// call two weeks later.
func TestShouldDeloadWindow(t *testing.T) {
	ctx := context.Background()
	settings := memSettings{}
	c := &clock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	s := NewScheduler(settings, c.now)

	if err := settings.SetSetting(ctx, KeyWeeks, 2); err != nil {
		t.Fatal(err)
	}

	due, err := s.ShouldDeload(ctx)
	if err != nil || due {
		t.Fatalf("first ShouldDeload = %v, %v; want false, nil", due, err)
	}
	var last int64
	if ok, _ := settings.GetSetting(ctx, KeyLastDate, &last); !ok || last != c.t.UnixMilli() {
		t.Fatalf("lastDeloadDate = %d (set %v), want %d", last, ok, c.t.UnixMilli())
	}

	if due, _ := s.ShouldDeload(ctx); due {
		t.Error("ShouldDeload 0 weeks later = true, want false")
	}

	c.t = c.t.Add(13 * 24 * time.Hour)
	if due, _ := s.ShouldDeload(ctx); due {
		t.Error("ShouldDeload after 13 days = true, want false")
	}

	c.t = c.t.Add(24 * time.Hour)
	if due, _ := s.ShouldDeload(ctx); !due {
		t.Error("ShouldDeload after 2 weeks = false, want true")
	}
}

// TestShouldDeloadDisabled verifies that a zero interval never triggers and
// never starts a window.
func TestShouldDeloadDisabled(t *testing.T) {
	ctx := context.Background()
	settings := memSettings{}
	s := NewScheduler(settings, nil)

	due, err := s.ShouldDeload(ctx)
	if err != nil || due {
		t.Fatalf("ShouldDeload = %v, %v; want false, nil", due, err)
	}
	if _, ok := settings[KeyLastDate]; ok {
		t.Error("lastDeloadDate written while deloads are disabled")
	}
}

// TestMarkCompletedRestartsWindow verifies that finishing a deload resets
// the clock.
func TestMarkCompletedRestartsWindow(t *testing.T) {
	ctx := context.Background()
	settings := memSettings{}
	c := &clock{t: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}
	s := NewScheduler(settings, c.now)

	settings.SetSetting(ctx, KeyWeeks, 1)
	settings.SetSetting(ctx, KeyLastDate, c.t.Add(-30*24*time.Hour).UnixMilli())

	if due, _ := s.ShouldDeload(ctx); !due {
		t.Fatal("ShouldDeload = false, want true")
	}
	if err := s.MarkCompleted(ctx); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}
	if due, _ := s.ShouldDeload(ctx); due {
		t.Error("ShouldDeload after MarkCompleted = true, want false")
	}
}

// TestConfigureAndStatus verifies validation, window start and the status
// arithmetic.
func TestConfigureAndStatus(t *testing.T) {
	ctx := context.Background()
	settings := memSettings{}
	c := &clock{t: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}
	s := NewScheduler(settings, c.now)

	if err := s.Configure(ctx, -1, 50); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Configure(-1, 50) error = %v, want ErrInvalidConfig", err)
	}
	if err := s.Configure(ctx, 4, 0); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Configure(4, 0) error = %v, want ErrInvalidConfig", err)
	}

	if err := s.Configure(ctx, 4, 40); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	c.t = c.t.Add(15 * 24 * time.Hour)

	st, err := s.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	want := Status{
		Enabled:        true,
		IntervalWeeks:  4,
		Percent:        40,
		LastDeloadDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC).UnixMilli(),
		WeeksSinceLast: 2,
		WeeksUntilNext: 2,
	}
	if st != want {
		t.Errorf("Status() = %+v, want %+v", st, want)
	}

	p, _ := s.Percent(ctx)
	if p != 40 {
		t.Errorf("Percent() = %d, want 40", p)
	}
}

// TestPercentDefault verifies the default reduction.
func TestPercentDefault(t *testing.T) {
	p, err := NewScheduler(memSettings{}, nil).Percent(context.Background())
	if err != nil || p != DefaultPercent {
		t.Errorf("Percent() = %d, %v; want %d, nil", p, err, DefaultPercent)
	}
}

// TestApplyDeload verifies reduced copies and untouched bodyweight loads.
func TestApplyDeload(t *testing.T) {
	in := []models.Exercise{
		{ID: 1, Weight: "200 lbs"},
		{ID: 2, Weight: "bodyweight"},
		{ID: 3, Weight: "75 kg"},
		{ID: 4, Weight: ""},
	}
	got := ApplyDeload(in, 50)

	tests := []struct {
		weight, original string
	}{
		{"100 lbs", "200 lbs"},
		{"bodyweight", ""},
		{"37.5 kg", "75 kg"},
		{"", ""},
	}
	for i, tt := range tests {
		if got[i].Weight != tt.weight || got[i].OriginalWeight != tt.original {
			t.Errorf("exercise %d = %q (was %q), want %q (was %q)",
				got[i].ID, got[i].Weight, got[i].OriginalWeight, tt.weight, tt.original)
		}
	}
	if in[0].Weight != "200 lbs" {
		t.Errorf("input mutated: %q", in[0].Weight)
	}
}
