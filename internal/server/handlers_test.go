package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/claude/fittrack/internal/deload"
	"github.com/claude/fittrack/internal/models"
	"github.com/claude/fittrack/internal/repository"
	"github.com/claude/fittrack/internal/storage"
	"github.com/claude/fittrack/internal/workout"
)

const testAPIKey = "test-key"

func newTestServer(t *testing.T) (*Server, *repository.Repository) {
	t.Helper()
	db, err := storage.Open(context.Background(), filepath.Join(t.TempDir(), "fittrack.db"), storage.SchemaVersion)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := repository.New(db, log)
	scheduler := deload.NewScheduler(repo, nil)
	open := workout.NewRegistry()
	t.Cleanup(open.CloseAll)
	opts := Options{APIKey: testAPIKey, AllowedOrigin: "http://localhost:5173"}
	return New(repo, workout.NewService(repo, scheduler, log), scheduler, open, opts, log), repo
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("X-API-Key", testAPIKey)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dst); err != nil {
		t.Fatalf("decode error: %v", err)
	}
}

// TestHealthz verifies the health endpoint answers ok on an open database.
func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

// TestExerciseCRUD verifies create, read, update and delete of exercises and
// the defaults applied on create.
func TestExerciseCRUD(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/v1/exercises", models.Exercise{Name: "Bench Press", Weight: "135 lbs"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201: %s", rec.Code, rec.Body)
	}
	var created models.Exercise
	decodeInto(t, rec, &created)
	if created.ID == 0 || created.ProgressionThreshold != models.DefaultProgressionThreshold {
		t.Errorf("created = %+v, want id and default threshold", created)
	}

	path := fmt.Sprintf("/api/v1/exercises/%d", created.ID)
	created.Weight = "140 lbs"
	if rec := do(t, s, http.MethodPut, path, created); rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, want 200", rec.Code)
	}

	rec = do(t, s, http.MethodGet, path, nil)
	var got models.Exercise
	decodeInto(t, rec, &got)
	if got.Weight != "140 lbs" {
		t.Errorf("weight = %q, want %q", got.Weight, "140 lbs")
	}

	rec = do(t, s, http.MethodGet, "/api/v1/exercises?name=Bench%20Press", nil)
	var byName []models.Exercise
	decodeInto(t, rec, &byName)
	if len(byName) != 1 || byName[0].ID != created.ID {
		t.Errorf("by name = %+v", byName)
	}

	if rec := do(t, s, http.MethodDelete, path, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, path, nil); rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", rec.Code)
	}
}

// TestUpdateExerciseKeepsRotationState verifies a partial update leaves the
// rotation counters alone and fills zero progression settings with defaults.
func TestUpdateExerciseKeepsRotationState(t *testing.T) {
	s, repo := newTestServer(t)
	ctx := context.Background()
	id, _ := repo.AddExercise(ctx, models.Exercise{Name: "Bench", Weight: "135 lbs"})
	e, _ := repo.GetExercise(ctx, id)
	e.LastUsedDate = 1700000000000
	e.WorkoutsSinceLastUse = 4
	if err := repo.UpdateExercise(ctx, *e); err != nil {
		t.Fatal(err)
	}

	rec := do(t, s, http.MethodPut, fmt.Sprintf("/api/v1/exercises/%d", id), map[string]any{
		"name":                 "Bench",
		"weight":               "140 lbs",
		"lastUsedDate":         0,
		"workoutsSinceLastUse": 0,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, want 200: %s", rec.Code, rec.Body)
	}
	var resp models.Exercise
	decodeInto(t, rec, &resp)

	got, _ := repo.GetExercise(ctx, id)
	for _, ex := range []models.Exercise{resp, *got} {
		if ex.Weight != "140 lbs" {
			t.Errorf("weight = %q, want %q", ex.Weight, "140 lbs")
		}
		if ex.LastUsedDate != 1700000000000 || ex.WorkoutsSinceLastUse != 4 {
			t.Errorf("rotation = (%d, %d), want (1700000000000, 4)", ex.LastUsedDate, ex.WorkoutsSinceLastUse)
		}
		if ex.ProgressionThreshold != models.DefaultProgressionThreshold || ex.ProgressionIncrement != models.DefaultProgressionIncrement {
			t.Errorf("progression = (%d, %d), want defaults", ex.ProgressionThreshold, ex.ProgressionIncrement)
		}
	}
}

// TestImportRequiresAPIKey verifies an import without the right key, or a
// cross-origin preflight for one, is refused and changes nothing.
func TestImportRequiresAPIKey(t *testing.T) {
	s, repo := newTestServer(t)
	ctx := context.Background()
	repo.AddExercise(ctx, models.Exercise{Name: "Rows"})

	tests := []struct {
		name string
		key  string
		want int
	}{
		{"no key", "", http.StatusUnauthorized},
		{"wrong key", "guess", http.StatusForbidden},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/import", strings.NewReader("{}"))
		if tt.key != "" {
			req.Header.Set("X-API-Key", tt.key)
		}
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		if rec.Code != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.name, rec.Code, tt.want)
		}
	}

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/import", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code == http.StatusNoContent || rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Errorf("cross-origin preflight = %d, allow-origin %q; want refused", rec.Code, rec.Header().Get("Access-Control-Allow-Origin"))
	}

	if es, _ := repo.GetAllExercises(ctx); len(es) != 1 {
		t.Errorf("exercises = %d, want 1", len(es))
	}
}

// TestHealthzWithoutKey verifies health and metrics stay open without a key.
func TestHealthzWithoutKey(t *testing.T) {
	s, _ := newTestServer(t)
	for _, path := range []string{"/healthz", "/metrics"} {
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rec.Code)
		}
	}
}

// TestExerciseValidation verifies bad input is answered with 400.
func TestExerciseValidation(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{"missing name", http.MethodPost, "/api/v1/exercises", models.Exercise{Weight: "10 lbs"}},
		{"malformed JSON", http.MethodPost, "/api/v1/exercises", "{"},
		{"bad id", http.MethodGet, "/api/v1/exercises/abc", nil},
		{"unknown category", http.MethodPut, "/api/v1/exercises/1/categories", map[string]any{"categoryIds": []int64{9}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := do(t, s, tt.method, tt.path, tt.body); rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400: %s", rec.Code, rec.Body)
			}
		})
	}
}

// TestDeleteCategoryInUse verifies that a category with members is refused
// with 409 unless force is given.
func TestDeleteCategoryInUse(t *testing.T) {
	s, repo := newTestServer(t)
	ctx := context.Background()
	eid, _ := repo.AddExercise(ctx, models.Exercise{Name: "Squats"})
	cid, _ := repo.AddCategory(ctx, models.Category{Name: "Legs"})

	rec := do(t, s, http.MethodPost, fmt.Sprintf("/api/v1/categories/%d/exercises", cid), map[string]int64{"exerciseId": eid})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add member status = %d, want 201: %s", rec.Code, rec.Body)
	}

	path := fmt.Sprintf("/api/v1/categories/%d", cid)
	if rec := do(t, s, http.MethodDelete, path, nil); rec.Code != http.StatusConflict {
		t.Fatalf("delete status = %d, want 409", rec.Code)
	}
	if c, _ := repo.GetCategory(ctx, cid); c == nil {
		t.Fatal("category deleted despite conflict")
	}
	if rec := do(t, s, http.MethodDelete, path+"?force=true", nil); rec.Code != http.StatusNoContent {
		t.Fatalf("force delete status = %d, want 204", rec.Code)
	}
	if cats, _ := repo.GetExerciseCategories(ctx, eid); len(cats) != 0 {
		t.Errorf("exercise still in %d categories", len(cats))
	}
}

// TestImportMalformed verifies that an unparseable backup is answered with
// 400 and leaves the data untouched.
func TestImportMalformed(t *testing.T) {
	s, repo := newTestServer(t)
	ctx := context.Background()
	repo.AddExercise(ctx, models.Exercise{Name: "Rows"})

	rec := do(t, s, http.MethodPost, "/api/v1/import", `{"exercises": [`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if es, _ := repo.GetAllExercises(ctx); len(es) != 1 {
		t.Errorf("exercises = %d, want 1", len(es))
	}
}

// TestImportClosesOpenWorkouts verifies an import abandons open workouts so
// none can be finished against the replaced data.
func TestImportClosesOpenWorkouts(t *testing.T) {
	s, repo := newTestServer(t)
	ctx := context.Background()
	id, _ := repo.AddExercise(ctx, models.Exercise{Name: "Rows", Weight: "95 lbs"})

	rec := do(t, s, http.MethodPost, "/api/v1/workouts", workout.Plan{ExerciseIDs: []int64{id}})
	var v workout.View
	decodeInto(t, rec, &v)
	if s.open.Len() != 1 {
		t.Fatalf("open workouts = %d, want 1", s.open.Len())
	}

	if rec := do(t, s, http.MethodPost, "/api/v1/import", "{}"); rec.Code != http.StatusOK {
		t.Fatalf("import status = %d, want 200: %s", rec.Code, rec.Body)
	}
	if s.open.Len() != 0 {
		t.Errorf("open workouts after import = %d, want 0", s.open.Len())
	}
	if rec := do(t, s, http.MethodPost, "/api/v1/workouts/"+v.ID+"/finish", nil); rec.Code != http.StatusNotFound {
		t.Errorf("finish after import status = %d, want 404", rec.Code)
	}
	if sessions, _ := repo.GetAllWorkoutSessions(ctx); len(sessions) != 0 {
		t.Errorf("sessions = %d, want 0", len(sessions))
	}
}

// TestExportImport verifies an exported backup imports into another database
// with the same counts.
func TestExportImport(t *testing.T) {
	src, repo := newTestServer(t)
	if _, err := repo.SeedSampleData(context.Background()); err != nil {
		t.Fatal(err)
	}
	rec := do(t, src, http.MethodGet, "/api/v1/export", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export status = %d, want 200", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment;") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	backup := rec.Body.String()

	want, _ := repo.BackupInfo(context.Background())

	dst, _ := newTestServer(t)
	rec = do(t, dst, http.MethodPost, "/api/v1/import", backup)
	if rec.Code != http.StatusOK {
		t.Fatalf("import status = %d, want 200: %s", rec.Code, rec.Body)
	}
	var got models.BackupInfo
	decodeInto(t, rec, &got)
	if got != want {
		t.Errorf("info = %+v, want %+v", got, want)
	}
}

// TestWorkoutLifecycle verifies start, edits and finish over HTTP, and that
// a finished workout is no longer open.
func TestWorkoutLifecycle(t *testing.T) {
	s, repo := newTestServer(t)
	ctx := context.Background()
	bench, _ := repo.AddExercise(ctx, models.Exercise{Name: "Bench Press", Weight: "135 lbs"})
	dips, _ := repo.AddExercise(ctx, models.Exercise{Name: "Dips", Weight: "bodyweight"})

	rec := do(t, s, http.MethodPost, "/api/v1/workouts", workout.Plan{ExerciseIDs: []int64{bench, dips}})
	if rec.Code != http.StatusCreated {
		t.Fatalf("start status = %d, want 201: %s", rec.Code, rec.Body)
	}
	var v workout.View
	decodeInto(t, rec, &v)
	if v.TotalCount != 2 || v.CategoryName != workout.CustomCategoryName {
		t.Fatalf("view = %+v", v)
	}
	base := "/api/v1/workouts/" + v.ID

	if rec := do(t, s, http.MethodPost, fmt.Sprintf("%s/exercises/%d/complete", base, bench), nil); rec.Code != http.StatusOK {
		t.Fatalf("complete status = %d", rec.Code)
	}
	rec = do(t, s, http.MethodPut, fmt.Sprintf("%s/exercises/%d/weight", base, bench), map[string]float64{"delta": 5})
	decodeInto(t, rec, &v)
	if v.Exercises[0].CurrentWeight != "140 lbs" || v.CompletedCount != 1 {
		t.Errorf("after edits = %+v", v.Exercises[0])
	}
	if rec := do(t, s, http.MethodPost, fmt.Sprintf("%s/exercises/%d/timer/start", base, dips), nil); rec.Code != http.StatusBadRequest {
		t.Errorf("timer on untimed exercise status = %d, want 400", rec.Code)
	}
	if rec := do(t, s, http.MethodPut, fmt.Sprintf("%s/exercises/%d/notes", base, 999), map[string]string{"notes": "x"}); rec.Code != http.StatusNotFound {
		t.Errorf("notes on foreign exercise status = %d, want 404", rec.Code)
	}

	rec = do(t, s, http.MethodPost, base+"/finish", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("finish status = %d, want 200: %s", rec.Code, rec.Body)
	}
	var ws models.WorkoutSession
	decodeInto(t, rec, &ws)
	if ws.CompletedCount != 1 || ws.TotalCount != 2 {
		t.Errorf("session = %+v", ws)
	}

	if rec := do(t, s, http.MethodGet, base, nil); rec.Code != http.StatusNotFound {
		t.Errorf("get finished workout status = %d, want 404", rec.Code)
	}
	rec = do(t, s, http.MethodGet, fmt.Sprintf("/api/v1/sessions/%d/records", ws.ID), nil)
	var recs []models.WorkoutExerciseRecord
	decodeInto(t, rec, &recs)
	if len(recs) != 2 {
		t.Errorf("records = %d, want 2", len(recs))
	}
}

// TestAbandonWorkout verifies that abandoning saves nothing.
func TestAbandonWorkout(t *testing.T) {
	s, repo := newTestServer(t)
	ctx := context.Background()
	id, _ := repo.AddExercise(ctx, models.Exercise{Name: "Plank", TimerSeconds: 60})

	rec := do(t, s, http.MethodPost, "/api/v1/workouts", workout.Plan{ExerciseIDs: []int64{id}})
	var v workout.View
	decodeInto(t, rec, &v)
	do(t, s, http.MethodPost, fmt.Sprintf("/api/v1/workouts/%s/exercises/%d/timer/start", v.ID, id), nil)

	if rec := do(t, s, http.MethodDelete, "/api/v1/workouts/"+v.ID, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("abandon status = %d, want 204", rec.Code)
	}
	if s.open.Len() != 0 {
		t.Errorf("open workouts = %d, want 0", s.open.Len())
	}
	if sessions, _ := repo.GetAllWorkoutSessions(ctx); len(sessions) != 0 {
		t.Errorf("sessions = %d, want 0", len(sessions))
	}
}

// TestStartWorkoutErrors verifies plan errors map to 400 and 404.
func TestStartWorkoutErrors(t *testing.T) {
	s, _ := newTestServer(t)
	if rec := do(t, s, http.MethodPost, "/api/v1/workouts", workout.Plan{}); rec.Code != http.StatusBadRequest {
		t.Errorf("empty plan status = %d, want 400", rec.Code)
	}
	missing := int64(77)
	if rec := do(t, s, http.MethodPost, "/api/v1/workouts", workout.Plan{CategoryID: &missing}); rec.Code != http.StatusNotFound {
		t.Errorf("missing category status = %d, want 404", rec.Code)
	}
}

// TestDeloadEndpoints verifies configuration round-trips and invalid values
// are rejected.
func TestDeloadEndpoints(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodPut, "/api/v1/deload", map[string]int{"weeks": 4, "percent": 60})
	if rec.Code != http.StatusOK {
		t.Fatalf("configure status = %d, want 200: %s", rec.Code, rec.Body)
	}
	var st deload.Status
	decodeInto(t, rec, &st)
	if !st.Enabled || st.IntervalWeeks != 4 || st.Percent != 60 {
		t.Errorf("status = %+v", st)
	}

	if rec := do(t, s, http.MethodPut, "/api/v1/deload", map[string]int{"weeks": 4, "percent": 0}); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid percent status = %d, want 400", rec.Code)
	}
}

// TestSettingsEndpoints verifies arbitrary JSON values are stored by key.
func TestSettingsEndpoints(t *testing.T) {
	s, _ := newTestServer(t)

	if rec := do(t, s, http.MethodGet, "/api/v1/settings/theme", nil); rec.Code != http.StatusNotFound {
		t.Errorf("missing setting status = %d, want 404", rec.Code)
	}
	if rec := do(t, s, http.MethodPut, "/api/v1/settings/theme", map[string]string{"mode": "dark"}); rec.Code != http.StatusOK {
		t.Fatalf("put status = %d, want 200", rec.Code)
	}
	rec := do(t, s, http.MethodGet, "/api/v1/settings/theme", nil)
	var got struct {
		Value map[string]string `json:"value"`
	}
	decodeInto(t, rec, &got)
	if got.Value["mode"] != "dark" {
		t.Errorf("value = %v, want mode=dark", got.Value)
	}
}

// TestStatusFor verifies the error to status mapping.
func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("x: %w", errNotFound), http.StatusNotFound},
		{workout.ErrSessionNotFound, http.StatusNotFound},
		{repository.ErrImportParse, http.StatusBadRequest},
		{repository.ErrMissingReference, http.StatusBadRequest},
		{repository.ErrCategoryInUse, http.StatusConflict},
		{storage.ErrConstraintViolation, http.StatusConflict},
		{workout.ErrSessionClosed, http.StatusConflict},
		{&repository.PartialError{Op: "import", Completed: 3, Err: errors.New("disk full")}, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
