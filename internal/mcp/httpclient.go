package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/claude/fittrack/internal/deload"
	"github.com/claude/fittrack/internal/models"
	"github.com/claude/fittrack/internal/workout"
)

// errRemoteNotFound is a 404 from the server.
var errRemoteNotFound = errors.New("not found")

// HTTPClient implements DataSource by calling the fittrack REST API.
// Used when a fittrack server already has the database open on this machine.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL. apiKey is
// sent in X-API-Key on every request.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusNotFound:
		return nil, fmt.Errorf("httpclient: %s: %w", path, errRemoteNotFound)
	default:
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}
}

// getJSON fetches path and decodes the response into a T.
func getJSON[T any](ctx context.Context, c *HTTPClient, path, what string) (T, error) {
	var out T
	body, err := c.get(ctx, path)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("httpclient: decode %s: %w", what, err)
	}
	return out, nil
}

func (c *HTTPClient) Exercises(ctx context.Context) ([]models.Exercise, error) {
	return getJSON[[]models.Exercise](ctx, c, "/api/v1/exercises", "exercises")
}

// Exercise returns nil when the server has no such exercise.
func (c *HTTPClient) Exercise(ctx context.Context, id int64) (*models.Exercise, error) {
	e, err := getJSON[models.Exercise](ctx, c, fmt.Sprintf("/api/v1/exercises/%d", id), "exercise")
	if errors.Is(err, errRemoteNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *HTTPClient) ExerciseHistory(ctx context.Context, exerciseID int64) ([]models.ExerciseHistory, error) {
	return getJSON[[]models.ExerciseHistory](ctx, c, fmt.Sprintf("/api/v1/exercises/%d/history", exerciseID), "history")
}

func (c *HTTPClient) Progression(ctx context.Context, exerciseID int64) (workout.Suggestion, error) {
	s, err := getJSON[workout.Suggestion](ctx, c, fmt.Sprintf("/api/v1/exercises/%d/progression", exerciseID), "progression")
	if errors.Is(err, errRemoteNotFound) {
		return s, errExerciseNotFound
	}
	return s, err
}

func (c *HTTPClient) Categories(ctx context.Context) ([]models.Category, error) {
	return getJSON[[]models.Category](ctx, c, "/api/v1/categories", "categories")
}

func (c *HTTPClient) CategoryExercises(ctx context.Context, categoryID int64) ([]models.Exercise, error) {
	return getJSON[[]models.Exercise](ctx, c, fmt.Sprintf("/api/v1/categories/%d/exercises", categoryID), "category exercises")
}

func (c *HTTPClient) PreviewCategory(ctx context.Context, categoryID int64) ([]models.Exercise, error) {
	es, err := getJSON[[]models.Exercise](ctx, c, fmt.Sprintf("/api/v1/categories/%d/preview", categoryID), "preview")
	if errors.Is(err, errRemoteNotFound) {
		return nil, fmt.Errorf("%w: %d", workout.ErrCategoryNotFound, categoryID)
	}
	return es, err
}

func (c *HTTPClient) DeloadStatus(ctx context.Context) (deload.Status, error) {
	return getJSON[deload.Status](ctx, c, "/api/v1/deload", "deload status")
}

func (c *HTTPClient) WorkoutSessions(ctx context.Context) ([]models.WorkoutSession, error) {
	return getJSON[[]models.WorkoutSession](ctx, c, "/api/v1/sessions", "sessions")
}
