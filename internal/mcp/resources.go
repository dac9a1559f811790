package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/claude/fittrack/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
)

// recentWindow is how far back the recent_workouts resource looks.
const recentWindow = 14 * 24 * time.Hour

// catalogCategory is one category of the exercise catalog with its members.
type catalogCategory struct {
	models.Category
	Exercises []models.Exercise `json:"exercises"`
}

type catalog struct {
	Categories    []catalogCategory `json:"categories"`
	Uncategorized []models.Exercise `json:"uncategorized"`
}

func (h *handlers) exerciseCatalog(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	categories, err := h.ds.Categories(ctx)
	if err != nil {
		return nil, err
	}
	all, err := h.ds.Exercises(ctx)
	if err != nil {
		return nil, err
	}

	out := catalog{Categories: make([]catalogCategory, 0, len(categories)), Uncategorized: []models.Exercise{}}
	member := make(map[int64]bool)
	for _, c := range categories {
		exercises, err := h.ds.CategoryExercises(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		for _, e := range exercises {
			member[e.ID] = true
		}
		out.Categories = append(out.Categories, catalogCategory{Category: c, Exercises: exercises})
	}
	for _, e := range all {
		if !member[e.ID] {
			out.Uncategorized = append(out.Uncategorized, e)
		}
	}

	return jsonContents(req, out)
}

func (h *handlers) recentWorkouts(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	sessions, err := h.ds.WorkoutSessions(ctx)
	if err != nil {
		return nil, err
	}

	since := h.now().Add(-recentWindow).UnixMilli()
	recent := []models.WorkoutSession{}
	for _, s := range sessions {
		if s.Date >= since {
			recent = append(recent, s)
		}
	}

	return jsonContents(req, recent)
}

func jsonContents(req mcp.ReadResourceRequest, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
