package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/fittrack/internal/deload"
	"github.com/claude/fittrack/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
)

var errExerciseNotFound = errors.New("exercise not found")

// --- Tool definitions ---

var toolListExercises = mcp.NewTool("list_exercises",
	mcp.WithDescription("List exercises with their prescription (sets, reps, weight, timers) and rotation state. Optionally only the members of one category."),
	mcp.WithNumber("category_id", mcp.Description("Only list exercises in this category")),
)

var toolGetExerciseHistory = mcp.NewTool("get_exercise_history",
	mcp.WithDescription("Performance history of one exercise, newest first: date (epoch ms), weight, reps, sets, completion and personal-record flags."),
	mcp.WithNumber("exercise_id", mcp.Required(), mcp.Description("Exercise id")),
	mcp.WithNumber("limit", mcp.Description("Maximum entries to return. Defaults to 20.")),
)

var toolSuggestProgression = mcp.NewTool("suggest_progression",
	mcp.WithDescription("Progressive-overload state of an exercise: consecutive completions at the current weight, the threshold, the suggested next weight or time once the threshold is reached, and the personal record."),
	mcp.WithNumber("exercise_id", mcp.Required(), mcp.Description("Exercise id")),
)

var toolPlanWorkout = mcp.NewTool("plan_workout",
	mcp.WithDescription("Preview the exercises rotation would choose for a category right now, with deload-adjusted weights when a deload week is due. Nothing is saved."),
	mcp.WithNumber("category_id", mcp.Required(), mcp.Description("Category id")),
)

var toolGetDeloadStatus = mcp.NewTool("get_deload_status",
	mcp.WithDescription("Deload schedule: interval in weeks, reduction percent, last deload date, weeks since and until the next deload, and whether one is due."),
)

var toolListWorkoutSessions = mcp.NewTool("list_workout_sessions",
	mcp.WithDescription("Completed workouts, newest first: date (epoch ms), category, duration in minutes, completed and total exercise counts, deload flag."),
	mcp.WithNumber("limit", mcp.Description("Maximum sessions to return. Defaults to 10.")),
)

// --- Tool handlers ---

func (h *handlers) listExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var (
		exercises []models.Exercise
		err       error
	)
	if cid := req.GetInt("category_id", 0); cid > 0 {
		exercises, err = h.ds.CategoryExercises(ctx, int64(cid))
	} else {
		exercises, err = h.ds.Exercises(ctx)
	}
	if err != nil {
		h.log.Error("mcp list_exercises", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(exercises)
}

func (h *handlers) getExerciseHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("exercise_id")
	if err != nil {
		return mcp.NewToolResultError("exercise_id parameter is required"), nil
	}
	limit := req.GetInt("limit", 20)

	history, err := h.ds.ExerciseHistory(ctx, int64(id))
	if err != nil {
		h.log.Error("mcp get_exercise_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if limit > 0 && len(history) > limit {
		history = history[:limit]
	}
	return jsonResult(history)
}

// progressionReport is the suggest_progression result.
type progressionReport struct {
	ExerciseID     int64                   `json:"exerciseId"`
	Name           string                  `json:"name"`
	CurrentWeight  string                  `json:"currentWeight"`
	TimerSeconds   int                     `json:"timerSeconds,omitempty"`
	Streak         int                     `json:"streak"`
	Threshold      int                     `json:"threshold"`
	Ready          bool                    `json:"ready"`
	Suggestion     string                  `json:"suggestion,omitempty"`
	PersonalRecord *models.ExerciseHistory `json:"personalRecord,omitempty"`
}

func (h *handlers) suggestProgression(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("exercise_id")
	if err != nil {
		return mcp.NewToolResultError("exercise_id parameter is required"), nil
	}

	ex, err := h.ds.Exercise(ctx, int64(id))
	if err != nil {
		h.log.Error("mcp suggest_progression", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if ex == nil {
		return mcp.NewToolResultError(fmt.Sprintf("exercise %d not found", id)), nil
	}
	sug, err := h.ds.Progression(ctx, ex.ID)
	if err != nil {
		h.log.Error("mcp suggest_progression", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	return jsonResult(progressionReport{
		ExerciseID:     ex.ID,
		Name:           ex.Name,
		CurrentWeight:  ex.Weight,
		TimerSeconds:   ex.TimerSeconds,
		Streak:         sug.Streak,
		Threshold:      sug.Threshold,
		Ready:          sug.Suggestion != "",
		Suggestion:     sug.Suggestion,
		PersonalRecord: sug.PersonalRecord,
	})
}

// plannedExercise is one entry of a plan_workout result.
type plannedExercise struct {
	ID                   int64  `json:"id"`
	Name                 string `json:"name"`
	Sets                 string `json:"sets"`
	Reps                 string `json:"reps"`
	Weight               string `json:"weight"`
	OriginalWeight       string `json:"originalWeight,omitempty"`
	TimerSeconds         int    `json:"timerSeconds,omitempty"`
	WorkoutsSinceLastUse int    `json:"workoutsSinceLastUse"`
}

type workoutPlan struct {
	CategoryID    int64             `json:"categoryId"`
	IsDeloadWeek  bool              `json:"isDeloadWeek"`
	DeloadPercent int               `json:"deloadPercent,omitempty"`
	Exercises     []plannedExercise `json:"exercises"`
}

func (h *handlers) planWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cid, err := req.RequireInt("category_id")
	if err != nil {
		return mcp.NewToolResultError("category_id parameter is required"), nil
	}

	chosen, err := h.ds.PreviewCategory(ctx, int64(cid))
	if err != nil {
		h.log.Error("mcp plan_workout", "error", err)
		return mcp.NewToolResultError("planning failed: " + err.Error()), nil
	}
	st, err := h.ds.DeloadStatus(ctx)
	if err != nil {
		h.log.Error("mcp plan_workout", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	plan := workoutPlan{CategoryID: int64(cid), IsDeloadWeek: st.Due, Exercises: make([]plannedExercise, 0, len(chosen))}
	planned := make([]deload.Deloaded, len(chosen))
	for i, e := range chosen {
		planned[i] = deload.Deloaded{Exercise: e}
	}
	if st.Due {
		plan.DeloadPercent = st.Percent
		planned = deload.ApplyDeload(chosen, st.Percent)
	}
	for _, d := range planned {
		plan.Exercises = append(plan.Exercises, plannedExercise{
			ID:                   d.ID,
			Name:                 d.Name,
			Sets:                 d.Sets,
			Reps:                 d.Reps,
			Weight:               d.Weight,
			OriginalWeight:       d.OriginalWeight,
			TimerSeconds:         d.TimerSeconds,
			WorkoutsSinceLastUse: d.WorkoutsSinceLastUse,
		})
	}
	return jsonResult(plan)
}

func (h *handlers) getDeloadStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := h.ds.DeloadStatus(ctx)
	if err != nil {
		h.log.Error("mcp get_deload_status", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(st)
}

func (h *handlers) listWorkoutSessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 10)
	sessions, err := h.ds.WorkoutSessions(ctx)
	if err != nil {
		h.log.Error("mcp list_workout_sessions", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if limit > 0 && len(sessions) > limit {
		sessions = sessions[:limit]
	}
	return jsonResult(sessions)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

