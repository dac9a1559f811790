package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/claude/fittrack/internal/metrics"
	"github.com/claude/fittrack/internal/models"
)

// backupCollections is the order collections are cleared and refilled in.
var backupCollections = []string{
	models.CollExercises,
	models.CollCategories,
	models.CollExerciseCategoryRefs,
	models.CollWorkoutSessions,
	models.CollWorkoutExerciseRecords,
	models.CollExerciseHistory,
}

// ExportData returns every record except settings. Sessions are newest first.
func (r *Repository) ExportData(ctx context.Context) (models.Snapshot, error) {
	var (
		snap models.Snapshot
		err  error
	)
	if snap.Exercises, err = r.GetAllExercises(ctx); err != nil {
		return models.Snapshot{}, err
	}
	if snap.Categories, err = r.GetAllCategories(ctx); err != nil {
		return models.Snapshot{}, err
	}
	if snap.ExerciseCategoryRefs, err = getAll[models.ExerciseCategoryRef](ctx, r.db, models.CollExerciseCategoryRefs); err != nil {
		return models.Snapshot{}, fmt.Errorf("listing relationships: %w", err)
	}
	if snap.WorkoutSessions, err = r.GetAllWorkoutSessions(ctx); err != nil {
		return models.Snapshot{}, err
	}
	if snap.WorkoutExerciseRecords, err = getAll[models.WorkoutExerciseRecord](ctx, r.db, models.CollWorkoutExerciseRecords); err != nil {
		return models.Snapshot{}, fmt.Errorf("listing workout records: %w", err)
	}
	if snap.ExerciseHistory, err = getAll[models.ExerciseHistory](ctx, r.db, models.CollExerciseHistory); err != nil {
		return models.Snapshot{}, fmt.Errorf("listing exercise history: %w", err)
	}
	return snap, nil
}

// ParseSnapshot decodes a backup document. Missing collections become empty.
// Any decoding problem, including data after the document, is reported as
// ErrImportParse.
func ParseSnapshot(rd io.Reader) (models.Snapshot, error) {
	dec := json.NewDecoder(rd)
	var snap *models.Snapshot
	if err := dec.Decode(&snap); err != nil {
		return models.Snapshot{}, fmt.Errorf("%w: %w", ErrImportParse, err)
	}
	if snap == nil {
		return models.Snapshot{}, fmt.Errorf("%w: backup is empty", ErrImportParse)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return models.Snapshot{}, fmt.Errorf("%w: unexpected data after backup document", ErrImportParse)
	}
	normalize(snap)
	return *snap, nil
}

func normalize(s *models.Snapshot) {
	if s.Exercises == nil {
		s.Exercises = []models.Exercise{}
	}
	if s.Categories == nil {
		s.Categories = []models.Category{}
	}
	if s.ExerciseCategoryRefs == nil {
		s.ExerciseCategoryRefs = []models.ExerciseCategoryRef{}
	}
	if s.WorkoutSessions == nil {
		s.WorkoutSessions = []models.WorkoutSession{}
	}
	if s.WorkoutExerciseRecords == nil {
		s.WorkoutExerciseRecords = []models.WorkoutExerciseRecord{}
	}
	if s.ExerciseHistory == nil {
		s.ExerciseHistory = []models.ExerciseHistory{}
	}
}

// ImportData replaces all data except settings with snap: the six
// collections are cleared, then refilled in order with their ids kept.
// It stops at the first failure and does not roll back; a failure after the
// first clear is a *PartialError.
func (r *Repository) ImportData(ctx context.Context, snap models.Snapshot) error {
	completed := 0
	for _, coll := range backupCollections {
		if err := r.db.Clear(ctx, coll); err != nil {
			return r.stopped(metrics.SeqImport, completed, fmt.Errorf("clearing %s: %w", coll, err))
		}
		completed++
	}

	add := func(coll string, record any) error {
		if _, err := r.db.Add(ctx, coll, record); err != nil {
			return r.partial(metrics.SeqImport, completed, fmt.Errorf("importing %s: %w", coll, err))
		}
		completed++
		return nil
	}
	for _, v := range snap.Exercises {
		if err := add(models.CollExercises, v); err != nil {
			return err
		}
	}
	for _, v := range snap.Categories {
		if err := add(models.CollCategories, v); err != nil {
			return err
		}
	}
	for _, v := range snap.ExerciseCategoryRefs {
		if err := add(models.CollExerciseCategoryRefs, v); err != nil {
			return err
		}
	}
	for _, v := range snap.WorkoutSessions {
		if err := add(models.CollWorkoutSessions, v); err != nil {
			return err
		}
	}
	for _, v := range snap.WorkoutExerciseRecords {
		if err := add(models.CollWorkoutExerciseRecords, v); err != nil {
			return err
		}
	}
	for _, v := range snap.ExerciseHistory {
		if err := add(models.CollExerciseHistory, v); err != nil {
			return err
		}
	}

	r.logger.Info("import complete",
		"exercises", len(snap.Exercises),
		"categories", len(snap.Categories),
		"sessions", len(snap.WorkoutSessions),
		"history", len(snap.ExerciseHistory),
	)
	return nil
}

// BackupInfo counts the records a backup would contain.
func (r *Repository) BackupInfo(ctx context.Context) (models.BackupInfo, error) {
	var info models.BackupInfo
	counts := []*int{
		&info.Exercises,
		&info.Categories,
		&info.ExerciseCategoryRefs,
		&info.WorkoutSessions,
		&info.WorkoutExerciseRecords,
		&info.ExerciseHistory,
	}
	for i, coll := range backupCollections {
		n, err := r.db.Count(ctx, coll)
		if err != nil {
			return models.BackupInfo{}, fmt.Errorf("counting %s: %w", coll, err)
		}
		*counts[i] = n
	}

	sessions, err := r.GetAllWorkoutSessions(ctx)
	if err != nil {
		return models.BackupInfo{}, err
	}
	for _, s := range sessions {
		info.TotalWorkoutMinutes += s.Duration
		info.LastWorkoutDate = max(info.LastWorkoutDate, s.Date)
	}
	return info, nil
}
