package models

// Snapshot is the full backup document. Field names match the collection
// names so a file exported on one device imports unchanged on another.
type Snapshot struct {
	Exercises              []Exercise              `json:"exercises"`
	Categories             []Category              `json:"categories"`
	ExerciseCategoryRefs   []ExerciseCategoryRef   `json:"exerciseCategoryRefs"`
	WorkoutSessions        []WorkoutSession        `json:"workoutSessions"`
	WorkoutExerciseRecords []WorkoutExerciseRecord `json:"workoutExerciseRecords"`
	ExerciseHistory        []ExerciseHistory       `json:"exerciseHistory"`
}

// BackupInfo summarises how many records each collection holds.
type BackupInfo struct {
	Exercises              int   `json:"exercises"`
	Categories             int   `json:"categories"`
	ExerciseCategoryRefs   int   `json:"exerciseCategoryRefs"`
	WorkoutSessions        int   `json:"workoutSessions"`
	WorkoutExerciseRecords int   `json:"workoutExerciseRecords"`
	ExerciseHistory        int   `json:"exerciseHistory"`
	TotalWorkoutMinutes    int   `json:"totalWorkoutMinutes"`
	LastWorkoutDate        int64 `json:"lastWorkoutDate"`
}
