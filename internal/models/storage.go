package models

import "encoding/json"

// Collection names. They double as the field names of the backup document.
const (
	CollExercises              = "exercises"
	CollCategories             = "categories"
	CollExerciseCategoryRefs   = "exerciseCategoryRefs"
	CollWorkoutSessions        = "workoutSessions"
	CollWorkoutExerciseRecords = "workoutExerciseRecords"
	CollExerciseHistory        = "exerciseHistory"
	CollAppSettings            = "appSettings"
)

// Defaults applied when a field is left zero on creation.
const (
	DefaultProgressionThreshold = 3
	DefaultProgressionIncrement = 5
	DefaultCategoryColor        = "#4CAF50"
	DefaultRotationFrequency    = 3
	DefaultExercisesPerWorkout  = 5
)

// Exercise is a document in the exercises collection.
// Weight is free text such as "135 lbs", "60 kg" or "bodyweight".
type Exercise struct {
	ID                   int64  `json:"id,omitempty"`
	Name                 string `json:"name"`
	Sets                 string `json:"sets"`
	Reps                 string `json:"reps"`
	Weight               string `json:"weight"`
	Notes                string `json:"notes"`
	VideoLink            string `json:"videoLink"`
	ImagePath            string `json:"imagePath"`
	TimerSeconds         int    `json:"timerSeconds"`
	RestTimerSeconds     int    `json:"restTimerSeconds"`
	ProgressionThreshold int    `json:"progressionThreshold"`
	ProgressionIncrement int    `json:"progressionIncrement"`
	LastUsedDate         int64  `json:"lastUsedDate"`
	WorkoutsSinceLastUse int    `json:"workoutsSinceLastUse"`
}

// IsTimed reports whether the exercise is driven by a countdown rather than a load.
func (e Exercise) IsTimed() bool {
	return e.TimerSeconds > 0
}

// Category is a document in the categories collection.
type Category struct {
	ID                  int64  `json:"id,omitempty"`
	Name                string `json:"name"`
	Color               string `json:"color"`
	IsRandom            bool   `json:"isRandom"`
	RotationFrequency   int    `json:"rotationFrequency"`
	ExercisesPerWorkout int    `json:"exercisesPerWorkout"`
}

// ExerciseCategoryRef joins an exercise to a category.
type ExerciseCategoryRef struct {
	ID         int64 `json:"id,omitempty"`
	ExerciseID int64 `json:"exerciseId"`
	CategoryID int64 `json:"categoryId"`
}

// WorkoutSession is written once per completed workout.
// CategoryName is a snapshot; the category may later be renamed or deleted.
type WorkoutSession struct {
	ID             int64  `json:"id,omitempty"`
	Date           int64  `json:"date"`
	CategoryID     *int64 `json:"categoryId"`
	CategoryName   string `json:"categoryName"`
	Duration       int    `json:"duration"`
	CompletedCount int    `json:"completedCount"`
	TotalCount     int    `json:"totalCount"`
	IsDeloadWeek   bool   `json:"isDeloadWeek"`
}

// WorkoutExerciseRecord is one exercise line of a completed session.
type WorkoutExerciseRecord struct {
	ID               int64  `json:"id,omitempty"`
	WorkoutSessionID int64  `json:"workoutSessionId"`
	ExerciseName     string `json:"exerciseName"`
	Sets             string `json:"sets"`
	Reps             string `json:"reps"`
	Weight           string `json:"weight"`
	Notes            string `json:"notes"`
	TimerSeconds     int    `json:"timerSeconds"`
	Completed        bool   `json:"completed"`
	WorkoutNotes     string `json:"workoutNotes"`
}

// ExerciseHistory is an append-only event, one per exercise per completed session.
type ExerciseHistory struct {
	ID             int64  `json:"id,omitempty"`
	ExerciseID     int64  `json:"exerciseId"`
	ExerciseName   string `json:"exerciseName"`
	Date           int64  `json:"date"`
	Weight         string `json:"weight"`
	Reps           string `json:"reps"`
	Sets           string `json:"sets"`
	TimerSeconds   int    `json:"timerSeconds"`
	Notes          string `json:"notes"`
	PersonalRecord bool   `json:"personalRecord"`
	Completed      bool   `json:"completed"`
}

// AppSetting is a key/value pair in the appSettings collection.
type AppSetting struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}
