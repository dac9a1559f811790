package storage

import (
	"embed"

	"github.com/claude/fittrack/internal/models"
)

// SchemaVersion is the newest schema the embedded migrations describe.
const SchemaVersion uint = 2

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Collection declares one object collection: where its key lives inside the
// record and which record fields are indexed.
type Collection struct {
	Name          string
	KeyPath       string
	AutoIncrement bool
	Indexes       []string
}

// HasIndex reports whether field is a declared index of the collection.
func (c Collection) HasIndex(field string) bool {
	for _, idx := range c.Indexes {
		if idx == field {
			return true
		}
	}
	return false
}

// Schema lists every collection the migrations create. Index names equal
// the indexed field name.
var Schema = []Collection{
	{Name: models.CollExercises, KeyPath: "id", AutoIncrement: true, Indexes: []string{"name", "lastUsedDate"}},
	{Name: models.CollCategories, KeyPath: "id", AutoIncrement: true, Indexes: []string{"name"}},
	{Name: models.CollExerciseCategoryRefs, KeyPath: "id", AutoIncrement: true, Indexes: []string{"exerciseId", "categoryId"}},
	{Name: models.CollWorkoutSessions, KeyPath: "id", AutoIncrement: true, Indexes: []string{"date", "categoryId"}},
	{Name: models.CollWorkoutExerciseRecords, KeyPath: "id", AutoIncrement: true, Indexes: []string{"workoutSessionId"}},
	{Name: models.CollExerciseHistory, KeyPath: "id", AutoIncrement: true, Indexes: []string{"exerciseId", "date"}},
	{Name: models.CollAppSettings, KeyPath: "key"},
}
