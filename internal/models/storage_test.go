package models

import (
	"encoding/json"
	"testing"
)

// TestExerciseOptionalStringsAlwaysPresent verifies empty notes, video link
// and image path are all written, so every exported exercise has the same keys.
func TestExerciseOptionalStringsAlwaysPresent(t *testing.T) {
	raw, err := json.Marshal(Exercise{ID: 1, Name: "Rows"})
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"notes", "videoLink", "imagePath"} {
		if v, ok := doc[key]; !ok || v != "" {
			t.Errorf("%s = %v (present %v), want empty string", key, v, ok)
		}
	}
}
