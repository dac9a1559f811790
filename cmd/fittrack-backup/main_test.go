package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/claude/fittrack/internal/models"
)

// closeRecorder is an io.WriteCloser whose Close result is fixed.
type closeRecorder struct {
	bytes.Buffer
	closeErr error
	closed   bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return c.closeErr
}

// TestWriteBackup verifies the backup is written as JSON and the file closed.
func TestWriteBackup(t *testing.T) {
	wc := &closeRecorder{}
	snap := models.Snapshot{Exercises: []models.Exercise{{ID: 1, Name: "Rows"}}}
	if err := writeBackup(wc, snap); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !wc.closed {
		t.Error("file not closed")
	}
	var got models.Snapshot
	if err := json.Unmarshal(wc.Bytes(), &got); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(got.Exercises) != 1 || got.Exercises[0].Name != "Rows" {
		t.Errorf("exercises = %+v", got.Exercises)
	}
}

// TestWriteBackupCloseError verifies a failed close is reported.
func TestWriteBackupCloseError(t *testing.T) {
	diskFull := errors.New("no space left on device")
	wc := &closeRecorder{closeErr: diskFull}
	if err := writeBackup(wc, models.Snapshot{}); !errors.Is(err, diskFull) {
		t.Errorf("err = %v, want %v", err, diskFull)
	}
}
