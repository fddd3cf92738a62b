package artifact

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWriteStageOutputProducesTimestampedFile(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	w := NewWriter(dir, start)

	out := StageOutput{
		Stage:    "stage3",
		Data:     map[string]int{"count": 3},
		Metadata: map[string]any{"run": "test"},
		Validation: ValidationResult{
			Stage:  "stage3",
			Passed: true,
		},
	}
	path, err := w.WriteStageOutput(3, out)
	if err != nil {
		t.Fatalf("WriteStageOutput: %v", err)
	}
	wantName := "stage3_output_20250601_123000.json"
	if filepath.Base(path) != wantName {
		t.Errorf("file name = %q, want %q", filepath.Base(path), wantName)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var got StageOutput
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Stage != "stage3" || !got.Validation.Passed {
		t.Errorf("round-tripped output = %+v", got)
	}
}

func TestWriteValidationSnapshotUsesSubdirectory(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	path, err := w.WriteValidationSnapshot(5, ValidationResult{Stage: "stage5", Passed: false})
	if err != nil {
		t.Fatalf("WriteValidationSnapshot: %v", err)
	}
	wantDir := filepath.Join(dir, "validation_snapshots")
	if filepath.Dir(path) != wantDir {
		t.Errorf("dir = %q, want %q", filepath.Dir(path), wantDir)
	}
	if filepath.Base(path) != "stage5_validation.json" {
		t.Errorf("name = %q, want stage5_validation.json", filepath.Base(path))
	}
}

func TestValidationResultAllPassed(t *testing.T) {
	v := ValidationResult{Checks: []ValidationCheck{{Passed: true}, {Passed: true}}}
	if !v.AllPassed() {
		t.Error("AllPassed() = false, want true when every check passed")
	}
	v.Checks = append(v.Checks, ValidationCheck{Passed: false})
	if v.AllPassed() {
		t.Error("AllPassed() = true, want false when a check failed")
	}
}
