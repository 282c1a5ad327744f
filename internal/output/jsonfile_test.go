package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")

	rep := NewReport("run-9", "http://localhost:8080", 0, sampleResult(), sampleStats())
	if err := WriteJSONFile(path, rep); err != nil {
		t.Fatalf("WriteJSONFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	var decoded Report
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded.RunID != "run-9" {
		t.Errorf("RunID = %q, want run-9", decoded.RunID)
	}
	if decoded.Scenarios.TotalOrders != 100 {
		t.Errorf("TotalOrders = %d, want 100", decoded.Scenarios.TotalOrders)
	}
}

func TestWriteJSONFileReplacesPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")

	first := NewReport("first", "http://localhost:8080", 0, sampleResult(), sampleStats())
	if err := WriteJSONFile(path, first); err != nil {
		t.Fatalf("WriteJSONFile() first error = %v", err)
	}

	second := NewReport("second", "http://localhost:8080", 0, sampleResult(), sampleStats())
	if err := WriteJSONFile(path, second); err != nil {
		t.Fatalf("WriteJSONFile() second error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	var decoded Report
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded.RunID != "second" {
		t.Errorf("RunID = %q, want second (file should be replaced)", decoded.RunID)
	}
}

func TestWriteJSONFileBadPath(t *testing.T) {
	rep := NewReport("run", "http://localhost:8080", 0, sampleResult(), sampleStats())
	if err := WriteJSONFile(filepath.Join(t.TempDir(), "missing", "run.json"), rep); err == nil {
		t.Error("WriteJSONFile() to a missing directory should fail")
	}
}
