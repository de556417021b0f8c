package commands

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/powersuspend/powersuspend-go/pkg/log"
	"github.com/powersuspend/powersuspend-go/pkg/powerstate"
)

func createTestLogFile(t *testing.T, events []log.Event) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.plog")

	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()

	return path
}

func sampleEvents() []log.Event {
	ts := time.Date(2026, 1, 28, 10, 15, 32, 0, time.UTC)
	return []log.Event{
		{
			Timestamp:  ts,
			InstanceID: "inst-1",
			Category:   log.CategoryTransition,
			Generation: 1,
			Transition: &log.TransitionEvent{
				Trigger:  powerstate.TriggerAutosleep,
				NewState: powerstate.Active,
				Outcome:  log.OutcomeApplied,
				Mode:     powerstate.Autosleep,
			},
		},
		{
			Timestamp:  ts.Add(time.Millisecond),
			InstanceID: "inst-1",
			Category:   log.CategoryDispatch,
			Generation: 1,
			Dispatch:   &log.DispatchEvent{State: powerstate.Active, Handlers: 4},
		},
		{
			Timestamp:  ts.Add(2 * time.Millisecond),
			InstanceID: "inst-1",
			Category:   log.CategoryError,
			Generation: 1,
			Error:      &log.ErrorEventData{Handler: "gpu", State: powerstate.Active, Message: "timeout"},
		},
	}
}

func TestExportToJSONL(t *testing.T) {
	path := createTestLogFile(t, sampleEvents())
	out := filepath.Join(t.TempDir(), "out.jsonl")

	if err := RunExport(path, "jsonl", out); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}

	var first log.Event
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if first.Transition == nil || first.Transition.Trigger != powerstate.TriggerAutosleep {
		t.Errorf("unexpected first event: %+v", first)
	}
}

func TestExportToCSV(t *testing.T) {
	path := createTestLogFile(t, sampleEvents())
	out := filepath.Join(t.TempDir(), "out.csv")

	if err := RunExport(path, "csv", out); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(rows))
	}
	if rows[0][0] != "timestamp" || rows[0][2] != "category" {
		t.Errorf("unexpected header: %v", rows[0])
	}
	if rows[1][4] != "AUTOSLEEP" || rows[1][6] != "APPLIED" {
		t.Errorf("unexpected transition row: %v", rows[1])
	}
	if rows[2][7] != "handlers=4" {
		t.Errorf("unexpected dispatch row: %v", rows[2])
	}
	if rows[3][7] != "gpu: timeout" {
		t.Errorf("unexpected error row: %v", rows[3])
	}
}

func TestExportUnknownFormat(t *testing.T) {
	path := createTestLogFile(t, sampleEvents())
	if err := RunExport(path, "xml", filepath.Join(t.TempDir(), "out")); err == nil {
		t.Error("expected error for unknown format")
	}
}
