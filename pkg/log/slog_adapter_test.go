package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/powersuspend/powersuspend-go/pkg/powerstate"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output %q: %v", buf.String(), err)
	}
	return entry
}

func TestSlogAdapterLogsTransition(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	adapter.Log(Event{
		Timestamp:  time.Now(),
		InstanceID: "inst-1",
		Category:   CategoryTransition,
		Generation: 4,
		Transition: &TransitionEvent{
			Trigger:  powerstate.TriggerAutosleep,
			OldState: powerstate.Inactive,
			NewState: powerstate.Active,
			Outcome:  OutcomeApplied,
			Mode:     powerstate.Hybrid,
		},
	})

	entry := decodeLine(t, &buf)
	want := map[string]any{
		"instance":   "inst-1",
		"category":   "TRANSITION",
		"generation": float64(4),
		"trigger":    "AUTOSLEEP",
		"new_state":  "ACTIVE",
		"outcome":    "APPLIED",
		"mode":       "HYBRID",
	}
	for k, v := range want {
		if entry[k] != v {
			t.Errorf("%s = %v, want %v", k, entry[k], v)
		}
	}
}

func TestSlogAdapterLogsError(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	adapter.Log(Event{
		Category: CategoryError,
		Error:    &ErrorEventData{Handler: "wifi", State: powerstate.Inactive, Message: "timeout", Panic: true},
	})

	entry := decodeLine(t, &buf)
	if entry["handler"] != "wifi" || entry["error_msg"] != "timeout" || entry["panic"] != true {
		t.Errorf("unexpected entry: %v", entry)
	}
	if _, ok := entry["generation"]; ok {
		t.Error("generation should be omitted when zero")
	}
}

func TestSlogAdapterRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})))

	adapter.Log(Event{Category: CategoryMode, Mode: &ModeEvent{NewMode: powerstate.Panel}})

	if buf.Len() != 0 {
		t.Errorf("debug journal entry written at info level: %s", buf.String())
	}
}
