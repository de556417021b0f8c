// Package commands implements the journal commands of powersuspendd.
package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/powersuspend/powersuspend-go/pkg/log"
)

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [inst:id] gen CATEGORY
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	fmt.Fprintf(w, "%s [inst:%s] gen=%d %s\n", ts, shortenID(event.InstanceID), event.Generation, event.Category)

	switch {
	case event.Transition != nil:
		tr := event.Transition
		fmt.Fprintf(w, "  %s: %s -> %s (%s)\n", tr.Trigger, tr.OldState, tr.NewState, tr.Outcome)
		fmt.Fprintf(w, "  Mode: %s\n", tr.Mode)
	case event.Mode != nil:
		fmt.Fprintf(w, "  %s -> %s\n", event.Mode.OldMode, event.Mode.NewMode)
	case event.Dispatch != nil:
		d := event.Dispatch
		fmt.Fprintf(w, "  %s pass: %d handlers in %s\n", direction(d.State), d.Handlers, formatDuration(d.Duration))
		if d.Failures > 0 {
			fmt.Fprintf(w, "  Failures: %d\n", d.Failures)
		}
		if d.Coalesced > 0 {
			fmt.Fprintf(w, "  Coalesced: %d\n", d.Coalesced)
		}
	case event.Error != nil:
		e := event.Error
		kind := "error"
		if e.Panic {
			kind = "panic"
		}
		fmt.Fprintf(w, "  Handler %s %s during %s: %s\n", e.Handler, kind, direction(e.State), e.Message)
	}

	fmt.Fprintln(w) // Blank line between events
}

// shortenID returns the first 8 characters of an instance ID.
func shortenID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.3fus", float64(d.Nanoseconds())/1000)
	}
	if d < time.Second {
		return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.3fs", d.Seconds())
}

// ParseCategoryFlag parses a category string from command-line flag (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "transition":
		return log.CategoryTransition, nil
	case "mode":
		return log.CategoryMode, nil
	case "dispatch":
		return log.CategoryDispatch, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be transition, mode, dispatch, or error)", s)
	}
}

// RunView writes every event matching filter to output.
func RunView(path string, filter log.Filter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}

	return nil
}
