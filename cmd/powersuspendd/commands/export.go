package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/powersuspend/powersuspend-go/pkg/log"
)

// RunExport exports the journal to the specified format. An empty output
// writes to stdout.
func RunExport(path, format, output string) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer reader.Close()

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "jsonl":
		return exportJSONL(reader, w)
	case "csv":
		return exportCSV(reader, w)
	default:
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}
}

func exportJSONL(reader *log.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := encoder.Encode(event); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
	return nil
}

func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"timestamp", "instance_id", "category", "generation", "trigger", "state", "outcome", "detail"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		var trigger, state, outcome, detail string
		switch {
		case event.Transition != nil:
			trigger = event.Transition.Trigger.String()
			state = event.Transition.NewState.String()
			outcome = event.Transition.Outcome.String()
			detail = event.Transition.Mode.String()
		case event.Mode != nil:
			detail = event.Mode.OldMode.String() + "->" + event.Mode.NewMode.String()
		case event.Dispatch != nil:
			state = event.Dispatch.State.String()
			detail = "handlers=" + strconv.Itoa(event.Dispatch.Handlers)
		case event.Error != nil:
			state = event.Error.State.String()
			detail = event.Error.Handler + ": " + event.Error.Message
		}

		row := []string{
			event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z"),
			event.InstanceID,
			event.Category.String(),
			strconv.FormatUint(event.Generation, 10),
			trigger,
			state,
			outcome,
			detail,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	return nil
}
