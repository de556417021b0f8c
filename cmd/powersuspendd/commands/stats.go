package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/powersuspend/powersuspend-go/pkg/log"
	"github.com/powersuspend/powersuspend-go/pkg/powerstate"
)

// Stats holds aggregate statistics about a journal.
type Stats struct {
	TotalEvents      int
	EventsByCategory map[log.Category]int
	Outcomes         map[log.Outcome]int
	Passes           map[powerstate.State]int
	Coalesced        int
	Instances        map[string]*InstanceStats
	HandlerFailures  map[string]int
	SlowestPass      time.Duration
	TimeRange        struct {
		Start time.Time
		End   time.Time
	}
}

// InstanceStats holds statistics for one coordinator instance.
type InstanceStats struct {
	FirstSeen      time.Time
	LastSeen       time.Time
	Events         int
	LastGeneration uint64
}

// RunStats analyzes the journal and prints statistics.
func RunStats(path string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByCategory: make(map[log.Category]int),
		Outcomes:         make(map[log.Outcome]int),
		Passes:           make(map[powerstate.State]int),
		Instances:        make(map[string]*InstanceStats),
		HandlerFailures:  make(map[string]int),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		stats.add(event)
	}

	printStats(w, stats)
	return nil
}

func (s *Stats) add(event log.Event) {
	s.TotalEvents++
	s.EventsByCategory[event.Category]++

	if s.TimeRange.Start.IsZero() || event.Timestamp.Before(s.TimeRange.Start) {
		s.TimeRange.Start = event.Timestamp
	}
	if event.Timestamp.After(s.TimeRange.End) {
		s.TimeRange.End = event.Timestamp
	}

	inst, ok := s.Instances[event.InstanceID]
	if !ok {
		inst = &InstanceStats{FirstSeen: event.Timestamp, LastSeen: event.Timestamp}
		s.Instances[event.InstanceID] = inst
	}
	inst.Events++
	if event.Timestamp.After(inst.LastSeen) {
		inst.LastSeen = event.Timestamp
	}
	if event.Generation > inst.LastGeneration {
		inst.LastGeneration = event.Generation
	}

	switch {
	case event.Transition != nil:
		s.Outcomes[event.Transition.Outcome]++
	case event.Dispatch != nil:
		s.Passes[event.Dispatch.State]++
		s.Coalesced += event.Dispatch.Coalesced
		if event.Dispatch.Duration > s.SlowestPass {
			s.SlowestPass = event.Dispatch.Duration
		}
	case event.Error != nil:
		s.HandlerFailures[event.Error.Handler]++
	}
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Power Coordinator Journal Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryTransition, log.CategoryMode, log.CategoryDispatch, log.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Transition Outcomes:")
	for _, o := range []log.Outcome{log.OutcomeApplied, log.OutcomeUnchanged, log.OutcomeRejected} {
		if count := stats.Outcomes[o]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", o.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Dispatch Passes:")
	fmt.Fprintf(w, "  %-12s %d\n", "suspend:", stats.Passes[powerstate.Active])
	fmt.Fprintf(w, "  %-12s %d\n", "resume:", stats.Passes[powerstate.Inactive])
	if stats.Coalesced > 0 {
		fmt.Fprintf(w, "  %-12s %d\n", "coalesced:", stats.Coalesced)
	}
	if stats.SlowestPass > 0 {
		fmt.Fprintf(w, "  %-12s %s\n", "slowest:", formatDuration(stats.SlowestPass))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Instances: %d\n", len(stats.Instances))
	if len(stats.Instances) > 0 {
		type instInfo struct {
			id    string
			stats *InstanceStats
		}
		insts := make([]instInfo, 0, len(stats.Instances))
		for id, is := range stats.Instances {
			insts = append(insts, instInfo{id, is})
		}
		sort.Slice(insts, func(i, j int) bool {
			return insts[i].stats.FirstSeen.Before(insts[j].stats.FirstSeen)
		})
		for _, inst := range insts {
			duration := inst.stats.LastSeen.Sub(inst.stats.FirstSeen).Round(time.Millisecond)
			fmt.Fprintf(w, "  [%s] %d events, last generation %d, duration %s\n",
				shortenID(inst.id), inst.stats.Events, inst.stats.LastGeneration, duration)
		}
	}

	if len(stats.HandlerFailures) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Handler Failures:")
		names := make([]string, 0, len(stats.HandlerFailures))
		for name := range stats.HandlerFailures {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "  %-20s %d\n", name, stats.HandlerFailures[name])
		}
	}
}

func direction(state powerstate.State) string {
	if state == powerstate.Active {
		return "suspend"
	}
	return "resume"
}
