package commands

import (
	"cmp"
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/mash-protocol/buspanel/pkg/log"
	"github.com/mash-protocol/buspanel/pkg/wire"
)

// Stats holds aggregate statistics about a log file.
type Stats struct {
	TotalEvents       int
	EventsByLayer     map[log.Layer]int
	EventsByCategory  map[log.Category]int
	EventsByDirection map[log.Direction]int
	Sessions          map[string]int
	Nodes             map[wire.NodeID]*NodeStats
	Types             map[string]int
	JobsStarted       int
	JobsEnded         map[string]int
	Errors            int
	TimeRange         struct {
		Start time.Time
		End   time.Time
	}
}

// NodeStats holds transfer counts for a single remote node.
type NodeStats struct {
	FirstSeen time.Time
	LastSeen  time.Time
	In        int
	Out       int
}

// RunStats analyzes the log file and prints statistics.
func RunStats(path string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := newStats()
	for event, err := range reader.All() {
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		stats.add(event)
	}

	printStats(w, stats)
	return nil
}

func newStats() *Stats {
	return &Stats{
		EventsByLayer:     make(map[log.Layer]int),
		EventsByCategory:  make(map[log.Category]int),
		EventsByDirection: make(map[log.Direction]int),
		Sessions:          make(map[string]int),
		Nodes:             make(map[wire.NodeID]*NodeStats),
		Types:             make(map[string]int),
		JobsEnded:         make(map[string]int),
	}
}

func (s *Stats) add(event log.Event) {
	s.TotalEvents++
	s.EventsByLayer[event.Layer]++
	s.EventsByCategory[event.Category]++
	s.EventsByDirection[event.Direction]++
	s.Sessions[event.SessionID]++

	// Track time range
	if s.TimeRange.Start.IsZero() || event.Timestamp.Before(s.TimeRange.Start) {
		s.TimeRange.Start = event.Timestamp
	}
	if event.Timestamp.After(s.TimeRange.End) {
		s.TimeRange.End = event.Timestamp
	}

	switch {
	case event.Message != nil:
		s.Types[event.Message.Type]++
		if event.RemoteNode == 0 {
			return
		}
		node, ok := s.Nodes[event.RemoteNode]
		if !ok {
			node = &NodeStats{FirstSeen: event.Timestamp}
			s.Nodes[event.RemoteNode] = node
		}
		if event.Timestamp.After(node.LastSeen) {
			node.LastSeen = event.Timestamp
		}
		if event.Direction == log.DirectionIn {
			node.In++
		} else {
			node.Out++
		}

	case event.Job != nil:
		if event.Job.OldState == "" {
			s.JobsStarted++
		} else if event.Job.Reason != "" {
			s.JobsEnded[event.Job.Reason]++
		}

	case event.Error != nil:
		s.Errors++
	}
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Bus Panel Trace Statistics ===")
	fmt.Fprintln(w)

	// Time range
	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintf(w, "Sessions:     %d\n", len(stats.Sessions))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Layer:")
	for _, layer := range []log.Layer{log.LayerTransport, log.LayerSession} {
		if count := stats.EventsByLayer[layer]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", layer.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryMessage, log.CategoryJob, log.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Direction:")
	for _, dir := range []log.Direction{log.DirectionIn, log.DirectionOut, log.DirectionLocal} {
		if count := stats.EventsByDirection[dir]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", dir.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	if len(stats.Types) > 0 {
		fmt.Fprintln(w, "Transfers by Type:")
		for _, typ := range slices.Sorted(maps.Keys(stats.Types)) {
			fmt.Fprintf(w, "  %s: %d\n", typ, stats.Types[typ])
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Nodes: %d\n", len(stats.Nodes))
	ids := slices.SortedFunc(maps.Keys(stats.Nodes), func(a, b wire.NodeID) int {
		return cmp.Compare(a, b)
	})
	for _, id := range ids {
		n := stats.Nodes[id]
		fmt.Fprintf(w, "  [node %v] %d in, %d out, active %s\n",
			id, n.In, n.Out, n.LastSeen.Sub(n.FirstSeen).Round(time.Millisecond))
	}

	if stats.JobsStarted > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Jobs: %d started\n", stats.JobsStarted)
		for _, reason := range slices.Sorted(maps.Keys(stats.JobsEnded)) {
			fmt.Fprintf(w, "  ended (%s): %d\n", reason, stats.JobsEnded[reason])
		}
	}

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
