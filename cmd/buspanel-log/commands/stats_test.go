package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mash-protocol/buspanel/pkg/log"
)

func TestStatsAggregation(t *testing.T) {
	stats := newStats()
	for _, e := range sampleEvents() {
		stats.add(e)
	}

	if stats.TotalEvents != 6 {
		t.Errorf("TotalEvents = %d, want 6", stats.TotalEvents)
	}
	if stats.EventsByCategory[log.CategoryMessage] != 3 {
		t.Errorf("message events = %d, want 3", stats.EventsByCategory[log.CategoryMessage])
	}
	if stats.JobsStarted != 1 {
		t.Errorf("JobsStarted = %d, want 1", stats.JobsStarted)
	}
	if stats.JobsEnded["count reached"] != 1 {
		t.Errorf("JobsEnded = %v", stats.JobsEnded)
	}
	if stats.Errors != 1 {
		t.Errorf("Errors = %d, want 1", stats.Errors)
	}

	node := stats.Nodes[42]
	if node == nil {
		t.Fatal("node 42 missing")
	}
	if node.In != 2 || node.Out != 1 {
		t.Errorf("node 42 = %d in, %d out; want 2 in, 1 out", node.In, node.Out)
	}
	if stats.Types["com.hex.equipment.jig.GetInfo"] != 2 {
		t.Errorf("Types = %v", stats.Types)
	}
}

func TestRunStats(t *testing.T) {
	path := writeTestLog(t, sampleEvents())

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats: %v", err)
	}
	output := buf.String()

	for _, want := range []string{
		"Total Events: 6",
		"Sessions:     1",
		"TRANSPORT:",
		"SESSION:",
		"JOB:",
		"com.hex.equipment.jig.Status: 1",
		"Nodes: 1",
		"[node 42] 2 in, 1 out",
		"Jobs: 1 started",
		"ended (count reached): 1",
		"Errors: 1",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output:\n%s", want, output)
		}
	}
}

func TestRunStatsEmpty(t *testing.T) {
	path := writeTestLog(t, nil)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats: %v", err)
	}
	if !strings.Contains(buf.String(), "Total Events: 0") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "Time Range") {
		t.Errorf("empty trace must not print a time range:\n%s", buf.String())
	}
}
