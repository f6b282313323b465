package commands

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mash-protocol/buspanel/pkg/log"
)

func readAll(t *testing.T, path string) []log.Event {
	t.Helper()
	reader, err := log.NewReader(path)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer reader.Close()

	var events []log.Event
	for e, err := range reader.All() {
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		events = append(events, e)
	}
	return events
}

func TestRunFilter(t *testing.T) {
	tests := []struct {
		name string
		opts FilterOptions
		want int
	}{
		{"all", FilterOptions{}, 6},
		{"by node", FilterOptions{Node: "42"}, 3},
		{"by type", FilterOptions{Type: "com.hex.equipment.jig.GetInfo"}, 2},
		{"job type", FilterOptions{Type: "com.hex.equipment.jig.Heartbeat"}, 2},
		{"by direction", FilterOptions{Direction: "out"}, 2},
		{"by category", FilterOptions{Category: "error"}, 1},
		{"by layer", FilterOptions{Layer: "session"}, 2},
		{"by session", FilterOptions{SessionID: "other"}, 0},
		{"time window", FilterOptions{TimeStart: "2026-03-02T09:30:01Z", TimeEnd: "2026-03-02T09:30:03Z"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTestLog(t, sampleEvents())
			tt.opts.Output = filepath.Join(t.TempDir(), "filtered.blog")

			var buf bytes.Buffer
			if err := RunFilter(path, tt.opts, &buf); err != nil {
				t.Fatalf("RunFilter: %v", err)
			}
			if got := len(readAll(t, tt.opts.Output)); got != tt.want {
				t.Errorf("filtered %d events, want %d", got, tt.want)
			}
			if !strings.Contains(buf.String(), "Filtered") {
				t.Errorf("unexpected output: %s", buf.String())
			}
		})
	}
}

func TestBuildFilterErrors(t *testing.T) {
	for _, opts := range []FilterOptions{
		{Node: "0"},
		{Node: "abc"},
		{TimeStart: "yesterday"},
		{TimeEnd: "tomorrow"},
		{Layer: "wire"},
		{Direction: "up"},
		{Category: "state"},
	} {
		if _, err := buildFilter(opts); err == nil {
			t.Errorf("buildFilter(%+v): expected error", opts)
		}
	}
}
