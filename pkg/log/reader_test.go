package log

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/mash-protocol/buspanel/pkg/wire"
)

func createTestLogFile(t *testing.T, events []Event) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.blog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create test log: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()

	return path
}

func readAll(t *testing.T, r *Reader) []Event {
	t.Helper()
	var read []Event
	for {
		event, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		read = append(read, event)
	}
	return read
}

func TestReaderIteratesEvents(t *testing.T) {
	events := []Event{
		{Timestamp: time.Now(), SessionID: "s-1", Direction: DirectionIn, Layer: LayerTransport, Category: CategoryMessage},
		{Timestamp: time.Now(), SessionID: "s-2", Direction: DirectionOut, Layer: LayerTransport, Category: CategoryMessage},
		{Timestamp: time.Now(), SessionID: "s-3", Direction: DirectionLocal, Layer: LayerSession, Category: CategoryJob},
	}
	path := createTestLogFile(t, events)

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	read := readAll(t, reader)
	if len(read) != 3 {
		t.Fatalf("got %d events, want 3", len(read))
	}
	for i, want := range []string{"s-1", "s-2", "s-3"} {
		if read[i].SessionID != want {
			t.Errorf("event %d: SessionID %q, want %q", i, read[i].SessionID, want)
		}
	}
}

func TestReaderFilter(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	status := "com.hex.equipment.jig.Status"
	events := []Event{
		{Timestamp: base, SessionID: "a", Direction: DirectionIn, Layer: LayerTransport, Category: CategoryMessage, RemoteNode: 10,
			Message: &MessageEvent{Kind: wire.KindMessage, Type: status}},
		{Timestamp: base.Add(time.Second), SessionID: "a", Direction: DirectionOut, Layer: LayerTransport, Category: CategoryMessage, RemoteNode: 11,
			Message: &MessageEvent{Kind: wire.KindRequest, Type: "com.hex.equipment.jig.GetInfo"}},
		{Timestamp: base.Add(2 * time.Second), SessionID: "b", Direction: DirectionLocal, Layer: LayerSession, Category: CategoryJob,
			Job: &JobEvent{Kind: JobSubscription, Type: status, NewState: "ACTIVE"}},
		{Timestamp: base.Add(3 * time.Second), SessionID: "b", Direction: DirectionLocal, Layer: LayerSession, Category: CategoryError,
			Error: &ErrorEventData{Layer: LayerSession, Message: "send failed"}},
	}
	path := createTestLogFile(t, events)

	dirOut := DirectionOut
	layerSession := LayerSession
	catErr := CategoryError
	start := base.Add(time.Second)
	end := base.Add(3 * time.Second)

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"empty", Filter{}, 4},
		{"session", Filter{SessionID: "b"}, 2},
		{"direction", Filter{Direction: &dirOut}, 1},
		{"layer", Filter{Layer: &layerSession}, 2},
		{"category", Filter{Category: &catErr}, 1},
		{"time window", Filter{TimeStart: &start, TimeEnd: &end}, 2},
		{"node", Filter{Node: 10}, 1},
		{"type", Filter{Type: status}, 2},
		{"combined", Filter{SessionID: "a", Type: status}, 1},
		{"no match", Filter{SessionID: "zzz"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader, err := NewFilteredReader(path, tt.filter)
			if err != nil {
				t.Fatalf("NewFilteredReader failed: %v", err)
			}
			defer reader.Close()

			got := readAll(t, reader)
			if len(got) != tt.want {
				t.Errorf("got %d events, want %d", len(got), tt.want)
			}
		})
	}
}

func TestReaderAllStopsEarly(t *testing.T) {
	events := make([]Event, 5)
	for i := range events {
		events[i] = Event{Timestamp: time.Now()}
	}
	path := createTestLogFile(t, events)

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	n := 0
	for range reader.All() {
		n++
		if n == 2 {
			break
		}
	}

	// The remaining events are still available.
	if rest := readAll(t, reader); len(rest) != 3 {
		t.Errorf("got %d remaining events, want 3", len(rest))
	}
}

func TestReaderMissingFile(t *testing.T) {
	if _, err := NewReader(filepath.Join(t.TempDir(), "nope.blog")); err == nil {
		t.Error("expected error for missing file")
	}
}
