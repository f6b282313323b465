package commands

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/mash-protocol/buspanel/pkg/log"
	"github.com/mash-protocol/buspanel/pkg/wire"
)

const testSession = "5f0c2a9e-1b7d-4c55-9e0a-3f1f4a7b8c21"

var testTime = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

// sampleEvents is a short panel session: a status heard from node 42, a
// request to node 42 and its response, and a broadcast job's lifecycle.
func sampleEvents() []log.Event {
	return []log.Event{
		{
			Timestamp:  testTime,
			SessionID:  testSession,
			Direction:  log.DirectionIn,
			Layer:      log.LayerTransport,
			Category:   log.CategoryMessage,
			LocalNode:  5,
			RemoteNode: 42,
			Message: &log.MessageEvent{
				Kind:       wire.KindMessage,
				Type:       "com.hex.equipment.jig.Status",
				Priority:   20,
				TransferID: 7,
				Payload:    wire.Payload{"id": 3},
			},
		},
		{
			Timestamp:  testTime.Add(10 * time.Millisecond),
			SessionID:  testSession,
			Direction:  log.DirectionOut,
			Layer:      log.LayerTransport,
			Category:   log.CategoryMessage,
			LocalNode:  5,
			RemoteNode: 42,
			Message: &log.MessageEvent{
				Kind:       wire.KindRequest,
				Type:       "com.hex.equipment.jig.GetInfo",
				Priority:   30,
				TransferID: 1,
			},
		},
		{
			Timestamp:  testTime.Add(15 * time.Millisecond),
			SessionID:  testSession,
			Direction:  log.DirectionIn,
			Layer:      log.LayerTransport,
			Category:   log.CategoryMessage,
			LocalNode:  5,
			RemoteNode: 42,
			Message: &log.MessageEvent{
				Kind:       wire.KindResponse,
				Type:       "com.hex.equipment.jig.GetInfo",
				Priority:   30,
				TransferID: 1,
				Payload:    wire.Payload{"serial": "J-100"},
			},
		},
		{
			Timestamp: testTime.Add(time.Second),
			SessionID: testSession,
			Direction: log.DirectionLocal,
			Layer:     log.LayerSession,
			Category:  log.CategoryJob,
			LocalNode: 5,
			Job: &log.JobEvent{
				JobID:     1,
				Kind:      log.JobBroadcast,
				Type:      "com.hex.equipment.jig.Heartbeat",
				NewState:  "ACTIVE",
				Transfers: 1,
			},
		},
		{
			Timestamp: testTime.Add(2 * time.Second),
			SessionID: testSession,
			Direction: log.DirectionLocal,
			Layer:     log.LayerSession,
			Category:  log.CategoryJob,
			LocalNode: 5,
			Job: &log.JobEvent{
				JobID:     1,
				Kind:      log.JobBroadcast,
				Type:      "com.hex.equipment.jig.Heartbeat",
				OldState:  "ACTIVE",
				NewState:  "TERMINATED",
				Reason:    "count reached",
				Transfers: 3,
			},
		},
		{
			Timestamp: testTime.Add(3 * time.Second),
			SessionID: testSession,
			Direction: log.DirectionOut,
			Layer:     log.LayerTransport,
			Category:  log.CategoryError,
			LocalNode: 5,
			Error: &log.ErrorEventData{
				Layer:   log.LayerTransport,
				Message: "network is unreachable",
				Context: "send com.hex.equipment.jig.Heartbeat",
			},
		},
	}
}

// writeTestLog writes events to a trace file in a temp dir.
func writeTestLog(t *testing.T, events []log.Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.blog")
	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return path
}
