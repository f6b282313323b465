package log

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestFileLoggerCreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.blog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	defer logger.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("log file was not created")
	}
}

func TestFileLoggerWritesCBOR(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.blog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	event := Event{
		Timestamp: time.Now(),
		SessionID: "session-1",
		Direction: DirectionIn,
		Layer:     LayerTransport,
		Category:  CategoryMessage,
		Message: &MessageEvent{
			Type:       "com.hex.equipment.jig.Status",
			TransferID: 12,
		},
	}

	logger.Log(event)
	logger.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("log file is empty")
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("failed to decode event: %v", err)
	}
	if decoded.SessionID != event.SessionID {
		t.Errorf("SessionID: got %q, want %q", decoded.SessionID, event.SessionID)
	}
	if decoded.Message == nil {
		t.Error("Message is nil")
	} else if decoded.Message.TransferID != 12 {
		t.Errorf("TransferID: got %d, want 12", decoded.Message.TransferID)
	}
}

func TestFileLoggerAppends(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.blog")

	for _, id := range []string{"first", "second"} {
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("NewFileLogger failed: %v", err)
		}
		logger.Log(Event{Timestamp: time.Now(), SessionID: id})
		logger.Close()
	}

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	var ids []string
	for event, err := range reader.All() {
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		ids = append(ids, event.SessionID)
	}
	if len(ids) != 2 || ids[0] != "first" || ids[1] != "second" {
		t.Errorf("got %v, want [first second]", ids)
	}
}

func TestFileLoggerConcurrent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.blog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	const goroutines = 8
	const perGoroutine = 25

	var wg sync.WaitGroup
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perGoroutine {
				logger.Log(Event{Timestamp: time.Now(), Category: CategoryJob, Job: &JobEvent{NewState: "ACTIVE"}})
			}
		}()
	}
	wg.Wait()
	logger.Close()

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	count := 0
	for _, err := range reader.All() {
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		count++
	}
	if count != goroutines*perGoroutine {
		t.Errorf("got %d events, want %d", count, goroutines*perGoroutine)
	}
}

func TestFileLoggerCloseIdempotent(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewFileLogger(filepath.Join(dir, "test.blog"))
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	if err := logger.Close(); err != nil {
		t.Fatalf("first Close failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}

	// Logging after close is ignored.
	logger.Log(Event{Timestamp: time.Now()})
}

func TestFileLoggerCountsWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.blog")
	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	for range 4 {
		logger.Log(Event{Timestamp: time.Now(), Category: CategoryMessage})
	}
	if got := logger.Written(); got != 4 {
		t.Errorf("Written() = %d, want 4", got)
	}
	if logger.Path() != path {
		t.Errorf("Path() = %q, want %q", logger.Path(), path)
	}

	logger.Close()
	logger.Log(Event{Timestamp: time.Now()})
	if got := logger.Written(); got != 4 {
		t.Errorf("Written() after Close = %d, want 4", got)
	}
	if err := logger.Err(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFileLoggerKeepsFirstWriteError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.blog")
	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	defer logger.Close()

	logger.Log(Event{Timestamp: time.Now()})

	// Pull the file out from under the logger so the next writes fail.
	logger.file.Close()
	logger.Log(Event{Timestamp: time.Now()})
	logger.Log(Event{Timestamp: time.Now()})

	if got := logger.Written(); got != 1 {
		t.Errorf("Written() = %d, want 1", got)
	}
	err = logger.Err()
	if err == nil {
		t.Fatal("expected write error")
	}
	if !strings.Contains(err.Error(), path) {
		t.Errorf("error %q does not name the trace file", err)
	}
}

func TestFileLoggerInvalidPath(t *testing.T) {
	_, err := NewFileLogger(filepath.Join(t.TempDir(), "missing", "dir", "test.blog"))
	if err == nil {
		t.Error("expected error for missing directory")
	}
}
