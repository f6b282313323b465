package log

import (
	"sync"
	"testing"
	"time"
)

type mockLogger struct {
	mu     sync.Mutex
	events []Event
}

func (m *mockLogger) Log(event Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

func (m *mockLogger) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

func TestTeeFansOut(t *testing.T) {
	a := &mockLogger{}
	b := &mockLogger{}
	tee := Tee(a, b)

	tee.Log(Event{Timestamp: time.Now(), SessionID: "s"})
	tee.Log(Event{Timestamp: time.Now(), SessionID: "s"})

	if a.count() != 2 {
		t.Errorf("logger a: got %d events, want 2", a.count())
	}
	if b.count() != 2 {
		t.Errorf("logger b: got %d events, want 2", b.count())
	}
}

func TestTeeOrder(t *testing.T) {
	var order []string
	tee := Tee(
		LoggerFunc(func(Event) { order = append(order, "file") }),
		LoggerFunc(func(Event) { order = append(order, "slog") }),
	)
	tee.Log(Event{})

	if len(order) != 2 || order[0] != "file" || order[1] != "slog" {
		t.Errorf("got order %v, want [file slog]", order)
	}
}

func TestTeeCollapses(t *testing.T) {
	a := &mockLogger{}
	if got := Tee(nil, a, nil); got != Logger(a) {
		t.Errorf("Tee with one logger returned %T, want the logger itself", got)
	}
	if _, ok := Tee().(NoopLogger); !ok {
		t.Errorf("Tee() returned %T, want NoopLogger", Tee())
	}
	if _, ok := Tee(nil).(NoopLogger); !ok {
		t.Errorf("Tee(nil) returned %T, want NoopLogger", Tee(nil))
	}
}

func TestOrNoop(t *testing.T) {
	if _, ok := OrNoop(nil).(NoopLogger); !ok {
		t.Error("OrNoop(nil) should return NoopLogger")
	}
	a := &mockLogger{}
	if OrNoop(a) != Logger(a) {
		t.Error("OrNoop should return a non-nil logger unchanged")
	}
	NoopLogger{}.Log(Event{Timestamp: time.Now()})
}
