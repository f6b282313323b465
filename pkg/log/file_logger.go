package log

import (
	"fmt"
	"os"
	"sync"
)

// FileLogger appends trace events to a .blog file. It is safe for
// concurrent use.
//
// Write failures are not returned from Log because tracing must not
// disturb the session. The first one is kept and reported by Err.
type FileLogger struct {
	path string

	mu      sync.Mutex
	file    *os.File // nil once closed
	written int
	err     error
}

// NewFileLogger opens path for appending, creating it if needed.
func NewFileLogger(path string) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &FileLogger{path: path, file: f}, nil
}

// Path returns the trace file path.
func (l *FileLogger) Path() string { return l.path }

// Log appends event. Events logged after Close are dropped.
func (l *FileLogger) Log(event Event) {
	data, encErr := EncodeEvent(event)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return
	}
	if encErr != nil {
		l.fail(encErr)
		return
	}
	if _, err := l.file.Write(data); err != nil {
		l.fail(err)
		return
	}
	l.written++
}

func (l *FileLogger) fail(err error) {
	if l.err == nil {
		l.err = fmt.Errorf("trace %s: %w", l.path, err)
	}
}

// Written returns the number of events written so far.
func (l *FileLogger) Written() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.written
}

// Err returns the first write failure, if any.
func (l *FileLogger) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Close closes the file. Further calls return nil.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
