// Package spin drives a transport driver from a single control goroutine.
//
// A Scheduler calls the driver's non-blocking Spin on a fixed cadence.
// Every timer callback and message handler registered with the driver
// therefore runs on that goroutine, which is what lets the session layer
// keep job and cache state without locks. Other goroutines (an operator
// console, signal handlers) hand work to the control goroutine with Post
// or Do instead of touching that state directly.
package spin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mash-protocol/buspanel/pkg/clock"
)

// DefaultInterval is the spin cadence.
const DefaultInterval = 10 * time.Millisecond

// DefaultQueueSize is the capacity of the posted work queue.
const DefaultQueueSize = 64

// Scheduler errors.
var (
	ErrStopped        = errors.New("scheduler stopped")
	ErrAlreadyRunning = errors.New("scheduler already running")
)

// Spinner is the part of transport.Driver the scheduler needs.
type Spinner interface {
	Spin(budget time.Duration) error
}

// Config configures a Scheduler.
type Config struct {
	// Interval between ticks (default: DefaultInterval).
	Interval time.Duration

	// Clock drives the tick cadence (default: clock.Real()).
	Clock clock.Clock

	// Logger receives spin and posted work failures (default: slog.Default()).
	Logger *slog.Logger

	// QueueSize is the posted work queue capacity.
	QueueSize int
}

// DefaultConfig returns the default scheduler configuration.
func DefaultConfig() Config {
	return Config{
		Interval:  DefaultInterval,
		Clock:     clock.Real(),
		QueueSize: DefaultQueueSize,
	}
}

// Stats describes scheduler activity.
type Stats struct {
	Ticks        uint64
	SpinFailures uint64
	PostedRuns   uint64
	PostFailures uint64
	// PostedSkipped counts Do calls abandoned before their work ran.
	PostedSkipped uint64
	LastError     error
	LastFailure   time.Time
}

// Scheduler ticks a Spinner on one goroutine.
type Scheduler struct {
	driver Spinner
	config Config
	clock  clock.Clock
	logger *slog.Logger

	posted  chan func()
	stopped chan struct{}
	running atomic.Bool

	mu    sync.Mutex
	stats Stats
}

// New creates a scheduler for driver.
func New(driver Spinner, config Config) *Scheduler {
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultQueueSize
	}

	return &Scheduler{
		driver:  driver,
		config:  config,
		clock:   config.Clock,
		logger:  config.Logger,
		posted:  make(chan func(), config.QueueSize),
		stopped: make(chan struct{}),
	}
}

// Interval returns the tick cadence.
func (s *Scheduler) Interval() time.Duration {
	return s.config.Interval
}

// Run ticks until ctx is done. Run may be called once; afterwards Post
// and Do fail with ErrStopped.
func (s *Scheduler) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(s.stopped)

	ticker := s.clock.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Tick runs queued work, then calls Spin(0) once. Failures and panics in
// either are logged and counted; they never stop the scheduler.
// Tick must only be called from the control goroutine.
func (s *Scheduler) Tick() {
	// Work posted while this tick runs waits for the next one.
	for range len(s.posted) {
		(<-s.posted)()
	}

	err := s.spin()

	s.mu.Lock()
	s.stats.Ticks++
	if err != nil {
		s.stats.SpinFailures++
		s.stats.LastError = err
		s.stats.LastFailure = s.clock.Now()
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("spin failed", "error", err)
	}
}

// Post queues fn to run on the control goroutine at the start of the
// next tick. It blocks while the queue is full.
func (s *Scheduler) Post(fn func()) error {
	return s.post(context.Background(), func() { _ = s.runPosted(fn) })
}

// Do runs fn on the control goroutine and waits for it to finish. A panic
// in fn is returned as an error. If ctx ends before fn starts, fn is
// skipped and Do returns ctx.Err(); once fn has started, Do waits for it.
// Do must not be called from the control goroutine itself.
func (s *Scheduler) Do(ctx context.Context, fn func()) error {
	var claimed atomic.Bool
	result := make(chan error, 1)
	work := func() {
		if !claimed.CompareAndSwap(false, true) {
			s.mu.Lock()
			s.stats.PostedSkipped++
			s.mu.Unlock()
			return
		}
		result <- s.runPosted(fn)
	}
	if err := s.post(ctx, work); err != nil {
		return err
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		if claimed.CompareAndSwap(false, true) {
			return ctx.Err()
		}
		return <-result
	case <-s.stopped:
		if claimed.CompareAndSwap(false, true) {
			return ErrStopped
		}
		return <-result
	}
}

// Pending returns the number of queued work items.
func (s *Scheduler) Pending() int {
	return len(s.posted)
}

// Stats returns a snapshot of scheduler counters.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *Scheduler) post(ctx context.Context, fn func()) error {
	select {
	case <-s.stopped:
		return ErrStopped
	default:
	}

	select {
	case s.posted <- fn:
		return nil
	case <-s.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) spin() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("spin panicked: %v", r)
		}
	}()
	return s.driver.Spin(0)
}

// runPosted runs fn, converting a panic into an error.
func (s *Scheduler) runPosted(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("posted work panicked: %v", r)
			s.logger.Error("posted work failed", "error", err)
		}

		s.mu.Lock()
		s.stats.PostedRuns++
		if err != nil {
			s.stats.PostFailures++
		}
		s.mu.Unlock()
	}()
	fn()
	return nil
}
