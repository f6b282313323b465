// Package session implements the operator session over a bus transport:
// requests, one-shot and periodic broadcasts, and subscriptions with
// count and duration limits.
//
// A Session is owned by its host and used from one control goroutine,
// the one that spins the transport driver (see package spin). Jobs are
// driven entirely by the driver's timers and handlers, so no job state
// is ever touched concurrently.
//
// Every job returned by the session implements transport.Handle: Remove
// cancels it, is idempotent, and is safe to call from the job's own
// callbacks or after the job has ended by itself.
package session

import (
	"cmp"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/mash-protocol/buspanel/pkg/log"
	"github.com/mash-protocol/buspanel/pkg/transport"
	"github.com/mash-protocol/buspanel/pkg/wire"
)

// State is the lifecycle state of a job.
type State uint8

const (
	// StateActive is the state of a running job.
	StateActive State = iota

	// StateTerminated is terminal.
	StateTerminated
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateActive:
		return "ACTIVE"
	case StateTerminated:
		return "TERMINATED"
	default:
		return "UNKNOWN"
	}
}

// Job is a background job created by Broadcast or Subscribe.
type Job interface {
	transport.Handle

	// ID identifies the job within its session.
	ID() uint32

	// Kind returns the job kind.
	Kind() log.JobKind

	// Type is the message type the job sends or receives.
	Type() string

	// State returns the current state.
	State() State

	// Transfers returns the number of messages sent or delivered so far.
	Transfers() int
}

// Config configures a Session.
type Config struct {
	// ID identifies the session in traces (default: random UUID).
	ID string

	// Priority is the default transfer priority (default: DefaultPriority).
	Priority *wire.Priority

	// Output receives the default printers' output (default: os.Stdout).
	Output io.Writer

	// Logger receives operational logs (default: slog.Default()).
	Logger *slog.Logger

	// TraceLogger receives job lifecycle events.
	TraceLogger log.Logger
}

// Session is the operator-facing API over a transport driver.
type Session struct {
	driver   transport.Driver
	id       string
	priority wire.Priority
	output   io.Writer
	logger   *slog.Logger
	trace    log.Logger

	jobs      map[uint32]Job
	nextJobID uint32
	closed    bool
}

// New creates a session on driver.
func New(driver transport.Driver, config Config) *Session {
	if config.ID == "" {
		config.ID = uuid.NewString()
	}
	priority := DefaultPriority
	if config.Priority != nil {
		priority = *config.Priority
	}
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	config.TraceLogger = log.OrNoop(config.TraceLogger)

	return &Session{
		driver:   driver,
		id:       config.ID,
		priority: priority,
		output:   config.Output,
		logger:   config.Logger.With("session_id", config.ID),
		trace:    config.TraceLogger,
		jobs:     make(map[uint32]Job),
	}
}

// ID returns the session ID.
func (s *Session) ID() string {
	return s.id
}

// Request sends msg to target. The returned handle is the driver's
// pending-request handle; removing it drops the response.
func (s *Session) Request(msg wire.Message, target wire.NodeID, opts RequestOptions) (transport.Handle, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if msg.Type == "" {
		return nil, ErrMissingType
	}
	if opts.Timeout < 0 {
		return nil, ErrNegativeLimit
	}
	if s.driver.LocalNodeID().IsAnonymous() {
		return nil, ErrAnonymous
	}

	cb := opts.Callback
	if cb == nil {
		cb = s.printResponse(target)
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = transport.DefaultRequestTimeout
	}

	return s.driver.Request(msg, target, s.guardResponse(msg.Type, cb), s.resolvePriority(opts.Priority), timeout)
}

// Broadcast sends msg once immediately. With an Interval it returns the
// job that keeps sending; otherwise it returns nil. An error from the
// immediate send is returned and no job is created.
func (s *Session) Broadcast(msg wire.Message, opts BroadcastOptions) (*BroadcastJob, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if msg.Type == "" {
		return nil, ErrMissingType
	}
	if opts.Interval < 0 || opts.Count < 0 || opts.Duration < 0 {
		return nil, ErrNegativeLimit
	}
	if (opts.Count > 0 || opts.Duration > 0) && opts.Interval == 0 {
		return nil, ErrIntervalRequired
	}
	if s.driver.LocalNodeID().IsAnonymous() {
		return nil, ErrAnonymous
	}

	priority := s.resolvePriority(opts.Priority)
	if err := s.driver.Broadcast(msg, priority); err != nil {
		return nil, fmt.Errorf("broadcast %s: %w", msg.Type, err)
	}
	if opts.Interval == 0 {
		return nil, nil
	}

	return s.startBroadcast(msg, priority, opts), nil
}

// Subscribe delivers messages of messageType to opts.Callback until the
// count or duration is exhausted, the callback fails, or the job is
// removed.
func (s *Session) Subscribe(messageType string, opts SubscribeOptions) (*SubscriptionJob, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if messageType == "" {
		return nil, ErrMissingType
	}
	if opts.Count < 0 || opts.Duration < 0 {
		return nil, ErrNegativeLimit
	}
	if opts.OnEnd != nil && opts.Count == 0 && opts.Duration == 0 {
		return nil, ErrOnEndWithoutTermination
	}

	return s.startSubscription(messageType, opts), nil
}

// Jobs returns the active jobs ordered by ID.
func (s *Session) Jobs() []Job {
	out := make([]Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, j)
	}
	slices.SortFunc(out, func(a, b Job) int { return cmp.Compare(a.ID(), b.ID()) })
	return out
}

// Job returns the active job with the given ID.
func (s *Session) Job(id uint32) (Job, bool) {
	j, ok := s.jobs[id]
	return j, ok
}

// Close removes every active job. Subsequent calls fail with ErrClosed,
// including calls made from an OnEnd callback fired by Close itself.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	for _, j := range s.Jobs() {
		j.Remove()
	}
}

func (s *Session) resolvePriority(p *wire.Priority) wire.Priority {
	if p != nil {
		return *p
	}
	return s.priority
}

func (s *Session) allocJobID() uint32 {
	s.nextJobID++
	return s.nextJobID
}

func (s *Session) track(j Job) {
	s.jobs[j.ID()] = j
	s.traceJob(j, "", StateActive.String(), "")
}

func (s *Session) untrack(j Job, reason string) {
	delete(s.jobs, j.ID())
	s.traceJob(j, StateActive.String(), StateTerminated.String(), reason)
}

func (s *Session) now() time.Time {
	return s.driver.Now()
}

// guardResponse isolates a panicking response callback.
func (s *Session) guardResponse(messageType string, cb transport.ResponseFunc) transport.ResponseFunc {
	return func(ev transport.Event, err error) {
		cbErr := guard("response", func() error {
			cb(ev, err)
			return nil
		})
		if cbErr != nil {
			s.logger.Error("response callback failed", "type", messageType, "error", cbErr)
		}
	}
}

func (s *Session) traceJob(j Job, oldState, newState, reason string) {
	s.trace.Log(log.Event{
		Timestamp: s.now(),
		SessionID: s.id,
		Direction: log.DirectionLocal,
		Layer:     log.LayerSession,
		Category:  log.CategoryJob,
		LocalNode: s.driver.LocalNodeID(),
		Job: &log.JobEvent{
			JobID:     j.ID(),
			Kind:      j.Kind(),
			Type:      j.Type(),
			OldState:  oldState,
			NewState:  newState,
			Reason:    reason,
			Transfers: j.Transfers(),
		},
	})
}
