package transport

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/mash-protocol/buspanel/pkg/clock"
	"github.com/mash-protocol/buspanel/pkg/log"
	"github.com/mash-protocol/buspanel/pkg/wire"
)

// DefaultMaxFramesPerSpin bounds the number of frames one Spin processes.
const DefaultMaxFramesPerSpin = 1024

// NodeConfig configures a Node.
type NodeConfig struct {
	// NodeID is the local node ID. Zero makes the node anonymous.
	NodeID wire.NodeID

	// Clock is the time source (default: clock.Real()).
	Clock clock.Clock

	// Logger receives operational diagnostics (default: slog.Default()).
	Logger *slog.Logger

	// TraceLogger receives a trace event for every frame in and out.
	TraceLogger log.Logger

	// SessionID is stamped on trace events.
	SessionID string

	// MaxFramesPerSpin bounds inbound processing per Spin call.
	MaxFramesPerSpin int
}

// DefaultNodeConfig returns the default node configuration (anonymous).
func DefaultNodeConfig() NodeConfig {
	return NodeConfig{
		Clock:            clock.Real(),
		MaxFramesPerSpin: DefaultMaxFramesPerSpin,
	}
}

// NodeStats holds counters describing a node's traffic.
type NodeStats struct {
	FramesIn        uint64
	FramesOut       uint64
	Dropped         uint64
	DecodeErrors    uint64
	SendErrors      uint64
	Unmatched       uint64
	PendingRequests int
	Timers          int
	Handlers        int
}

type handlerEntry struct {
	fn      HandlerFunc
	removed bool
}

type pendingKey struct {
	node       wire.NodeID
	transferID uint32
}

type pendingRequest struct {
	cb      ResponseFunc
	timeout *timer
}

// Node is the reference Driver: a bus node attached to a Link.
//
// Node is not safe for concurrent use. Every method, including Remove on
// the handles it returns, must run on the goroutine that calls Spin.
type Node struct {
	link   Link
	config NodeConfig
	clock  clock.Clock
	logger *slog.Logger
	trace  log.Logger

	handlers map[string][]*handlerEntry
	timers   timerQueue
	timerSeq uint64
	pending  map[pendingKey]*pendingRequest

	nextTransferID uint32
	stats          NodeStats
	closed         bool
}

// NewNode creates a node on link.
func NewNode(link Link, config NodeConfig) (*Node, error) {
	if config.NodeID > wire.MaxNodeID {
		return nil, fmt.Errorf("%w: %d", wire.ErrInvalidNodeID, config.NodeID)
	}
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	config.TraceLogger = log.OrNoop(config.TraceLogger)
	if config.MaxFramesPerSpin <= 0 {
		config.MaxFramesPerSpin = DefaultMaxFramesPerSpin
	}

	return &Node{
		link:     link,
		config:   config,
		clock:    config.Clock,
		logger:   config.Logger,
		trace:    config.TraceLogger,
		handlers: make(map[string][]*handlerEntry),
		pending:  make(map[pendingKey]*pendingRequest),
	}, nil
}

// LocalNodeID returns the configured node ID.
func (n *Node) LocalNodeID() wire.NodeID {
	return n.config.NodeID
}

// Now returns the node clock's current time.
func (n *Node) Now() time.Time {
	return n.clock.Now()
}

// Stats returns a snapshot of the node's counters.
func (n *Node) Stats() NodeStats {
	s := n.stats
	s.PendingRequests = len(n.pending)
	s.Timers = len(n.timers)
	for _, entries := range n.handlers {
		s.Handlers += len(entries)
	}
	return s
}

// Spin processes received frames and fires due timers. With a zero budget
// it processes what is already queued and returns. A positive budget
// keeps it waiting for traffic or timers until the budget has elapsed.
func (n *Node) Spin(budget time.Duration) error {
	if n.closed {
		return ErrClosed
	}

	n.drainInbound()
	n.fireTimers()
	if budget <= 0 {
		return nil
	}

	deadline := n.clock.Now().Add(budget)
	for !n.closed {
		now := n.clock.Now()
		if !now.Before(deadline) {
			return nil
		}
		wait := deadline.Sub(now)
		if next, ok := n.timers.next(); ok && next.Sub(now) < wait {
			wait = next.Sub(now)
		}

		select {
		case data := <-n.link.Inbound():
			n.handleDatagram(data)
		case <-n.clock.After(wait):
		}
		n.drainInbound()
		n.fireTimers()
	}
	return ErrClosed
}

// AddHandler registers fn for transfers of messageType. Handlers for the
// same type run in registration order.
func (n *Node) AddHandler(messageType string, fn HandlerFunc) Handle {
	entry := &handlerEntry{fn: fn}
	n.handlers[messageType] = append(n.handlers[messageType], entry)

	return HandleFunc(func() {
		entry.removed = true
		entries := slices.DeleteFunc(n.handlers[messageType], func(e *handlerEntry) bool {
			return e == entry
		})
		if len(entries) == 0 {
			delete(n.handlers, messageType)
		} else {
			n.handlers[messageType] = entries
		}
	})
}

// Periodic invokes fn every interval. Missed intervals are skipped rather
// than replayed.
func (n *Node) Periodic(interval time.Duration, fn func()) Handle {
	if interval <= 0 {
		panic("transport: non-positive interval for Periodic")
	}
	t := n.addTimer(interval, interval, fn)
	return HandleFunc(func() { n.timers.cancel(t) })
}

// Defer invokes fn once after delay.
func (n *Node) Defer(delay time.Duration, fn func()) Handle {
	t := n.addTimer(delay, 0, fn)
	return HandleFunc(func() { n.timers.cancel(t) })
}

// Request sends a request to target and waits for a matching response.
func (n *Node) Request(msg wire.Message, target wire.NodeID, cb ResponseFunc, priority wire.Priority, timeout time.Duration) (Handle, error) {
	if n.closed {
		return nil, ErrClosed
	}
	if n.config.NodeID.IsAnonymous() {
		return nil, ErrAnonymous
	}
	if !target.IsValid() || target == n.config.NodeID {
		return nil, fmt.Errorf("%w: %v", ErrNoRoute, target)
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	frame := wire.Frame{
		Kind:        wire.KindRequest,
		Type:        msg.Type,
		Source:      n.config.NodeID,
		Destination: target,
		Priority:    priority,
		TransferID:  n.allocTransferID(),
		Payload:     msg.Fields,
	}
	if err := n.send(&frame); err != nil {
		return nil, err
	}

	key := pendingKey{node: target, transferID: frame.TransferID}
	p := &pendingRequest{cb: cb}
	p.timeout = n.addTimer(timeout, 0, func() {
		if n.pending[key] != p {
			return
		}
		delete(n.pending, key)
		n.logger.Debug("request timed out", "type", msg.Type, "target", target, "transfer_id", key.transferID)
		p.invoke(Event{}, ErrTimeout)
	})
	n.pending[key] = p

	return HandleFunc(func() {
		if n.pending[key] == p {
			delete(n.pending, key)
			n.timers.cancel(p.timeout)
		}
	}), nil
}

// Respond answers a received request with a response carrying fields.
func (n *Node) Respond(req Event, fields wire.Payload) error {
	if n.closed {
		return ErrClosed
	}
	if req.Kind != wire.KindRequest {
		return fmt.Errorf("respond: %w", wire.ErrInvalidKind)
	}
	if n.config.NodeID.IsAnonymous() {
		return ErrAnonymous
	}

	frame := wire.Frame{
		Kind:        wire.KindResponse,
		Type:        req.Message.Type,
		Source:      n.config.NodeID,
		Destination: req.Source,
		Priority:    req.Priority,
		TransferID:  req.TransferID,
		Payload:     fields,
	}
	return n.send(&frame)
}

// Broadcast sends msg to every node on the link.
func (n *Node) Broadcast(msg wire.Message, priority wire.Priority) error {
	if n.closed {
		return ErrClosed
	}
	if n.config.NodeID.IsAnonymous() {
		return ErrAnonymous
	}

	frame := wire.Frame{
		Kind:       wire.KindMessage,
		Type:       msg.Type,
		Source:     n.config.NodeID,
		Priority:   priority,
		TransferID: n.allocTransferID(),
		Payload:    msg.Fields,
	}
	return n.send(&frame)
}

// Close fails every pending request with ErrClosed, drops all handlers and
// timers, and closes the link. Close is idempotent.
func (n *Node) Close() error {
	if n.closed {
		return nil
	}
	n.closed = true

	pending := n.pending
	n.pending = make(map[pendingKey]*pendingRequest)
	for _, p := range pending {
		p.invoke(Event{}, ErrClosed)
	}
	n.timers = nil
	n.handlers = make(map[string][]*handlerEntry)

	return n.link.Close()
}

func (p *pendingRequest) invoke(ev Event, err error) {
	if p.cb != nil {
		p.cb(ev, err)
	}
}

func (n *Node) allocTransferID() uint32 {
	id := n.nextTransferID
	n.nextTransferID++
	return id
}

func (n *Node) addTimer(delay, interval time.Duration, fn func()) *timer {
	n.timerSeq++
	t := &timer{
		deadline: n.clock.Now().Add(delay),
		interval: interval,
		fn:       fn,
		seq:      n.timerSeq,
		index:    -1,
	}
	n.timers.schedule(t)
	return t
}

// fireTimers runs every timer due now. Timers created by callbacks during
// this pass wait for the next Spin.
func (n *Node) fireTimers() {
	now := n.clock.Now()
	limit := n.timerSeq
	for !n.closed {
		t := n.timers.popDue(now)
		if t == nil {
			return
		}
		if t.seq > limit {
			n.timers.schedule(t)
			return
		}
		if t.interval > 0 {
			for !t.deadline.After(now) {
				t.deadline = t.deadline.Add(t.interval)
			}
			n.timers.schedule(t)
		}
		t.fn()
	}
}

func (n *Node) drainInbound() {
	for i := 0; i < n.config.MaxFramesPerSpin && !n.closed; i++ {
		select {
		case data := <-n.link.Inbound():
			n.handleDatagram(data)
		default:
			return
		}
	}
}

func (n *Node) handleDatagram(data []byte) {
	frame, err := wire.DecodeFrame(data)
	if err != nil {
		n.stats.DecodeErrors++
		n.logger.Debug("dropping undecodable frame", "error", err, "size", len(data))
		n.traceError("decode", err)
		return
	}

	local := n.config.NodeID
	if !local.IsAnonymous() && frame.Source == local {
		n.stats.Dropped++
		return
	}
	if frame.Destination != wire.AnonymousNodeID && frame.Destination != local {
		n.stats.Dropped++
		return
	}

	n.stats.FramesIn++
	ev := Event{
		Message:     frame.Message(),
		Kind:        frame.Kind,
		Source:      frame.Source,
		Destination: frame.Destination,
		Priority:    frame.Priority,
		TransferID:  frame.TransferID,
		ReceivedAt:  n.clock.Now(),
	}
	n.traceFrame(log.DirectionIn, frame.Source, *frame)

	if frame.Kind == wire.KindResponse {
		n.completeRequest(ev)
		return
	}
	n.dispatch(ev)
}

func (n *Node) completeRequest(ev Event) {
	key := pendingKey{node: ev.Source, transferID: ev.TransferID}
	p, ok := n.pending[key]
	if !ok {
		n.stats.Unmatched++
		n.logger.Debug("unmatched response", "type", ev.Message.Type, "source", ev.Source, "transfer_id", ev.TransferID)
		return
	}
	delete(n.pending, key)
	n.timers.cancel(p.timeout)
	p.invoke(ev, nil)
}

// dispatch runs the handlers registered for the event's type. Handlers
// removed by an earlier handler in the same pass are skipped.
func (n *Node) dispatch(ev Event) {
	entries := slices.Clone(n.handlers[ev.Message.Type])
	for _, e := range entries {
		if e.removed {
			continue
		}
		e.fn(ev)
	}
}

func (n *Node) send(frame *wire.Frame) error {
	data, err := wire.EncodeFrame(frame)
	if err != nil {
		return err
	}
	if err := n.link.Send(data); err != nil {
		n.stats.SendErrors++
		n.traceError("send "+frame.Type, err)
		return fmt.Errorf("send %s: %w", frame.Type, err)
	}
	n.stats.FramesOut++
	n.traceFrame(log.DirectionOut, frame.Destination, *frame)
	return nil
}

func (n *Node) traceFrame(dir log.Direction, remote wire.NodeID, frame wire.Frame) {
	n.trace.Log(log.Event{
		Timestamp:  n.clock.Now(),
		SessionID:  n.config.SessionID,
		Direction:  dir,
		Layer:      log.LayerTransport,
		Category:   log.CategoryMessage,
		LocalNode:  n.config.NodeID,
		RemoteNode: remote,
		Message: &log.MessageEvent{
			Kind:       frame.Kind,
			Type:       frame.Type,
			Priority:   frame.Priority,
			TransferID: frame.TransferID,
			Payload:    frame.Payload,
		},
	})
}

func (n *Node) traceError(context string, err error) {
	n.trace.Log(log.Event{
		Timestamp: n.clock.Now(),
		SessionID: n.config.SessionID,
		Direction: log.DirectionLocal,
		Layer:     log.LayerTransport,
		Category:  log.CategoryError,
		LocalNode: n.config.NodeID,
		Error: &log.ErrorEventData{
			Layer:   log.LayerTransport,
			Message: err.Error(),
			Context: context,
		},
	})
}
