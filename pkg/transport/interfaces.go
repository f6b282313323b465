package transport

import (
	"errors"
	"sync"
	"time"

	"github.com/mash-protocol/buspanel/pkg/wire"
)

// DefaultRequestTimeout is used when a request is issued without a timeout.
const DefaultRequestTimeout = 1 * time.Second

// Driver errors.
var (
	ErrTimeout   = errors.New("request timed out")
	ErrClosed    = errors.New("transport closed")
	ErrNoRoute   = errors.New("no route to node")
	ErrAnonymous = errors.New("local node is anonymous")
)

// Handle is a cancellable registration: a message handler, a timer, a
// pending request, or a background job built on top of them.
type Handle interface {
	// Remove cancels the registration. Calling Remove more than once has
	// no further effect.
	Remove()
}

// HandleFunc returns a Handle that runs fn on the first Remove only.
func HandleFunc(fn func()) Handle {
	return &funcHandle{fn: fn}
}

type funcHandle struct {
	once sync.Once
	fn   func()
}

func (h *funcHandle) Remove() {
	h.once.Do(func() {
		if h.fn != nil {
			h.fn()
		}
	})
}

// Event is one received transfer as seen by handlers and response callbacks.
type Event struct {
	Message     wire.Message
	Kind        wire.Kind
	Source      wire.NodeID
	Destination wire.NodeID
	Priority    wire.Priority
	TransferID  uint32
	ReceivedAt  time.Time
}

// HandlerFunc processes a received message or request.
type HandlerFunc func(ev Event)

// ResponseFunc receives the outcome of a request: the response event, or
// a non-nil error (ErrTimeout, ErrClosed) with a zero Event.
type ResponseFunc func(ev Event, err error)

// Driver is the transport capability consumed by the session layer.
// Implementations are not safe for concurrent use; every method must be
// called from the goroutine that calls Spin.
type Driver interface {
	// Spin processes pending I/O and due timers. A zero budget never blocks.
	Spin(budget time.Duration) error

	// AddHandler registers fn for messages and requests of messageType.
	AddHandler(messageType string, fn HandlerFunc) Handle

	// Periodic invokes fn every interval until the handle is removed.
	Periodic(interval time.Duration, fn func()) Handle

	// Defer invokes fn once after delay unless the handle is removed first.
	Defer(delay time.Duration, fn func()) Handle

	// Request sends msg to target. cb is invoked exactly once with the
	// response or an error, unless the handle is removed first.
	Request(msg wire.Message, target wire.NodeID, cb ResponseFunc, priority wire.Priority, timeout time.Duration) (Handle, error)

	// Broadcast sends msg to every node.
	Broadcast(msg wire.Message, priority wire.Priority) error

	// LocalNodeID returns the local node ID; 0 means anonymous.
	LocalNodeID() wire.NodeID

	// Now returns the driver's current time.
	Now() time.Time
}

// Link is a shared bus medium carrying encoded frames.
type Link interface {
	// Send offers data to every other node on the medium.
	Send(data []byte) error

	// Inbound delivers datagrams received from the medium.
	Inbound() <-chan []byte

	// Close releases the link. Inbound is not closed.
	Close() error
}

// Compile-time interface satisfaction checks.
var (
	_ Driver = (*Node)(nil)
	_ Link   = (*LoopbackLink)(nil)
	_ Link   = (*UDPLink)(nil)
)
