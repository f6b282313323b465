package session

import (
	"time"

	"github.com/mash-protocol/buspanel/pkg/transport"
	"github.com/mash-protocol/buspanel/pkg/wire"
)

// DefaultPriority is the priority used when none is given: a low
// urgency so operator traffic never crowds out device traffic.
const DefaultPriority wire.Priority = 30

// Callback receives messages delivered to a subscription. Returning an
// error ends the subscription.
type Callback func(ev transport.Event) error

// Prio returns a pointer to p for use in option structs.
func Prio(p wire.Priority) *wire.Priority {
	return &p
}

// RequestOptions configures Request. The zero value uses the defaults.
type RequestOptions struct {
	// Callback receives the response or the failure (default: print as YAML).
	Callback transport.ResponseFunc

	// Priority of the request (default: DefaultPriority).
	Priority *wire.Priority

	// Timeout for the response (default: transport.DefaultRequestTimeout).
	Timeout time.Duration
}

// BroadcastOptions configures Broadcast. Without an Interval the message
// is sent once; with one it is repeated until Count sends have happened
// or Duration has elapsed, whichever comes first.
type BroadcastOptions struct {
	// Priority of every send (default: DefaultPriority).
	Priority *wire.Priority

	// Interval between periodic sends. Zero sends once.
	Interval time.Duration

	// Count is the total number of sends, including the immediate one.
	// Zero means unbounded.
	Count int

	// Duration bounds the job in time. Zero means unbounded.
	Duration time.Duration
}

// SubscribeOptions configures Subscribe.
type SubscribeOptions struct {
	// Callback receives every delivered message (default: print as YAML).
	Callback Callback

	// Count ends the subscription after that many deliveries. Zero means
	// unbounded.
	Count int

	// Duration ends the subscription after that long. Zero means unbounded.
	Duration time.Duration

	// OnEnd is invoked once when the subscription terminates.
	OnEnd func()
}
