package log

import (
	"time"

	"github.com/mash-protocol/buspanel/pkg/wire"
)

// Event represents a trace event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID identifies the panel session that produced the event (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Direction indicates transfer flow.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// LocalNode is the local node ID (0 while anonymous).
	LocalNode wire.NodeID `cbor:"6,keyasint,omitempty"`

	// RemoteNode is the peer node ID for transfers (0 for broadcasts).
	RemoteNode wire.NodeID `cbor:"7,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Message *MessageEvent   `cbor:"10,keyasint,omitempty"` // Transport layer
	Job     *JobEvent       `cbor:"11,keyasint,omitempty"` // Session layer
	Error   *ErrorEventData `cbor:"12,keyasint,omitempty"` // Errors at any layer
}

// Direction indicates the direction of a transfer.
type Direction uint8

const (
	// DirectionIn indicates an incoming transfer.
	DirectionIn Direction = 0
	// DirectionOut indicates an outgoing transfer.
	DirectionOut Direction = 1
	// DirectionLocal indicates an event with no bus traffic.
	DirectionLocal Direction = 2
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	case DirectionLocal:
		return "LOCAL"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which layer captured the event.
type Layer uint8

const (
	// LayerTransport is the transport driver layer.
	LayerTransport Layer = 0
	// LayerSession is the session/job layer.
	LayerSession Layer = 1
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerSession:
		return "SESSION"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryMessage indicates a transfer (message/request/response).
	CategoryMessage Category = 0
	// CategoryJob indicates a job state change.
	CategoryJob Category = 1
	// CategoryError indicates an error event.
	CategoryError Category = 2
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryMessage:
		return "MESSAGE"
	case CategoryJob:
		return "JOB"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// MessageEvent captures one transfer at the transport layer.
type MessageEvent struct {
	// Kind distinguishes message/request/response.
	Kind wire.Kind `cbor:"1,keyasint"`

	// Type is the data type name.
	Type string `cbor:"2,keyasint"`

	// Priority is the transfer priority.
	Priority wire.Priority `cbor:"3,keyasint"`

	// TransferID correlates requests and responses.
	TransferID uint32 `cbor:"4,keyasint"`

	// Payload is the decoded field map.
	Payload wire.Payload `cbor:"5,keyasint,omitempty"`
}

// JobKind identifies the kind of background job.
type JobKind uint8

const (
	// JobBroadcast is a periodic broadcast job.
	JobBroadcast JobKind = 0
	// JobSubscription is a subscription job.
	JobSubscription JobKind = 1
)

// String returns the job kind name.
func (k JobKind) String() string {
	switch k {
	case JobBroadcast:
		return "BROADCAST"
	case JobSubscription:
		return "SUBSCRIPTION"
	default:
		return "UNKNOWN"
	}
}

// JobEvent captures a job lifecycle transition.
type JobEvent struct {
	// JobID identifies the job within its session.
	JobID uint32 `cbor:"1,keyasint"`

	// Kind of job.
	Kind JobKind `cbor:"2,keyasint"`

	// Type is the data type the job publishes or listens for.
	Type string `cbor:"3,keyasint"`

	// OldState is the previous state (empty on creation).
	OldState string `cbor:"4,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"5,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"6,keyasint,omitempty"`

	// Transfers is the number of messages sent or delivered so far.
	Transfers int `cbor:"7,keyasint,omitempty"`
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"3,keyasint,omitempty"`
}
