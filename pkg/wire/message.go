package wire

import (
	"errors"
	"fmt"
	"math"
)

// Frame validation errors.
var (
	ErrMissingType        = errors.New("frame has no data type")
	ErrInvalidKind        = errors.New("invalid frame kind")
	ErrInvalidPriority    = errors.New("invalid priority")
	ErrInvalidNodeID      = errors.New("invalid node ID")
	ErrMissingSource      = errors.New("service transfer from anonymous node")
	ErrMissingDestination = errors.New("service transfer without destination")
)

// Payload holds the fields of a message, keyed by field name.
type Payload map[string]any

// Int64 returns the named field as an int64. CBOR decoding yields
// uint64 for non-negative integers, so both signed and unsigned values
// are accepted.
func (p Payload) Int64(key string) (int64, bool) {
	return ToInt64(p[key])
}

// String returns the named field as a string.
func (p Payload) String(key string) (string, bool) {
	s, ok := p[key].(string)
	return s, ok
}

// Clone returns a shallow copy of p.
func (p Payload) Clone() Payload {
	if p == nil {
		return nil
	}
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// ToInt64 converts any integer value to int64.
func ToInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}

// Message is a typed payload: the data type name plus its fields.
type Message struct {
	// Type is the full data type name, e.g. "uavcan.protocol.NodeStatus".
	Type string

	// Fields holds the field values.
	Fields Payload
}

// NewMessage creates a message of the given type.
func NewMessage(typ string, fields Payload) Message {
	return Message{Type: typ, Fields: fields}
}

// Frame is one transfer on the bus.
//
// CBOR encoding:
//
//	{
//	  1: version,      // "major.minor"
//	  2: kind,         // 0=message, 1=request, 2=response
//	  3: type,         // data type name
//	  4: source,       // uint8, 0 = anonymous
//	  5: destination,  // uint8, 0 = broadcast
//	  6: priority,     // uint8, 0..31
//	  7: transferId,   // uint32
//	  8: payload       // map of field name to value
//	}
type Frame struct {
	Version     string   `cbor:"1,keyasint"`
	Kind        Kind     `cbor:"2,keyasint"`
	Type        string   `cbor:"3,keyasint"`
	Source      NodeID   `cbor:"4,keyasint,omitempty"`
	Destination NodeID   `cbor:"5,keyasint,omitempty"`
	Priority    Priority `cbor:"6,keyasint"`
	TransferID  uint32   `cbor:"7,keyasint"`
	Payload     Payload  `cbor:"8,keyasint,omitempty"`
}

// Message returns the typed payload carried by the frame.
func (f *Frame) Message() Message {
	return Message{Type: f.Type, Fields: f.Payload}
}

// Validate checks the frame's structural invariants.
func (f *Frame) Validate() error {
	if f.Type == "" {
		return ErrMissingType
	}
	if !f.Kind.IsValid() {
		return fmt.Errorf("%w: %d", ErrInvalidKind, f.Kind)
	}
	if !f.Priority.IsValid() {
		return fmt.Errorf("%w: %d", ErrInvalidPriority, f.Priority)
	}
	if f.Source > MaxNodeID {
		return fmt.Errorf("%w: source %d", ErrInvalidNodeID, f.Source)
	}
	if f.Destination > MaxNodeID {
		return fmt.Errorf("%w: destination %d", ErrInvalidNodeID, f.Destination)
	}
	if f.Kind != KindMessage {
		if f.Source.IsAnonymous() {
			return ErrMissingSource
		}
		if f.Destination.IsAnonymous() {
			return ErrMissingDestination
		}
	}
	return nil
}
