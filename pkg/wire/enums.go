package wire

import "fmt"

// NodeID identifies a node on the bus.
type NodeID uint8

const (
	// AnonymousNodeID is the ID of a node that has not been assigned one.
	// Frames with Destination 0 are addressed to every node.
	AnonymousNodeID NodeID = 0

	// MaxNodeID is the largest valid node ID.
	MaxNodeID NodeID = 127
)

// IsAnonymous returns true for the reserved anonymous ID.
func (id NodeID) IsAnonymous() bool {
	return id == AnonymousNodeID
}

// IsValid returns true if id may be assigned to a node.
func (id NodeID) IsValid() bool {
	return id >= 1 && id <= MaxNodeID
}

// String returns the ID in decimal, or "anonymous".
func (id NodeID) String() string {
	if id.IsAnonymous() {
		return "anonymous"
	}
	return fmt.Sprintf("%d", uint8(id))
}

// Priority is the transfer priority. Lower values are more urgent.
type Priority uint8

const (
	// PriorityHighest is the most urgent priority.
	PriorityHighest Priority = 0

	// PriorityLowest is the least urgent priority.
	PriorityLowest Priority = 31
)

// IsValid returns true if p is within 0..31.
func (p Priority) IsValid() bool {
	return p <= PriorityLowest
}

// Kind distinguishes the three transfer kinds.
type Kind uint8

const (
	// KindMessage is a broadcast message.
	KindMessage Kind = 0

	// KindRequest is a service request addressed to one node.
	KindRequest Kind = 1

	// KindResponse is a service response to a request.
	KindResponse Kind = 2
)

// IsValid returns true if k is a known kind.
func (k Kind) IsValid() bool {
	return k <= KindResponse
}

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindMessage:
		return "MESSAGE"
	case KindRequest:
		return "REQUEST"
	case KindResponse:
		return "RESPONSE"
	default:
		return "UNKNOWN"
	}
}
