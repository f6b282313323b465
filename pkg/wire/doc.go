// Package wire defines the frame format exchanged on the bus.
//
// A frame carries one transfer: a broadcast message, a service request,
// or a service response. Frames are CBOR (RFC 8949) maps with integer
// keys; the payload is a free-form map keyed by field name so that the
// panel can send and display any data type without compiled-in schemas.
//
// # Node Identifiers
//
// Node ID 0 is reserved: a node without an assigned ID is anonymous and
// may only listen. Valid IDs are 1..127.
//
// # Priority
//
// Every transfer carries a priority in 0..31. Lower values are more
// urgent; 31 is the lowest priority.
//
// # Versioning
//
// Each frame carries the wire format version ("major.minor"). Receivers
// drop frames whose major version differs from their own.
package wire
