// Package transport provides the bus transport driver used by buspanel.
//
// The Driver interface is the contract the session layer consumes:
// a non-blocking Spin, per-type message handlers, one-shot and periodic
// timers, requests with timeouts, and broadcasts. Every registration
// returns a Handle whose Remove is idempotent.
//
// Node is the reference Driver. It is single-threaded by contract: all
// methods, handler callbacks and timer callbacks run on the goroutine
// that calls Spin. Frames travel over a Link:
//
//	┌────────────────────────────────┐
//	│   Node (handlers, timers,      │
//	│   pending requests)            │
//	├────────────────────────────────┤
//	│   CBOR Frame (pkg/wire)        │
//	├────────────────────────────────┤
//	│   Link: LoopbackHub | UDPLink  │
//	└────────────────────────────────┘
//
// Link implementations run their own I/O goroutines and hand received
// datagrams to the Node through a channel, so no link goroutine ever
// touches handler or timer state.
//
// # Addressing
//
// A link is a shared medium: every frame is offered to every attached
// node. A node drops frames addressed to another node, frames it sent
// itself, and frames that fail to decode or validate.
//
// A node configured with the anonymous ID (0) may listen but refuses to
// send requests or broadcasts.
package transport
