package transport

import (
	"slices"
	"sync"
)

// DefaultInboundBuffer is the inbound queue capacity of a link.
const DefaultInboundBuffer = 256

// LoopbackHub is an in-process bus medium. Every frame sent by one
// attached link is queued on every other attached link. Delivery is
// synchronous with Send, which keeps tests deterministic.
type LoopbackHub struct {
	mu    sync.Mutex
	links []*LoopbackLink
}

// NewLoopbackHub creates an empty hub.
func NewLoopbackHub() *LoopbackHub {
	return &LoopbackHub{}
}

// Attach creates a new link on the hub.
func (h *LoopbackHub) Attach() *LoopbackLink {
	l := &LoopbackLink{
		hub:     h,
		inbound: make(chan []byte, DefaultInboundBuffer),
	}
	h.mu.Lock()
	h.links = append(h.links, l)
	h.mu.Unlock()
	return l
}

func (h *LoopbackHub) detach(l *LoopbackLink) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.links = slices.DeleteFunc(h.links, func(x *LoopbackLink) bool { return x == l })
}

func (h *LoopbackHub) deliver(from *LoopbackLink, data []byte) {
	h.mu.Lock()
	peers := slices.Clone(h.links)
	h.mu.Unlock()

	for _, l := range peers {
		if l == from {
			continue
		}
		l.enqueue(data)
	}
}

// LoopbackLink is one attachment to a LoopbackHub.
type LoopbackLink struct {
	hub     *LoopbackHub
	inbound chan []byte

	mu       sync.Mutex
	sendErr  error
	sent     int
	overflow int
	closed   bool
}

// Send queues a copy of data on every other link of the hub.
func (l *LoopbackLink) Send(data []byte) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	if l.sendErr != nil {
		err := l.sendErr
		l.mu.Unlock()
		return err
	}
	l.sent++
	l.mu.Unlock()

	l.hub.deliver(l, slices.Clone(data))
	return nil
}

// Inbound returns the receive queue.
func (l *LoopbackLink) Inbound() <-chan []byte {
	return l.inbound
}

// Close detaches the link from the hub.
func (l *LoopbackLink) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	l.mu.Unlock()

	l.hub.detach(l)
	return nil
}

// FailSends makes every subsequent Send return err. Pass nil to recover.
func (l *LoopbackLink) FailSends(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sendErr = err
}

// Sent returns the number of successful sends.
func (l *LoopbackLink) Sent() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sent
}

// Overflows returns the number of frames dropped because the inbound
// queue was full.
func (l *LoopbackLink) Overflows() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.overflow
}

func (l *LoopbackLink) enqueue(data []byte) {
	select {
	case l.inbound <- data:
	default:
		l.mu.Lock()
		l.overflow++
		l.mu.Unlock()
	}
}
