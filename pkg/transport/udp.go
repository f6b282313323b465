package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"slices"
	"sync"
	"time"
)

// UDP link defaults.
const (
	// DefaultUDPPort is the default bus port.
	DefaultUDPPort = 9382

	// MaxDatagramSize is the largest frame a UDP link accepts.
	MaxDatagramSize = 65507
)

// UDPConfig configures a UDPLink.
type UDPConfig struct {
	// ListenAddr is the local address (default ":9382").
	ListenAddr string

	// Peers are the initial peer addresses ("host:port").
	Peers []string

	// InboundBuffer is the receive queue capacity.
	InboundBuffer int

	// Backoff controls the delay after receive errors.
	Backoff BackoffConfig

	// Logger receives link diagnostics (default: slog.Default()).
	Logger *slog.Logger
}

// UDPLink emulates a shared bus over UDP: Send writes each frame to every
// known peer, and a receive goroutine queues inbound datagrams.
type UDPLink struct {
	conn    net.PacketConn
	inbound chan []byte
	logger  *slog.Logger
	backoff *Backoff

	mu    sync.RWMutex
	peers map[string]*net.UDPAddr

	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

// ListenUDP opens a UDP link and starts its receive loop. The loop stops
// when ctx is cancelled or the link is closed.
func ListenUDP(ctx context.Context, cfg UDPConfig) (*UDPLink, error) {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = fmt.Sprintf(":%d", DefaultUDPPort)
	}
	if cfg.InboundBuffer <= 0 {
		cfg.InboundBuffer = DefaultInboundBuffer
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	var lc net.ListenConfig
	conn, err := lc.ListenPacket(ctx, "udp", cfg.ListenAddr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", cfg.ListenAddr, err)
	}

	l := &UDPLink{
		conn:    conn,
		inbound: make(chan []byte, cfg.InboundBuffer),
		logger:  cfg.Logger,
		backoff: NewBackoff(cfg.Backoff),
		peers:   make(map[string]*net.UDPAddr),
		done:    make(chan struct{}),
	}
	for _, p := range cfg.Peers {
		if err := l.AddPeer(p); err != nil {
			conn.Close()
			return nil, err
		}
	}

	l.wg.Add(1)
	go l.receiveLoop()
	go func() {
		select {
		case <-ctx.Done():
			l.Close()
		case <-l.done:
		}
	}()

	return l, nil
}

// Addr returns the local address.
func (l *UDPLink) Addr() net.Addr {
	return l.conn.LocalAddr()
}

// AddPeer adds a peer address. Adding a known peer is a no-op.
func (l *UDPLink) AddPeer(addr string) error {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return fmt.Errorf("resolve peer %s: %w", addr, err)
	}
	l.mu.Lock()
	l.peers[udpAddr.String()] = udpAddr
	l.mu.Unlock()
	return nil
}

// RemovePeer removes a peer address.
func (l *UDPLink) RemovePeer(addr string) {
	key := addr
	if udpAddr, err := net.ResolveUDPAddr("udp", addr); err == nil {
		key = udpAddr.String()
	}
	l.mu.Lock()
	delete(l.peers, key)
	l.mu.Unlock()
}

// Peers returns the sorted peer addresses.
func (l *UDPLink) Peers() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]string, 0, len(l.peers))
	for k := range l.peers {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Send writes data to every peer. It returns the joined write errors;
// a frame reaching some peers is still reported as failed. With no peers
// the frame goes nowhere and Send succeeds, like a bus with no listeners.
func (l *UDPLink) Send(data []byte) error {
	select {
	case <-l.done:
		return ErrClosed
	default:
	}
	if len(data) > MaxDatagramSize {
		return fmt.Errorf("frame of %d bytes exceeds datagram size", len(data))
	}

	l.mu.RLock()
	peers := make([]*net.UDPAddr, 0, len(l.peers))
	for _, p := range l.peers {
		peers = append(peers, p)
	}
	l.mu.RUnlock()

	var errs []error
	for _, p := range peers {
		if _, err := l.conn.WriteTo(data, p); err != nil {
			errs = append(errs, fmt.Errorf("write to %s: %w", p, err))
		}
	}
	return errors.Join(errs...)
}

// Inbound returns the receive queue.
func (l *UDPLink) Inbound() <-chan []byte {
	return l.inbound
}

// Close stops the receive loop and closes the socket. Close is idempotent.
func (l *UDPLink) Close() error {
	var err error
	l.closeOnce.Do(func() {
		close(l.done)
		err = l.conn.Close()
		l.wg.Wait()
	})
	return err
}

func (l *UDPLink) receiveLoop() {
	defer l.wg.Done()

	buf := make([]byte, MaxDatagramSize)
	for {
		n, from, err := l.conn.ReadFrom(buf)
		if err != nil {
			select {
			case <-l.done:
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			delay := l.backoff.Next()
			l.logger.Warn("udp receive failed", "error", err, "retry_in", delay, "attempt", l.backoff.Attempts())
			select {
			case <-l.done:
				return
			case <-time.After(delay):
			}
			continue
		}
		l.backoff.Reset()

		data := make([]byte, n)
		copy(data, buf[:n])
		select {
		case l.inbound <- data:
		default:
			l.logger.Debug("inbound queue full, dropping datagram", "from", from, "size", n)
		}
	}
}
