package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"slices"
	"sync"
	"time"

	"github.com/enbility/zeroconf/v3"
)

// AdvertiserConfig configures advertiser behavior.
type AdvertiserConfig struct {
	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string

	// TTL is the DNS record TTL (default: 120 seconds).
	TTL time.Duration
}

// DefaultAdvertiserConfig returns the default advertiser configuration.
func DefaultAdvertiserConfig() AdvertiserConfig {
	return AdvertiserConfig{TTL: DefaultTTL}
}

// MDNSAdvertiser advertises the local node using zeroconf.
type MDNSAdvertiser struct {
	config AdvertiserConfig

	mu       sync.Mutex
	server   *zeroconf.Server
	instance string
}

// NewMDNSAdvertiser creates a new mDNS advertiser.
func NewMDNSAdvertiser(config AdvertiserConfig) *MDNSAdvertiser {
	return &MDNSAdvertiser{config: config}
}

// Advertise starts advertising info, replacing any earlier advertisement.
// The advertisement is withdrawn when ctx is cancelled or Stop is called.
func (a *MDNSAdvertiser) Advertise(ctx context.Context, info *PeerInfo) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}

	instance := InstanceName(info.NodeID)
	if err := ValidateInstanceName(instance); err != nil {
		return err
	}

	port := int(info.Port)
	if port == 0 {
		port = DefaultPort
	}

	var opts []zeroconf.ServerOption
	if a.config.TTL > 0 {
		opts = append(opts, zeroconf.TTL(uint32(a.config.TTL.Seconds())))
	}

	server, err := zeroconf.Register(
		instance,
		ServiceType,
		Domain,
		port,
		TXTRecordsToStrings(EncodePeerTXT(info)),
		selectInterfaces(a.config.Interface),
		opts...,
	)
	if err != nil {
		return fmt.Errorf("failed to register %s: %w", ServiceType, err)
	}

	a.server = server
	a.instance = instance

	go func() {
		<-ctx.Done()
		a.mu.Lock()
		defer a.mu.Unlock()
		if a.server == server {
			server.Shutdown()
			a.server = nil
		}
	}()
	return nil
}

// Update replaces the TXT records of the running advertisement, e.g.
// after the node ID changes.
func (a *MDNSAdvertiser) Update(info *PeerInfo) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server == nil {
		return ErrNotAdvertising
	}
	a.server.SetText(TXTRecordsToStrings(EncodePeerTXT(info)))
	return nil
}

// InstanceName returns the instance name of the running advertisement.
func (a *MDNSAdvertiser) InstanceName() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.instance
}

// Stop withdraws the advertisement.
func (a *MDNSAdvertiser) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}
}

// BrowserConfig configures browser behavior.
type BrowserConfig struct {
	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string

	// Self is the local instance name, excluded from results.
	Self string

	// Logger receives diagnostics (default: slog.Default()).
	Logger *slog.Logger
}

// MDNSBrowser browses for bus peers using zeroconf.
type MDNSBrowser struct {
	config BrowserConfig
}

// NewMDNSBrowser creates a new mDNS browser.
func NewMDNSBrowser(config BrowserConfig) *MDNSBrowser {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &MDNSBrowser{config: config}
}

// Browse reports peers until ctx is cancelled. added receives a peer
// whenever it appears or gains addresses; removed receives a peer
// carrying only the addresses that went away. Callbacks run on the
// browsing goroutine.
func (b *MDNSBrowser) Browse(ctx context.Context, added, removed func(Peer)) error {
	entries := make(chan *zeroconf.ServiceEntry)
	gone := make(chan *zeroconf.ServiceEntry)

	var opts []zeroconf.ClientOption
	if ifaces := selectInterfaces(b.config.Interface); ifaces != nil {
		opts = append(opts, zeroconf.SelectIfaces(ifaces))
	}

	browseErr := make(chan error, 1)
	go func() {
		browseErr <- zeroconf.Browse(ctx, ServiceType, Domain, entries, gone, opts...)
	}()

	tracker := newPeerTracker(b.config.Self)
	for {
		select {
		case entry, ok := <-entries:
			if !ok {
				entries = nil
				continue
			}
			e := fromZeroconf(entry)
			peer, changed, err := tracker.add(e)
			if err != nil {
				b.config.Logger.Debug("ignoring peer advertisement", "instance", e.Instance, "error", err)
				continue
			}
			if changed && added != nil {
				added(peer)
			}

		case entry, ok := <-gone:
			if !ok {
				gone = nil
				continue
			}
			if peer, ok := tracker.remove(fromZeroconf(entry)); ok && removed != nil {
				removed(peer)
			}

		case err := <-browseErr:
			if err != nil && ctx.Err() == nil {
				return fmt.Errorf("browse %s: %w", ServiceType, err)
			}
			<-ctx.Done()
			return nil

		case <-ctx.Done():
			return nil
		}
	}
}

// peerTracker aggregates the addresses of each instance across
// interfaces.
type peerTracker struct {
	self  string
	peers map[string]*Peer
}

func newPeerTracker(self string) *peerTracker {
	return &peerTracker{self: self, peers: make(map[string]*Peer)}
}

// add merges e into the tracked peer. It reports whether the peer is new
// or gained addresses.
func (t *peerTracker) add(e ServiceEntry) (Peer, bool, error) {
	if e.Instance == t.self && t.self != "" {
		return Peer{}, false, nil
	}
	peer, err := e.ToPeer()
	if err != nil {
		return Peer{}, false, err
	}

	existing, found := t.peers[e.Instance]
	if !found {
		t.peers[e.Instance] = &peer
		return peer, len(peer.Addresses) > 0, nil
	}

	before := len(existing.Addresses)
	existing.Addresses = mergeAddresses(existing.Addresses, peer.Addresses)
	existing.NodeID = peer.NodeID
	existing.Version = peer.Version
	existing.Port = peer.Port
	return clonePeer(existing), len(existing.Addresses) > before, nil
}

// remove drops e's addresses from the tracked peer and returns a peer
// holding the addresses that were actually removed.
func (t *peerTracker) remove(e ServiceEntry) (Peer, bool) {
	existing, found := t.peers[e.Instance]
	if !found {
		return Peer{}, false
	}

	var dropped []string
	existing.Addresses = slices.DeleteFunc(existing.Addresses, func(addr string) bool {
		if slices.Contains(e.Addrs, addr) {
			dropped = append(dropped, addr)
			return true
		}
		return false
	})
	if len(existing.Addresses) == 0 {
		delete(t.peers, e.Instance)
	}
	if len(dropped) == 0 {
		return Peer{}, false
	}

	out := clonePeer(existing)
	out.Addresses = dropped
	return out, true
}

func clonePeer(p *Peer) Peer {
	out := *p
	out.Addresses = slices.Clone(p.Addresses)
	return out
}

// fromZeroconf converts a zeroconf entry to a ServiceEntry.
func fromZeroconf(entry *zeroconf.ServiceEntry) ServiceEntry {
	addrs := make([]string, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	for _, ip := range entry.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}
	return ServiceEntry{
		Instance: entry.Instance,
		Service:  entry.Service,
		Domain:   entry.Domain,
		Host:     entry.HostName,
		Port:     uint16(entry.Port),
		Text:     entry.Text,
		Addrs:    addrs,
	}
}

// mergeAddresses adds new addresses to existing list, avoiding duplicates.
func mergeAddresses(existing, added []string) []string {
	for _, addr := range added {
		if !slices.Contains(existing, addr) {
			existing = append(existing, addr)
		}
	}
	return existing
}

// selectInterfaces returns the named interface, or nil for all interfaces.
func selectInterfaces(name string) []net.Interface {
	if name == "" {
		return nil
	}
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return nil
	}
	return []net.Interface{*iface}
}
