package discovery

import (
	"errors"
	"net"
	"strconv"
	"time"

	"github.com/mash-protocol/buspanel/pkg/transport"
	"github.com/mash-protocol/buspanel/pkg/wire"
)

// Service constants for mDNS.
const (
	// ServiceType is the DNS-SD service type of bus peers.
	ServiceType = "_buspanel._udp"

	// Domain is the mDNS domain.
	Domain = "local"

	// DefaultPort is the advertised port when none is given.
	DefaultPort = transport.DefaultUDPPort

	// DefaultTTL is the DNS record TTL for advertisements.
	DefaultTTL = 120 * time.Second
)

// TXT record keys.
const (
	TXTKeyNodeID  = "nid" // Node ID (0-127)
	TXTKeyVersion = "ver" // Wire frame version
)

// Limits.
const (
	// MaxInstanceNameLen is the DNS label limit.
	MaxInstanceNameLen = 63
)

// Discovery errors.
var (
	ErrInvalidTXTRecord    = errors.New("invalid TXT record format")
	ErrMissingRequired     = errors.New("missing required field")
	ErrInstanceNameTooLong = errors.New("instance name exceeds 63 characters")
	ErrNotAdvertising      = errors.New("not advertising")
)

// PeerInfo describes the local node for advertisement.
type PeerInfo struct {
	// NodeID is the local node ID (0 when anonymous).
	NodeID wire.NodeID

	// Port is the UDP port the link listens on.
	Port uint16

	// Version is the wire frame version (default: version.Current).
	Version string
}

// Peer is a discovered bus peer.
type Peer struct {
	InstanceName string
	Host         string
	Port         uint16
	Addresses    []string
	NodeID       wire.NodeID
	Version      string
}

// Endpoints returns "host:port" strings for every address of the peer.
func (p Peer) Endpoints() []string {
	out := make([]string, 0, len(p.Addresses))
	port := strconv.FormatUint(uint64(p.Port), 10)
	for _, addr := range p.Addresses {
		out = append(out, net.JoinHostPort(addr, port))
	}
	return out
}

// ServiceEntry is a resolved mDNS service instance, independent of the
// mDNS library in use.
type ServiceEntry struct {
	Instance string
	Service  string
	Domain   string
	Host     string
	Port     uint16
	Text     []string
	Addrs    []string
}

// ToPeer converts the entry into a Peer by decoding its TXT records.
func (e *ServiceEntry) ToPeer() (Peer, error) {
	info, err := DecodePeerTXT(StringsToTXTRecords(e.Text))
	if err != nil {
		return Peer{}, err
	}
	return Peer{
		InstanceName: e.Instance,
		Host:         e.Host,
		Port:         e.Port,
		Addresses:    append([]string(nil), e.Addrs...),
		NodeID:       info.NodeID,
		Version:      info.Version,
	}, nil
}
