// Package discovery finds buspanel UDP bus peers with mDNS/DNS-SD.
//
// Every node that joins a UDP bus advertises the service type
// _buspanel._udp. The instance name is "bus-<node id>-<suffix>", where the
// suffix is random so that two anonymous panels never collide.
//
// TXT records:
//   - nid: node ID (0 for anonymous nodes)
//   - ver: wire frame version ("major.minor")
//
// A Browser aggregates the addresses reported for one instance across
// interfaces and reports changes through added/removed callbacks. The
// command wires those callbacks to transport.UDPLink.AddPeer and
// RemovePeer, so the bus medium follows the set of advertised peers.
package discovery
