package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(instance string, nid string, addrs ...string) ServiceEntry {
	return ServiceEntry{
		Instance: instance,
		Service:  ServiceType,
		Domain:   Domain,
		Host:     instance + ".local",
		Port:     9382,
		Text:     []string{"nid=" + nid, "ver=1.0"},
		Addrs:    addrs,
	}
}

func TestPeerTrackerAggregatesAddresses(t *testing.T) {
	tr := newPeerTracker("")

	peer, changed, err := tr.add(entry("bus-5-a", "5", "192.168.1.10"))
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"192.168.1.10"}, peer.Addresses)
	assert.Equal(t, []string{"192.168.1.10:9382"}, peer.Endpoints())

	// Same address seen on another interface.
	_, changed, err = tr.add(entry("bus-5-a", "5", "192.168.1.10"))
	require.NoError(t, err)
	assert.False(t, changed)

	peer, changed, err = tr.add(entry("bus-5-a", "5", "fe80::1"))
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"192.168.1.10", "fe80::1"}, peer.Addresses)
	assert.Equal(t, []string{"192.168.1.10:9382", "[fe80::1]:9382"}, peer.Endpoints())
}

func TestPeerTrackerRemove(t *testing.T) {
	tr := newPeerTracker("")
	_, _, err := tr.add(entry("bus-5-a", "5", "192.168.1.10", "fe80::1"))
	require.NoError(t, err)

	peer, ok := tr.remove(entry("bus-5-a", "5", "fe80::1"))
	require.True(t, ok)
	assert.Equal(t, []string{"fe80::1"}, peer.Addresses)
	assert.Len(t, tr.peers, 1)

	peer, ok = tr.remove(entry("bus-5-a", "5", "192.168.1.10"))
	require.True(t, ok)
	assert.Equal(t, []string{"192.168.1.10"}, peer.Addresses)
	assert.Empty(t, tr.peers)

	_, ok = tr.remove(entry("bus-5-a", "5", "192.168.1.10"))
	assert.False(t, ok)
}

func TestPeerTrackerSkipsSelfAndInvalid(t *testing.T) {
	tr := newPeerTracker("bus-1-self")

	_, changed, err := tr.add(entry("bus-1-self", "1", "10.0.0.1"))
	require.NoError(t, err)
	assert.False(t, changed)

	_, _, err = tr.add(entry("bus-x", "999", "10.0.0.2"))
	assert.ErrorIs(t, err, ErrInvalidTXTRecord)
	assert.Empty(t, tr.peers)
}

func TestServiceEntryToPeer(t *testing.T) {
	e := entry("bus-9-b", "9", "10.0.0.9")
	peer, err := e.ToPeer()
	require.NoError(t, err)

	assert.Equal(t, "bus-9-b", peer.InstanceName)
	assert.Equal(t, "bus-9-b.local", peer.Host)
	assert.EqualValues(t, 9, peer.NodeID)
	assert.Equal(t, "1.0", peer.Version)

	// The peer owns its address slice.
	e.Addrs[0] = "changed"
	assert.Equal(t, "10.0.0.9", peer.Addresses[0])
}
