package main

import (
	"context"
	"log"
	"net"

	"github.com/mash-protocol/buspanel/pkg/discovery"
	"github.com/mash-protocol/buspanel/pkg/transport"
	"github.com/mash-protocol/buspanel/pkg/version"
	"github.com/mash-protocol/buspanel/pkg/wire"
)

// peerSet is the part of the UDP link that discovery updates.
type peerSet interface {
	AddPeer(addr string) error
	RemovePeer(addr string)
}

// startDiscovery advertises the local node and keeps the link's peer
// set in sync with what mDNS reports. It returns when advertising has
// started; browsing continues until ctx is done.
func startDiscovery(ctx context.Context, link *transport.UDPLink, nodeID wire.NodeID, iface string) (*discovery.MDNSAdvertiser, error) {
	port := uint16(0)
	if addr, ok := link.Addr().(*net.UDPAddr); ok {
		port = uint16(addr.Port)
	}

	advConfig := discovery.DefaultAdvertiserConfig()
	advConfig.Interface = iface
	advertiser := discovery.NewMDNSAdvertiser(advConfig)
	if err := advertiser.Advertise(ctx, &discovery.PeerInfo{
		NodeID:  nodeID,
		Port:    port,
		Version: version.Current,
	}); err != nil {
		return nil, err
	}
	log.Printf("Advertising as %s on port %d", advertiser.InstanceName(), port)

	browser := discovery.NewMDNSBrowser(discovery.BrowserConfig{
		Interface: iface,
		Self:      advertiser.InstanceName(),
	})
	go func() {
		if err := browser.Browse(ctx, peerAdded(link), peerRemoved(link)); err != nil {
			log.Printf("Discovery stopped: %v", err)
		}
	}()
	return advertiser, nil
}

func peerAdded(peers peerSet) func(discovery.Peer) {
	return func(p discovery.Peer) {
		if err := version.CheckCompatible(p.Version); err != nil {
			log.Printf("[DISCOVERY] Ignoring %s: %v", p.InstanceName, err)
			return
		}
		for _, ep := range p.Endpoints() {
			if err := peers.AddPeer(ep); err != nil {
				log.Printf("[DISCOVERY] Cannot add %s: %v", ep, err)
				continue
			}
			log.Printf("[DISCOVERY] Peer %s (node %v) at %s", p.InstanceName, p.NodeID, ep)
		}
	}
}

func peerRemoved(peers peerSet) func(discovery.Peer) {
	return func(p discovery.Peer) {
		for _, ep := range p.Endpoints() {
			peers.RemovePeer(ep)
			log.Printf("[DISCOVERY] Peer %s left %s", p.InstanceName, ep)
		}
	}
}
