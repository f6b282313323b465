package session_test

import (
	"bytes"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mash-protocol/buspanel/pkg/clock"
	"github.com/mash-protocol/buspanel/pkg/log"
	"github.com/mash-protocol/buspanel/pkg/session"
	"github.com/mash-protocol/buspanel/pkg/transport"
	"github.com/mash-protocol/buspanel/pkg/wire"
)

const (
	heartbeatType = "com.hex.equipment.jig.Heartbeat"
	statusType    = "com.hex.equipment.jig.Status"
	infoType      = "com.hex.equipment.jig.GetInfo"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

type recordingTrace struct {
	events []log.Event
}

func (r *recordingTrace) Log(e log.Event) { r.events = append(r.events, e) }

// harness wires a session on a local node to a remote peer node over a
// loopback hub, all driven by a fake clock.
type harness struct {
	t       *testing.T
	clock   *clock.FakeClock
	node    *transport.Node
	link    *transport.LoopbackLink
	peer    *transport.Node
	session *session.Session
	out     *bytes.Buffer
	trace   *recordingTrace

	// received holds transfers seen by the peer.
	received []transport.Event
}

func newHarness(t *testing.T, localID wire.NodeID) *harness {
	t.Helper()

	h := &harness{
		t:     t,
		clock: clock.Fake(epoch),
		out:   &bytes.Buffer{},
		trace: &recordingTrace{},
	}
	hub := transport.NewLoopbackHub()

	var err error
	h.link = hub.Attach()
	h.node, err = transport.NewNode(h.link, transport.NodeConfig{NodeID: localID, Clock: h.clock, Logger: discardLogger()})
	require.NoError(t, err)
	h.peer, err = transport.NewNode(hub.Attach(), transport.NodeConfig{NodeID: 42, Clock: h.clock, Logger: discardLogger()})
	require.NoError(t, err)

	for _, typ := range []string{heartbeatType, statusType} {
		h.peer.AddHandler(typ, func(ev transport.Event) { h.received = append(h.received, ev) })
	}

	h.session = session.New(h.node, session.Config{
		ID:          "test-session",
		Output:      h.out,
		Logger:      discardLogger(),
		TraceLogger: h.trace,
	})
	t.Cleanup(func() {
		h.session.Close()
		h.node.Close()
		h.peer.Close()
	})
	return h
}

// spin processes pending work on both nodes.
func (h *harness) spin() {
	h.t.Helper()
	require.NoError(h.t, h.node.Spin(0))
	require.NoError(h.t, h.peer.Spin(0))
}

// step advances the clock by d and spins both nodes.
func (h *harness) step(d time.Duration) {
	h.t.Helper()
	h.clock.Advance(d)
	h.spin()
}

// peerBroadcast sends a message from the peer and delivers it locally.
func (h *harness) peerBroadcast(typ string, fields wire.Payload) {
	h.t.Helper()
	require.NoError(h.t, h.peer.Broadcast(wire.NewMessage(typ, fields), 20))
	require.NoError(h.t, h.node.Spin(0))
}

// receivedAt returns the offsets from epoch at which the peer saw transfers.
func (h *harness) receivedAt() []time.Duration {
	out := make([]time.Duration, len(h.received))
	for i, ev := range h.received {
		out[i] = ev.ReceivedAt.Sub(epoch)
	}
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
