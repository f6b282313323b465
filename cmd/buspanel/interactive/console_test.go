package interactive

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mash-protocol/buspanel/pkg/livestate"
	"github.com/mash-protocol/buspanel/pkg/session"
	"github.com/mash-protocol/buspanel/pkg/spin"
	"github.com/mash-protocol/buspanel/pkg/transport"
	"github.com/mash-protocol/buspanel/pkg/wire"
)

const (
	heartbeatType = "com.hex.equipment.jig.Heartbeat"
	infoType      = "com.hex.equipment.jig.GetInfo"
)

// syncBuffer is written by the control goroutine and read by the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

type fixedPeers []string

func (p fixedPeers) Peers() []string { return p }

// consoleFixture runs a panel node under a live scheduler and gives the
// test a second node on the same loopback bus. The device node is only
// touched from the test goroutine.
type consoleFixture struct {
	console *Console
	out     *syncBuffer
	device  *transport.Node
	heard   []transport.Event
}

func newConsoleFixture(t *testing.T) *consoleFixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := transport.NewLoopbackHub()
	node, err := transport.NewNode(hub.Attach(), transport.NodeConfig{NodeID: 5, Logger: logger})
	require.NoError(t, err)
	device, err := transport.NewNode(hub.Attach(), transport.NodeConfig{NodeID: 42, Logger: logger})
	require.NoError(t, err)

	f := &consoleFixture{out: &syncBuffer{}, device: device}
	device.AddHandler(heartbeatType, func(ev transport.Event) { f.heard = append(f.heard, ev) })
	device.AddHandler(infoType, func(ev transport.Event) {
		_ = device.Respond(ev, wire.Payload{"serial": "J-1"})
	})

	sess := session.New(node, session.Config{Output: f.out, Logger: logger})
	cache, err := livestate.New(node, livestate.Config{Logger: logger})
	require.NoError(t, err)
	sched := spin.New(node, spin.Config{Interval: time.Millisecond, Logger: logger})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = sched.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		node.Close()
		device.Close()
	})

	f.console = &Console{
		out: f.out,
		env: Env{
			Scheduler: sched,
			Session:   sess,
			Cache:     cache,
			Node:      node,
			Peers:     fixedPeers{"10.0.0.2:9382"},
		},
	}
	return f
}

func (f *consoleFixture) run(t *testing.T, line string) string {
	t.Helper()
	f.out.Reset()
	quit := f.console.execute(context.Background(), line)
	require.False(t, quit)
	return f.out.String()
}

// deviceSpin lets the device node process what the panel sent.
func (f *consoleFixture) deviceSpin(t *testing.T) {
	t.Helper()
	require.NoError(t, f.device.Spin(0))
}

func TestConsoleBroadcastOnce(t *testing.T) {
	f := newConsoleFixture(t)

	out := f.run(t, "broadcast "+heartbeatType+" {uptime: 5} priority=3")
	assert.Contains(t, out, "Broadcast sent")

	f.deviceSpin(t)
	require.Len(t, f.heard, 1)
	assert.Equal(t, wire.Priority(3), f.heard[0].Priority)
	uptime, _ := f.heard[0].Message.Fields.Int64("uptime")
	assert.Equal(t, int64(5), uptime)
}

func TestConsoleBroadcastValidationError(t *testing.T) {
	f := newConsoleFixture(t)

	out := f.run(t, "broadcast "+heartbeatType+" count=3")
	assert.Contains(t, out, "Error:")
	assert.Contains(t, out, "interval")

	f.deviceSpin(t)
	assert.Empty(t, f.heard)
}

func TestConsoleJobsAndCancel(t *testing.T) {
	f := newConsoleFixture(t)

	out := f.run(t, "broadcast "+heartbeatType+" interval=1h")
	assert.Contains(t, out, "job #1")

	out = f.run(t, "jobs")
	assert.Contains(t, out, "#1")
	assert.Contains(t, out, "BROADCAST")
	assert.Contains(t, out, "every 1h0m0s")

	out = f.run(t, "cancel #1")
	assert.Contains(t, out, "Job #1 cancelled")

	out = f.run(t, "cancel 1")
	assert.Contains(t, out, "no active job #1")

	out = f.run(t, "jobs")
	assert.Contains(t, out, "No active jobs")
}

func TestConsoleSubscribeEnds(t *testing.T) {
	f := newConsoleFixture(t)

	out := f.run(t, "subscribe "+heartbeatType+" count=1")
	assert.Contains(t, out, "as job #1")

	require.NoError(t, f.device.Broadcast(wire.NewMessage(heartbeatType, wire.Payload{"uptime": 9}), 20))

	assert.Eventually(t, func() bool {
		return strings.Contains(f.out.String(), "# job #1 ended: count reached")
	}, time.Second, 5*time.Millisecond)
	assert.Contains(t, f.out.String(), "uptime: 9")
}

func TestConsoleRequestPrintsResponse(t *testing.T) {
	f := newConsoleFixture(t)

	out := f.run(t, "request 42 "+infoType)
	assert.Contains(t, out, "Request sent to node 42")

	f.deviceSpin(t)
	assert.Eventually(t, func() bool {
		return strings.Contains(f.out.String(), "serial: J-1")
	}, time.Second, 5*time.Millisecond)
}

func TestConsoleNodes(t *testing.T) {
	f := newConsoleFixture(t)

	assert.Contains(t, f.run(t, "nodes"), "No live devices")

	require.NoError(t, f.device.Broadcast(wire.NewMessage(livestate.DefaultMessageType, wire.Payload{"id": 3, "state": "idle"}), 20))

	assert.Eventually(t, func() bool {
		f.out.Reset()
		f.console.execute(context.Background(), "nodes")
		return strings.Contains(f.out.String(), "idle")
	}, time.Second, 5*time.Millisecond)
}

func TestConsoleUsageErrors(t *testing.T) {
	f := newConsoleFixture(t)

	for _, line := range []string{"request", "request 42", "request 200 x", "subscribe", "cancel", "broadcast"} {
		assert.Contains(t, f.run(t, line), "Error:", line)
	}
	assert.Contains(t, f.run(t, "frobnicate"), "Unknown command")
}

func TestConsolePeersAndStatus(t *testing.T) {
	f := newConsoleFixture(t)

	assert.Contains(t, f.run(t, "peers"), "10.0.0.2:9382")

	out := f.run(t, "status")
	assert.Contains(t, out, "Node ID:   5")
	assert.Contains(t, out, livestate.DefaultMessageType)
}

func TestConsoleQuit(t *testing.T) {
	f := newConsoleFixture(t)
	assert.True(t, f.console.execute(context.Background(), "quit"))
	assert.False(t, f.console.execute(context.Background(), "   "))
}
