package transport_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mash-protocol/buspanel/pkg/transport"
)

func TestLoopbackDelivery(t *testing.T) {
	hub := transport.NewLoopbackHub()
	a := hub.Attach()
	b := hub.Attach()
	c := hub.Attach()

	payload := []byte{1, 2, 3}
	require.NoError(t, a.Send(payload))
	payload[0] = 9

	for _, l := range []*transport.LoopbackLink{b, c} {
		select {
		case got := <-l.Inbound():
			assert.Equal(t, []byte{1, 2, 3}, got)
		default:
			t.Fatal("frame not delivered")
		}
	}
	assert.Empty(t, a.Inbound())
	assert.Equal(t, 1, a.Sent())
}

func TestLoopbackClose(t *testing.T) {
	hub := transport.NewLoopbackHub()
	a := hub.Attach()
	b := hub.Attach()

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())

	require.NoError(t, a.Send([]byte{1}))
	assert.Empty(t, b.Inbound())
	assert.ErrorIs(t, b.Send([]byte{1}), transport.ErrClosed)
}

func TestLoopbackOverflow(t *testing.T) {
	hub := transport.NewLoopbackHub()
	a := hub.Attach()
	b := hub.Attach()

	for range transport.DefaultInboundBuffer + 3 {
		require.NoError(t, a.Send([]byte{1}))
	}
	assert.Len(t, b.Inbound(), transport.DefaultInboundBuffer)
	assert.Equal(t, 3, b.Overflows())
}
