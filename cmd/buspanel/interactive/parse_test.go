package interactive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mash-protocol/buspanel/pkg/wire"
)

func TestSplitArgs(t *testing.T) {
	rest, opts, err := splitArgs(
		[]string{"com.hex.Ping", "{id:", "3}", "interval=250ms", "count=4", "priority=7", "note=x"},
		"interval", "count", "priority",
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"com.hex.Ping", "{id:", "3}", "note=x"}, rest)
	assert.Equal(t, 250*time.Millisecond, opts.Interval)
	assert.Equal(t, 4, opts.Count)
	require.NotNil(t, opts.Priority)
	assert.Equal(t, wire.Priority(7), *opts.Priority)
}

func TestSplitArgsLeavesFlowMappingIntact(t *testing.T) {
	rest, opts, err := splitArgs(
		[]string{"com.hex.Ping", "{note:", "x,", "count=3}", "count=2", "[interval=1s,", "'a]'", "]"},
		"interval", "count",
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"com.hex.Ping", "{note:", "x,", "count=3}", "[interval=1s,", "'a]'", "]"}, rest)
	assert.Equal(t, 2, opts.Count)
	assert.Zero(t, opts.Interval)

	p, err := parsePayload(rest[1:4])
	require.NoError(t, err)
	note, _ := p.String("note")
	assert.Equal(t, "x", note)
}

func TestFlowDepth(t *testing.T) {
	tests := []struct {
		word string
		want int
	}{
		{"plain", 0},
		{"{id:", 1},
		{"3}", -1},
		{"{a:", 1},
		{"[[1,", 2},
		{"{x: 1}", 0},
		{`"{"`, 0},
		{"'}'}", -1},
	}
	for _, tt := range tests {
		if got := flowDepth(tt.word); got != tt.want {
			t.Errorf("flowDepth(%q) = %d, want %d", tt.word, got, tt.want)
		}
	}
}

func TestSplitArgsErrors(t *testing.T) {
	tests := []struct {
		name string
		arg  string
	}{
		{"bad duration", "interval=soon"},
		{"bad count", "count=many"},
		{"priority out of range", "priority=32"},
		{"negative priority", "priority=-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := splitArgs([]string{tt.arg}, "interval", "count", "priority")
			assert.Error(t, err)
		})
	}
}

func TestParsePayload(t *testing.T) {
	t.Run("flow mapping", func(t *testing.T) {
		p, err := parsePayload([]string{"{id:", "3,", "state:", "idle}"})
		require.NoError(t, err)
		id, ok := p.Int64("id")
		require.True(t, ok)
		assert.Equal(t, int64(3), id)
		state, _ := p.String("state")
		assert.Equal(t, "idle", state)
	})

	t.Run("empty", func(t *testing.T) {
		p, err := parsePayload(nil)
		require.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("scalar", func(t *testing.T) {
		_, err := parsePayload([]string{"42"})
		assert.Error(t, err)
	})
}

func TestParseNodeID(t *testing.T) {
	id, err := parseNodeID("42")
	require.NoError(t, err)
	assert.Equal(t, wire.NodeID(42), id)

	for _, bad := range []string{"0", "128", "x", "-1"} {
		_, err := parseNodeID(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseJobID(t *testing.T) {
	id, err := parseJobID("#12")
	require.NoError(t, err)
	assert.Equal(t, uint32(12), id)

	id, err = parseJobID("3")
	require.NoError(t, err)
	assert.Equal(t, uint32(3), id)

	_, err = parseJobID("three")
	assert.Error(t, err)
}
