// Package livestate keeps the latest status record of every device seen
// on the bus and forgets devices that have gone silent.
//
// A Cache registers one message handler on a transport driver. Every
// received status overwrites the record for its device and restarts a
// single rolling inactivity timer. Records older than the timeout are
// swept on every receipt and when the timer fires, and are never
// returned by queries even before they are swept.
//
// Like the driver it is attached to, a Cache must only be used from the
// control goroutine.
package livestate

import (
	"cmp"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/mash-protocol/buspanel/pkg/transport"
	"github.com/mash-protocol/buspanel/pkg/wire"
)

// DefaultMessageType is the jig status broadcast.
const DefaultMessageType = "com.hex.equipment.jig.Status"

// DefaultTimeout is how long a device may stay silent before its record
// is dropped.
const DefaultTimeout = 2 * time.Second

// DefaultKeyField is the payload field holding the device ID.
const DefaultKeyField = "id"

var (
	// ErrMissingKey is returned by a KeyFunc when the payload carries no
	// usable device ID.
	ErrMissingKey = errors.New("missing record key")

	// ErrInvalidTimeout is returned by New for a negative timeout.
	ErrInvalidTimeout = errors.New("invalid timeout")
)

// KeyFunc extracts the device ID from a received status.
type KeyFunc func(ev transport.Event) (int64, error)

// FieldKey returns a KeyFunc reading the integer payload field name.
func FieldKey(name string) KeyFunc {
	return func(ev transport.Event) (int64, error) {
		id, ok := ev.Message.Fields.Int64(name)
		if !ok {
			return 0, fmt.Errorf("%w: field %q", ErrMissingKey, name)
		}
		return id, nil
	}
}

// NodeRecord is the latest status received for one device.
type NodeRecord struct {
	ID         int64
	Payload    wire.Payload
	ReceivedAt time.Time
	Source     wire.NodeID
}

// Age returns how long ago the record was received.
func (r NodeRecord) Age(now time.Time) time.Duration {
	return now.Sub(r.ReceivedAt)
}

// Config configures a Cache.
type Config struct {
	// MessageType is the status message to track (default: DefaultMessageType).
	MessageType string

	// Timeout is the allowed silence per device (default: DefaultTimeout).
	Timeout time.Duration

	// KeyFunc extracts the device ID (default: FieldKey(DefaultKeyField)).
	KeyFunc KeyFunc

	// Logger receives device appearance and expiry logs (default: slog.Default()).
	Logger *slog.Logger
}

// Stats holds cache counters.
type Stats struct {
	Received uint64
	Evicted  uint64
	Dropped  uint64
}

// Cache is a TTL-keyed store of the latest NodeRecord per device.
type Cache struct {
	driver      transport.Driver
	messageType string
	timeout     time.Duration
	keyFunc     KeyFunc
	logger      *slog.Logger

	records map[int64]NodeRecord
	handler transport.Handle
	timer   transport.Handle
	stats   Stats
	closed  bool
}

// New creates a cache and registers its handler on driver.
func New(driver transport.Driver, config Config) (*Cache, error) {
	if config.Timeout < 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTimeout, config.Timeout)
	}
	if config.MessageType == "" {
		config.MessageType = DefaultMessageType
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	if config.KeyFunc == nil {
		config.KeyFunc = FieldKey(DefaultKeyField)
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	c := &Cache{
		driver:      driver,
		messageType: config.MessageType,
		timeout:     config.Timeout,
		keyFunc:     config.KeyFunc,
		logger:      config.Logger.With("component", "livestate"),
		records:     make(map[int64]NodeRecord),
	}
	c.handler = driver.AddHandler(config.MessageType, c.onReceive)
	return c, nil
}

// MessageType returns the tracked message type.
func (c *Cache) MessageType() string { return c.messageType }

// Timeout returns the allowed silence per device.
func (c *Cache) Timeout() time.Duration { return c.timeout }

// FindAll returns the live records matching pred, ordered by ID. A nil
// pred matches every record. The sequence is evaluated lazily on each
// iteration and may be iterated any number of times.
func (c *Cache) FindAll(pred func(NodeRecord) bool) iter.Seq[NodeRecord] {
	return func(yield func(NodeRecord) bool) {
		now := c.driver.Now()
		for _, id := range slices.Sorted(maps.Keys(c.records)) {
			r, ok := c.records[id]
			if !ok || c.stale(r, now) {
				continue
			}
			if pred != nil && !pred(r) {
				continue
			}
			if !yield(r) {
				return
			}
		}
	}
}

// Get returns the live record for id.
func (c *Cache) Get(id int64) (NodeRecord, bool) {
	r, ok := c.records[id]
	if !ok || c.stale(r, c.driver.Now()) {
		return NodeRecord{}, false
	}
	return r, true
}

// Len returns the number of live records.
func (c *Cache) Len() int {
	n := 0
	for range c.FindAll(nil) {
		n++
	}
	return n
}

// Stats returns the cache counters.
func (c *Cache) Stats() Stats {
	return c.stats
}

// Close unregisters the handler and cancels the timer. Records already
// held stay readable. Close is idempotent.
func (c *Cache) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.handler.Remove()
	c.stopTimer()
}

func (c *Cache) onReceive(ev transport.Event) {
	if c.closed {
		return
	}
	id, err := c.keyFunc(ev)
	if err != nil {
		c.stats.Dropped++
		c.logger.Debug("dropping status without key", "source", ev.Source, "error", err)
		return
	}

	receivedAt := ev.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = c.driver.Now()
	}
	if _, known := c.records[id]; !known {
		c.logger.Info("device appeared", "id", id, "source", ev.Source)
	}
	c.records[id] = NodeRecord{
		ID:         id,
		Payload:    ev.Message.Fields.Clone(),
		ReceivedAt: receivedAt,
		Source:     ev.Source,
	}
	c.stats.Received++

	c.arm(c.timeout)
	c.sweep(c.driver.Now())
}

func (c *Cache) onTimer() {
	c.timer = nil
	if c.closed {
		return
	}

	now := c.driver.Now()
	c.sweep(now)

	var earliest time.Time
	for _, r := range c.records {
		if earliest.IsZero() || r.ReceivedAt.Before(earliest) {
			earliest = r.ReceivedAt
		}
	}
	if !earliest.IsZero() {
		c.arm(earliest.Add(c.timeout).Sub(now))
	}
}

// sweep removes every record that has been silent for at least the timeout.
func (c *Cache) sweep(now time.Time) {
	var expired []NodeRecord
	for _, r := range c.records {
		if c.stale(r, now) {
			expired = append(expired, r)
		}
	}
	slices.SortFunc(expired, func(a, b NodeRecord) int { return cmp.Compare(a.ID, b.ID) })
	for _, r := range expired {
		delete(c.records, r.ID)
		c.stats.Evicted++
		c.logger.Info("device expired", "id", r.ID, "silent", r.Age(now))
	}
}

func (c *Cache) stale(r NodeRecord, now time.Time) bool {
	return r.Age(now) >= c.timeout
}

func (c *Cache) arm(delay time.Duration) {
	c.stopTimer()
	c.timer = c.driver.Defer(delay, c.onTimer)
}

func (c *Cache) stopTimer() {
	if c.timer != nil {
		c.timer.Remove()
		c.timer = nil
	}
}
