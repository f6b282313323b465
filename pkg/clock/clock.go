// Package clock provides an injectable time source.
//
// Components that read the time or wait on it take a Clock instead of
// calling the time package directly. Production code passes Real();
// tests pass a FakeClock and move time forward explicitly with Advance,
// which makes timer-driven behavior (periodic broadcasts, subscription
// deadlines, live-state expiry) deterministic.
//
// Both implementations are backed by github.com/jonboulle/clockwork.
// This package narrows its surface to what the bus stack uses and keeps
// tickers as a struct with a C field like time.Ticker.
package clock

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Clock abstracts the time operations used by the bus stack.
type Clock interface {
	// Now returns the current time. Real clocks return a time carrying
	// a monotonic reading, so differences are immune to wall clock jumps.
	Now() time.Time

	// After returns a channel that receives the current time once d
	// has elapsed. If d <= 0 the channel receives immediately.
	After(d time.Duration) <-chan time.Time

	// NewTicker returns a Ticker that delivers ticks every d.
	// Panics if d <= 0.
	NewTicker(d time.Duration) *Ticker
}

// Ticker delivers periodic ticks on C. Ticks are dropped while the
// consumer is behind.
type Ticker struct {
	C <-chan time.Time

	stopFunc func()
}

// Stop turns off the ticker. Stop does not close C.
func (t *Ticker) Stop() { t.stopFunc() }

// Real returns a Clock backed by the system time.
func Real() Clock {
	return workClock{clockwork.NewRealClock()}
}

// workClock adapts a clockwork.Clock to Clock.
type workClock struct {
	c clockwork.Clock
}

func (w workClock) Now() time.Time { return w.c.Now() }

func (w workClock) After(d time.Duration) <-chan time.Time { return w.c.After(d) }

func (w workClock) NewTicker(d time.Duration) *Ticker {
	if d <= 0 {
		panic("clock: non-positive interval for NewTicker")
	}
	t := w.c.NewTicker(d)
	return &Ticker{C: t.Chan(), stopFunc: t.Stop}
}
