package clock

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// FakeClock is a Clock whose time only moves when Advance or Set is
// called. It is safe for concurrent use.
type FakeClock struct {
	workClock
	fake *clockwork.FakeClock
}

// Fake returns a FakeClock set to initial.
func Fake(initial time.Time) *FakeClock {
	f := clockwork.NewFakeClockAt(initial)
	return &FakeClock{workClock: workClock{f}, fake: f}
}

// Advance moves the clock forward by d, firing every After channel and
// ticker whose deadline is reached.
func (c *FakeClock) Advance(d time.Duration) {
	c.fake.Advance(d)
}

// Set moves the clock forward to t. Times at or before Now are ignored;
// the fake clock never runs backwards.
func (c *FakeClock) Set(t time.Time) {
	if d := t.Sub(c.fake.Now()); d > 0 {
		c.fake.Advance(d)
	}
}

// WaitForTimers blocks until exactly n After channels or tickers are
// waiting on the clock. Tests call it before Advance when another
// goroutine is about to start waiting.
func (c *FakeClock) WaitForTimers(n int) {
	_ = c.fake.BlockUntilContext(context.Background(), n)
}
