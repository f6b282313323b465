package clock

import (
	"testing"
	"time"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeNowAdvances(t *testing.T) {
	c := Fake(epoch)
	c.Advance(1500 * time.Millisecond)
	if got := c.Now().Sub(epoch); got != 1500*time.Millisecond {
		t.Errorf("elapsed = %v, want 1.5s", got)
	}
}

func TestFakeAfterFiresOnlyAtDeadline(t *testing.T) {
	c := Fake(epoch)
	ch := c.After(time.Second)

	c.Advance(999 * time.Millisecond)
	select {
	case <-ch:
		t.Fatal("After fired early")
	default:
	}

	c.Advance(time.Millisecond)
	select {
	case <-ch:
	default:
		t.Fatal("After did not fire at deadline")
	}
}

func TestFakeSet(t *testing.T) {
	c := Fake(epoch)
	ch := c.After(2 * time.Second)

	c.Set(epoch.Add(2100 * time.Millisecond))
	if got := c.Now().Sub(epoch); got != 2100*time.Millisecond {
		t.Errorf("elapsed = %v, want 2.1s", got)
	}
	select {
	case <-ch:
	default:
		t.Fatal("Set did not fire a timer it passed")
	}

	// Set never moves backwards.
	c.Set(epoch)
	if got := c.Now().Sub(epoch); got != 2100*time.Millisecond {
		t.Errorf("elapsed after backwards Set = %v, want 2.1s", got)
	}
}

func TestRealTicker(t *testing.T) {
	tk := Real().NewTicker(time.Millisecond)
	defer tk.Stop()
	select {
	case <-tk.C:
	case <-time.After(time.Second):
		t.Fatal("real ticker did not fire")
	}
}

func TestFakeAfterNonPositive(t *testing.T) {
	c := Fake(epoch)
	select {
	case <-c.After(0):
	default:
		t.Fatal("After(0) should fire immediately")
	}
}

func TestFakeTickerStop(t *testing.T) {
	c := Fake(epoch)
	tk := c.NewTicker(10 * time.Millisecond)

	c.Advance(10 * time.Millisecond)
	select {
	case <-tk.C:
	default:
		t.Fatal("ticker did not fire")
	}

	tk.Stop()
	c.Advance(50 * time.Millisecond)
	select {
	case <-tk.C:
		t.Fatal("stopped ticker fired")
	default:
	}
}

func TestFakeWaitForTimers(t *testing.T) {
	c := Fake(epoch)
	done := make(chan struct{})
	go func() {
		<-c.After(time.Second)
		close(done)
	}()

	c.WaitForTimers(1)
	c.Advance(time.Second)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("goroutine was not released")
	}
}
