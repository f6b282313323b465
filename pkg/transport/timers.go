package transport

import (
	"container/heap"
	"time"
)

// timer is one entry in a node's timer queue.
type timer struct {
	deadline time.Time
	interval time.Duration // zero for one-shot timers
	fn       func()
	seq      uint64
	index    int // heap index, -1 when not queued
}

// timerQueue is a min-heap ordered by deadline, then insertion order.
type timerQueue []*timer

func (q timerQueue) Len() int { return len(q) }

func (q timerQueue) Less(i, j int) bool {
	if q[i].deadline.Equal(q[j].deadline) {
		return q[i].seq < q[j].seq
	}
	return q[i].deadline.Before(q[j].deadline)
}

func (q timerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *timerQueue) Push(x any) {
	t := x.(*timer)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}

// schedule queues t.
func (q *timerQueue) schedule(t *timer) {
	heap.Push(q, t)
}

// cancel removes t if it is still queued.
func (q *timerQueue) cancel(t *timer) {
	if t.index >= 0 && t.index < len(*q) && (*q)[t.index] == t {
		heap.Remove(q, t.index)
	}
}

// popDue removes and returns the earliest timer due at now, or nil.
func (q *timerQueue) popDue(now time.Time) *timer {
	if len(*q) == 0 || (*q)[0].deadline.After(now) {
		return nil
	}
	return heap.Pop(q).(*timer)
}

// next returns the earliest deadline.
func (q timerQueue) next() (time.Time, bool) {
	if len(q) == 0 {
		return time.Time{}, false
	}
	return q[0].deadline, true
}
