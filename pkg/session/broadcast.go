package session

import (
	"time"

	"github.com/mash-protocol/buspanel/pkg/log"
	"github.com/mash-protocol/buspanel/pkg/transport"
	"github.com/mash-protocol/buspanel/pkg/wire"
)

// broadcastState is the mutable state of a periodic broadcast. It is
// only touched by the job's own tick and Remove.
type broadcastState struct {
	msg      wire.Message
	priority wire.Priority
	interval time.Duration

	// deadline is zero when the job has no duration.
	deadline time.Time

	// count is the total number of sends; zero means unbounded.
	count int

	numSent int
}

// BroadcastJob repeats a broadcast at a fixed interval until its count or
// deadline is reached, a send fails, or it is removed.
type BroadcastJob struct {
	id      uint32
	session *Session
	state   broadcastState

	status   State
	reason   string
	periodic transport.Handle
}

// startBroadcast creates the job after the immediate send succeeded.
func (s *Session) startBroadcast(msg wire.Message, priority wire.Priority, opts BroadcastOptions) *BroadcastJob {
	j := &BroadcastJob{
		id:      s.allocJobID(),
		session: s,
		state: broadcastState{
			msg:      msg,
			priority: priority,
			interval: opts.Interval,
			count:    opts.Count,
			numSent:  1,
		},
	}
	if opts.Duration > 0 {
		j.state.deadline = s.now().Add(opts.Duration)
	}

	s.track(j)
	if j.countReached() {
		j.terminate("count reached")
		return j
	}
	j.periodic = s.driver.Periodic(opts.Interval, j.tick)
	return j
}

// ID returns the job ID.
func (j *BroadcastJob) ID() uint32 { return j.id }

// Kind returns log.JobBroadcast.
func (j *BroadcastJob) Kind() log.JobKind { return log.JobBroadcast }

// Type returns the broadcast message type.
func (j *BroadcastJob) Type() string { return j.state.msg.Type }

// State returns the current state.
func (j *BroadcastJob) State() State { return j.status }

// Transfers returns the number of successful sends, including the
// immediate one.
func (j *BroadcastJob) Transfers() int { return j.state.numSent }

// Reason returns why the job terminated, or "" while active.
func (j *BroadcastJob) Reason() string { return j.reason }

// Interval returns the send interval.
func (j *BroadcastJob) Interval() time.Duration { return j.state.interval }

// Remove cancels the job. Removing a terminated job has no effect.
func (j *BroadcastJob) Remove() {
	if j.status == StateTerminated {
		return
	}
	j.terminate("cancelled")
}

// tick runs on every periodic firing. The deadline is checked before
// sending, so no send happens at or after it.
func (j *BroadcastJob) tick() {
	if j.status == StateTerminated {
		return
	}
	if j.deadlinePassed() {
		j.terminate("deadline reached")
		return
	}

	if err := j.session.driver.Broadcast(j.state.msg, j.state.priority); err != nil {
		j.session.logger.Error("periodic broadcast failed",
			"job_id", j.id,
			"type", j.state.msg.Type,
			"sent", j.state.numSent,
			"error", err,
		)
		j.terminate("send failed: " + err.Error())
		return
	}
	j.state.numSent++

	switch {
	case j.countReached():
		j.terminate("count reached")
	case j.deadlinePassed():
		j.terminate("deadline reached")
	}
}

func (j *BroadcastJob) countReached() bool {
	return j.state.count > 0 && j.state.numSent >= j.state.count
}

func (j *BroadcastJob) deadlinePassed() bool {
	return !j.state.deadline.IsZero() && !j.session.now().Before(j.state.deadline)
}

func (j *BroadcastJob) terminate(reason string) {
	j.status = StateTerminated
	j.reason = reason
	if j.periodic != nil {
		j.periodic.Remove()
	}
	j.session.logger.Info("broadcast finished",
		"job_id", j.id,
		"type", j.state.msg.Type,
		"sent", j.state.numSent,
		"reason", reason,
	)
	j.session.untrack(j, reason)
}
