package session

import (
	"time"

	"github.com/mash-protocol/buspanel/pkg/log"
	"github.com/mash-protocol/buspanel/pkg/transport"
)

// subscriptionState is the mutable state of a subscription. It is only
// touched by the job's own handler, expiry timer and Remove.
type subscriptionState struct {
	messageType string
	callback    Callback
	onEnd       func()

	// remaining is the number of deliveries left when counted is set.
	remaining int
	counted   bool

	// deadline is zero when the job has no duration.
	deadline time.Time

	delivered int
}

// SubscriptionJob delivers messages of one type to a callback until its
// count or duration is exhausted, the callback fails, or it is removed.
// OnEnd fires exactly once, on the transition to StateTerminated.
type SubscriptionJob struct {
	id      uint32
	session *Session
	state   subscriptionState

	status  State
	reason  string
	handler transport.Handle
	expiry  transport.Handle
}

func (s *Session) startSubscription(messageType string, opts SubscribeOptions) *SubscriptionJob {
	j := &SubscriptionJob{
		id:      s.allocJobID(),
		session: s,
		state: subscriptionState{
			messageType: messageType,
			callback:    opts.Callback,
			onEnd:       opts.OnEnd,
			remaining:   opts.Count,
			counted:     opts.Count > 0,
		},
	}
	if j.state.callback == nil {
		j.state.callback = s.printMessage
	}

	s.track(j)
	j.handler = s.driver.AddHandler(messageType, j.deliver)
	if opts.Duration > 0 {
		j.state.deadline = s.now().Add(opts.Duration)
		j.expiry = s.driver.Defer(opts.Duration, j.expire)
	}
	return j
}

// ID returns the job ID.
func (j *SubscriptionJob) ID() uint32 { return j.id }

// Kind returns log.JobSubscription.
func (j *SubscriptionJob) Kind() log.JobKind { return log.JobSubscription }

// Type returns the subscribed message type.
func (j *SubscriptionJob) Type() string { return j.state.messageType }

// State returns the current state.
func (j *SubscriptionJob) State() State { return j.status }

// Transfers returns the number of messages delivered to the callback.
func (j *SubscriptionJob) Transfers() int { return j.state.delivered }

// Reason returns why the job terminated, or "" while active.
func (j *SubscriptionJob) Reason() string { return j.reason }

// Remaining returns the deliveries left and whether the job is counted.
func (j *SubscriptionJob) Remaining() (int, bool) {
	return j.state.remaining, j.state.counted
}

// Deadline returns the expiry time, or the zero time if unbounded.
func (j *SubscriptionJob) Deadline() time.Time { return j.state.deadline }

// Remove cancels the subscription. OnEnd fires if this call ends it.
func (j *SubscriptionJob) Remove() {
	if j.status == StateTerminated {
		return
	}
	j.terminate("cancelled")
}

func (j *SubscriptionJob) deliver(ev transport.Event) {
	if j.status == StateTerminated {
		return
	}

	j.state.delivered++
	if err := guard("callback", func() error { return j.state.callback(ev) }); err != nil {
		j.session.logger.Error("subscription callback failed",
			"job_id", j.id,
			"type", j.state.messageType,
			"error", err,
		)
		j.terminate(err.Error())
		return
	}

	// The callback may have removed the job.
	if j.status == StateTerminated || !j.state.counted {
		return
	}
	j.state.remaining--
	if j.state.remaining <= 0 {
		j.terminate("count reached")
	}
}

func (j *SubscriptionJob) expire() {
	if j.status == StateTerminated {
		return
	}
	j.terminate("duration elapsed")
}

func (j *SubscriptionJob) terminate(reason string) {
	j.status = StateTerminated
	j.reason = reason
	if j.handler != nil {
		j.handler.Remove()
	}
	if j.expiry != nil {
		j.expiry.Remove()
	}

	j.session.logger.Info("subscription finished",
		"job_id", j.id,
		"type", j.state.messageType,
		"delivered", j.state.delivered,
		"reason", reason,
	)
	j.session.untrack(j, reason)

	if j.state.onEnd == nil {
		return
	}
	if err := guard("onEnd", func() error { j.state.onEnd(); return nil }); err != nil {
		j.session.logger.Error("subscription onEnd failed", "job_id", j.id, "error", err)
	}
}
