package interactive

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/mash-protocol/buspanel/pkg/livestate"
	"github.com/mash-protocol/buspanel/pkg/session"
	"github.com/mash-protocol/buspanel/pkg/transport"
	"github.com/mash-protocol/buspanel/pkg/wire"
)

// cmdRequest handles the request command.
func (c *Console) cmdRequest(ctx context.Context, args []string) error {
	rest, opts, err := splitArgs(args, "priority", "timeout")
	if err != nil {
		return err
	}
	if len(rest) < 2 {
		return fmt.Errorf("%w: request <node-id> <type> [yaml]", ErrUsage)
	}
	target, err := parseNodeID(rest[0])
	if err != nil {
		return err
	}
	payload, err := parsePayload(rest[2:])
	if err != nil {
		return err
	}

	var reqErr error
	err = c.do(ctx, func() {
		_, reqErr = c.env.Session.Request(wire.NewMessage(rest[1], payload), target, session.RequestOptions{
			Priority: opts.Priority,
			Timeout:  opts.Timeout,
		})
	})
	if err != nil {
		return err
	}
	if reqErr != nil {
		return reqErr
	}
	fmt.Fprintf(c.out, "Request sent to node %v\n", target)
	return nil
}

// cmdBroadcast handles the broadcast command.
func (c *Console) cmdBroadcast(ctx context.Context, args []string) error {
	rest, opts, err := splitArgs(args, "interval", "count", "duration", "priority")
	if err != nil {
		return err
	}
	if len(rest) < 1 {
		return fmt.Errorf("%w: broadcast <type> [yaml] [interval=D] [count=N] [duration=D]", ErrUsage)
	}
	payload, err := parsePayload(rest[1:])
	if err != nil {
		return err
	}

	var job *session.BroadcastJob
	var bcErr error
	err = c.do(ctx, func() {
		job, bcErr = c.env.Session.Broadcast(wire.NewMessage(rest[0], payload), session.BroadcastOptions{
			Priority: opts.Priority,
			Interval: opts.Interval,
			Count:    opts.Count,
			Duration: opts.Duration,
		})
	})
	if err != nil {
		return err
	}
	if bcErr != nil {
		return bcErr
	}

	if job == nil {
		fmt.Fprintln(c.out, "Broadcast sent")
		return nil
	}
	fmt.Fprintf(c.out, "Broadcast sent, repeating as job #%d every %v\n", job.ID(), job.Interval())
	return nil
}

// cmdSubscribe handles the subscribe command.
func (c *Console) cmdSubscribe(ctx context.Context, args []string) error {
	rest, opts, err := splitArgs(args, "count", "duration")
	if err != nil {
		return err
	}
	if len(rest) != 1 {
		return fmt.Errorf("%w: subscribe <type> [count=N] [duration=D]", ErrUsage)
	}

	subOpts := session.SubscribeOptions{Count: opts.Count, Duration: opts.Duration}
	var job *session.SubscriptionJob
	if opts.Count > 0 || opts.Duration > 0 {
		subOpts.OnEnd = func() {
			fmt.Fprintf(c.out, "# job #%d ended: %s\n", job.ID(), job.Reason())
		}
	}

	var subErr error
	err = c.do(ctx, func() {
		job, subErr = c.env.Session.Subscribe(rest[0], subOpts)
	})
	if err != nil {
		return err
	}
	if subErr != nil {
		return subErr
	}
	fmt.Fprintf(c.out, "Subscribed to %s as job #%d\n", rest[0], job.ID())
	return nil
}

// jobRow is a snapshot of one job taken on the control goroutine.
type jobRow struct {
	id        uint32
	kind      string
	typ       string
	transfers int
	detail    string
}

// cmdJobs handles the jobs command.
func (c *Console) cmdJobs(ctx context.Context) error {
	var rows []jobRow
	err := c.do(ctx, func() {
		now := c.env.Node.Now()
		for _, j := range c.env.Session.Jobs() {
			rows = append(rows, jobRow{
				id:        j.ID(),
				kind:      j.Kind().String(),
				typ:       j.Type(),
				transfers: j.Transfers(),
				detail:    jobDetail(j, now),
			})
		}
	})
	if err != nil {
		return err
	}

	if len(rows) == 0 {
		fmt.Fprintln(c.out, "No active jobs")
		return nil
	}
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tTYPE\tTRANSFERS\tDETAIL")
	for _, r := range rows {
		fmt.Fprintf(w, "#%d\t%s\t%s\t%d\t%s\n", r.id, r.kind, r.typ, r.transfers, r.detail)
	}
	return w.Flush()
}

func jobDetail(j session.Job, now time.Time) string {
	switch j := j.(type) {
	case *session.BroadcastJob:
		return "every " + j.Interval().String()
	case *session.SubscriptionJob:
		var detail string
		if remaining, counted := j.Remaining(); counted {
			detail = fmt.Sprintf("%d left", remaining)
		}
		if deadline := j.Deadline(); !deadline.IsZero() {
			if detail != "" {
				detail += ", "
			}
			detail += "ends in " + deadline.Sub(now).Round(time.Millisecond).String()
		}
		return detail
	}
	return ""
}

// cmdCancel handles the cancel command.
func (c *Console) cmdCancel(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: cancel <job-id>", ErrUsage)
	}
	id, err := parseJobID(args[0])
	if err != nil {
		return err
	}

	found := false
	err = c.do(ctx, func() {
		var j session.Job
		if j, found = c.env.Session.Job(id); found {
			j.Remove()
		}
	})
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no active job #%d", id)
	}
	fmt.Fprintf(c.out, "Job #%d cancelled\n", id)
	return nil
}

// cmdNodes handles the nodes command.
func (c *Console) cmdNodes(ctx context.Context) error {
	var records []livestate.NodeRecord
	var now time.Time
	err := c.do(ctx, func() {
		now = c.env.Node.Now()
		for r := range c.env.Cache.FindAll(nil) {
			records = append(records, r)
		}
	})
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Fprintln(c.out, "No live devices")
		return nil
	}
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNODE\tAGE\tSTATUS")
	for _, r := range records {
		fmt.Fprintf(w, "%d\t%v\t%v\t%v\n", r.ID, r.Source, r.Age(now).Round(time.Millisecond), r.Payload)
	}
	return w.Flush()
}

// cmdPeers handles the peers command.
func (c *Console) cmdPeers() {
	if c.env.Peers == nil {
		fmt.Fprintln(c.out, "Link has no peer list")
		return
	}
	peers := c.env.Peers.Peers()
	if len(peers) == 0 {
		fmt.Fprintln(c.out, "No peers")
		return
	}
	fmt.Fprintf(c.out, "Peers (%d):\n", len(peers))
	for _, p := range peers {
		fmt.Fprintf(c.out, "  %s\n", p)
	}
}

// cmdStatus handles the status command.
func (c *Console) cmdStatus(ctx context.Context) error {
	var (
		nodeID    wire.NodeID
		nodeStats transport.NodeStats
		cacheLen  int
		cacheSt   livestate.Stats
		jobs      int
	)
	err := c.do(ctx, func() {
		nodeID = c.env.Node.LocalNodeID()
		nodeStats = c.env.Node.Stats()
		cacheLen = c.env.Cache.Len()
		cacheSt = c.env.Cache.Stats()
		jobs = len(c.env.Session.Jobs())
	})
	if err != nil {
		return err
	}
	sched := c.env.Scheduler.Stats()

	fmt.Fprintln(c.out, "Panel Status:")
	fmt.Fprintf(c.out, "  Session:   %s\n", c.env.Session.ID())
	fmt.Fprintf(c.out, "  Node ID:   %v\n", nodeID)
	fmt.Fprintf(c.out, "  Jobs:      %d active\n", jobs)
	fmt.Fprintf(c.out, "  Frames:    %d in, %d out, %d dropped, %d send errors\n",
		nodeStats.FramesIn, nodeStats.FramesOut, nodeStats.Dropped, nodeStats.SendErrors)
	fmt.Fprintf(c.out, "  Pending:   %d requests, %d timers, %d handlers\n",
		nodeStats.PendingRequests, nodeStats.Timers, nodeStats.Handlers)
	fmt.Fprintf(c.out, "  Devices:   %d live (%s, timeout %v), %d evicted\n",
		cacheLen, c.env.Cache.MessageType(), c.env.Cache.Timeout(), cacheSt.Evicted)
	fmt.Fprintf(c.out, "  Scheduler: %d ticks every %v, %d spin failures\n",
		sched.Ticks, c.env.Scheduler.Interval(), sched.SpinFailures)
	if sched.LastError != nil {
		fmt.Fprintf(c.out, "  Last spin error: %v (%s)\n", sched.LastError, sched.LastFailure.Format(time.TimeOnly))
	}
	return nil
}
