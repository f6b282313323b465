// Package interactive provides the operator console of buspanel.
//
// The console reads commands on its own goroutine. Every command that
// touches the session, the live-state cache or the node is handed to the
// control goroutine with spin.Scheduler.Do, so the console never races
// the bus.
package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/mash-protocol/buspanel/pkg/livestate"
	"github.com/mash-protocol/buspanel/pkg/session"
	"github.com/mash-protocol/buspanel/pkg/spin"
	"github.com/mash-protocol/buspanel/pkg/transport"
)

// commandTimeout bounds how long a command waits for the control goroutine.
const commandTimeout = 2 * time.Second

// PeerLister lists the link's peer addresses.
type PeerLister interface {
	Peers() []string
}

// Env is what the console operates on. Scheduler must be running.
type Env struct {
	Scheduler *spin.Scheduler
	Session   *session.Session
	Cache     *livestate.Cache
	Node      *transport.Node

	// Peers is optional.
	Peers PeerLister
}

// Console handles interactive mode for buspanel.
type Console struct {
	rl  *readline.Instance
	out io.Writer
	env Env
}

// New creates a console on the terminal.
func New() (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "bus> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &Console{rl: rl, out: rl.Stdout()}, nil
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for log and session output to avoid interfering with the prompt.
func (c *Console) Stdout() io.Writer {
	return c.out
}

// Run starts the interactive command loop. cancel is called when the
// operator quits.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc, env Env) {
	defer c.rl.Close()
	c.env = env

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			fmt.Fprintln(c.out, "Exiting...")
			cancel()
			return
		}

		if quit := c.execute(ctx, line); quit {
			fmt.Fprintln(c.out, "Exiting...")
			cancel()
			return
		}
	}
}

// execute runs one command line and reports whether the operator quit.
func (c *Console) execute(ctx context.Context, line string) bool {
	parts := strings.Fields(strings.TrimSpace(line))
	if len(parts) == 0 {
		return false
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	var err error
	switch cmd {
	case "help", "?":
		c.printHelp()

	case "request", "req":
		err = c.cmdRequest(ctx, args)

	case "broadcast", "bc":
		err = c.cmdBroadcast(ctx, args)

	case "subscribe", "sub":
		err = c.cmdSubscribe(ctx, args)

	case "jobs", "j":
		err = c.cmdJobs(ctx)

	case "cancel":
		err = c.cmdCancel(ctx, args)

	case "nodes", "n":
		err = c.cmdNodes(ctx)

	case "peers":
		c.cmdPeers()

	case "status":
		err = c.cmdStatus(ctx)

	case "quit", "exit", "q":
		return true

	default:
		fmt.Fprintf(c.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}

	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
	}
	return false
}

// do runs fn on the control goroutine.
func (c *Console) do(ctx context.Context, fn func()) error {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()
	return c.env.Scheduler.Do(ctx, fn)
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.out, `
Bus Panel Commands:
  Transfers:
    request <node-id> <type> [yaml] [priority=N] [timeout=D]
                                      - Send a request and print the response
    broadcast <type> [yaml] [interval=D] [count=N] [duration=D] [priority=N]
                                      - Broadcast once, or periodically with interval
    subscribe <type> [count=N] [duration=D]
                                      - Print every received message of a type

  Jobs:
    jobs                              - List active jobs
    cancel <job-id>                   - Stop a job

  Bus:
    nodes                             - List live devices
    peers                             - List link peers
    status                            - Show panel status

  General:
    help                              - Show this help
    quit                              - Exit

  Payloads are YAML mappings, e.g. {id: 3, state: idle}.
  Durations use Go syntax, e.g. 500ms or 2s.`)
}
