// Command buspanel is an operator panel for a jig equipment bus.
//
// It joins the bus as one node and lets an operator send requests,
// start one-shot or periodic broadcasts, subscribe to message types, and
// watch the live list of devices that report status.
//
// Usage:
//
//	buspanel [flags]
//
// Flags:
//
//	-config string         Configuration file path (YAML)
//	-node-id int           Local node ID, 1-127 (0 = anonymous, receive only)
//	-listen string         UDP listen address (default ":9382")
//	-peer string           Peer address host:port (repeatable)
//	-mdns                  Advertise and discover peers via mDNS
//	-interface string      Network interface for mDNS (default: all)
//	-status-type string    Message type tracked in the live device list
//	-live-timeout duration Silence after which a device leaves the live list (default 2s)
//	-priority int          Default transfer priority, 0-31 (default 30)
//	-spin-interval duration Transport spin cadence (default 10ms)
//	-trace-log string      Write a CBOR trace of all bus traffic to this file
//	-log-level string      Log level: debug, info, warn, error (default "info")
//	-interactive           Enable interactive command mode
//
// Examples:
//
//	# Join the bus as node 10 and talk to two known peers
//	buspanel -node-id 10 -peer 192.168.1.20:9382 -peer 192.168.1.21:9382 -interactive
//
//	# Find peers via mDNS and record a trace for buspanel-log
//	buspanel -node-id 10 -mdns -trace-log session.blog -interactive
//
// Interactive Commands:
//
//	request <node-id> <type> [yaml]   - Send a request and print the response
//	broadcast <type> [yaml] [opts]    - Broadcast once or periodically
//	subscribe <type> [opts]           - Print received messages of a type
//	jobs                              - List active jobs
//	cancel <job-id>                   - Stop a job
//	nodes                             - List live devices
//	status                            - Show panel status
//	quit                              - Exit
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/mash-protocol/buspanel/cmd/buspanel/interactive"
	"github.com/mash-protocol/buspanel/pkg/livestate"
	buslog "github.com/mash-protocol/buspanel/pkg/log"
	"github.com/mash-protocol/buspanel/pkg/session"
	"github.com/mash-protocol/buspanel/pkg/spin"
	"github.com/mash-protocol/buspanel/pkg/transport"
	"github.com/mash-protocol/buspanel/pkg/wire"
)

// shutdownTimeout bounds the final cleanup on the control goroutine.
const shutdownTimeout = 2 * time.Second

func main() {
	config, err := loadConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	setupLogging(config.LogLevel)

	// The console must exist before anything that prints.
	var console *interactive.Console
	var output io.Writer = os.Stdout
	if config.Interactive {
		console, err = interactive.New()
		if err != nil {
			log.Fatalf("Failed to create interactive console: %v", err)
		}
		// Redirect log output through readline to avoid interfering with input
		log.SetOutput(console.Stdout())
		output = console.Stdout()
	}

	sessionID := uuid.NewString()
	nodeID := wire.NodeID(config.NodeID)

	log.Println("Bus Panel")
	log.Println("=========")
	log.Printf("Session: %s", sessionID)
	log.Printf("Node ID: %v", nodeID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	trace, closeTrace, err := setupTrace(config)
	if err != nil {
		log.Fatalf("Failed to open trace log: %v", err)
	}
	defer closeTrace()

	link, err := transport.ListenUDP(ctx, transport.UDPConfig{
		ListenAddr: config.Listen,
		Peers:      config.Peers,
	})
	if err != nil {
		log.Fatalf("Failed to open bus link: %v", err)
	}
	log.Printf("Listening on %s (%d static peer(s))", link.Addr(), len(config.Peers))

	node, err := transport.NewNode(link, transport.NodeConfig{
		NodeID:      nodeID,
		TraceLogger: trace,
		SessionID:   sessionID,
	})
	if err != nil {
		log.Fatalf("Failed to create node: %v", err)
	}

	sess := session.New(node, session.Config{
		ID:          sessionID,
		Priority:    session.Prio(wire.Priority(config.Priority)),
		Output:      output,
		TraceLogger: trace,
	})
	cache, err := livestate.New(node, livestate.Config{
		MessageType: config.StatusType,
		Timeout:     config.LiveTimeout,
	})
	if err != nil {
		log.Fatalf("Failed to create live device list: %v", err)
	}

	if config.MDNS {
		advertiser, err := startDiscovery(ctx, link, nodeID, config.Interface)
		if err != nil {
			log.Printf("Failed to start discovery: %v", err)
		} else {
			defer advertiser.Stop()
		}
	}

	// The scheduler outlives ctx so shutdown can still run on it.
	sched := spin.New(node, spin.Config{Interval: config.SpinInterval})
	schedCtx, stopSched := context.WithCancel(context.Background())
	schedDone := make(chan error, 1)
	go func() { schedDone <- sched.Run(schedCtx) }()
	log.Printf("Spinning every %v", sched.Interval())

	if console != nil {
		go console.Run(ctx, cancel, interactive.Env{
			Scheduler: sched,
			Session:   sess,
			Cache:     cache,
			Node:      node,
			Peers:     link,
		})
	}

	// Wait for shutdown signal or context cancellation
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("Received signal: %v", sig)
	case <-ctx.Done():
		// Context was cancelled (e.g., by interactive quit command)
	}

	log.Println("Shutting down...")
	cancel()

	doCtx, doCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	err = sched.Do(doCtx, func() {
		cache.Close()
		sess.Close()
	})
	doCancel()
	if err != nil {
		log.Printf("Error closing session: %v", err)
	}

	stopSched()
	if err := <-schedDone; err != nil {
		log.Printf("Scheduler error: %v", err)
	}
	if err := node.Close(); err != nil {
		log.Printf("Error closing node: %v", err)
	}

	log.Println("Goodbye!")
}

func setupLogging(level string) {
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	switch strings.ToLower(level) {
	case "debug":
		log.SetFlags(log.Ltime | log.Lmicroseconds | log.Lshortfile)
		slog.SetLogLoggerLevel(slog.LevelDebug)
	case "warn":
		log.SetFlags(log.Ltime)
		slog.SetLogLoggerLevel(slog.LevelWarn)
	case "error":
		log.SetFlags(log.Ltime)
		slog.SetLogLoggerLevel(slog.LevelError)
	default:
		slog.SetLogLoggerLevel(slog.LevelInfo)
	}
}

// setupTrace builds the trace logger: a CBOR file if requested, plus a
// slog mirror at debug level.
func setupTrace(config Config) (buslog.Logger, func(), error) {
	var (
		file    *buslog.FileLogger
		loggers []buslog.Logger
	)
	if config.TraceLog != "" {
		var err error
		file, err = buslog.NewFileLogger(config.TraceLog)
		if err != nil {
			return nil, nil, fmt.Errorf("trace log %s: %w", config.TraceLog, err)
		}
		loggers = append(loggers, file)
		log.Printf("Tracing to %s", config.TraceLog)
	}
	if strings.EqualFold(config.LogLevel, "debug") {
		loggers = append(loggers, buslog.NewSlogAdapter(slog.Default()))
	}

	closeFn := func() {
		if file == nil {
			return
		}
		if err := file.Close(); err != nil {
			log.Printf("Error closing trace log: %v", err)
		}
		if err := file.Err(); err != nil {
			log.Printf("Trace log is incomplete: %v", err)
		}
		log.Printf("Wrote %d trace events to %s", file.Written(), file.Path())
	}
	return buslog.Tee(loggers...), closeFn, nil
}
