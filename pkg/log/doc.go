// Package log provides structured session trace capture for buspanel.
//
// This package defines the Logger interface and Event types for capturing
// what the panel did on the bus: frames sent and received by the transport
// driver, and lifecycle changes of background jobs (periodic broadcasts and
// subscriptions). It is separate from operational logging (slog) - trace
// capture provides a complete machine-readable record for later analysis.
//
// # Basic Usage
//
//	// For development: log to console via slog
//	cfg.TraceLogger = log.NewSlogAdapter(slog.Default())
//
//	// For field sessions: write to a binary file
//	cfg.TraceLogger, _ = log.NewFileLogger("/var/log/buspanel/session.blog")
//
//	// Both: use Tee
//	cfg.TraceLogger = log.Tee(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # Event Types
//
// Events are captured at two layers:
//   - Transport: frames in and out of the local node (MessageEvent)
//   - Session: job state transitions (JobEvent)
//
// Errors at either layer have a dedicated event type.
//
// # File Format
//
// Trace files are a concatenation of CBOR-encoded events with the .blog
// extension. The buspanel-log tool views, filters, and exports them.
package log
