package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes trace events to an slog.Logger.
// Useful for development when you want to see bus traffic in the console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("session_id", event.SessionID),
		slog.String("direction", event.Direction.String()),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}

	if event.LocalNode != 0 {
		attrs = append(attrs, slog.Uint64("local_node", uint64(event.LocalNode)))
	}
	if event.RemoteNode != 0 {
		attrs = append(attrs, slog.Uint64("remote_node", uint64(event.RemoteNode)))
	}

	switch {
	case event.Message != nil:
		attrs = append(attrs,
			slog.String("kind", event.Message.Kind.String()),
			slog.String("type", event.Message.Type),
			slog.Uint64("priority", uint64(event.Message.Priority)),
			slog.Uint64("transfer_id", uint64(event.Message.TransferID)),
		)
	case event.Job != nil:
		attrs = append(attrs,
			slog.Uint64("job_id", uint64(event.Job.JobID)),
			slog.String("job_kind", event.Job.Kind.String()),
			slog.String("type", event.Job.Type),
			slog.String("old_state", event.Job.OldState),
			slog.String("new_state", event.Job.NewState),
		)
		if event.Job.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.Job.Reason))
		}
		if event.Job.Transfers != 0 {
			attrs = append(attrs, slog.Int("transfers", event.Job.Transfers))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "trace", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
