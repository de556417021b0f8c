package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes journal events to an slog.Logger.
// Useful for development when you want to see events in the console.
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
		slog.String("instance", event.InstanceID),
		slog.String("category", event.Category.String()),
	}
	if event.Generation != 0 {
		attrs = append(attrs, slog.Uint64("generation", event.Generation))
	}

	switch {
	case event.Transition != nil:
		attrs = append(attrs,
			slog.String("trigger", event.Transition.Trigger.String()),
			slog.String("old_state", event.Transition.OldState.String()),
			slog.String("new_state", event.Transition.NewState.String()),
			slog.String("outcome", event.Transition.Outcome.String()),
			slog.String("mode", event.Transition.Mode.String()),
		)
	case event.Mode != nil:
		attrs = append(attrs,
			slog.String("old_mode", event.Mode.OldMode.String()),
			slog.String("new_mode", event.Mode.NewMode.String()),
		)
	case event.Dispatch != nil:
		attrs = append(attrs,
			slog.String("state", event.Dispatch.State.String()),
			slog.Int("handlers", event.Dispatch.Handlers),
			slog.Int("failures", event.Dispatch.Failures),
			slog.Duration("duration", event.Dispatch.Duration),
		)
		if event.Dispatch.Coalesced > 0 {
			attrs = append(attrs, slog.Int("coalesced", event.Dispatch.Coalesced))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("handler", event.Error.Handler),
			slog.String("state", event.Error.State.String()),
			slog.String("error_msg", event.Error.Message),
			slog.Bool("panic", event.Error.Panic),
		)
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "powersuspend", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
