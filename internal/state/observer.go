package state

import (
	"context"
	"log/slog"
	"time"
)

// Operation names reported to an Observer.
const (
	OpLoad      = "load"
	OpUpdate    = "update"
	OpRollback  = "rollback"
	OpConvert   = "convert"
	OpSavePrefs = "save_prefs"
)

// Event describes one finished store operation.
type Event struct {
	Op       string
	LeadID   string
	Duration time.Duration
	Err      error
	Fields   map[string]any
}

// Observer receives store operation events.
type Observer interface {
	Observe(ctx context.Context, event Event)
}

// NoopObserver ignores all events.
type NoopObserver struct{}

func (NoopObserver) Observe(context.Context, Event) {}

type logObserver struct {
	logger *slog.Logger
}

// NewLogObserver writes store events to logger. A nil logger yields a
// NoopObserver.
func NewLogObserver(logger *slog.Logger) Observer {
	if logger == nil {
		return NoopObserver{}
	}
	return &logObserver{logger: logger}
}

func (o *logObserver) Observe(ctx context.Context, event Event) {
	attrs := make([]any, 0, 8+len(event.Fields)*2)
	attrs = append(attrs, "op", event.Op)
	if event.LeadID != "" {
		attrs = append(attrs, "lead_id", event.LeadID)
	}
	if event.Duration > 0 {
		attrs = append(attrs, "duration_ms", event.Duration.Milliseconds())
	}
	for k, v := range event.Fields {
		attrs = append(attrs, k, v)
	}
	if event.Err != nil {
		attrs = append(attrs, "error", event.Err.Error())
		o.logger.ErrorContext(ctx, "store_op", attrs...)
		return
	}
	o.logger.InfoContext(ctx, "store_op", attrs...)
}
