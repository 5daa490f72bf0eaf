package remote

import (
	"io"
	"log/slog"
)

// CallEvent records metadata about a single time store call.
type CallEvent struct {
	Operation string
	LatencyMs int64
	Success   bool
	ErrorCode string
}

// Observer receives events about remote calls for logging and metrics.
type Observer interface {
	OnCallComplete(event CallEvent)
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(CallEvent) {}

// LogObserver writes remote call events to an io.Writer via slog.
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver creates an Observer that logs events to w.
func NewLogObserver(w io.Writer) *LogObserver {
	return &LogObserver{
		logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})),
	}
}

func (o *LogObserver) OnCallComplete(event CallEvent) {
	if event.Success {
		o.logger.Info("remote_call",
			"op", event.Operation,
			"latency_ms", event.LatencyMs,
			"success", true,
		)
		return
	}
	o.logger.Error("remote_call",
		"op", event.Operation,
		"latency_ms", event.LatencyMs,
		"success", false,
		"error_code", event.ErrorCode,
	)
}
