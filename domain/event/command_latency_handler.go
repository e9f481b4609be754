package event

import (
	"log/slog"
	"time"
)

// CommandLatencyHandler logs how long commands waited between
// acceptance and the end of their handling.
type CommandLatencyHandler struct {
	log              *slog.Logger
	counter          *Counter
	latencyThreshold time.Duration
}

func NewCommandLatencyHandler(log *slog.Logger, counter *Counter, latencyThreshold time.Duration) *CommandLatencyHandler {
	return &CommandLatencyHandler{log: log, counter: counter, latencyThreshold: latencyThreshold}
}

func (h *CommandLatencyHandler) Handle(e Event) {
	payload, ok := e.Payload.(CommandHandled)
	if !ok || e.Type != CommandHandledType {
		return
	}
	h.counter.Increment(CommandHandledType)
	leadTime := e.CreatedAt.Sub(payload.ReceivedAt)
	h.log.Debug("telemetry: command latency",
		"command", payload.CommandType,
		"aggregate_id", payload.AggregateID,
		"rejected", payload.Rejected,
		"lead_time_ms", leadTime.Milliseconds(),
	)
	if leadTime > h.latencyThreshold {
		h.log.Warn("high command latency detected", "command", payload.CommandType, "lead_time", leadTime)
	}
}
