package event

import (
	"log/slog"

	"tasks-lab/errors"
)

type SinkTimeoutHandler struct {
	log     *slog.Logger
	counter *Counter
}

func NewSinkTimeoutHandler(log *slog.Logger, counter *Counter) *SinkTimeoutHandler {
	return &SinkTimeoutHandler{log: log, counter: counter}
}

func (h *SinkTimeoutHandler) Handle(event Event) {
	if event.Type != SinkTimeoutType {
		return
	}
	payload, ok := event.Payload.(SinkTimeout)
	if !ok {
		h.log.Error(errors.ErrInvalidPayload.Error(), "type", event.Type)
		return
	}
	h.counter.Increment(SinkTimeoutType)
	h.log.Warn("sink timed out", "sink", payload.SinkName, "timeout", payload.Timeout,
		"total", h.counter.Get(SinkTimeoutType))
}
