package event

import (
	"fmt"
	"log/slog"

	"tasks-lab/errors"
)

// WorkerRestartedAfterPanicHandler counts the restarts performed by the supervisor.
type WorkerRestartedAfterPanicHandler struct {
	log     *slog.Logger
	counter *Counter
}

func NewWorkerRestartedAfterPanicHandler(log *slog.Logger, counter *Counter) *WorkerRestartedAfterPanicHandler {
	return &WorkerRestartedAfterPanicHandler{log: log, counter: counter}
}

func (h *WorkerRestartedAfterPanicHandler) Handle(event Event) {
	if event.Type != RestartedAfterPanicType {
		return
	}
	payload, ok := event.Payload.(WorkerRestartedAfterPanic)
	if !ok {
		h.log.Error(errors.ErrInvalidPayload.Error(), "type", event.Type)
		return
	}
	h.counter.Increment(RestartedAfterPanicType)
	h.log.Warn(fmt.Sprintf("Worker %s restarted after panic, total: %d",
		payload.WorkerName, h.counter.Get(RestartedAfterPanicType)))
}
