package event

import (
	"fmt"
	"log/slog"

	"tasks-lab/errors"
)

type ProcessUsageHandler struct {
	log *slog.Logger
}

func NewProcessUsageHandler(log *slog.Logger) *ProcessUsageHandler {
	return &ProcessUsageHandler{log: log}
}

func (h ProcessUsageHandler) Handle(event Event) {
	if event.Type != ProcessUsageType {
		return
	}
	payload, ok := event.Payload.(ProcessUsage)
	if !ok {
		h.log.Error(errors.ErrInvalidPayload.Error(), "type", event.Type)
		return
	}
	h.log.Debug(fmt.Sprintf("[HEALTH] PID %d | CPU %.2f%% | RAM %.2f%%", payload.PID, payload.Cpu, payload.Ram))
}
