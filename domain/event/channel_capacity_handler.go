package event

import (
	"fmt"
	"log/slog"

	"tasks-lab/errors"
)

// ChannelCapacityHandler watches the fill level of the internal channels.
// A warning is logged when the room left drops under the threshold,
// which means producers are about to be refused.
type ChannelCapacityHandler struct {
	log                  *slog.Logger
	lowCapacityThreshold int
}

func NewChannelCapacityHandler(log *slog.Logger, lowCapacityThreshold int) *ChannelCapacityHandler {
	return &ChannelCapacityHandler{log: log, lowCapacityThreshold: lowCapacityThreshold}
}

func (h ChannelCapacityHandler) Handle(event Event) {
	if event.Type != ChannelCapacityType {
		return
	}
	payload, ok := event.Payload.(ChannelCapacity)
	if !ok {
		h.log.Error(errors.ErrInvalidPayload.Error(), "type", event.Type)
		return
	}
	h.log.Debug(fmt.Sprintf("Channel %s usage: %d / %d", payload.ChannelName, payload.Length, payload.Capacity))
	if payload.Capacity <= 0 {
		// unbuffered
		return
	}
	left := payload.Capacity - payload.Length
	if left <= h.lowCapacityThreshold {
		h.log.Warn("channel nearly full", "channel", payload.ChannelName, "capacity_left", left)
	}
}
