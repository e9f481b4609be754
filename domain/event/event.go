// Package event holds the technical events emitted by the runtime
// (supervision, channel pressure, process usage, command latency)
// and the handlers reacting to them.
package event

import "time"

type Type string

const (
	RestartedAfterPanicType Type = "WORKER_RESTARTED_AFTER_PANIC"
	ChannelCapacityType     Type = "CHANNEL_CAPACITY"
	ProcessUsageType        Type = "PROCESS_USAGE"
	CommandHandledType      Type = "COMMAND_HANDLED"
	SinkTimeoutType         Type = "SINK_TIMEOUT"
)

type Event struct {
	Type      Type
	CreatedAt time.Time
	Payload   any
}

func New(t Type, payload any) Event {
	return Event{Type: t, CreatedAt: time.Now().UTC(), Payload: payload}
}

type WorkerRestartedAfterPanic struct {
	WorkerName string
}

type ChannelCapacity struct {
	ChannelName string
	Capacity    int
	Length      int
}

type ProcessUsage struct {
	PID int32
	Cpu float64
	Ram float32
}

type CommandHandled struct {
	CommandType string
	AggregateID string
	ReceivedAt  time.Time
	Rejected    bool
}

type SinkTimeout struct {
	SinkName string
	Timeout  time.Duration
}
