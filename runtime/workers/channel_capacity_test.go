package workers

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tasks-lab/domain/event"
)

func TestChannelCapacityWorker_Reports_Usage(t *testing.T) {
	req := require.New(t)
	commands := make(chan int, 4)
	commands <- 1
	telemetry := make(chan event.Event, 10)
	worker := NewChannelCapacityWorker(slog.Default(),
		[]NamedChannel{{Name: "commands", Channel: commands}, {Name: "bogus", Channel: 42}},
		telemetry, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = worker.Run(ctx) }()

	select {
	case evt := <-telemetry:
		req.Equal(event.ChannelCapacityType, evt.Type)
		req.Equal(event.ChannelCapacity{ChannelName: "commands", Capacity: 4, Length: 1}, evt.Payload)
	case <-time.After(time.Second):
		req.Fail("no capacity reported")
	}
}
