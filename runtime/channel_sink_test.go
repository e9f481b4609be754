package runtime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tasks-lab/domain"
	"tasks-lab/errors"
)

func TestChannelSink_Buffers_Updates(t *testing.T) {
	req := require.New(t)
	sink := NewChannelSink(1)
	update := domain.SubscriptionUpdate{Tasks: []domain.Task{{ID: "a"}}}

	req.NoError(sink.Send(context.Background(), update))

	req.Equal(update, <-sink.Updates())
}

func TestChannelSink_Send_Honours_Deadline(t *testing.T) {
	req := require.New(t)
	sink := NewChannelSink(0)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	// When nobody reads an unbuffered sink
	err := sink.Send(ctx, domain.SubscriptionUpdate{})

	// Then the send gives up at the deadline
	req.ErrorIs(err, context.DeadlineExceeded)
}

func TestChannelSink_Closed(t *testing.T) {
	req := require.New(t)
	sink := NewChannelSink(1)

	sink.Close()
	sink.Close()

	req.ErrorIs(sink.Send(context.Background(), domain.SubscriptionUpdate{}), errors.ErrSubscriptionNotFound)
	_, open := <-sink.Done()
	req.False(open)
}
