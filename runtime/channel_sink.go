package runtime

import (
	"context"
	"sync"

	"tasks-lab/contract"
	"tasks-lab/domain"
	"tasks-lab/errors"
)

var _ contract.UpdateSink = (*ChannelSink)(nil)

// ChannelSink buffers the updates of one subscription until the
// subscriber activates it. The updates channel is never closed,
// Done tells the reader the subscription is over.
type ChannelSink struct {
	updates chan domain.SubscriptionUpdate
	done    chan struct{}
	once    sync.Once
}

func NewChannelSink(bufferSize int) *ChannelSink {
	return &ChannelSink{
		updates: make(chan domain.SubscriptionUpdate, bufferSize),
		done:    make(chan struct{}),
	}
}

// Send blocks until the update is buffered, the sink is closed or ctx expires.
func (s *ChannelSink) Send(ctx context.Context, update domain.SubscriptionUpdate) error {
	select {
	case <-s.done:
		return errors.ErrSubscriptionNotFound
	default:
	}
	select {
	case s.updates <- update:
		return nil
	case <-s.done:
		return errors.ErrSubscriptionNotFound
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *ChannelSink) Updates() <-chan domain.SubscriptionUpdate { return s.updates }

func (s *ChannelSink) Done() <-chan struct{} { return s.done }

func (s *ChannelSink) Close() {
	s.once.Do(func() { close(s.done) })
}
