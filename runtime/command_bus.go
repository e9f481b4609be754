package runtime

import (
	"context"
	"hash/fnv"
	"log/slog"

	"tasks-lab/contract"
	"tasks-lab/domain"
	"tasks-lab/errors"
)

var _ contract.ICommandBus = (*CommandBus)(nil)

// CommandBus spreads commands over shards keyed by aggregate id, so the
// commands of one task are handled in the order they were posted.
type CommandBus struct {
	log    *slog.Logger
	shards []chan domain.CommandEnvelope
}

func NewCommandBus(log *slog.Logger, numShards, bufferSize int) *CommandBus {
	if numShards < 1 {
		numShards = 1
	}
	shards := make([]chan domain.CommandEnvelope, numShards)
	for i := range shards {
		shards[i] = make(chan domain.CommandEnvelope, bufferSize)
	}
	return &CommandBus{log: log, shards: shards}
}

// Post never blocks: a full shard refuses the command.
func (b *CommandBus) Post(ctx context.Context, env domain.CommandEnvelope) domain.Ack {
	if err := domain.ValidateCommand(env); err != nil {
		b.log.Debug("Command refused", "command_id", env.ID, "error", err)
		return domain.Refused(env.ID, err)
	}
	shard := b.shards[b.shardOf(env.Message.AggregateID())]
	select {
	case <-ctx.Done():
		return domain.Refused(env.ID, ctx.Err())
	case shard <- env:
		return domain.Accepted(env.ID)
	default:
		b.log.Warn("Command shard full, dropping command", "command_id", env.ID)
		return domain.Refused(env.ID, errors.ErrCommandBusFull)
	}
}

func (b *CommandBus) shardOf(aggregateID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(aggregateID))
	return int(h.Sum32() % uint32(len(b.shards)))
}

// Shards exposes the queues to the command workers.
func (b *CommandBus) Shards() []chan domain.CommandEnvelope {
	return b.shards
}
