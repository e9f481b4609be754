package runtime

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"tasks-lab/domain"
	"tasks-lab/errors"
)

func TestCommandBus_Accepts_Valid_Command(t *testing.T) {
	req := require.New(t)
	bus := NewCommandBus(slog.Default(), 2, 1)
	env := domain.NewCommand("actor", domain.CreateTask{ID: domain.NewTaskID(), Title: "Reset wall clock"})

	ack := bus.Post(context.Background(), env)

	req.Equal(domain.Accepted(env.ID), ack)
	queued := 0
	for _, shard := range bus.Shards() {
		queued += len(shard)
	}
	req.Equal(1, queued)
}

func TestCommandBus_Refuses_Invalid_Command(t *testing.T) {
	req := require.New(t)
	bus := NewCommandBus(slog.Default(), 1, 1)
	env := domain.NewCommand("actor", domain.CreateTask{ID: domain.NewTaskID()})

	ack := bus.Post(context.Background(), env)

	req.Equal(domain.StatusError, ack.Status)
	req.Contains(ack.Error, errors.ErrInvalidCommand.Error())
	req.Empty(bus.Shards()[0])
}

func TestCommandBus_Refuses_When_Full(t *testing.T) {
	req := require.New(t)
	bus := NewCommandBus(slog.Default(), 1, 1)
	id := domain.NewTaskID()

	// Given the only shard is full
	first := bus.Post(context.Background(), domain.NewCommand("actor", domain.CreateTask{ID: id, Title: "a"}))
	req.Equal(domain.StatusOK, first.Status)

	// When another command arrives
	second := bus.Post(context.Background(), domain.NewCommand("actor", domain.CreateTask{ID: id, Title: "b"}))

	// Then it is refused instead of blocking
	req.Equal(domain.StatusError, second.Status)
	req.Equal(errors.ErrCommandBusFull.Error(), second.Error)
}

func TestCommandBus_Same_Aggregate_Same_Shard(t *testing.T) {
	req := require.New(t)
	bus := NewCommandBus(slog.Default(), 8, 10)
	id := domain.NewTaskID()

	req.Equal(bus.shardOf(string(id)), bus.shardOf(string(id)))
	for i := 0; i < 3; i++ {
		bus.Post(context.Background(), domain.NewCommand("actor", domain.CreateTask{ID: id, Title: "t"}))
	}
	req.Len(bus.Shards()[bus.shardOf(string(id))], 3)
}
