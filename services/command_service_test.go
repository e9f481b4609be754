package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"tasks-lab/auth"
	"tasks-lab/domain"
	"tasks-lab/mocks"
)

func TestCommandService_Post_Forwards_To_Bus(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	bus := mocks.NewMockICommandBus(ctrl)
	service := NewCommandService(bus, slog.Default())
	env := domain.NewCommand("actor", domain.CreateTask{ID: domain.NewTaskID(), Title: "t"})

	bus.EXPECT().Post(gomock.Any(), env).Return(domain.Accepted(env.ID))

	req.Equal(domain.Accepted(env.ID), service.Post(context.Background(), env))
}

func TestCommandService_Post_Uses_Authenticated_Actor(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	bus := mocks.NewMockICommandBus(ctrl)
	service := NewCommandService(bus, slog.Default())
	env := domain.NewCommand("someone-else", domain.CreateTask{ID: domain.NewTaskID(), Title: "t"})

	// Then the bus sees the token's actor
	bus.EXPECT().Post(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, got domain.CommandEnvelope) domain.Ack {
			req.Equal(domain.UserID("me"), got.Context.Actor)
			return domain.Accepted(got.ID)
		})

	// When an authenticated caller posts
	ack := service.Post(auth.WithActor(context.Background(), "me"), env)

	req.Equal(domain.StatusOK, ack.Status)
}
