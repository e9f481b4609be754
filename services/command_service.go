package services

import (
	"context"
	"log/slog"

	"tasks-lab/auth"
	"tasks-lab/contract"
	"tasks-lab/domain"
)

type ICommandService interface {
	Post(ctx context.Context, env domain.CommandEnvelope) domain.Ack
}

type CommandService struct {
	bus contract.ICommandBus
	log *slog.Logger
}

func NewCommandService(bus contract.ICommandBus, log *slog.Logger) *CommandService {
	return &CommandService{bus: bus, log: log}
}

// Post hands the command to the bus. An authenticated caller
// is recorded as the actor, whatever the envelope claims.
func (s *CommandService) Post(ctx context.Context, env domain.CommandEnvelope) domain.Ack {
	if actor, ok := auth.ActorFromContext(ctx); ok {
		env.Context.Actor = actor
	}
	ack := s.bus.Post(ctx, env)
	s.log.Debug("Command posted", "command_id", env.ID, "status", ack.Status)
	return ack
}
