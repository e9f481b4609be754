package server

import (
	"context"
	"log/slog"

	"google.golang.org/protobuf/types/known/structpb"

	"tasks-lab/codec"
	"tasks-lab/errors"
	"tasks-lab/services"
)

type CommandServer struct {
	commandService services.ICommandService
	log            *slog.Logger
}

func NewCommandServer(log *slog.Logger, commandService services.ICommandService) *CommandServer {
	return &CommandServer{commandService: commandService, log: log}
}

// Post acknowledges a command. The outcome of handling is observed
// through a subscription, never through this call.
func (s *CommandServer) Post(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	env, err := codec.DecodeCommand(req)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	ack, err := codec.EncodeAck(s.commandService.Post(ctx, env))
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return ack, nil
}
