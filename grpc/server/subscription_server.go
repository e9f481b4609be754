package server

import (
	"context"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"tasks-lab/codec"
	"tasks-lab/domain"
	"tasks-lab/errors"
	"tasks-lab/services"
)

type SubscriptionServer struct {
	subscriptionService services.ISubscriptionService
	log                 *slog.Logger
}

func NewSubscriptionServer(log *slog.Logger, subscriptionService services.ISubscriptionService) *SubscriptionServer {
	return &SubscriptionServer{subscriptionService: subscriptionService, log: log}
}

func (s *SubscriptionServer) Subscribe(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	topic, err := codec.DecodeTopic(req)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	sub, err := s.subscriptionService.Subscribe(ctx, topic)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	res, err := codec.EncodeSubscription(sub)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return res, nil
}

// Activate streams the updates of a subscription.
// It blocks until the client goes away or the subscription is cancelled.
// A client going away cancels the subscription.
func (s *SubscriptionServer) Activate(req *structpb.Struct, stream grpc.ServerStream) error {
	sub, err := codec.DecodeSubscription(req)
	if err != nil {
		return errors.MapToGRPCError(err)
	}
	err = s.subscriptionService.Activate(stream.Context(), sub, func(update domain.SubscriptionUpdate) error {
		msg, err := codec.EncodeUpdate(update)
		if err != nil {
			return err
		}
		return stream.SendMsg(msg)
	})
	if stream.Context().Err() != nil {
		// The subscription dies with its stream, nobody can consume it anymore.
		if err := s.subscriptionService.Cancel(context.Background(), sub); err != nil && !errors.Is(err, errors.ErrSubscriptionNotFound) {
			s.log.Warn("Failed to cancel disconnected subscription", "subscription_id", sub.ID, "error", err)
		}
		s.log.Debug("Subscriber disconnected", "subscription_id", sub.ID)
		return nil
	}
	return errors.MapToGRPCError(err)
}

func (s *SubscriptionServer) Cancel(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sub, err := codec.DecodeSubscription(req)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	if err := s.subscriptionService.Cancel(ctx, sub); err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &structpb.Struct{}, nil
}
