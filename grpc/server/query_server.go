package server

import (
	"context"
	"log/slog"

	"google.golang.org/protobuf/types/known/structpb"

	"tasks-lab/codec"
	"tasks-lab/errors"
	"tasks-lab/services"
)

type QueryServer struct {
	queryService services.IQueryService
	log          *slog.Logger
}

func NewQueryServer(log *slog.Logger, queryService services.IQueryService) *QueryServer {
	return &QueryServer{queryService: queryService, log: log}
}

func (s *QueryServer) Read(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	query, err := codec.DecodeQuery(req)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	response, err := s.queryService.Read(ctx, query)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	res, err := codec.EncodeQueryResponse(response)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return res, nil
}
