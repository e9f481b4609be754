package server

import (
	"log/slog"

	grpc3 "github.com/mama165/sdk-go/grpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"tasks-lab/auth"
	"tasks-lab/runtime"
	"tasks-lab/services"
)

// New builds the gRPC container of a bounded context: the three Tasks
// services plus the health service. Calls need a bearer token when an
// issuer is given.
func New(log *slog.Logger, bc *runtime.BoundedContext, issuer *auth.Issuer, subscriptionBufferSize int) (*grpc.Server, *health.Server) {
	unary := []grpc.UnaryServerInterceptor{grpc3.UnaryLoggingInterceptor(log)}
	var stream []grpc.StreamServerInterceptor
	if issuer != nil {
		unary = append(unary, issuer.UnaryInterceptor)
		stream = append(stream, issuer.StreamInterceptor)
	}
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(unary...),
		grpc.ChainStreamInterceptor(stream...),
	)

	RegisterCommandServiceServer(s, NewCommandServer(log, services.NewCommandService(bc.Bus(), log)))
	RegisterQueryServiceServer(s, NewQueryServer(log, services.NewQueryService(bc.Tasks(), bc.Search(), log)))
	RegisterSubscriptionServiceServer(s, NewSubscriptionServer(log, services.NewSubscriptionService(bc.Registry(), subscriptionBufferSize, log)))

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(s, healthServer)
	for _, name := range []string{"tasks.CommandService", "tasks.QueryService", "tasks.SubscriptionService"} {
		healthServer.SetServingStatus(name, healthpb.HealthCheckResponse_SERVING)
	}
	return s, healthServer
}
