package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Messages travel as google.protobuf.Struct values encoded by the codec package,
// so the service descriptors are declared here instead of being generated.
const (
	CommandService_Post_FullMethodName           = "/tasks.CommandService/Post"
	QueryService_Read_FullMethodName             = "/tasks.QueryService/Read"
	SubscriptionService_Subscribe_FullMethodName = "/tasks.SubscriptionService/Subscribe"
	SubscriptionService_Activate_FullMethodName  = "/tasks.SubscriptionService/Activate"
	SubscriptionService_Cancel_FullMethodName    = "/tasks.SubscriptionService/Cancel"
)

type CommandServiceServer interface {
	Post(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type QueryServiceServer interface {
	Read(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type SubscriptionServiceServer interface {
	Subscribe(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Activate(*structpb.Struct, grpc.ServerStream) error
	Cancel(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(srv any, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryCall) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		req := &structpb.Struct{}
		if err := dec(req); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv, ctx, req)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			typed, ok := req.(*structpb.Struct)
			if !ok {
				return nil, status.Error(codes.InvalidArgument, "invalid request type")
			}
			return call(srv, ctx, typed)
		}
		return interceptor(ctx, req, info, handler)
	}
}

func RegisterCommandServiceServer(s grpc.ServiceRegistrar, srv CommandServiceServer) {
	s.RegisterService(&grpc.ServiceDesc{
		ServiceName: "tasks.CommandService",
		HandlerType: (*CommandServiceServer)(nil),
		Methods: []grpc.MethodDesc{{
			MethodName: "Post",
			Handler: unaryHandler(CommandService_Post_FullMethodName, func(srv any, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
				return srv.(CommandServiceServer).Post(ctx, req)
			}),
		}},
		Streams:  []grpc.StreamDesc{},
		Metadata: "tasks/commands.proto",
	}, srv)
}

func RegisterQueryServiceServer(s grpc.ServiceRegistrar, srv QueryServiceServer) {
	s.RegisterService(&grpc.ServiceDesc{
		ServiceName: "tasks.QueryService",
		HandlerType: (*QueryServiceServer)(nil),
		Methods: []grpc.MethodDesc{{
			MethodName: "Read",
			Handler: unaryHandler(QueryService_Read_FullMethodName, func(srv any, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
				return srv.(QueryServiceServer).Read(ctx, req)
			}),
		}},
		Streams:  []grpc.StreamDesc{},
		Metadata: "tasks/queries.proto",
	}, srv)
}

func RegisterSubscriptionServiceServer(s grpc.ServiceRegistrar, srv SubscriptionServiceServer) {
	s.RegisterService(&grpc.ServiceDesc{
		ServiceName: "tasks.SubscriptionService",
		HandlerType: (*SubscriptionServiceServer)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "Subscribe",
				Handler: unaryHandler(SubscriptionService_Subscribe_FullMethodName, func(srv any, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
					return srv.(SubscriptionServiceServer).Subscribe(ctx, req)
				}),
			},
			{
				MethodName: "Cancel",
				Handler: unaryHandler(SubscriptionService_Cancel_FullMethodName, func(srv any, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
					return srv.(SubscriptionServiceServer).Cancel(ctx, req)
				}),
			},
		},
		Streams: []grpc.StreamDesc{{
			StreamName:    "Activate",
			ServerStreams: true,
			Handler: func(srv any, stream grpc.ServerStream) error {
				req := &structpb.Struct{}
				if err := stream.RecvMsg(req); err != nil {
					return err
				}
				return srv.(SubscriptionServiceServer).Activate(req, stream)
			},
		}},
		Metadata: "tasks/subscriptions.proto",
	}, srv)
}
