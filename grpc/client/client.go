// Package client talks to a Tasks gRPC container.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"

	"tasks-lab/codec"
	"tasks-lab/domain"
	"tasks-lab/grpc/server"
)

type Client struct {
	conn  *grpc.ClientConn
	token string
}

// New wraps a connection. A non empty token is sent as bearer on every call.
func New(conn *grpc.ClientConn, token string) *Client {
	return &Client{conn: conn, token: token}
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) withToken(ctx context.Context) context.Context {
	if c.token == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+c.token)
}

func (c *Client) invoke(ctx context.Context, method string, req *structpb.Struct) (*structpb.Struct, error) {
	res := &structpb.Struct{}
	if err := c.conn.Invoke(c.withToken(ctx), method, req, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) Post(ctx context.Context, env domain.CommandEnvelope) (domain.Ack, error) {
	req, err := codec.EncodeCommand(env)
	if err != nil {
		return domain.Ack{}, err
	}
	res, err := c.invoke(ctx, server.CommandService_Post_FullMethodName, req)
	if err != nil {
		return domain.Ack{}, err
	}
	return codec.DecodeAck(res)
}

func (c *Client) Read(ctx context.Context, query domain.Query) (domain.QueryResponse, error) {
	req, err := codec.EncodeQuery(query)
	if err != nil {
		return domain.QueryResponse{}, err
	}
	res, err := c.invoke(ctx, server.QueryService_Read_FullMethodName, req)
	if err != nil {
		return domain.QueryResponse{}, err
	}
	return codec.DecodeQueryResponse(res)
}

func (c *Client) Subscribe(ctx context.Context, topic domain.Topic) (domain.Subscription, error) {
	req, err := codec.EncodeTopic(topic)
	if err != nil {
		return domain.Subscription{}, err
	}
	res, err := c.invoke(ctx, server.SubscriptionService_Subscribe_FullMethodName, req)
	if err != nil {
		return domain.Subscription{}, err
	}
	return codec.DecodeSubscription(res)
}

func (c *Client) Cancel(ctx context.Context, sub domain.Subscription) error {
	req, err := codec.EncodeSubscription(sub)
	if err != nil {
		return err
	}
	_, err = c.invoke(ctx, server.SubscriptionService_Cancel_FullMethodName, req)
	return err
}

// Activate calls fn for every update until the subscription is cancelled
// (nil), ctx is done, or fn fails.
func (c *Client) Activate(ctx context.Context, sub domain.Subscription, fn func(domain.SubscriptionUpdate) error) error {
	req, err := codec.EncodeSubscription(sub)
	if err != nil {
		return err
	}
	desc := &grpc.StreamDesc{StreamName: "Activate", ServerStreams: true}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stream, err := c.conn.NewStream(c.withToken(ctx), desc, server.SubscriptionService_Activate_FullMethodName)
	if err != nil {
		return err
	}
	if err := stream.SendMsg(req); err != nil {
		return err
	}
	if err := stream.CloseSend(); err != nil {
		return err
	}
	for {
		msg := &structpb.Struct{}
		if err := stream.RecvMsg(msg); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		update, err := codec.DecodeUpdate(msg)
		if err != nil {
			return fmt.Errorf("decoding update: %w", err)
		}
		if err := fn(update); err != nil {
			return err
		}
	}
}
