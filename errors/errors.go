package errors

import (
	stderrors "errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrWorkerPanic          = fmt.Errorf("worker panic")
	ErrInvalidCommand       = fmt.Errorf("invalid command")
	ErrUnsupportedCommand   = fmt.Errorf("unsupported command")
	ErrCommandBusFull       = fmt.Errorf("command bus is full")
	ErrConcurrencyConflict  = fmt.Errorf("concurrency conflict")
	ErrUnknownType          = fmt.Errorf("unknown message type")
	ErrInvalidMessage       = fmt.Errorf("invalid message")
	ErrUnsupportedTarget    = fmt.Errorf("unsupported target type")
	ErrSubscriptionNotFound = fmt.Errorf("subscription not found")
	ErrInvalidToken         = fmt.Errorf("invalid or expired token")
	ErrTaskNotFound         = fmt.Errorf("task not found")
	ErrInvalidPayload       = fmt.Errorf("invalid event payload")
	ErrSinkTimeout          = fmt.Errorf("sink timed out")
	ErrSubscriptionExists   = fmt.Errorf("subscription already exists")
)

// Is and As are re-exported so callers importing this package
// under the name "errors" keep access to the standard helpers.
func Is(err, target error) bool { return stderrors.Is(err, target) }

func As(err error, target any) bool { return stderrors.As(err, target) }

func Join(errs ...error) error { return stderrors.Join(errs...) }

// MapToGRPCError converts a domain error to a gRPC status error.
// Errors that already carry a status are returned untouched.
func MapToGRPCError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case Is(err, ErrInvalidCommand), Is(err, ErrUnknownType),
		Is(err, ErrInvalidMessage), Is(err, ErrUnsupportedTarget):
		return status.Error(codes.InvalidArgument, err.Error())
	case Is(err, ErrUnsupportedCommand):
		return status.Error(codes.Unimplemented, err.Error())
	case Is(err, ErrSubscriptionNotFound), Is(err, ErrTaskNotFound):
		return status.Error(codes.NotFound, err.Error())
	case Is(err, ErrSubscriptionExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case Is(err, ErrCommandBusFull):
		return status.Error(codes.ResourceExhausted, err.Error())
	case Is(err, ErrConcurrencyConflict):
		return status.Error(codes.Aborted, err.Error())
	case Is(err, ErrInvalidToken):
		return status.Error(codes.Unauthenticated, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
