package grpc

import (
	"context"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "x-request-id"

type ctxKey string

const requestIDKey ctxKey = "requestID"

// RequestID returns the id assigned to the current call, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// loggingInterceptor tags each call with a request id, taken from the
// incoming metadata or generated, echoes it in the response header and logs
// the outcome.
func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	var id string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(RequestIDHeader); len(values) > 0 {
			id = values[0]
		}
	}
	if id == "" {
		id = uuid.NewString()
	}
	ctx = context.WithValue(ctx, requestIDKey, id)
	_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDHeader, id))

	start := time.Now()
	resp, err := handler(ctx, req)

	code := status.Code(err)
	log := s.logger.With("request_id", id, "method", info.FullMethod, "code", code.String(), "duration", time.Since(start))
	switch code {
	case codes.OK:
		log.Info(ctx, "call handled")
	case codes.Internal, codes.Unavailable, codes.Unknown:
		log.Error(ctx, "call failed", "error", err)
	default:
		log.Warn(ctx, "call rejected", "error", err)
	}
	return resp, err
}
