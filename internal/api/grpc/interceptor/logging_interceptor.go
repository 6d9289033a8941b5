package interceptor

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"locationapp-backend/internal/logger"
)

// Logging logs every unary call with its status code and duration. Panics in
// handlers are turned into codes.Internal.
func Logging() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		start := time.Now()
		defer func() {
			if p := recover(); p != nil {
				logger.Error("gRPC handler panicked", "method", info.FullMethod, "panic", p)
				resp, err = nil, status.Error(codes.Internal, "internal error")
			}
			code := status.Code(err)
			if code == codes.OK || code == codes.Unauthenticated || code == codes.InvalidArgument || code == codes.NotFound {
				logger.Info("gRPC call", "method", info.FullMethod, "code", code.String(), "duration", time.Since(start))
			} else {
				logger.Error("gRPC call failed", "method", info.FullMethod, "code", code.String(), "duration", time.Since(start), "error", err)
			}
		}()
		return handler(ctx, req)
	}
}
