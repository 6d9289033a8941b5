package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"locationapp-backend/internal/api/grpc/interceptor"
	"locationapp-backend/internal/domain"
)

// GetAdminEmailFromContext returns the admin set by the auth interceptor.
func GetAdminEmailFromContext(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", status.Errorf(codes.Unauthenticated, "metadata is not provided")
	}
	emails := md.Get(interceptor.AdminEmailKey)
	if len(emails) == 0 || emails[0] == "" {
		return "", status.Errorf(codes.Unauthenticated, "admin is not provided in metadata")
	}
	return emails[0], nil
}

// toStatus maps domain errors onto gRPC codes.
func toStatus(err error) error {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return status.Errorf(codes.InvalidArgument, "%s: %s", verr.Field, verr.Message)
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidCursor):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, domain.ErrMissingIndex):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, domain.ErrUnauthenticated):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, domain.ErrUnavailable):
		return status.Error(codes.Unavailable, err.Error())
	}
	return status.Error(codes.Internal, "internal error")
}
