package interceptor

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"locationapp-backend/internal/config"
	"locationapp-backend/internal/service"
)

// AdminEmailKey is the metadata key carrying the authenticated admin.
const AdminEmailKey = "admin-email"

type AuthInterceptor struct {
	auth service.AuthService
}

func NewAuthInterceptor(auth service.AuthService) *AuthInterceptor {
	return &AuthInterceptor{auth: auth}
}

// Unary returns a server interceptor that checks the admin session token on
// every method not declared public.
func (i *AuthInterceptor) Unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if config.GetSecurityLevel(info.FullMethod) == config.SecurityPublic {
			return handler(ctx, req)
		}

		token, err := i.extractToken(ctx)
		if err != nil {
			return nil, err
		}

		claims, err := i.auth.Authenticate(ctx, token)
		if err != nil {
			return nil, status.Errorf(codes.Unauthenticated, "invalid token: %v", err)
		}

		// Set overwrites any admin-email header sent by the client.
		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			md = metadata.New(nil)
		} else {
			md = md.Copy()
		}
		md.Set(AdminEmailKey, claims.Email)

		return handler(metadata.NewIncomingContext(ctx, md), req)
	}
}

func (i *AuthInterceptor) extractToken(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "metadata is not provided")
	}

	authHeader := md["authorization"]
	if len(authHeader) == 0 {
		return "", status.Error(codes.Unauthenticated, "authorization token is not provided")
	}

	token := authHeader[0]
	if len(token) > 7 && strings.ToUpper(token[0:7]) == "BEARER " {
		token = token[7:]
	}
	return token, nil
}
