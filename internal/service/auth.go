package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"locationapp-backend/internal/domain"
	"locationapp-backend/internal/logger"
	"locationapp-backend/internal/security"
)

// Session is an issued admin session token.
type Session struct {
	Token     string
	Email     string
	ExpiresAt time.Time
}

type authService struct {
	identity security.IdentityProvider
	tokens   security.TokenManager
}

func NewAuthService(identity security.IdentityProvider, tokens security.TokenManager) AuthService {
	return &authService{identity: identity, tokens: tokens}
}

func (s *authService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, domain.NewValidationError("email", "email is required")
	}
	if password == "" {
		return nil, domain.NewValidationError("password", "password is required")
	}

	logger.ExternalServiceCall("auth", "VerifyPassword", "email", email)
	id, err := s.identity.VerifyPassword(ctx, email, password)
	logger.ExternalServiceResult("auth", "VerifyPassword", err, "email", email)
	if err != nil {
		if errors.Is(err, security.ErrInvalidCredentials) {
			return nil, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, err)
		}
		return nil, fmt.Errorf("%w: identity provider: %w", domain.ErrUnavailable, err)
	}

	token, expiresAt, err := s.tokens.GenerateSessionToken(id.UID, id.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session: %w", err)
	}
	logger.Info("Admin signed in", "email", id.Email)
	return &Session{Token: token, Email: id.Email, ExpiresAt: expiresAt}, nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*security.AdminClaims, error) {
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, err)
	}
	return claims, nil
}
