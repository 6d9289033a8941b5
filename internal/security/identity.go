package security

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"firebase.google.com/go/v4/auth"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/identitytoolkit/v3"

	"locationapp-backend/internal/logger"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// Identity is an admin account verified by an IdentityProvider.
type Identity struct {
	UID   string
	Email string
}

// IdentityProvider checks an email/password pair.
type IdentityProvider interface {
	VerifyPassword(ctx context.Context, email, password string) (*Identity, error)
}

type localProvider struct {
	email        string
	passwordHash []byte
}

// NewLocalProvider authenticates a single admin account against a bcrypt hash.
func NewLocalProvider(email, passwordHash string) IdentityProvider {
	return &localProvider{email: strings.ToLower(strings.TrimSpace(email)), passwordHash: []byte(passwordHash)}
}

func (p *localProvider) VerifyPassword(ctx context.Context, email, password string) (*Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(p.email)) == 1
	if err := bcrypt.CompareHashAndPassword(p.passwordHash, []byte(password)); err != nil || !emailOK {
		return nil, ErrInvalidCredentials
	}
	return &Identity{UID: "local:" + p.email, Email: p.email}, nil
}

// HashPassword returns the bcrypt hash stored in auth.admin_password_hash.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

type firebaseProvider struct {
	toolkit      *identitytoolkit.Service
	auth         *auth.Client
	allowedEmail string
}

// NewFirebaseProvider signs in through the Identity Toolkit password
// endpoint and verifies the resulting ID token with the Admin SDK. When
// allowedEmail is set, only that account may open an admin session.
func NewFirebaseProvider(toolkit *identitytoolkit.Service, authClient *auth.Client, allowedEmail string) IdentityProvider {
	return &firebaseProvider{
		toolkit:      toolkit,
		auth:         authClient,
		allowedEmail: strings.ToLower(strings.TrimSpace(allowedEmail)),
	}
}

func (p *firebaseProvider) VerifyPassword(ctx context.Context, email, password string) (*Identity, error) {
	logger.ExternalServiceCall("IdentityToolkit", "VerifyPassword", "email", email)
	resp, err := p.toolkit.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	logger.ExternalServiceResult("IdentityToolkit", "VerifyPassword", err, "email", email)
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code < 500 {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("identity toolkit: %w", err)
	}

	token, err := p.auth.VerifyIDToken(ctx, resp.IdToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify id token: %w", err)
	}

	verified, _ := token.Claims["email"].(string)
	if verified == "" {
		verified = resp.Email
	}
	if p.allowedEmail != "" && !strings.EqualFold(verified, p.allowedEmail) {
		return nil, ErrInvalidCredentials
	}
	return &Identity{UID: token.UID, Email: verified}, nil
}
