package service

import (
	"context"
	"fmt"
	"time"

	"github.com/outlayhq/outlay/internal/domain"
	"github.com/outlayhq/outlay/pkg/jwtx"
)

// AuthService coordinates the full auth flow: the user directory, the JWT
// codec for access tokens and the refresh token service for the stateful
// half of the pair.
type AuthService struct {
	Users   *UserService
	Refresh *RefreshTokenService
	Codec   *jwtx.Codec
}

// Register creates a new account. It does not log the account in; the client
// follows up with Login.
func (s *AuthService) Register(ctx context.Context, email, password string) (domain.User, error) {
	return s.Users.Create(ctx, email, password)
}

// Login verifies credentials and issues a fresh token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.TokenPair, error) {
	user, err := s.Users.VerifyCredentials(ctx, email, password)
	if err != nil {
		return domain.TokenPair{}, err
	}

	secret, token, err := s.Refresh.Create(ctx, user.ID)
	if err != nil {
		return domain.TokenPair{}, err
	}

	access, err := s.Codec.Issue(user.ID, time.Now())
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("issue access token: %w", err)
	}

	return domain.TokenPair{
		AccessToken:      access,
		RefreshSecret:    secret,
		RefreshExpiresAt: token.ExpiresAt,
	}, nil
}

// RefreshSession rotates the presented refresh secret and issues a new token
// pair for its owner. The old secret is dead afterwards whether or not the
// client receives the response.
func (s *AuthService) RefreshSession(ctx context.Context, secret string) (domain.TokenPair, error) {
	newSecret, token, err := s.Refresh.Rotate(ctx, secret)
	if err != nil {
		return domain.TokenPair{}, err
	}

	access, err := s.Codec.Issue(token.OwnerID, time.Now())
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("issue access token: %w", err)
	}

	return domain.TokenPair{
		AccessToken:      access,
		RefreshSecret:    newSecret,
		RefreshExpiresAt: token.ExpiresAt,
	}, nil
}

// Logout revokes the presented refresh secret. Always succeeds from the
// caller's point of view; an unknown secret is indistinguishable from a
// freshly revoked one.
func (s *AuthService) Logout(ctx context.Context, secret string) error {
	return s.Refresh.Revoke(ctx, secret)
}
