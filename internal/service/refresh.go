package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/outlayhq/outlay/internal/domain"
	"github.com/outlayhq/outlay/internal/store"
	"github.com/outlayhq/outlay/pkg/cryptox"
	"github.com/outlayhq/outlay/pkg/idx"
)

var (
	// ErrInvalidRefresh covers refresh secrets that are unknown or revoked.
	// The two cases are deliberately indistinguishable so a caller cannot
	// probe which secrets ever existed.
	ErrInvalidRefresh = errors.New("service: invalid refresh token")

	// ErrRefreshExpired reports a secret whose record exists, was never
	// revoked, but has aged out. Distinct from ErrInvalidRefresh because the
	// client's remedy differs: log in again rather than investigate.
	ErrRefreshExpired = errors.New("service: refresh token expired")
)

// RefreshTokenService manages the stateful, single-use half of the token
// pair. Secrets are 256-bit random values shown to the caller exactly once;
// only their SHA-256 fingerprint is stored.
type RefreshTokenService struct {
	Store store.Store
	TTL   time.Duration
}

// Create mints a fresh refresh secret for ownerID and persists its record.
// Returns the plaintext secret (the only time it exists) and the record.
func (s *RefreshTokenService) Create(ctx context.Context, ownerID string) (string, domain.RefreshToken, error) {
	return s.create(ctx, s.Store, ownerID)
}

func (s *RefreshTokenService) create(ctx context.Context, st store.Store, ownerID string) (string, domain.RefreshToken, error) {
	secret, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", domain.RefreshToken{}, fmt.Errorf("generate refresh secret: %w", err)
	}

	token, err := st.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
		ID:         idx.New().String(),
		OwnerID:    ownerID,
		SecretHash: cryptox.FingerprintToken(secret),
		ExpiresAt:  time.Now().Add(s.TTL).UTC(),
	})
	if err != nil {
		return "", domain.RefreshToken{}, fmt.Errorf("store refresh token: %w", err)
	}

	return secret, token, nil
}

// Validate checks a presented secret without consuming it. Absent and revoked
// records both yield ErrInvalidRefresh; expiry yields ErrRefreshExpired.
func (s *RefreshTokenService) Validate(ctx context.Context, secret string) (domain.RefreshToken, error) {
	token, err := s.Store.RefreshTokens().GetRefreshTokenByHash(ctx, cryptox.FingerprintToken(secret))
	if errors.Is(err, store.ErrNotFound) {
		return domain.RefreshToken{}, ErrInvalidRefresh
	}
	if err != nil {
		return domain.RefreshToken{}, fmt.Errorf("get refresh token: %w", err)
	}

	if token.Revoked {
		return domain.RefreshToken{}, ErrInvalidRefresh
	}
	if !time.Now().Before(token.ExpiresAt) {
		return domain.RefreshToken{}, ErrRefreshExpired
	}

	return token, nil
}

// Rotate consumes a secret and replaces it: the old record is revoked and a
// new secret minted for the same owner, atomically. When two rotations race
// on the same secret exactly one wins; the loser sees ErrInvalidRefresh, the
// same answer a revoked secret gives.
func (s *RefreshTokenService) Rotate(ctx context.Context, secret string) (string, domain.RefreshToken, error) {
	hash := cryptox.FingerprintToken(secret)

	var (
		newSecret string
		newToken  domain.RefreshToken
	)

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		// The conditional revoke is the transaction's first statement so the
		// write lock is taken up front and racing rotations serialize on it.
		// Zero affected rows means absent, already revoked, or lost the
		// race; all three must look identical to the caller.
		err := tx.RefreshTokens().RevokeActiveRefreshToken(ctx, hash)
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidRefresh
		}
		if err != nil {
			return fmt.Errorf("revoke refresh token: %w", err)
		}

		old, err := tx.RefreshTokens().GetRefreshTokenByHash(ctx, hash)
		if err != nil {
			return fmt.Errorf("get refresh token: %w", err)
		}

		// Expired but unrevoked records reach this far; the rollback on
		// error return undoes the revoke, which changes nothing a client
		// can observe.
		if !time.Now().Before(old.ExpiresAt) {
			return ErrRefreshExpired
		}

		newSecret, newToken, err = s.create(ctx, tx, old.OwnerID)
		return err
	})
	if err != nil {
		return "", domain.RefreshToken{}, err
	}

	return newSecret, newToken, nil
}

// Revoke invalidates a secret if it exists. It is idempotent and silent:
// revoking an unknown or already-revoked secret reports nothing, so logout
// can never be used to probe the store.
func (s *RefreshTokenService) Revoke(ctx context.Context, secret string) error {
	return s.Store.RefreshTokens().RevokeRefreshToken(ctx, cryptox.FingerprintToken(secret))
}
