package sqlite

import (
	"context"
	"time"

	"github.com/outlayhq/outlay/internal/domain"
	"github.com/outlayhq/outlay/internal/store"
)

type refreshTokensRepo struct {
	db dbtx
}

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, token domain.RefreshToken) (domain.RefreshToken, error) {
	now := time.Now().UTC()
	token.CreatedAt = now
	token.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (id, owner_id, secret_hash, expires_at, revoked, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		token.ID, token.OwnerID, token.SecretHash, token.ExpiresAt, token.Revoked, token.CreatedAt, token.UpdatedAt,
	)
	if err != nil {
		return domain.RefreshToken{}, mapConstraint(err)
	}

	return token, nil
}

func (r *refreshTokensRepo) GetRefreshTokenByHash(ctx context.Context, secretHash string) (domain.RefreshToken, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, owner_id, secret_hash, expires_at, revoked, created_at, updated_at
		FROM refresh_tokens WHERE secret_hash = ?`, secretHash,
	)

	var t domain.RefreshToken
	err := row.Scan(&t.ID, &t.OwnerID, &t.SecretHash, &t.ExpiresAt, &t.Revoked, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	return t, nil
}

// RevokeRefreshToken marks the token revoked regardless of its current state.
// Missing tokens are a no-op so logout stays idempotent.
func (r *refreshTokensRepo) RevokeRefreshToken(ctx context.Context, secretHash string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE refresh_tokens SET revoked = 1, updated_at = ?
		WHERE secret_hash = ?`,
		time.Now().UTC(), secretHash,
	)
	return err
}

// RevokeActiveRefreshToken revokes the token only if it is still unrevoked.
// When two rotations race on the same secret, the conditional update lets
// exactly one of them see an affected row; the other gets store.ErrNotFound.
func (r *refreshTokensRepo) RevokeActiveRefreshToken(ctx context.Context, secretHash string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE refresh_tokens SET revoked = 1, updated_at = ?
		WHERE secret_hash = ? AND revoked = 0`,
		time.Now().UTC(), secretHash,
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *refreshTokensRepo) DeleteExpiredRefreshTokens(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM refresh_tokens WHERE expires_at < ?`, before,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
