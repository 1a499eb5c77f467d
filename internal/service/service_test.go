package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/outlayhq/outlay/internal/domain"
	"github.com/outlayhq/outlay/internal/store"
	"github.com/outlayhq/outlay/internal/store/drivers/sqlite"
	"github.com/outlayhq/outlay/pkg/jwtx"

	"github.com/stretchr/testify/require"
)

// Services are tested against the real sqlite driver on a throwaway file.
func newTestStore(t *testing.T) store.Store {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") +
		"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

	s, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())

	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newTestCodec(t *testing.T) *jwtx.Codec {
	t.Helper()

	codec, err := jwtx.NewCodec([]byte("test-signing-secret-for-unit-tests"), 15*time.Minute)
	require.NoError(t, err)
	return codec
}

func newTestAuth(t *testing.T) (*AuthService, store.Store) {
	t.Helper()

	st := newTestStore(t)
	auth := &AuthService{
		Users:   &UserService{Store: st},
		Refresh: &RefreshTokenService{Store: st, TTL: time.Hour},
		Codec:   newTestCodec(t),
	}
	return auth, st
}

func registerTestUser(t *testing.T, auth *AuthService, email string) domain.User {
	t.Helper()

	user, err := auth.Register(context.Background(), email, "correct horse battery")
	require.NoError(t, err)
	return user
}
