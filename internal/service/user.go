package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/outlayhq/outlay/internal/domain"
	"github.com/outlayhq/outlay/internal/store"
	"github.com/outlayhq/outlay/pkg/cryptox"
	"github.com/outlayhq/outlay/pkg/idx"
)

var (
	// ErrEmailTaken reports that a registration email is already in use.
	ErrEmailTaken = errors.New("service: email already taken")

	// ErrBadCredentials covers both unknown email and wrong password so a
	// login failure never reveals which one it was.
	ErrBadCredentials = errors.New("service: bad credentials")

	// ErrUserNotFound reports a lookup miss by id. It never reaches auth
	// responses; token failures stay generic.
	ErrUserNotFound = errors.New("service: user not found")
)

// UserService is the user directory: account creation and credential checks.
type UserService struct {
	Store store.Store
}

// Create registers a new account. The password is bcrypt-hashed before it is
// handed to the store; the plaintext never leaves this call.
func (s *UserService) Create(ctx context.Context, email, password string) (domain.User, error) {
	email = normalizeEmail(email)

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.Store.Users().CreateUser(ctx, domain.User{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: hash,
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		return domain.User{}, ErrEmailTaken
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// GetByID resolves a user by id, e.g. when mapping a token subject back to
// an account.
func (s *UserService) GetByID(ctx context.Context, id string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// VerifyCredentials checks an email/password pair. Unknown email and wrong
// password both come back as ErrBadCredentials.
func (s *UserService) VerifyCredentials(ctx context.Context, email, password string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrBadCredentials
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("get user by email: %w", err)
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		return domain.User{}, ErrBadCredentials
	}

	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
