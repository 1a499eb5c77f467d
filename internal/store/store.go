package store

import (
	"context"
	"errors"
	"time"

	"github.com/outlayhq/outlay/internal/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable.
type Store interface {
	Users() Users
	RefreshTokens() RefreshTokens
	Expenses() Expenses

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// Use it for multi-step operations that must be atomic (e.g., refresh
	// rotation). The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. This is the
	// recommended way to handle transactions.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used during login.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by the caller via ULID)
	// and returns it with the storage timestamps filled in. Returns
	// ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) (domain.User, error)
}

type RefreshTokens interface {
	// CreateRefreshToken stores a new refresh token record.
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) (domain.RefreshToken, error)

	// GetRefreshTokenByHash returns the record by the secret's fingerprint.
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// RevokeRefreshToken flips revoked=1 unconditionally and sets updated_at.
	// Missing records are a no-op so revocation never leaks existence.
	RevokeRefreshToken(ctx context.Context, hash string) error

	// RevokeActiveRefreshToken flips revoked=1 only when the record is still
	// unrevoked, and returns ErrNotFound otherwise. This is the conditional
	// write that makes rotation a compare-and-swap: two racing rotations of
	// the same record observe exactly one success.
	RevokeActiveRefreshToken(ctx context.Context, hash string) error

	// DeleteExpiredRefreshTokens removes records that expired before the given
	// instant and reports how many were removed. Housekeeping only; token
	// validity never depends on it.
	DeleteExpiredRefreshTokens(ctx context.Context, before time.Time) (int64, error)
}

type Expenses interface {
	// ListExpensesByOwner returns all expenses for a user, newest date first.
	ListExpensesByOwner(ctx context.Context, ownerID string) ([]domain.Expense, error)

	// GetExpenseByID returns a single expense.
	GetExpenseByID(ctx context.Context, id string) (domain.Expense, error)

	// CreateExpense inserts a new expense (id is ULID) and returns it with
	// the storage timestamps filled in.
	CreateExpense(ctx context.Context, e domain.Expense) (domain.Expense, error)

	// UpdateExpense rewrites the mutable fields and bumps updated_at.
	// Returns ErrNotFound if the expense no longer exists.
	UpdateExpense(ctx context.Context, e domain.Expense) (domain.Expense, error)

	// DeleteExpense removes an expense. Returns ErrNotFound if absent.
	DeleteExpense(ctx context.Context, id string) error
}
