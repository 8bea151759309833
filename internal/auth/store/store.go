package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/deskauth/internal/auth/domain"
)

var (
	ErrNotFound          = errors.New("store: not found")
	ErrDuplicateUsername = errors.New("store: username already exists")
)

// Store is the root data access interface. Concrete drivers (postgres, sqlite)
// implement this. Repositories hang off it so a Tx can hand out the same
// repositories bound to the transaction instead of the pool.
type Store interface {
	Users() Users

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases the underlying connection pool.
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
	GetUserByID(ctx context.Context, id int64) (domain.User, error)

	// GetUserByUsername is used by login and self-service password changes.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser inserts a new user and returns the stored row with its
	// generated id and created_at. A taken username yields ErrDuplicateUsername.
	CreateUser(ctx context.Context, u domain.User) (domain.User, error)

	// UpdatePasswordHash replaces the hash of the named user. ErrNotFound when
	// no such user exists.
	UpdatePasswordHash(ctx context.Context, username string, newHash string) error

	// DeleteUser removes the named user. ErrNotFound when no such user exists.
	DeleteUser(ctx context.Context, username string) error

	// ListUsers returns every user ordered by id ascending.
	ListUsers(ctx context.Context) ([]domain.User, error)

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}
