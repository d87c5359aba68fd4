package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/credauth/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this and expose sub-repositories to keep concerns tidy and
// testable.
type Store interface {
	Principals() Principals

	// ApplyMigrations brings the schema up to date. It is a no-op when
	// nothing is pending.
	ApplyMigrations(ctx context.Context) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Principals persists registered identities. There is no update or delete.
type Principals interface {
	// FindByUsername returns ErrNotFound when no principal has that exact
	// username.
	FindByUsername(ctx context.Context, username string) (domain.Principal, error)

	// Create inserts a principal, assigning its id and creation time. It
	// returns ErrAlreadyExists when the username is taken. Uniqueness is
	// enforced by the database so concurrent creates for one username have
	// exactly one winner.
	Create(ctx context.Context, username, secretHash string) (domain.Principal, error)
}
