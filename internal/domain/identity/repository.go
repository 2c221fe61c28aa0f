package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines persistence operations for accounts.
type UserRepository interface {
	// FindByID retrieves an account by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByEmail retrieves an account by email, matched case-insensitively.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// Save persists a new account.
	Save(ctx context.Context, user *User) error

	// Update persists changes to an existing account with optimistic locking.
	Update(ctx context.Context, user *User) error
}
