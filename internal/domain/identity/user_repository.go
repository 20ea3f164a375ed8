package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository persists user accounts. Lookups of a missing user return
// an error satisfying errors.Is(err, shared.ErrNotFound).
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	// FindByIDs skips IDs with no matching user
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]User, error)
	// FindByUsername expects the lower-cased username
	FindByUsername(ctx context.Context, username string) (*User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// Save inserts a new user or updates an existing one
	Save(ctx context.Context, user *User) error
	// Count lets bootstrap detect an empty directory
	Count(ctx context.Context) (int64, error)
}
