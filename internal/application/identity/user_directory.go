package identity

import (
	"context"

	"github.com/google/uuid"
	applending "github.com/thamonwanpho67-art/PMJinventory-sub001/internal/application/lending"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/identity"
)

// UserDirectory resolves borrower summaries from the user repository
type UserDirectory struct {
	userRepo identity.UserRepository
}

// NewUserDirectory creates a new UserDirectory
func NewUserDirectory(userRepo identity.UserRepository) *UserDirectory {
	return &UserDirectory{userRepo: userRepo}
}

// LookupBorrowers returns summaries for the users that exist among ids
func (d *UserDirectory) LookupBorrowers(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]applending.BorrowerSummary, error) {
	users, err := d.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]applending.BorrowerSummary, len(users))
	for i := range users {
		u := &users[i]
		out[u.ID] = applending.BorrowerSummary{
			ID:          u.ID,
			Username:    u.Username,
			DisplayName: u.GetDisplayNameOrUsername(),
			Email:       u.Email,
		}
	}
	return out, nil
}

var _ applending.BorrowerDirectory = (*UserDirectory)(nil)
