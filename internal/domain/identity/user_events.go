package identity

import (
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/shared"
)

// Aggregate type constant for User
const AggregateTypeUser = "User"

// EventTypeUserCreated is published when a user is created
const EventTypeUserCreated = "UserCreated"

// UserCreatedEvent is published when a user is created
type UserCreatedEvent struct {
	shared.BaseDomainEvent
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// NewUserCreatedEvent creates a new UserCreatedEvent
func NewUserCreatedEvent(user *User) *UserCreatedEvent {
	return &UserCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserCreated, AggregateTypeUser, user.ID, user.CreatedAt),
		Username:        user.Username,
		Role:            user.Role,
	}
}
