package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/identity"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/shared"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/infrastructure/config"
	"go.uber.org/zap"
)

// UserService handles user management operations
type UserService struct {
	userRepo       identity.UserRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo identity.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *UserService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateUser creates an active user. Only administrators may call it.
func (s *UserService) CreateUser(ctx context.Context, actor identity.Actor, input CreateUserInput) (*UserDTO, error) {
	if !actor.IsAdmin() {
		return nil, shared.ErrForbidden
	}
	return s.create(ctx, input)
}

// GetUser returns a user; non-administrators may only read themselves
func (s *UserService) GetUser(ctx context.Context, actor identity.Actor, id uuid.UUID) (*UserDTO, error) {
	if !actor.CanSee(id) {
		return nil, errUserNotFound
	}
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, errUserNotFound
		}
		return nil, err
	}
	dto := ToUserDTO(user)
	return &dto, nil
}

// EnsureBootstrapAdmin creates the configured administrator when no user
// exists yet. It reports whether a user was created.
func (s *UserService) EnsureBootstrapAdmin(ctx context.Context, cfg config.BootstrapConfig) (bool, error) {
	if cfg.AdminUsername == "" {
		return false, nil
	}

	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		s.logger.Debug("Users present, skipping bootstrap admin", zap.Int64("users", count))
		return false, nil
	}

	if _, err := s.create(ctx, CreateUserInput{
		Username: cfg.AdminUsername,
		Password: cfg.AdminPassword,
		Email:    cfg.AdminEmail,
		Role:     identity.RoleAdmin.String(),
	}); err != nil {
		return false, err
	}
	s.logger.Info("Bootstrap administrator created", zap.String("username", strings.ToLower(cfg.AdminUsername)))
	return true, nil
}

func (s *UserService) create(ctx context.Context, input CreateUserInput) (*UserDTO, error) {
	role, ok := identity.ParseRole(input.Role)
	if !ok {
		return nil, shared.NewDomainError("INVALID_ROLE", "Role must be ADMIN or USER")
	}

	username := strings.ToLower(strings.TrimSpace(input.Username))
	exists, err := s.userRepo.ExistsByUsername(ctx, username)
	if err != nil {
		s.logger.Error("Failed to check username existence", zap.Error(err))
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.ErrAlreadyExists.Code, "Username already exists")
	}

	user, err := identity.NewUser(input.Username, input.Password, role)
	if err != nil {
		return nil, err
	}
	if input.Email != "" {
		if err := user.SetEmail(input.Email); err != nil {
			return nil, err
		}
	}
	if input.DisplayName != "" {
		if err := user.SetDisplayName(input.DisplayName); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.NewDomainError(shared.ErrAlreadyExists.Code, "Username already exists")
		}
		return nil, err
	}

	s.logger.Info("User created",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
		zap.String("role", user.Role.String()))

	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, user.GetDomainEvents()...); err != nil {
			s.logger.Error("Failed to publish user events", zap.Error(err))
		}
	}
	user.ClearDomainEvents()

	dto := ToUserDTO(user)
	return &dto, nil
}
