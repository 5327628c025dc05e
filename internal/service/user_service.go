package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// UserService manages profiles and role administration.
type UserService struct {
	users repository.UserRepository
}

// NewUserService constructs the service.
func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// ProfileUpdate describes the fields a user may change on themself. Role
// is deliberately absent.
type ProfileUpdate struct {
	Name       *string
	Department *string
	Phone      *string
}

// UpdateProfile applies a profile edit for the calling user.
func (s *UserService) UpdateProfile(ctx context.Context, actor *domain.User, update ProfileUpdate) (*domain.User, error) {
	user, err := s.load(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("name required", nil)
		}
		user.Name = name
	}
	if update.Department != nil {
		user.Department = strings.TrimSpace(*update.Department)
	}
	if update.Phone != nil {
		user.Phone = strings.TrimSpace(*update.Phone)
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// ChangeRole sets another user's role. Admins and managers only, and never
// on themselves.
func (s *UserService) ChangeRole(ctx context.Context, actor *domain.User, targetID string, role domain.Role) (*domain.User, error) {
	if actor.Role != domain.RoleAdmin && actor.Role != domain.RoleManager {
		return nil, apperrors.NewForbidden("only admins and managers may change roles")
	}
	if targetID == actor.ID {
		return nil, apperrors.NewForbidden("cannot change your own role")
	}
	if !domain.ValidRole(role) {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": role})
	}
	user, err := s.load(ctx, targetID)
	if err != nil {
		return nil, err
	}
	user.Role = role
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// Get fetches a user by id.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.load(ctx, id)
}

// List returns users matching the filter. Staff only, enforced at the
// route level.
func (s *UserService) List(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

func (s *UserService) load(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}
