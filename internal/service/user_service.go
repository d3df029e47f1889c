package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/nurpe/swachh-fleet/internal/auth"
	"github.com/nurpe/swachh-fleet/internal/model"
	"github.com/nurpe/swachh-fleet/internal/repository"
)

type UserService struct {
	users    *repository.UserRepository
	identity *auth.Identity
	log      zerolog.Logger
}

func NewUserService(users *repository.UserRepository, identity *auth.Identity, log zerolog.Logger) *UserService {
	return &UserService{users: users, identity: identity, log: log}
}

type CreateUserInput struct {
	FullName string
	Email    string
	Phone    string
	Password string
	Role     model.Role
}

// Create makes an account directly, bypassing the approval workflow. Admin
// only; this is how the first admins and HR staff are provisioned.
func (s *UserService) Create(ctx context.Context, input CreateUserInput, principal model.Principal) (*model.User, error) {
	if !principal.Can(model.CapManageUsers) {
		return nil, ErrPermissionDenied
	}
	if strings.TrimSpace(input.FullName) == "" {
		return nil, fmt.Errorf("%w: full name is required", ErrInvalidInput)
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if !emailRE.MatchString(email) {
		return nil, fmt.Errorf("%w: malformed email", ErrInvalidInput)
	}
	if len(input.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}

	user := &model.User{
		ID:       uuid.New(),
		FullName: strings.TrimSpace(input.FullName),
		Email:    email,
		Phone:    strings.TrimSpace(input.Phone),
		Role:     input.Role,
		Active:   true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: email already in use", ErrConflict)
		}
		return nil, err
	}

	if err := s.identity.SignUp(ctx, user.ID, email, input.Password); err != nil {
		s.log.Error().Err(err).
			Str("user_id", user.ID.String()).
			Msg("create user: profile written but credential write failed")
		return nil, fmt.Errorf("%w: user %s has no credential", ErrPartialFailure, user.ID)
	}

	s.log.Info().
		Str("user_id", user.ID.String()).
		Str("role", string(user.Role)).
		Msg("user created")
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.users.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// List returns users, optionally filtered by role. Contractors only see
// their own drivers.
func (s *UserService) List(ctx context.Context, role *model.Role, principal model.Principal) ([]model.User, error) {
	switch {
	case principal.Can(model.CapManageUsers) || principal.Can(model.CapManageWorkers):
		return s.users.List(ctx, role)
	case principal.Can(model.CapManageDrivers):
		return s.users.ListDriversForContractor(ctx, principal.UserID)
	default:
		return nil, ErrPermissionDenied
	}
}

// ListActiveContractors is public within the app: registration screens need
// it so a driver applicant can pick an approver.
func (s *UserService) ListActiveContractors(ctx context.Context) ([]model.User, error) {
	return s.users.ListActiveByRole(ctx, model.RoleContractor)
}

// ToggleActive flips the active flag. Deactivation is the terminal removal
// state; users are never hard-deleted.
func (s *UserService) ToggleActive(ctx context.Context, id uuid.UUID, principal model.Principal) (*model.User, error) {
	if !principal.Can(model.CapManageUsers) {
		return nil, ErrPermissionDenied
	}

	user, err := s.users.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := s.users.SetActive(ctx, id, !user.Active); err != nil {
		return nil, err
	}
	user.Active = !user.Active

	s.log.Info().
		Str("user_id", id.String()).
		Bool("active", user.Active).
		Msg("user status toggled")
	return user, nil
}

func (s *UserService) ChangeRole(ctx context.Context, id uuid.UUID, role model.Role, principal model.Principal) (*model.User, error) {
	if !principal.Can(model.CapManageUsers) {
		return nil, ErrPermissionDenied
	}

	user, err := s.users.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if user.Role == role {
		return user, nil
	}

	if err := s.users.SetRole(ctx, id, role); err != nil {
		return nil, err
	}
	user.Role = role

	s.log.Info().
		Str("user_id", id.String()).
		Str("role", string(role)).
		Msg("user role changed")
	return user, nil
}
