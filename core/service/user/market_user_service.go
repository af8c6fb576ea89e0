// Package user implements marketplace account management.
package user

import (
	"context"
	"strings"
	"time"

	"market_server/core/domain"
	"market_server/core/port/in"
	"market_server/core/port/out"
	"market_server/pkg/apperr"

	"github.com/google/uuid"
)

const defaultListLimit = 50

// Service implements in.UserService.
type Service struct {
	userRepo out.UserRepository
}

func NewService(userRepo out.UserRepository) *Service {
	return &Service{userRepo: userRepo}
}

func (s *Service) CreateUser(ctx context.Context, user *domain.User) error {
	if err := validateUser(user); err != nil {
		return err
	}

	existing, err := s.userRepo.GetByEmail(ctx, user.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return apperr.AlreadyExists("user")
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now().UTC()
	user.IsActive = true
	user.CreatedAt = now
	user.UpdatedAt = now
	return s.userRepo.Create(ctx, user)
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if id == uuid.Nil {
		return nil, apperr.MissingField("id")
	}
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("user")
	}
	return user, nil
}

func (s *Service) UpdateUser(ctx context.Context, user *domain.User) error {
	if user.ID == uuid.Nil {
		return apperr.MissingField("id")
	}
	if err := validateUser(user); err != nil {
		return err
	}
	user.UpdatedAt = time.Now().UTC()
	return s.userRepo.Update(ctx, user)
}

func (s *Service) DeactivateUser(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return apperr.MissingField("id")
	}
	return s.userRepo.Deactivate(ctx, id)
}

func (s *Service) ListUsers(ctx context.Context, filter *domain.UserFilter) ([]*domain.User, error) {
	if filter == nil {
		filter = &domain.UserFilter{}
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	return s.userRepo.List(ctx, filter)
}

func validateUser(u *domain.User) error {
	if u == nil {
		return apperr.MissingField("user")
	}
	if u.Email == "" {
		return apperr.MissingField("email")
	}
	if !strings.Contains(u.Email, "@") {
		return apperr.InvalidInput("email", u.Email)
	}
	if u.Name == "" {
		return apperr.MissingField("name")
	}
	switch u.Role {
	case domain.RoleRetailer, domain.RoleDistributor, domain.RoleAdmin:
	default:
		return apperr.InvalidInput("role", string(u.Role))
	}
	return nil
}

var _ in.UserService = (*Service)(nil)
