package out

import (
	"context"

	"market_server/core/domain"

	"github.com/google/uuid"
)

// UserRepository is the outbound port for marketplace accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter *domain.UserFilter) ([]*domain.User, error)
}
