package in

import (
	"context"

	"market_server/core/domain"

	"github.com/google/uuid"
)

// CatalogService is the inbound port for product CRUD.
type CatalogService interface {
	CreateProduct(ctx context.Context, product *domain.Product) error
	UpdateProduct(ctx context.Context, product *domain.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	ListProducts(ctx context.Context, filter *domain.ProductFilter) ([]*domain.Product, error)
}

// UserService is the inbound port for account CRUD.
type UserService interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	DeactivateUser(ctx context.Context, id uuid.UUID) error
	ListUsers(ctx context.Context, filter *domain.UserFilter) ([]*domain.User, error)
}

// LoyaltyService is the inbound port for the points ledger.
type LoyaltyService interface {
	EarnPoints(ctx context.Context, userID uuid.UUID, orderID string, orderValue float64) (*domain.LoyaltyTransaction, error)
	RedeemPoints(ctx context.Context, userID uuid.UUID, points int, note string) (*domain.LoyaltyTransaction, error)
	GetBalance(ctx context.Context, userID uuid.UUID) (int, error)
	GetHistory(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.LoyaltyTransaction, error)
}
