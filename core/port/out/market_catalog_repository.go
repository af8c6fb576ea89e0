package out

import (
	"context"
	"time"

	"market_server/core/domain"

	"github.com/google/uuid"
)

// CatalogRepository is the outbound port for the product catalog. Scoring
// only reads the catalog; writes come from the catalog CRUD service.
type CatalogRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Product, error)
	Find(ctx context.Context, filter *domain.ProductFilter) ([]*domain.Product, error)

	// FindActiveInStock returns active products with stock matching the
	// filter, sorted by (rating avg, rating count, recency) descending.
	FindActiveInStock(ctx context.Context, filter *domain.ProductFilter) ([]*domain.Product, error)

	// FindSeasonal returns active in-stock products flagged seasonal for the
	// given month, optionally restricted to categories.
	FindSeasonal(ctx context.Context, month time.Month, categories []string, limit int) ([]*domain.Product, error)

	// FindWithEmbeddings returns filtered products carrying a non-empty
	// embedding vector.
	FindWithEmbeddings(ctx context.Context, filter *domain.ProductFilter) ([]*domain.Product, error)
}
