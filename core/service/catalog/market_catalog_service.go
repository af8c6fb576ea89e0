// Package catalog implements product CRUD and embedding indexing on top of
// the catalog repository.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"market_server/core/domain"
	"market_server/core/port/in"
	"market_server/core/port/out"
	"market_server/pkg/apperr"
	"market_server/pkg/logger"

	"github.com/google/uuid"
)

const defaultListLimit = 50

// Service implements in.CatalogService.
type Service struct {
	catalogRepo out.CatalogRepository
	embedder    out.EmbeddingProvider
	log         *logger.Logger
}

// NewService creates the catalog service. embedder may be nil; products are
// then stored without embeddings and excluded from semantic search.
func NewService(catalogRepo out.CatalogRepository, embedder out.EmbeddingProvider) *Service {
	return &Service{
		catalogRepo: catalogRepo,
		embedder:    embedder,
		log:         logger.WithField("component", "catalog"),
	}
}

func (s *Service) CreateProduct(ctx context.Context, product *domain.Product) error {
	if err := validateProduct(product); err != nil {
		return err
	}
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now

	s.embed(ctx, product)
	return s.catalogRepo.Create(ctx, product)
}

func (s *Service) UpdateProduct(ctx context.Context, product *domain.Product) error {
	if product.ID == uuid.Nil {
		return apperr.MissingField("id")
	}
	if err := validateProduct(product); err != nil {
		return err
	}
	product.UpdatedAt = time.Now().UTC()

	// Searchable text may have changed; reindex on every update.
	s.embed(ctx, product)
	return s.catalogRepo.Update(ctx, product)
}

func (s *Service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return apperr.MissingField("id")
	}
	return s.catalogRepo.Delete(ctx, id)
}

func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	if id == uuid.Nil {
		return nil, apperr.MissingField("id")
	}
	product, err := s.catalogRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperr.NotFound("product")
	}
	return product, nil
}

func (s *Service) ListProducts(ctx context.Context, filter *domain.ProductFilter) ([]*domain.Product, error) {
	if filter == nil {
		filter = &domain.ProductFilter{}
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	return s.catalogRepo.Find(ctx, filter)
}

// embed computes the product's search embedding. Best-effort: a provider
// failure leaves the previous embedding (or none) in place.
func (s *Service) embed(ctx context.Context, product *domain.Product) {
	if s.embedder == nil {
		return
	}
	vector, err := s.embedder.Embed(ctx, embeddingText(product))
	if err != nil {
		s.log.WithError(err).WithField("product_id", product.ID.String()).
			Warn("embedding generation failed, product stored without index")
		return
	}
	product.Embedding = vector
}

// embeddingText flattens the product's searchable fields into one string.
func embeddingText(p *domain.Product) string {
	parts := []string{p.Name, p.Category, p.Subcategory, p.Brand, p.Description}
	nonEmpty := parts[:0]
	for _, part := range parts {
		if part != "" {
			nonEmpty = append(nonEmpty, part)
		}
	}
	return strings.Join(nonEmpty, " ")
}

func validateProduct(p *domain.Product) error {
	if p == nil {
		return apperr.MissingField("product")
	}
	if p.SKU == "" {
		return apperr.MissingField("sku")
	}
	if p.Name == "" {
		return apperr.MissingField("name")
	}
	if p.Category == "" {
		return apperr.MissingField("category")
	}
	if p.Price < 0 {
		return apperr.InvalidInput("price", fmt.Sprintf("%v", p.Price))
	}
	if p.DiscountPercentage < 0 || p.DiscountPercentage > 100 {
		return apperr.InvalidInput("discount_percentage", fmt.Sprintf("%v", p.DiscountPercentage))
	}
	if p.Stock < 0 {
		return apperr.InvalidInput("stock", fmt.Sprintf("%d", p.Stock))
	}
	return nil
}

var _ in.CatalogService = (*Service)(nil)
