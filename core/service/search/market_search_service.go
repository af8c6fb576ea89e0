package search

import (
	"context"
	"sort"
	"strings"

	"market_server/core/domain"
	"market_server/core/port/in"
	"market_server/core/port/out"
	"market_server/pkg/apperr"
	"market_server/pkg/logger"
)

// Similarity floor: results below this are discarded.
const minSimilarity = 0.3

// Service implements in.SearchService. Every call embeds the query through
// the external provider; query embeddings are not cached.
type Service struct {
	embedder    out.EmbeddingProvider
	catalogRepo out.CatalogRepository
	log         *logger.Logger
}

// NewService creates the search service.
func NewService(embedder out.EmbeddingProvider, catalogRepo out.CatalogRepository) *Service {
	return &Service{
		embedder:    embedder,
		catalogRepo: catalogRepo,
		log:         logger.WithField("component", "search"),
	}
}

// SemanticSearch ranks filtered catalog items by cosine similarity to the
// query embedding. Provider failures are hard errors; there is no fallback.
func (s *Service) SemanticSearch(ctx context.Context, query string, filters *domain.SearchFilters, limit int) ([]*domain.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperr.MissingField("query")
	}
	if limit <= 0 {
		return []*domain.Product{}, nil
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, apperr.ProviderFailed("embedding", err)
	}

	products, err := s.catalogRepo.FindWithEmbeddings(ctx, toProductFilter(filters))
	if err != nil {
		return nil, apperr.QueryFailed("semantic search", err)
	}

	type scored struct {
		product    *domain.Product
		similarity float64
	}
	matches := make([]scored, 0, len(products))
	for _, p := range products {
		sim := CosineSimilarity(queryVec, p.Embedding)
		if sim < minSimilarity {
			continue
		}
		matches = append(matches, scored{product: p, similarity: sim})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].similarity != matches[j].similarity {
			return matches[i].similarity > matches[j].similarity
		}
		return matches[i].product.ID.String() < matches[j].product.ID.String()
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}

	result := make([]*domain.Product, 0, len(matches))
	for _, m := range matches {
		result = append(result, m.product)
	}
	return result, nil
}

func toProductFilter(filters *domain.SearchFilters) *domain.ProductFilter {
	if filters == nil {
		return &domain.ProductFilter{}
	}
	return &domain.ProductFilter{
		Category:    filters.Category,
		Subcategory: filters.Subcategory,
		Brands:      filters.Brands,
		MinPrice:    filters.MinPrice,
		MaxPrice:    filters.MaxPrice,
		MinRating:   filters.MinRating,
	}
}

var _ in.SearchService = (*Service)(nil)
