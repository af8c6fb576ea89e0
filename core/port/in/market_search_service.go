package in

import (
	"context"

	"market_server/core/domain"
)

// SearchService is the inbound port for embedding-based product search.
type SearchService interface {
	// SemanticSearch embeds the query and ranks filtered products by cosine
	// similarity. Embedding-provider failures propagate; there is no
	// fallback ranking for search.
	SemanticSearch(ctx context.Context, query string, filters *domain.SearchFilters, limit int) ([]*domain.Product, error)
}
