package in

import (
	"context"

	"market_server/core/domain"

	"github.com/google/uuid"
)

// RecommendationService is the inbound port for personalized ranking.
type RecommendationService interface {
	// GenerateRecommendations returns the weighted hybrid ranking. Users
	// without personalization data get the trending list instead.
	GenerateRecommendations(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Candidate, error)

	GetCollaborative(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Candidate, error)
	GetContentBased(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Candidate, error)
	GetSeasonal(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Candidate, error)
	GetPersonalizedBundles(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Candidate, error)

	// GetTrendingProducts returns the popularity ranking every personalized
	// path degrades to.
	GetTrendingProducts(ctx context.Context, limit int) ([]domain.Candidate, error)
}
