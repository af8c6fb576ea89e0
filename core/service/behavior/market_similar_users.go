package behavior

import (
	"context"
	"sort"

	"market_server/core/domain"
	"market_server/pkg/apperr"

	"github.com/google/uuid"
)

const (
	// Similarity formula weights and the price-delta normalizer.
	similarityCategoryWeight = 0.4
	similarityBrandWeight    = 0.3
	similarityPriceWeight    = 0.3
	similarityPriceScale     = 10000.0

	maxSimilarUsers      = 20
	similarCandidatePool = 200
)

// RefreshSimilarUsers recomputes and caches the similar-user list. This runs
// from the periodic refresh worker, never inline on the tracking path.
func (s *Service) RefreshSimilarUsers(ctx context.Context, userID uuid.UUID) ([]domain.SimilarUser, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperr.QueryFailed("profile lookup", err)
	}
	if profile == nil {
		return nil, nil
	}

	candidates, err := s.profileRepo.ListOthers(ctx, userID, similarCandidatePool)
	if err != nil {
		return nil, apperr.QueryFailed("similar-user candidates", err)
	}

	similar := make([]domain.SimilarUser, 0, len(candidates))
	for _, other := range candidates {
		score := similarityScore(profile, other)
		if score <= 0 {
			continue
		}
		similar = append(similar, domain.SimilarUser{UserID: other.UserID, Score: score})
	}

	sort.SliceStable(similar, func(i, j int) bool {
		if similar[i].Score != similar[j].Score {
			return similar[i].Score > similar[j].Score
		}
		return similar[i].UserID.String() < similar[j].UserID.String()
	})
	if len(similar) > maxSimilarUsers {
		similar = similar[:maxSimilarUsers]
	}

	if err := s.profileRepo.SetSimilarUsers(ctx, userID, similar); err != nil {
		return nil, apperr.QueryFailed("similar-user cache", err)
	}

	s.log.WithFields(map[string]any{
		"user_id":    userID.String(),
		"candidates": len(candidates),
		"kept":       len(similar),
	}).Debug("similar users refreshed")
	return similar, nil
}

// similarityScore blends preference overlap and price proximity:
// 0.4*|categoryOverlap| + 0.3*|brandOverlap| + 0.3*(1 - |priceDelta|/10000),
// clamped to [0,1]. The raw formula can exceed 1 with enough overlap, so the
// clamp keeps the documented score range.
func similarityScore(a, b *domain.UserProfile) float64 {
	catOverlap := overlapCount(a.Preferences.Categories, b.Preferences.Categories)
	brandOverlap := overlapCount(a.Preferences.Brands, b.Preferences.Brands)

	priceDelta := a.PriceRange.Preferred - b.PriceRange.Preferred
	if priceDelta < 0 {
		priceDelta = -priceDelta
	}
	priceTerm := 1 - priceDelta/similarityPriceScale

	score := similarityCategoryWeight*float64(catOverlap) +
		similarityBrandWeight*float64(brandOverlap) +
		similarityPriceWeight*priceTerm

	return domain.ClampScore(score)
}

func overlapCount(a, b []domain.PreferenceScore) int {
	names := make(map[string]struct{}, len(a))
	for _, s := range a {
		names[s.Name] = struct{}{}
	}
	var count int
	for _, s := range b {
		if _, ok := names[s.Name]; ok {
			count++
		}
	}
	return count
}
