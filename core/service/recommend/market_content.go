package recommend

import (
	"context"

	"market_server/core/domain"

	"github.com/google/uuid"
)

const reasonContentBased = "Matches your preferences and interests"

// GetContentBased scores active in-stock catalog items against the user's
// learned category and brand preferences. Without strong category
// preferences it serves the trending fallback.
func (s *Service) GetContentBased(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Candidate, error) {
	if limit <= 0 {
		return []domain.Candidate{}, nil
	}

	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		s.log.WithError(err).Warn("content: profile lookup failed")
		return s.fallback(ctx, limit)
	}
	if profile == nil {
		return s.fallback(ctx, limit)
	}

	userCategories := profile.Preferences.CategoriesAbove(contentPreferenceMin)
	if len(userCategories) == 0 {
		return s.fallback(ctx, limit)
	}
	userBrands := profile.Preferences.BrandsAbove(contentPreferenceMin)
	brandSet := make(map[string]struct{}, len(userBrands))
	for _, b := range userBrands {
		brandSet[b] = struct{}{}
	}

	products, err := s.catalogRepo.FindActiveInStock(ctx, &domain.ProductFilter{
		Categories: userCategories,
		Limit:      limit * poolFactor,
	})
	if err != nil {
		s.log.WithError(err).Warn("content: catalog query failed")
		return s.fallback(ctx, limit)
	}

	candidates := make([]domain.Candidate, 0, len(products))
	for _, p := range products {
		candidates = append(candidates, domain.Candidate{
			ProductID: p.ID,
			Product:   p,
			Score:     contentScore(p, brandSet),
			Reason:    reasonContentBased,
			Source:    domain.SourceContentBased,
		})
	}

	sortCandidates(candidates)
	candidates = truncate(candidates, limit)
	s.cacheIntoProfile(ctx, userID, domain.SourceContentBased, candidates)
	return candidates, nil
}

// contentScore blends brand affinity, rating, discount and featured status:
// 0.4*brandMatch + 0.3*(rating/5) + 0.2*(discount/100) + 0.1*featured.
func contentScore(p *domain.Product, userBrands map[string]struct{}) float64 {
	var score float64
	if _, ok := userBrands[p.Brand]; ok {
		score += 0.4
	}
	score += 0.3 * (p.Rating.Average / 5)
	score += 0.2 * (p.DiscountPercentage / 100)
	if p.IsFeatured {
		score += 0.1
	}
	return score
}
