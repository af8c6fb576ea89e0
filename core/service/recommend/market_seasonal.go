package recommend

import (
	"context"
	"fmt"
	"time"

	"market_server/core/domain"

	"github.com/google/uuid"
)

const seasonalScore = 0.8

// GetSeasonal returns catalog items flagged seasonal for the current month,
// restricted to the user's preferred categories when any preference clears
// the threshold. An empty seasonal shelf degrades to trending.
func (s *Service) GetSeasonal(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Candidate, error) {
	if limit <= 0 {
		return []domain.Candidate{}, nil
	}

	now := time.Now()
	season := domain.SeasonForMonth(now.Month())

	// Empty preference list means no category filtering.
	var categories []string
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		s.log.WithError(err).Warn("seasonal: profile lookup failed")
	} else if profile != nil {
		categories = profile.Preferences.CategoriesAbove(seasonalPreferenceMin)
	}

	products, err := s.catalogRepo.FindSeasonal(ctx, now.Month(), categories, limit)
	if err != nil {
		s.log.WithError(err).Warn("seasonal: catalog query failed")
		return s.fallback(ctx, limit)
	}
	if len(products) == 0 {
		return s.fallback(ctx, limit)
	}

	reason := fmt.Sprintf("Perfect for %s season", season)
	candidates := make([]domain.Candidate, 0, len(products))
	for _, p := range products {
		candidates = append(candidates, domain.Candidate{
			ProductID: p.ID,
			Product:   p,
			Score:     seasonalScore,
			Reason:    reason,
			Source:    domain.SourceSeasonal,
		})
	}

	candidates = truncate(candidates, limit)
	s.cacheIntoProfile(ctx, userID, domain.SourceSeasonal, candidates)
	return candidates, nil
}
