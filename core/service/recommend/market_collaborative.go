package recommend

import (
	"context"

	"market_server/core/domain"

	"github.com/google/uuid"
)

const reasonCollaborative = "Users with similar preferences also bought this"

// GetCollaborative scores products by co-purchase counts among the user's
// cached similar users. Without similar users, or on any query failure, it
// serves the trending fallback instead of erroring.
func (s *Service) GetCollaborative(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Candidate, error) {
	if limit <= 0 {
		return []domain.Candidate{}, nil
	}

	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		s.log.WithError(err).Warn("collaborative: profile lookup failed")
		return s.fallback(ctx, limit)
	}
	if profile == nil || len(profile.SimilarUsers) == 0 {
		return s.fallback(ctx, limit)
	}

	similarIDs := make([]uuid.UUID, 0, len(profile.SimilarUsers))
	for _, su := range profile.SimilarUsers {
		similarIDs = append(similarIDs, su.UserID)
	}

	stats, err := s.behaviorRepo.CoPurchaseStats(ctx, similarIDs, limit*poolFactor)
	if err != nil {
		s.log.WithError(err).Warn("collaborative: co-purchase aggregation failed")
		return s.fallback(ctx, limit)
	}
	if len(stats) == 0 {
		return s.fallback(ctx, limit)
	}

	ids := make([]uuid.UUID, 0, len(stats))
	for _, st := range stats {
		ids = append(ids, st.ProductID)
	}
	products, err := s.catalogRepo.GetByIDs(ctx, ids)
	if err != nil {
		s.log.WithError(err).Warn("collaborative: product resolve failed")
		return s.fallback(ctx, limit)
	}
	byID := make(map[uuid.UUID]*domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	candidates := make([]domain.Candidate, 0, len(stats))
	for _, st := range stats {
		product, ok := byID[st.ProductID]
		if !ok {
			continue
		}
		candidates = append(candidates, domain.Candidate{
			ProductID: st.ProductID,
			Product:   product,
			Score:     0.6*float64(st.PurchaseCount) + 0.4*st.AvgRating,
			Reason:    reasonCollaborative,
			Source:    domain.SourceCollaborative,
		})
	}

	sortCandidates(candidates)
	candidates = truncate(candidates, limit)
	s.cacheIntoProfile(ctx, userID, domain.SourceCollaborative, candidates)
	return candidates, nil
}
