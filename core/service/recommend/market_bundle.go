package recommend

import (
	"context"
	"fmt"
	"sort"

	"market_server/core/domain"

	"github.com/google/uuid"
)

const (
	bundleScore         = 0.7
	bundlePatternWindow = 10
	bundleMaxProducts   = 3
	bundleMinDistinct   = 2
)

// GetPersonalizedBundles mines the user's recent purchase patterns for
// categories with repeated co-purchases. Unlike the other scorers it has no
// fallback: a user without purchase history gets an empty list.
func (s *Service) GetPersonalizedBundles(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Candidate, error) {
	if limit <= 0 {
		return []domain.Candidate{}, nil
	}

	patterns, err := s.patternRepo.RecentByUser(ctx, userID, bundlePatternWindow)
	if err != nil {
		s.log.WithError(err).Warn("bundles: pattern query failed")
		return []domain.Candidate{}, nil
	}
	if len(patterns) == 0 {
		return []domain.Candidate{}, nil
	}

	// Category -> product -> purchase frequency
	freq := make(map[string]map[uuid.UUID]int)
	for _, pattern := range patterns {
		for _, p := range pattern.Products {
			if p.Category == "" {
				continue
			}
			if freq[p.Category] == nil {
				freq[p.Category] = make(map[uuid.UUID]int)
			}
			freq[p.Category][p.ProductID]++
		}
	}

	categories := make([]string, 0, len(freq))
	for category, products := range freq {
		if len(products) >= bundleMinDistinct {
			categories = append(categories, category)
		}
	}
	sort.Strings(categories)

	candidates := make([]domain.Candidate, 0, len(categories))
	for _, category := range categories {
		top := topProducts(freq[category], bundleMaxProducts)

		fetched, err := s.catalogRepo.GetByIDs(ctx, top)
		if err != nil {
			s.log.WithError(err).Warn("bundles: product resolve failed")
			continue
		}
		if len(fetched) == 0 {
			continue
		}
		byID := make(map[uuid.UUID]*domain.Product, len(fetched))
		for _, p := range fetched {
			byID[p.ID] = p
		}
		// Keep frequency order, most purchased first.
		products := make([]*domain.Product, 0, len(top))
		for _, id := range top {
			if p, ok := byID[id]; ok {
				products = append(products, p)
			}
		}

		candidates = append(candidates, domain.Candidate{
			BundleID: category,
			Products: products,
			Score:    bundleScore,
			Reason:   fmt.Sprintf("Frequently bought together in %s", category),
			Source:   domain.SourceBundle,
		})
	}

	candidates = truncate(candidates, limit)
	s.cacheIntoProfile(ctx, userID, domain.SourceBundle, candidates)
	return candidates, nil
}

// topProducts returns up to n product IDs ordered by frequency descending,
// ID ascending on ties.
func topProducts(counts map[uuid.UUID]int, n int) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if counts[ids[i]] != counts[ids[j]] {
			return counts[ids[i]] > counts[ids[j]]
		}
		return ids[i].String() < ids[j].String()
	})
	if len(ids) > n {
		ids = ids[:n]
	}
	return ids
}
