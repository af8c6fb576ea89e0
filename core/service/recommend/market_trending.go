// Package recommend implements the personalized product ranking pipeline:
// four scorers, a weighted hybrid combiner, and the trending/popularity
// ranker every personalized path degrades to.
package recommend

import (
	"context"
	"fmt"
	"sort"
	"time"

	"market_server/core/domain"
	"market_server/core/port/out"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

const (
	// Trending aggregates view events over this window.
	trendingWindow = 30 * 24 * time.Hour

	reasonTrending = "Trending now"
	reasonPopular  = "Popular products"
)

// TrendingRanker computes the popularity ranking. Tier 1 scores recent view
// events; tier 2 falls back to catalog rating order when the behavior log is
// empty. It is the terminal path: it only errors when the catalog itself is
// unreachable.
type TrendingRanker struct {
	behaviorRepo out.BehaviorRepository
	catalogRepo  out.CatalogRepository

	// Collapses concurrent recomputes for the same limit.
	group singleflight.Group
}

// NewTrendingRanker creates a trending ranker.
func NewTrendingRanker(behaviorRepo out.BehaviorRepository, catalogRepo out.CatalogRepository) *TrendingRanker {
	return &TrendingRanker{
		behaviorRepo: behaviorRepo,
		catalogRepo:  catalogRepo,
	}
}

// Rank returns up to limit candidates ordered by popularity.
func (r *TrendingRanker) Rank(ctx context.Context, limit int) ([]domain.Candidate, error) {
	if limit <= 0 {
		return []domain.Candidate{}, nil
	}

	v, err, _ := r.group.Do(fmt.Sprintf("trending:%d", limit), func() (any, error) {
		return r.rank(ctx, limit)
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Candidate), nil
}

func (r *TrendingRanker) rank(ctx context.Context, limit int) ([]domain.Candidate, error) {
	since := time.Now().Add(-trendingWindow)

	stats, err := r.behaviorRepo.TrendingStats(ctx, since, limit)
	if err == nil && len(stats) > 0 {
		if candidates := r.fromViewStats(ctx, stats, limit); len(candidates) > 0 {
			return candidates, nil
		}
	}

	// Tier 2: empty behavior log or failed aggregation, rank the catalog
	// by rating.
	return r.popular(ctx, limit)
}

func (r *TrendingRanker) fromViewStats(ctx context.Context, stats []out.ProductViewStat, limit int) []domain.Candidate {
	ids := make([]uuid.UUID, 0, len(stats))
	for _, s := range stats {
		ids = append(ids, s.ProductID)
	}

	products, err := r.catalogRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil
	}
	byID := make(map[uuid.UUID]*domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	candidates := make([]domain.Candidate, 0, len(stats))
	for _, s := range stats {
		product, ok := byID[s.ProductID]
		if !ok {
			continue
		}
		candidates = append(candidates, domain.Candidate{
			ProductID: s.ProductID,
			Product:   product,
			Score:     0.6*float64(s.ViewCount) + 0.4*float64(s.UniqueViewers),
			Reason:    reasonTrending,
			Source:    domain.SourceTrending,
		})
	}

	sortCandidates(candidates)
	return truncate(candidates, limit)
}

func (r *TrendingRanker) popular(ctx context.Context, limit int) ([]domain.Candidate, error) {
	products, err := r.catalogRepo.FindActiveInStock(ctx, &domain.ProductFilter{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("popular products query: %w", err)
	}

	candidates := make([]domain.Candidate, 0, len(products))
	for _, p := range products {
		candidates = append(candidates, domain.Candidate{
			ProductID: p.ID,
			Product:   p,
			Score:     0.5*p.Rating.Average + 0.3*(float64(p.Rating.Count)/100) + 0.2,
			Reason:    reasonPopular,
			Source:    domain.SourceFallback,
		})
	}

	sortCandidates(candidates)
	return truncate(candidates, limit), nil
}

// sortCandidates orders by score descending with a stable key tie-break.
func sortCandidates(candidates []domain.Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Key() < candidates[j].Key()
	})
}

func truncate(candidates []domain.Candidate, limit int) []domain.Candidate {
	if limit >= 0 && len(candidates) > limit {
		return candidates[:limit]
	}
	return candidates
}
