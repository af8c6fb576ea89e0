package recommend

import (
	"context"
	"fmt"
	"time"

	"market_server/core/domain"
	"market_server/core/port/in"
	"market_server/core/port/out"
	"market_server/pkg/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	// Preference thresholds feeding the scorers.
	contentPreferenceMin  = 0.5
	seasonalPreferenceMin = 0.3

	// Candidate pool multiplier: scorers fetch more than limit so the final
	// truncation still has material after score ordering.
	poolFactor = 5

	defaultCacheTTL = 10 * time.Minute
)

// Service implements in.RecommendationService.
type Service struct {
	behaviorRepo out.BehaviorRepository
	profileRepo  out.ProfileRepository
	catalogRepo  out.CatalogRepository
	patternRepo  out.PatternRepository
	trending     *TrendingRanker
	cache        out.Cache
	cacheTTL     time.Duration
	log          *logger.Logger
}

// NewService creates the recommendation service.
func NewService(
	behaviorRepo out.BehaviorRepository,
	profileRepo out.ProfileRepository,
	catalogRepo out.CatalogRepository,
	patternRepo out.PatternRepository,
	trending *TrendingRanker,
	cache out.Cache,
) *Service {
	return &Service{
		behaviorRepo: behaviorRepo,
		profileRepo:  profileRepo,
		catalogRepo:  catalogRepo,
		patternRepo:  patternRepo,
		trending:     trending,
		cache:        cache,
		cacheTTL:     defaultCacheTTL,
		log:          logger.WithField("component", "recommend"),
	}
}

// WithCacheTTL overrides how long hybrid results stay cached.
func (s *Service) WithCacheTTL(ttl time.Duration) *Service {
	if ttl > 0 {
		s.cacheTTL = ttl
	}
	return s
}

// GenerateRecommendations produces the weighted hybrid ranking. A user
// without a profile gets the trending list, in trending order.
func (s *Service) GenerateRecommendations(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Candidate, error) {
	if limit <= 0 {
		return []domain.Candidate{}, nil
	}

	cacheKey := fmt.Sprintf("rec:hybrid:%s:%d", userID, limit)
	if s.cache != nil {
		var cached []domain.Candidate
		if hit, err := s.cache.GetJSON(ctx, cacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		s.log.WithError(err).Warn("profile lookup failed, serving trending")
		return s.GetTrendingProducts(ctx, limit)
	}
	if profile == nil {
		return s.GetTrendingProducts(ctx, limit)
	}

	lists := make(map[domain.CandidateSource][]domain.Candidate, 4)
	g, gctx := errgroup.WithContext(ctx)
	var collaborative, contentBased, seasonal, bundles []domain.Candidate

	g.Go(func() (err error) {
		collaborative, err = s.GetCollaborative(gctx, userID, limit)
		return err
	})
	g.Go(func() (err error) {
		contentBased, err = s.GetContentBased(gctx, userID, limit)
		return err
	})
	g.Go(func() (err error) {
		seasonal, err = s.GetSeasonal(gctx, userID, limit)
		return err
	})
	g.Go(func() (err error) {
		bundles, err = s.GetPersonalizedBundles(gctx, userID, limit)
		return err
	})

	// Scorers fail soft; an error here means even the fallback ranker could
	// not reach the catalog.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	lists[domain.SourceCollaborative] = collaborative
	lists[domain.SourceContentBased] = contentBased
	lists[domain.SourceSeasonal] = seasonal
	lists[domain.SourceBundle] = bundles

	result := combineHybrid(lists, limit)

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cacheKey, result, s.cacheTTL); err != nil {
			s.log.WithError(err).Debug("hybrid cache write failed")
		}
	}
	s.cacheIntoProfile(ctx, userID, domain.KindHybrid, result)

	return result, nil
}

// GetTrendingProducts returns the popularity ranking.
func (s *Service) GetTrendingProducts(ctx context.Context, limit int) ([]domain.Candidate, error) {
	return s.trending.Rank(ctx, limit)
}

// fallback serves the trending ranking when a scorer has no data or failed.
func (s *Service) fallback(ctx context.Context, limit int) ([]domain.Candidate, error) {
	return s.trending.Rank(ctx, limit)
}

// cacheIntoProfile stores a candidate list on the profile document,
// best-effort.
func (s *Service) cacheIntoProfile(ctx context.Context, userID uuid.UUID, kind domain.CandidateSource, candidates []domain.Candidate) {
	if len(candidates) == 0 {
		return
	}
	if err := s.profileRepo.CacheRecommendations(ctx, userID, kind, candidates); err != nil {
		s.log.WithError(err).Debug("profile recommendation cache failed")
	}
}

var _ in.RecommendationService = (*Service)(nil)
