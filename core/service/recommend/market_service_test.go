package recommend

import (
	"context"
	"math"
	"testing"
	"time"

	"market_server/core/domain"
	"market_server/core/port/out"

	"github.com/google/uuid"
)

// =============================================================================
// In-memory port fakes
// =============================================================================

type fakeBehaviorRepo struct {
	coPurchase []out.CoPurchaseStat
	coErr      error
	trendStats []out.ProductViewStat
	trendErr   error
}

func (f *fakeBehaviorRepo) Append(ctx context.Context, event *domain.BehaviorEvent) error {
	return nil
}

func (f *fakeBehaviorRepo) CoPurchaseStats(ctx context.Context, userIDs []uuid.UUID, limit int) ([]out.CoPurchaseStat, error) {
	if f.coErr != nil {
		return nil, f.coErr
	}
	stats := f.coPurchase
	if len(stats) > limit {
		stats = stats[:limit]
	}
	return stats, nil
}

func (f *fakeBehaviorRepo) TrendingStats(ctx context.Context, since time.Time, limit int) ([]out.ProductViewStat, error) {
	if f.trendErr != nil {
		return nil, f.trendErr
	}
	stats := f.trendStats
	if len(stats) > limit {
		stats = stats[:limit]
	}
	return stats, nil
}

func (f *fakeBehaviorRepo) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, nil
}

type fakeProfileRepo struct {
	profiles map[uuid.UUID]*domain.UserProfile
	getErr   error
}

func (f *fakeProfileRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.UserProfile, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.profiles[userID], nil
}

func (f *fakeProfileRepo) Upsert(ctx context.Context, profile *domain.UserProfile) error {
	if f.profiles == nil {
		f.profiles = make(map[uuid.UUID]*domain.UserProfile)
	}
	f.profiles[profile.UserID] = profile
	return nil
}

func (f *fakeProfileRepo) SetSimilarUsers(ctx context.Context, userID uuid.UUID, similar []domain.SimilarUser) error {
	return nil
}

func (f *fakeProfileRepo) CacheRecommendations(ctx context.Context, userID uuid.UUID, kind domain.CandidateSource, candidates []domain.Candidate) error {
	return nil
}

func (f *fakeProfileRepo) ListOthers(ctx context.Context, excludeUserID uuid.UUID, limit int) ([]*domain.UserProfile, error) {
	var others []*domain.UserProfile
	for id, p := range f.profiles {
		if id != excludeUserID {
			others = append(others, p)
		}
	}
	return others, nil
}

func (f *fakeProfileRepo) StaleSimilarUserIDs(ctx context.Context, olderThanSec int64, limit int) ([]uuid.UUID, error) {
	return nil, nil
}

type fakeCatalogRepo struct {
	products map[uuid.UUID]*domain.Product
	active   []*domain.Product
	seasonal []*domain.Product
	findErr  error
}

func (f *fakeCatalogRepo) Create(ctx context.Context, product *domain.Product) error { return nil }
func (f *fakeCatalogRepo) Update(ctx context.Context, product *domain.Product) error { return nil }
func (f *fakeCatalogRepo) Delete(ctx context.Context, id uuid.UUID) error            { return nil }

func (f *fakeCatalogRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return f.products[id], nil
}

func (f *fakeCatalogRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Product, error) {
	var result []*domain.Product
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			result = append(result, p)
		}
	}
	return result, nil
}

func (f *fakeCatalogRepo) Find(ctx context.Context, filter *domain.ProductFilter) ([]*domain.Product, error) {
	return f.active, nil
}

func (f *fakeCatalogRepo) FindActiveInStock(ctx context.Context, filter *domain.ProductFilter) ([]*domain.Product, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	var result []*domain.Product
	for _, p := range f.active {
		if len(filter.Categories) > 0 && !containsStr(filter.Categories, p.Category) {
			continue
		}
		result = append(result, p)
	}
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (f *fakeCatalogRepo) FindSeasonal(ctx context.Context, month time.Month, categories []string, limit int) ([]*domain.Product, error) {
	var result []*domain.Product
	for _, p := range f.seasonal {
		if len(categories) > 0 && !containsStr(categories, p.Category) {
			continue
		}
		result = append(result, p)
	}
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (f *fakeCatalogRepo) FindWithEmbeddings(ctx context.Context, filter *domain.ProductFilter) ([]*domain.Product, error) {
	return f.active, nil
}

func containsStr(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

type fakePatternRepo struct {
	patterns []*domain.PurchasePattern
}

func (f *fakePatternRepo) Save(ctx context.Context, pattern *domain.PurchasePattern) error {
	f.patterns = append(f.patterns, pattern)
	return nil
}

func (f *fakePatternRepo) RecentByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.PurchasePattern, error) {
	var result []*domain.PurchasePattern
	for _, p := range f.patterns {
		if p.UserID == userID {
			result = append(result, p)
		}
	}
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// =============================================================================
// Helpers
// =============================================================================

func testProduct(name, category, brand string, ratingAvg float64) *domain.Product {
	return &domain.Product{
		ID:       uuid.New(),
		Name:     name,
		Category: category,
		Brand:    brand,
		Rating:   domain.Rating{Average: ratingAvg, Count: 10},
		Stock:    5,
		IsActive: true,
	}
}

func newTestService(behavior *fakeBehaviorRepo, profiles *fakeProfileRepo, catalog *fakeCatalogRepo, patterns *fakePatternRepo) *Service {
	trending := NewTrendingRanker(behavior, catalog)
	return NewService(behavior, profiles, catalog, patterns, trending, nil)
}

// =============================================================================
// Scenarios
// =============================================================================

func TestGenerateRecommendationsWithoutProfileMatchesTrending(t *testing.T) {
	p1 := testProduct("a", "electronics", "Sony", 4.5)
	p2 := testProduct("b", "electronics", "LG", 4.0)
	p3 := testProduct("c", "grocery", "", 3.5)

	catalog := &fakeCatalogRepo{
		products: map[uuid.UUID]*domain.Product{p1.ID: p1, p2.ID: p2, p3.ID: p3},
	}
	behavior := &fakeBehaviorRepo{
		trendStats: []out.ProductViewStat{
			{ProductID: p1.ID, ViewCount: 100, UniqueViewers: 50},
			{ProductID: p2.ID, ViewCount: 80, UniqueViewers: 60},
			{ProductID: p3.ID, ViewCount: 10, UniqueViewers: 5},
		},
	}
	svc := newTestService(behavior, &fakeProfileRepo{}, catalog, &fakePatternRepo{})

	got, err := svc.GenerateRecommendations(context.Background(), uuid.New(), 10)
	if err != nil {
		t.Fatalf("GenerateRecommendations: %v", err)
	}
	want, err := svc.GetTrendingProducts(context.Background(), 10)
	if err != nil {
		t.Fatalf("GetTrendingProducts: %v", err)
	}

	if len(got) != len(want) {
		t.Fatalf("got %d candidates, trending has %d", len(got), len(want))
	}
	for i := range got {
		if got[i].ProductID != want[i].ProductID {
			t.Errorf("position %d: got %s, trending has %s", i, got[i].ProductID, want[i].ProductID)
		}
	}
}

func TestTrendingScoreFormula(t *testing.T) {
	p1 := testProduct("a", "electronics", "Sony", 4.5)
	catalog := &fakeCatalogRepo{products: map[uuid.UUID]*domain.Product{p1.ID: p1}}
	behavior := &fakeBehaviorRepo{
		trendStats: []out.ProductViewStat{{ProductID: p1.ID, ViewCount: 100, UniqueViewers: 50}},
	}
	ranker := NewTrendingRanker(behavior, catalog)

	got, err := ranker.Rank(context.Background(), 5)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(got))
	}
	// 0.6*100 + 0.4*50 = 80
	if got[0].Score != 80 {
		t.Errorf("score = %v, want 80", got[0].Score)
	}
	if got[0].Reason != "Trending now" {
		t.Errorf("reason = %q", got[0].Reason)
	}
}

func TestTrendingFallsBackToPopularCatalog(t *testing.T) {
	p1 := testProduct("a", "electronics", "Sony", 4.0)
	p1.Rating.Count = 50

	catalog := &fakeCatalogRepo{
		products: map[uuid.UUID]*domain.Product{p1.ID: p1},
		active:   []*domain.Product{p1},
	}
	ranker := NewTrendingRanker(&fakeBehaviorRepo{}, catalog)

	got, err := ranker.Rank(context.Background(), 5)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(got))
	}
	// 0.5*4.0 + 0.3*(50/100) + 0.2 = 2.35
	if diff := got[0].Score - 2.35; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("score = %v, want 2.35", got[0].Score)
	}
	if got[0].Reason != "Popular products" {
		t.Errorf("reason = %q", got[0].Reason)
	}
	if got[0].Source != domain.SourceFallback {
		t.Errorf("source = %q, want fallback", got[0].Source)
	}
}

func TestCollaborativeScoring(t *testing.T) {
	userID := uuid.New()
	similar := uuid.New()
	p1 := testProduct("a", "electronics", "Sony", 4.5)
	p2 := testProduct("b", "electronics", "LG", 4.0)

	catalog := &fakeCatalogRepo{products: map[uuid.UUID]*domain.Product{p1.ID: p1, p2.ID: p2}}
	behavior := &fakeBehaviorRepo{
		coPurchase: []out.CoPurchaseStat{
			{ProductID: p1.ID, PurchaseCount: 10, AvgRating: 4.5},
			{ProductID: p2.ID, PurchaseCount: 3, AvgRating: 5.0},
		},
	}
	profiles := &fakeProfileRepo{profiles: map[uuid.UUID]*domain.UserProfile{
		userID: {
			UserID:       userID,
			SimilarUsers: []domain.SimilarUser{{UserID: similar, Score: 0.9}},
		},
	}}
	svc := newTestService(behavior, profiles, catalog, &fakePatternRepo{})

	got, err := svc.GetCollaborative(context.Background(), userID, 10)
	if err != nil {
		t.Fatalf("GetCollaborative: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}
	// 0.6*10 + 0.4*4.5 = 7.8 beats 0.6*3 + 0.4*5 = 3.8
	if got[0].ProductID != p1.ID {
		t.Errorf("expected p1 first")
	}
	if diff := got[0].Score - 7.8; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("score = %v, want 7.8", got[0].Score)
	}
	if got[0].Reason != "Users with similar preferences also bought this" {
		t.Errorf("reason = %q", got[0].Reason)
	}
}

func TestCollaborativeFallsBackWithoutSimilarUsers(t *testing.T) {
	userID := uuid.New()
	p1 := testProduct("a", "electronics", "Sony", 4.0)

	catalog := &fakeCatalogRepo{
		products: map[uuid.UUID]*domain.Product{p1.ID: p1},
		active:   []*domain.Product{p1},
	}
	profiles := &fakeProfileRepo{profiles: map[uuid.UUID]*domain.UserProfile{
		userID: {UserID: userID},
	}}
	svc := newTestService(&fakeBehaviorRepo{}, profiles, catalog, &fakePatternRepo{})

	got, err := svc.GetCollaborative(context.Background(), userID, 5)
	if err != nil {
		t.Fatalf("GetCollaborative: %v", err)
	}
	if len(got) != 1 || got[0].Source != domain.SourceFallback {
		t.Errorf("expected fallback candidates, got %+v", got)
	}
}

func TestContentScoreFormula(t *testing.T) {
	product := &domain.Product{
		ID:                 uuid.New(),
		Category:           "electronics",
		Brand:              "Sony",
		Rating:             domain.Rating{Average: 5},
		DiscountPercentage: 50,
		IsFeatured:         true,
	}
	brands := map[string]struct{}{"Sony": {}}

	// 0.4 + 0.3*(5/5) + 0.2*(50/100) + 0.1 = 0.9
	if got := contentScore(product, brands); math.Abs(got-0.9) > 1e-9 {
		t.Errorf("contentScore = %v, want 0.9", got)
	}

	// No brand match, nothing else
	plain := &domain.Product{ID: uuid.New(), Category: "electronics", Brand: "LG"}
	if got := contentScore(plain, brands); got != 0 {
		t.Errorf("contentScore = %v, want 0", got)
	}
}

func TestContentBasedFallsBackWithoutCategories(t *testing.T) {
	userID := uuid.New()
	p1 := testProduct("a", "electronics", "Sony", 4.0)

	catalog := &fakeCatalogRepo{
		products: map[uuid.UUID]*domain.Product{p1.ID: p1},
		active:   []*domain.Product{p1},
	}
	profiles := &fakeProfileRepo{profiles: map[uuid.UUID]*domain.UserProfile{
		userID: {
			UserID: userID,
			Preferences: domain.Preferences{
				// Below the 0.5 threshold
				Categories: []domain.PreferenceScore{{Name: "electronics", Score: 0.4}},
			},
		},
	}}
	svc := newTestService(&fakeBehaviorRepo{}, profiles, catalog, &fakePatternRepo{})

	got, err := svc.GetContentBased(context.Background(), userID, 5)
	if err != nil {
		t.Fatalf("GetContentBased: %v", err)
	}
	if len(got) == 0 || got[0].Source != domain.SourceFallback {
		t.Errorf("expected fallback candidates, got %+v", got)
	}
}

func TestContentBasedRanking(t *testing.T) {
	userID := uuid.New()
	sony := testProduct("tv", "electronics", "Sony", 5)
	sony.DiscountPercentage = 50
	sony.IsFeatured = true
	lg := testProduct("monitor", "electronics", "LG", 4)

	catalog := &fakeCatalogRepo{
		products: map[uuid.UUID]*domain.Product{sony.ID: sony, lg.ID: lg},
		active:   []*domain.Product{lg, sony},
	}
	profiles := &fakeProfileRepo{profiles: map[uuid.UUID]*domain.UserProfile{
		userID: {
			UserID: userID,
			Preferences: domain.Preferences{
				Categories: []domain.PreferenceScore{{Name: "electronics", Score: 0.8}},
				Brands:     []domain.PreferenceScore{{Name: "Sony", Score: 0.7}},
			},
		},
	}}
	svc := newTestService(&fakeBehaviorRepo{}, profiles, catalog, &fakePatternRepo{})

	got, err := svc.GetContentBased(context.Background(), userID, 10)
	if err != nil {
		t.Fatalf("GetContentBased: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}
	if got[0].ProductID != sony.ID {
		t.Errorf("expected Sony product ranked first")
	}
	if math.Abs(got[0].Score-0.9) > 1e-9 {
		t.Errorf("score = %v, want 0.9", got[0].Score)
	}
}

func TestSeasonalEmptyShelfFallsBack(t *testing.T) {
	p1 := testProduct("a", "electronics", "Sony", 4.0)
	catalog := &fakeCatalogRepo{
		products: map[uuid.UUID]*domain.Product{p1.ID: p1},
		active:   []*domain.Product{p1},
		seasonal: nil, // nothing seasonal this month
	}
	svc := newTestService(&fakeBehaviorRepo{}, &fakeProfileRepo{}, catalog, &fakePatternRepo{})

	got, err := svc.GetSeasonal(context.Background(), uuid.New(), 5)
	if err != nil {
		t.Fatalf("GetSeasonal: %v", err)
	}
	if len(got) != 1 || got[0].Source != domain.SourceFallback {
		t.Errorf("expected fallback output, got %+v", got)
	}
}

func TestSeasonalScoring(t *testing.T) {
	seasonal := testProduct("pumpkin", "grocery", "", 4.0)
	catalog := &fakeCatalogRepo{
		products: map[uuid.UUID]*domain.Product{seasonal.ID: seasonal},
		seasonal: []*domain.Product{seasonal},
	}
	svc := newTestService(&fakeBehaviorRepo{}, &fakeProfileRepo{}, catalog, &fakePatternRepo{})

	got, err := svc.GetSeasonal(context.Background(), uuid.New(), 5)
	if err != nil {
		t.Fatalf("GetSeasonal: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(got))
	}
	if got[0].Score != 0.8 {
		t.Errorf("score = %v, want 0.8", got[0].Score)
	}
	if got[0].Source != domain.SourceSeasonal {
		t.Errorf("source = %q", got[0].Source)
	}
}

func TestBundleMining(t *testing.T) {
	userID := uuid.New()
	rice := testProduct("rice", "grocery", "", 4.0)
	oil := testProduct("oil", "grocery", "", 4.0)
	tv := testProduct("tv", "electronics", "Sony", 4.5)

	catalog := &fakeCatalogRepo{
		products: map[uuid.UUID]*domain.Product{rice.ID: rice, oil.ID: oil, tv.ID: tv},
	}
	patterns := &fakePatternRepo{patterns: []*domain.PurchasePattern{
		{
			UserID: userID,
			Products: []domain.PatternProduct{
				{ProductID: rice.ID, Category: "grocery"},
				{ProductID: oil.ID, Category: "grocery"},
				{ProductID: tv.ID, Category: "electronics"},
			},
		},
		{
			UserID: userID,
			Products: []domain.PatternProduct{
				{ProductID: rice.ID, Category: "grocery"},
			},
		},
	}}
	svc := newTestService(&fakeBehaviorRepo{}, &fakeProfileRepo{}, catalog, patterns)

	got, err := svc.GetPersonalizedBundles(context.Background(), userID, 10)
	if err != nil {
		t.Fatalf("GetPersonalizedBundles: %v", err)
	}
	// Electronics has only one distinct product, no bundle for it.
	if len(got) != 1 {
		t.Fatalf("expected 1 bundle, got %d", len(got))
	}
	bundle := got[0]
	if bundle.BundleID != "grocery" {
		t.Errorf("bundle id = %q, want grocery", bundle.BundleID)
	}
	if bundle.Score != 0.7 {
		t.Errorf("score = %v, want 0.7", bundle.Score)
	}
	if len(bundle.Products) != 2 {
		t.Fatalf("expected 2 products in bundle, got %d", len(bundle.Products))
	}
	// Rice appears in two patterns, so it leads the bundle.
	if bundle.Products[0].ID != rice.ID {
		t.Errorf("expected rice first in bundle")
	}
	if bundle.Reason != "Frequently bought together in grocery" {
		t.Errorf("reason = %q", bundle.Reason)
	}
}

func TestBundleNoHistoryReturnsEmpty(t *testing.T) {
	svc := newTestService(&fakeBehaviorRepo{}, &fakeProfileRepo{}, &fakeCatalogRepo{}, &fakePatternRepo{})

	got, err := svc.GetPersonalizedBundles(context.Background(), uuid.New(), 5)
	if err != nil {
		t.Fatalf("GetPersonalizedBundles: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty list, got %d candidates", len(got))
	}
}

func TestScorersHonorZeroLimit(t *testing.T) {
	svc := newTestService(&fakeBehaviorRepo{}, &fakeProfileRepo{}, &fakeCatalogRepo{}, &fakePatternRepo{})
	ctx := context.Background()
	userID := uuid.New()

	calls := []func() ([]domain.Candidate, error){
		func() ([]domain.Candidate, error) { return svc.GetCollaborative(ctx, userID, 0) },
		func() ([]domain.Candidate, error) { return svc.GetContentBased(ctx, userID, 0) },
		func() ([]domain.Candidate, error) { return svc.GetSeasonal(ctx, userID, 0) },
		func() ([]domain.Candidate, error) { return svc.GetPersonalizedBundles(ctx, userID, 0) },
		func() ([]domain.Candidate, error) { return svc.GetTrendingProducts(ctx, 0) },
		func() ([]domain.Candidate, error) { return svc.GenerateRecommendations(ctx, userID, 0) },
	}

	for i, call := range calls {
		got, err := call()
		if err != nil {
			t.Errorf("call %d returned error: %v", i, err)
		}
		if len(got) != 0 {
			t.Errorf("call %d returned %d candidates for limit 0", i, len(got))
		}
	}
}

func TestTrendingTruncatesToLimit(t *testing.T) {
	products := make(map[uuid.UUID]*domain.Product)
	var stats []out.ProductViewStat
	for i := 0; i < 20; i++ {
		p := testProduct("p", "grocery", "", 4.0)
		products[p.ID] = p
		stats = append(stats, out.ProductViewStat{ProductID: p.ID, ViewCount: 20 - i, UniqueViewers: 1})
	}
	catalog := &fakeCatalogRepo{products: products}
	ranker := NewTrendingRanker(&fakeBehaviorRepo{trendStats: stats}, catalog)

	got, err := ranker.Rank(context.Background(), 7)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if len(got) != 7 {
		t.Errorf("expected 7 candidates, got %d", len(got))
	}
}
