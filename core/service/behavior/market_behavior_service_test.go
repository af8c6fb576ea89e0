package behavior

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"market_server/core/domain"
	"market_server/core/port/out"

	"github.com/google/uuid"
)

// =============================================================================
// In-memory fakes
// =============================================================================

type fakeBehaviorRepo struct {
	events    []*domain.BehaviorEvent
	appendErr error
}

func (f *fakeBehaviorRepo) Append(ctx context.Context, event *domain.BehaviorEvent) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakeBehaviorRepo) CoPurchaseStats(ctx context.Context, userIDs []uuid.UUID, limit int) ([]out.CoPurchaseStat, error) {
	return nil, nil
}

func (f *fakeBehaviorRepo) TrendingStats(ctx context.Context, since time.Time, limit int) ([]out.ProductViewStat, error) {
	return nil, nil
}

func (f *fakeBehaviorRepo) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	return int64(len(f.events)), nil
}

type fakeProfileRepo struct {
	profiles map[uuid.UUID]*domain.UserProfile
	similar  map[uuid.UUID][]domain.SimilarUser
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{
		profiles: make(map[uuid.UUID]*domain.UserProfile),
		similar:  make(map[uuid.UUID][]domain.SimilarUser),
	}
}

func (f *fakeProfileRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.UserProfile, error) {
	return f.profiles[userID], nil
}

func (f *fakeProfileRepo) Upsert(ctx context.Context, profile *domain.UserProfile) error {
	f.profiles[profile.UserID] = profile
	return nil
}

func (f *fakeProfileRepo) SetSimilarUsers(ctx context.Context, userID uuid.UUID, similar []domain.SimilarUser) error {
	f.similar[userID] = similar
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

type fakePatternRepo struct {
	patterns map[string]*domain.PurchasePattern
}

func newFakePatternRepo() *fakePatternRepo {
	return &fakePatternRepo{patterns: make(map[string]*domain.PurchasePattern)}
}

func (f *fakePatternRepo) Save(ctx context.Context, pattern *domain.PurchasePattern) error {
	if _, exists := f.patterns[pattern.OrderID]; exists {
		return errors.New("duplicate order")
	}
	f.patterns[pattern.OrderID] = pattern
	return nil
}

func (f *fakePatternRepo) RecentByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.PurchasePattern, error) {
	return nil, nil
}

type fakeLoyalty struct {
	earned map[string]int
}

func (f *fakeLoyalty) EarnPoints(ctx context.Context, userID uuid.UUID, orderID string, orderValue float64) (*domain.LoyaltyTransaction, error) {
	if f.earned == nil {
		f.earned = make(map[string]int)
	}
	points := domain.PointsForOrder(orderValue)
	f.earned[orderID] = points
	return &domain.LoyaltyTransaction{Points: points}, nil
}

func (f *fakeLoyalty) RedeemPoints(ctx context.Context, userID uuid.UUID, points int, note string) (*domain.LoyaltyTransaction, error) {
	return nil, nil
}

func (f *fakeLoyalty) GetBalance(ctx context.Context, userID uuid.UUID) (int, error) { return 0, nil }

func (f *fakeLoyalty) GetHistory(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.LoyaltyTransaction, error) {
	return nil, nil
}

func newTestService(behaviorRepo *fakeBehaviorRepo, profileRepo *fakeProfileRepo, patternRepo *fakePatternRepo, loyalty *fakeLoyalty) *Service {
	return NewService(behaviorRepo, profileRepo, patternRepo, loyalty)
}

// =============================================================================
// Tracking
// =============================================================================

func TestTrackBehaviorCreatesProfile(t *testing.T) {
	behaviorRepo := &fakeBehaviorRepo{}
	profileRepo := newFakeProfileRepo()
	svc := newTestService(behaviorRepo, profileRepo, newFakePatternRepo(), &fakeLoyalty{})

	userID := uuid.New()
	event, err := svc.TrackBehavior(context.Background(), &domain.TrackBehaviorInput{
		UserID:      userID,
		SessionID:   "sess-1",
		Type:        domain.BehaviorSearch,
		SearchQuery: "wholesale rice",
	})
	if err != nil {
		t.Fatalf("TrackBehavior: %v", err)
	}
	if event.ID == uuid.Nil {
		t.Error("event ID not assigned")
	}
	if len(behaviorRepo.events) != 1 {
		t.Fatalf("expected 1 logged event, got %d", len(behaviorRepo.events))
	}

	profile := profileRepo.profiles[userID]
	if profile == nil {
		t.Fatal("profile not created on first write")
	}
	if len(profile.SearchHistory) != 1 || profile.SearchHistory[0].Query != "wholesale rice" {
		t.Errorf("search history = %+v", profile.SearchHistory)
	}
}

func TestTrackBehaviorViewBumpsPreferences(t *testing.T) {
	profileRepo := newFakeProfileRepo()
	svc := newTestService(&fakeBehaviorRepo{}, profileRepo, newFakePatternRepo(), &fakeLoyalty{})

	userID := uuid.New()
	productID := uuid.New()
	for i := 0; i < 3; i++ {
		_, err := svc.TrackBehavior(context.Background(), &domain.TrackBehaviorInput{
			UserID:    userID,
			Type:      domain.BehaviorViewProduct,
			ProductID: &productID,
			Category:  "electronics",
			Brand:     "Sony",
		})
		if err != nil {
			t.Fatalf("TrackBehavior: %v", err)
		}
	}

	profile := profileRepo.profiles[userID]
	if len(profile.Preferences.Categories) != 1 {
		t.Fatalf("categories = %+v", profile.Preferences.Categories)
	}
	got := profile.Preferences.Categories[0].Score
	if diff := got - 0.3; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("category score = %v, want 0.3", got)
	}
	if len(profile.Preferences.Brands) != 1 || profile.Preferences.Brands[0].Name != "Sony" {
		t.Errorf("brands = %+v", profile.Preferences.Brands)
	}
}

func TestTrackBehaviorPreferenceScoreClamped(t *testing.T) {
	profileRepo := newFakeProfileRepo()
	svc := newTestService(&fakeBehaviorRepo{}, profileRepo, newFakePatternRepo(), &fakeLoyalty{})

	userID := uuid.New()
	for i := 0; i < 25; i++ {
		if _, err := svc.TrackBehavior(context.Background(), &domain.TrackBehaviorInput{
			UserID:   userID,
			Type:     domain.BehaviorViewProduct,
			Category: "grocery",
		}); err != nil {
			t.Fatalf("TrackBehavior: %v", err)
		}
	}

	score := profileRepo.profiles[userID].Preferences.Categories[0].Score
	if score != 1.0 {
		t.Errorf("score = %v, want clamped 1.0", score)
	}
}

func TestTrackBehaviorHistoryCaps(t *testing.T) {
	profileRepo := newFakeProfileRepo()
	svc := newTestService(&fakeBehaviorRepo{}, profileRepo, newFakePatternRepo(), &fakeLoyalty{})
	userID := uuid.New()

	for i := 0; i < domain.MaxSearchHistory+20; i++ {
		if _, err := svc.TrackBehavior(context.Background(), &domain.TrackBehaviorInput{
			UserID:      userID,
			Type:        domain.BehaviorSearch,
			SearchQuery: fmt.Sprintf("q%d", i),
		}); err != nil {
			t.Fatalf("TrackBehavior: %v", err)
		}
	}
	for i := 0; i < domain.MaxPurchaseHistory+20; i++ {
		productID := uuid.New()
		if _, err := svc.TrackBehavior(context.Background(), &domain.TrackBehaviorInput{
			UserID:    userID,
			Type:      domain.BehaviorPurchase,
			ProductID: &productID,
			Price:     42,
		}); err != nil {
			t.Fatalf("TrackBehavior: %v", err)
		}
	}

	profile := profileRepo.profiles[userID]
	if len(profile.SearchHistory) != domain.MaxSearchHistory {
		t.Errorf("search history = %d, want %d", len(profile.SearchHistory), domain.MaxSearchHistory)
	}
	if len(profile.PurchaseHistory) != domain.MaxPurchaseHistory {
		t.Errorf("purchase history = %d, want %d", len(profile.PurchaseHistory), domain.MaxPurchaseHistory)
	}
}

func TestTrackBehaviorSurvivesLogWriteFailure(t *testing.T) {
	behaviorRepo := &fakeBehaviorRepo{appendErr: errors.New("store unreachable")}
	profileRepo := newFakeProfileRepo()
	svc := newTestService(behaviorRepo, profileRepo, newFakePatternRepo(), &fakeLoyalty{})

	userID := uuid.New()
	event, err := svc.TrackBehavior(context.Background(), &domain.TrackBehaviorInput{
		UserID:      userID,
		Type:        domain.BehaviorSearch,
		SearchQuery: "bulk oil",
	})
	if err != nil {
		t.Fatalf("TrackBehavior should tolerate log write failure, got %v", err)
	}
	if event == nil {
		t.Fatal("expected event despite log write failure")
	}
	if profileRepo.profiles[userID] == nil {
		t.Error("profile update skipped after log write failure")
	}
}

func TestTrackBehaviorRejectsInvalidInput(t *testing.T) {
	svc := newTestService(&fakeBehaviorRepo{}, newFakeProfileRepo(), newFakePatternRepo(), &fakeLoyalty{})

	if _, err := svc.TrackBehavior(context.Background(), &domain.TrackBehaviorInput{
		Type: domain.BehaviorSearch,
	}); err == nil {
		t.Error("expected error for missing user ID")
	}

	if _, err := svc.TrackBehavior(context.Background(), &domain.TrackBehaviorInput{
		UserID: uuid.New(),
		Type:   "teleport",
	}); err == nil {
		t.Error("expected error for unknown behavior type")
	}
}

// =============================================================================
// Purchase patterns
// =============================================================================

func TestRecordPurchaseWritesPatternAndCreditsPoints(t *testing.T) {
	patternRepo := newFakePatternRepo()
	loyalty := &fakeLoyalty{}
	svc := newTestService(&fakeBehaviorRepo{}, newFakeProfileRepo(), patternRepo, loyalty)

	userID := uuid.New()
	orderDate := time.Date(2025, time.December, 5, 10, 0, 0, 0, time.UTC)
	pattern, err := svc.RecordPurchase(context.Background(), userID, "ORD-7", []domain.PatternProduct{
		{ProductID: uuid.New(), Quantity: 3, Price: 100, Category: "grocery"},
	}, orderDate)
	if err != nil {
		t.Fatalf("RecordPurchase: %v", err)
	}

	if pattern.OrderValue != 300 {
		t.Errorf("order value = %v, want 300", pattern.OrderValue)
	}
	if pattern.Season != domain.SeasonWinter {
		t.Errorf("season = %v, want winter", pattern.Season)
	}
	if patternRepo.patterns["ORD-7"] == nil {
		t.Error("pattern not persisted")
	}
	if loyalty.earned["ORD-7"] != 30 {
		t.Errorf("loyalty points = %d, want 30", loyalty.earned["ORD-7"])
	}
}

func TestRecordPurchaseDuplicateOrder(t *testing.T) {
	patternRepo := newFakePatternRepo()
	svc := newTestService(&fakeBehaviorRepo{}, newFakeProfileRepo(), patternRepo, &fakeLoyalty{})

	userID := uuid.New()
	products := []domain.PatternProduct{{ProductID: uuid.New(), Quantity: 1, Price: 50, Category: "grocery"}}

	if _, err := svc.RecordPurchase(context.Background(), userID, "ORD-1", products, time.Now()); err != nil {
		t.Fatalf("first RecordPurchase: %v", err)
	}
	if _, err := svc.RecordPurchase(context.Background(), userID, "ORD-1", products, time.Now()); err == nil {
		t.Error("expected error on duplicate order ID")
	}
}

// =============================================================================
// Similar users
// =============================================================================

func TestSimilarityScore(t *testing.T) {
	now := time.Now()
	base := &domain.UserProfile{
		Preferences: domain.Preferences{
			Categories: []domain.PreferenceScore{
				{Name: "electronics", Score: 0.8, LastUpdated: now},
				{Name: "grocery", Score: 0.6, LastUpdated: now},
			},
			Brands: []domain.PreferenceScore{{Name: "Sony", Score: 0.7, LastUpdated: now}},
		},
		PriceRange: domain.PriceRange{Preferred: 5000},
	}

	tests := []struct {
		name  string
		other *domain.UserProfile
		want  float64
	}{
		{
			name: "one category overlap, same price",
			other: &domain.UserProfile{
				Preferences: domain.Preferences{
					Categories: []domain.PreferenceScore{{Name: "electronics", Score: 0.5}},
				},
				PriceRange: domain.PriceRange{Preferred: 5000},
			},
			// 0.4*1 + 0.3*0 + 0.3*1 = 0.7
			want: 0.7,
		},
		{
			name: "full overlap clamps to 1",
			other: &domain.UserProfile{
				Preferences: domain.Preferences{
					Categories: []domain.PreferenceScore{
						{Name: "electronics", Score: 0.9},
						{Name: "grocery", Score: 0.9},
					},
					Brands: []domain.PreferenceScore{{Name: "Sony", Score: 0.9}},
				},
				PriceRange: domain.PriceRange{Preferred: 5000},
			},
			// 0.4*2 + 0.3*1 + 0.3*1 = 1.4 -> clamped
			want: 1.0,
		},
		{
			name: "distant price drags the score negative, floored at 0",
			other: &domain.UserProfile{
				PriceRange: domain.PriceRange{Preferred: 100000},
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := similarityScore(base, tt.other)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("similarityScore = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRefreshSimilarUsers(t *testing.T) {
	profileRepo := newFakeProfileRepo()
	svc := newTestService(&fakeBehaviorRepo{}, profileRepo, newFakePatternRepo(), &fakeLoyalty{})

	userID := uuid.New()
	twin := uuid.New()
	stranger := uuid.New()

	profileRepo.profiles[userID] = &domain.UserProfile{
		UserID: userID,
		Preferences: domain.Preferences{
			Categories: []domain.PreferenceScore{{Name: "electronics", Score: 0.8}},
		},
		PriceRange: domain.PriceRange{Preferred: 5000},
	}
	profileRepo.profiles[twin] = &domain.UserProfile{
		UserID: twin,
		Preferences: domain.Preferences{
			Categories: []domain.PreferenceScore{{Name: "electronics", Score: 0.7}},
		},
		PriceRange: domain.PriceRange{Preferred: 5200},
	}
	profileRepo.profiles[stranger] = &domain.UserProfile{
		UserID:     stranger,
		PriceRange: domain.PriceRange{Preferred: 90000},
	}

	similar, err := svc.RefreshSimilarUsers(context.Background(), userID)
	if err != nil {
		t.Fatalf("RefreshSimilarUsers: %v", err)
	}
	if len(similar) != 1 {
		t.Fatalf("expected 1 similar user, got %d", len(similar))
	}
	if similar[0].UserID != twin {
		t.Errorf("similar user = %s, want twin", similar[0].UserID)
	}
	if len(profileRepo.similar[userID]) != 1 {
		t.Error("similar users not cached on profile")
	}
}

func TestRefreshSimilarUsersNoProfile(t *testing.T) {
	svc := newTestService(&fakeBehaviorRepo{}, newFakeProfileRepo(), newFakePatternRepo(), &fakeLoyalty{})

	similar, err := svc.RefreshSimilarUsers(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("RefreshSimilarUsers: %v", err)
	}
	if similar != nil {
		t.Errorf("expected nil for absent profile, got %+v", similar)
	}
}
