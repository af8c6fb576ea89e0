package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestSeasonForMonth(t *testing.T) {
	tests := []struct {
		month time.Month
		want  Season
	}{
		{time.January, SeasonWinter},
		{time.February, SeasonWinter},
		{time.March, SeasonSpring},
		{time.May, SeasonSpring},
		{time.June, SeasonSummer},
		{time.August, SeasonSummer},
		{time.September, SeasonAutumn},
		{time.November, SeasonAutumn},
		{time.December, SeasonWinter},
	}

	for _, tt := range tests {
		if got := SeasonForMonth(tt.month); got != tt.want {
			t.Errorf("SeasonForMonth(%v) = %v, want %v", tt.month, got, tt.want)
		}
	}
}

func TestBumpClampsScore(t *testing.T) {
	now := time.Now()

	var scores []PreferenceScore
	for i := 0; i < 15; i++ {
		scores = Bump(scores, "electronics", 0.1, now)
	}

	if len(scores) != 1 {
		t.Fatalf("expected single preference entry, got %d", len(scores))
	}
	if scores[0].Score > 1.0 {
		t.Errorf("score exceeded 1.0: %v", scores[0].Score)
	}
	if scores[0].Score != 1.0 {
		t.Errorf("expected score clamped to 1.0, got %v", scores[0].Score)
	}
}

func TestBumpCreatesEntry(t *testing.T) {
	now := time.Now()

	scores := Bump(nil, "grocery", 0.1, now)
	if len(scores) != 1 || scores[0].Name != "grocery" {
		t.Fatalf("expected new grocery entry, got %+v", scores)
	}
	if scores[0].Score != 0.1 {
		t.Errorf("expected initial score 0.1, got %v", scores[0].Score)
	}
}

func TestSearchHistoryCap(t *testing.T) {
	profile := &UserProfile{UserID: uuid.New()}

	for i := 0; i < MaxSearchHistory+40; i++ {
		profile.AppendSearch(SearchEntry{
			Query:     fmt.Sprintf("query-%d", i),
			Timestamp: time.Now(),
		})
	}

	if len(profile.SearchHistory) != MaxSearchHistory {
		t.Fatalf("search history length = %d, want %d", len(profile.SearchHistory), MaxSearchHistory)
	}
	// Oldest entries dropped
	if profile.SearchHistory[0].Query != "query-40" {
		t.Errorf("expected oldest surviving entry query-40, got %s", profile.SearchHistory[0].Query)
	}
}

func TestPurchaseHistoryCap(t *testing.T) {
	profile := &UserProfile{UserID: uuid.New()}

	for i := 0; i < MaxPurchaseHistory*3; i++ {
		profile.AppendPurchase(PurchaseEntry{
			ProductID: uuid.New(),
			Price:     float64(i),
			Timestamp: time.Now(),
		})
	}

	if len(profile.PurchaseHistory) != MaxPurchaseHistory {
		t.Fatalf("purchase history length = %d, want %d", len(profile.PurchaseHistory), MaxPurchaseHistory)
	}
}

func TestCategoriesAbove(t *testing.T) {
	prefs := Preferences{
		Categories: []PreferenceScore{
			{Name: "electronics", Score: 0.8},
			{Name: "grocery", Score: 0.5},
			{Name: "apparel", Score: 0.2},
		},
	}

	got := prefs.CategoriesAbove(0.5)
	if len(got) != 1 || got[0] != "electronics" {
		t.Errorf("CategoriesAbove(0.5) = %v, want [electronics]", got)
	}

	got = prefs.CategoriesAbove(0.3)
	if len(got) != 2 {
		t.Errorf("CategoriesAbove(0.3) = %v, want 2 entries", got)
	}
}

func TestNewPurchasePattern(t *testing.T) {
	userID := uuid.New()
	orderDate := time.Date(2025, time.July, 12, 14, 30, 0, 0, time.UTC)

	pattern := NewPurchasePattern(userID, "ORD-1001", []PatternProduct{
		{ProductID: uuid.New(), Quantity: 2, Price: 50, Category: "grocery"},
		{ProductID: uuid.New(), Quantity: 1, Price: 100, Category: "grocery"},
	}, orderDate)

	if pattern.OrderValue != 200 {
		t.Errorf("order value = %v, want 200", pattern.OrderValue)
	}
	if pattern.Season != SeasonSummer {
		t.Errorf("season = %v, want summer", pattern.Season)
	}
	if pattern.Festival != "summer_sale" {
		t.Errorf("festival = %v, want summer_sale", pattern.Festival)
	}
	if pattern.DayOfWeek != "Saturday" {
		t.Errorf("day of week = %v, want Saturday", pattern.DayOfWeek)
	}
	if pattern.TimeOfDay != "afternoon" {
		t.Errorf("time of day = %v, want afternoon", pattern.TimeOfDay)
	}
}

func TestPointsForOrder(t *testing.T) {
	tests := []struct {
		value float64
		want  int
	}{
		{0, 0},
		{-50, 0},
		{9.99, 0},
		{10, 1},
		{105, 10},
		{1000, 100},
	}

	for _, tt := range tests {
		if got := PointsForOrder(tt.value); got != tt.want {
			t.Errorf("PointsForOrder(%v) = %d, want %d", tt.value, got, tt.want)
		}
	}
}
