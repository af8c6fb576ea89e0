package domain

import (
	"time"

	"github.com/google/uuid"
)

// History caps. Both arrays behave as ring buffers: the oldest entry is
// dropped once the cap is reached.
const (
	MaxSearchHistory   = 100
	MaxPurchaseHistory = 50
)

// UserProfile is the per-user personalization aggregate. One document per
// user, created on first tracked behavior (upsert-on-first-write).
type UserProfile struct {
	UserID uuid.UUID `json:"user_id"`

	Preferences Preferences `json:"preferences"`
	PriceRange  PriceRange  `json:"price_range"`

	SearchHistory   []SearchEntry   `json:"search_history,omitempty"`
	PurchaseHistory []PurchaseEntry `json:"purchase_history,omitempty"`

	// Cached candidate lists keyed by recommendation kind.
	Recommendations CachedRecommendations `json:"recommendations"`

	// Cached similar users, refreshed by the periodic profile-refresh job.
	SimilarUsers          []SimilarUser `json:"similar_users,omitempty"`
	SimilarUsersUpdatedAt *time.Time    `json:"similar_users_updated_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Preferences struct {
	Categories []PreferenceScore `json:"categories,omitempty"`
	Brands     []PreferenceScore `json:"brands,omitempty"`
}

// PreferenceScore holds one learned affinity. Score stays in [0,1].
type PreferenceScore struct {
	Name        string    `json:"name"`
	Score       float64   `json:"score"`
	LastUpdated time.Time `json:"last_updated"`
}

type PriceRange struct {
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Preferred float64 `json:"preferred"`
}

type SearchEntry struct {
	Query     string            `json:"query"`
	Filters   map[string]string `json:"filters,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

type PurchaseEntry struct {
	ProductID uuid.UUID `json:"product_id"`
	Category  string    `json:"category,omitempty"`
	Brand     string    `json:"brand,omitempty"`
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

type SimilarUser struct {
	UserID uuid.UUID `json:"user_id"`
	Score  float64   `json:"score"`
}

type CachedRecommendations struct {
	Collaborative []Candidate `json:"collaborative,omitempty"`
	ContentBased  []Candidate `json:"content_based,omitempty"`
	Seasonal      []Candidate `json:"seasonal,omitempty"`
	Bundles       []Candidate `json:"bundles,omitempty"`
	Hybrid        []Candidate `json:"hybrid,omitempty"`
	UpdatedAt     *time.Time  `json:"updated_at,omitempty"`
}

// CategoriesAbove returns category names whose preference score exceeds min.
func (p *Preferences) CategoriesAbove(min float64) []string {
	return namesAbove(p.Categories, min)
}

// BrandsAbove returns brand names whose preference score exceeds min.
func (p *Preferences) BrandsAbove(min float64) []string {
	return namesAbove(p.Brands, min)
}

func namesAbove(scores []PreferenceScore, min float64) []string {
	var names []string
	for _, s := range scores {
		if s.Score > min {
			names = append(names, s.Name)
		}
	}
	return names
}

// Bump raises (or creates) the named preference by delta, clamped to [0,1].
func Bump(scores []PreferenceScore, name string, delta float64, now time.Time) []PreferenceScore {
	for i := range scores {
		if scores[i].Name == name {
			scores[i].Score = ClampScore(scores[i].Score + delta)
			scores[i].LastUpdated = now
			return scores
		}
	}
	return append(scores, PreferenceScore{
		Name:        name,
		Score:       ClampScore(delta),
		LastUpdated: now,
	})
}

// AppendSearch appends an entry, dropping the oldest past MaxSearchHistory.
func (p *UserProfile) AppendSearch(entry SearchEntry) {
	p.SearchHistory = append(p.SearchHistory, entry)
	if n := len(p.SearchHistory); n > MaxSearchHistory {
		p.SearchHistory = p.SearchHistory[n-MaxSearchHistory:]
	}
}

// AppendPurchase appends an entry, dropping the oldest past MaxPurchaseHistory.
func (p *UserProfile) AppendPurchase(entry PurchaseEntry) {
	p.PurchaseHistory = append(p.PurchaseHistory, entry)
	if n := len(p.PurchaseHistory); n > MaxPurchaseHistory {
		p.PurchaseHistory = p.PurchaseHistory[n-MaxPurchaseHistory:]
	}
}
