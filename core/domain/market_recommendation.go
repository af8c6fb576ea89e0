package domain

import "github.com/google/uuid"

// CandidateSource tags where a recommendation candidate came from.
type CandidateSource string

const (
	SourceCollaborative CandidateSource = "collaborative"
	SourceContentBased  CandidateSource = "content_based"
	SourceSeasonal      CandidateSource = "seasonal"
	SourceBundle        CandidateSource = "bundle"
	SourceTrending      CandidateSource = "trending"
	SourceFallback      CandidateSource = "fallback"

	// KindHybrid keys the cached hybrid list on the profile document. It is
	// a cache slot, not a per-candidate source tag.
	KindHybrid CandidateSource = "hybrid"
)

// Candidate is one scored recommendation. Product candidates carry ProductID
// and Product; bundle candidates carry BundleID and Products instead.
type Candidate struct {
	ProductID uuid.UUID `json:"product_id,omitempty"`
	Product   *Product  `json:"product,omitempty"`

	// Bundle candidates only
	BundleID string     `json:"bundle_id,omitempty"`
	Products []*Product `json:"products,omitempty"`

	Score  float64         `json:"score"`
	Reason string          `json:"reason"`
	Source CandidateSource `json:"source"`
}

// Key identifies a candidate across scorers for hybrid merging.
func (c *Candidate) Key() string {
	if c.BundleID != "" {
		return "bundle:" + c.BundleID
	}
	return c.ProductID.String()
}

// SearchFilters narrows semantic search.
type SearchFilters struct {
	Category    string   `json:"category,omitempty"`
	Subcategory string   `json:"subcategory,omitempty"`
	Brands      []string `json:"brands,omitempty"`
	MinPrice    *float64 `json:"min_price,omitempty"`
	MaxPrice    *float64 `json:"max_price,omitempty"`
	MinRating   *float64 `json:"min_rating,omitempty"`
}
