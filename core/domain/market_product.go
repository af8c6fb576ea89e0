package domain

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	ID          uuid.UUID `json:"id"`
	SKU         string    `json:"sku"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`

	// Classification
	Category    string `json:"category"`
	Subcategory string `json:"subcategory,omitempty"`
	Brand       string `json:"brand,omitempty"`

	// Pricing
	Price              float64 `json:"price"`
	DiscountPercentage float64 `json:"discount_percentage"`

	// Inventory
	Stock    int  `json:"stock"`
	IsActive bool `json:"is_active"`

	// Merchandising
	IsFeatured     bool        `json:"is_featured"`
	Rating         Rating      `json:"rating"`
	SeasonalMonths []time.Month `json:"seasonal_months,omitempty"`

	// Embedding vector for semantic search; empty when not yet indexed.
	Embedding []float32 `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Rating struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// InStock reports whether the product can be recommended or sold.
func (p *Product) InStock() bool {
	return p.IsActive && p.Stock > 0
}

// SeasonalFor reports whether the product is flagged seasonal for the month.
func (p *Product) SeasonalFor(month time.Month) bool {
	for _, m := range p.SeasonalMonths {
		if m == month {
			return true
		}
	}
	return false
}

// ProductFilter narrows catalog queries.
type ProductFilter struct {
	Category    string
	Subcategory string
	Brands      []string
	Categories  []string
	MinPrice    *float64
	MaxPrice    *float64
	MinRating   *float64
	Month       *time.Month
	Limit       int
	Offset      int
}
