package domain

import (
	"time"

	"github.com/google/uuid"
)

// BehaviorType enumerates tracked user interactions.
type BehaviorType string

const (
	BehaviorSearch         BehaviorType = "search"
	BehaviorViewProduct    BehaviorType = "view_product"
	BehaviorAddToCart      BehaviorType = "add_to_cart"
	BehaviorRemoveFromCart BehaviorType = "remove_from_cart"
	BehaviorPurchase       BehaviorType = "purchase"
	BehaviorClick          BehaviorType = "click"
	BehaviorWishlist       BehaviorType = "wishlist"
)

// Valid reports whether t is a known behavior type.
func (t BehaviorType) Valid() bool {
	switch t {
	case BehaviorSearch, BehaviorViewProduct, BehaviorAddToCart,
		BehaviorRemoveFromCart, BehaviorPurchase, BehaviorClick, BehaviorWishlist:
		return true
	}
	return false
}

// BehaviorEvent is one tracked interaction. Events are append-only and never
// updated after the initial write.
type BehaviorEvent struct {
	ID        uuid.UUID    `json:"id"`
	UserID    uuid.UUID    `json:"user_id"`
	SessionID string       `json:"session_id"`
	Type      BehaviorType `json:"type"`

	// Optional payload, depending on Type
	ProductID     *uuid.UUID        `json:"product_id,omitempty"`
	Category      string            `json:"category,omitempty"`
	Brand         string            `json:"brand,omitempty"`
	Price         float64           `json:"price,omitempty"`
	Rating        float64           `json:"rating,omitempty"`
	SearchQuery   string            `json:"search_query,omitempty"`
	SearchFilters map[string]string `json:"search_filters,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

// TrackBehaviorInput is the inbound payload for behavior tracking.
type TrackBehaviorInput struct {
	UserID        uuid.UUID         `json:"user_id"`
	SessionID     string            `json:"session_id"`
	Type          BehaviorType      `json:"type"`
	ProductID     *uuid.UUID        `json:"product_id,omitempty"`
	Category      string            `json:"category,omitempty"`
	Brand         string            `json:"brand,omitempty"`
	Price         float64           `json:"price,omitempty"`
	Rating        float64           `json:"rating,omitempty"`
	SearchQuery   string            `json:"search_query,omitempty"`
	SearchFilters map[string]string `json:"search_filters,omitempty"`
}
