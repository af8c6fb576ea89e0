package worker

import (
	"time"

	"github.com/google/uuid"
)

// JobType represents the type of a job.
type JobType = string

const (
	// Behavior jobs
	JobBehaviorTrack  JobType = "behavior.track"
	JobPurchaseRecord         = "behavior.purchase"

	// Profile jobs
	JobProfileRefresh = "profile.refresh"
)

type Message struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload"`
	CreatedAt time.Time      `json:"created_at"`
	Retries   int            `json:"retries"`
}

func NewMessage(jobType string, payload map[string]any) *Message {
	return &Message{
		ID:        uuid.New().String(),
		Type:      jobType,
		Payload:   payload,
		CreatedAt: time.Now(),
		Retries:   0,
	}
}

// Behavior payloads
type BehaviorTrackPayload struct {
	UserID        string            `json:"user_id"`
	SessionID     string            `json:"session_id,omitempty"`
	Type          string            `json:"type"`
	ProductID     string            `json:"product_id,omitempty"`
	Category      string            `json:"category,omitempty"`
	Brand         string            `json:"brand,omitempty"`
	Price         float64           `json:"price,omitempty"`
	Rating        float64           `json:"rating,omitempty"`
	SearchQuery   string            `json:"search_query,omitempty"`
	SearchFilters map[string]string `json:"search_filters,omitempty"`
}

type PurchaseRecordPayload struct {
	UserID   string                 `json:"user_id"`
	OrderID  string                 `json:"order_id"`
	Products []PurchaseProductEntry `json:"products"`
	Date     time.Time              `json:"date"`
}

type PurchaseProductEntry struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Category  string  `json:"category"`
	Brand     string  `json:"brand,omitempty"`
}

// Profile payloads
type ProfileRefreshPayload struct {
	UserID string `json:"user_id"`
}
