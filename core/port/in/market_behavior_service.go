package in

import (
	"context"
	"time"

	"market_server/core/domain"

	"github.com/google/uuid"
)

// BehaviorService is the inbound port for behavior tracking and the profile
// aggregates derived from it.
type BehaviorService interface {
	// TrackBehavior logs the event and synchronously updates the user
	// profile. Event persistence is best-effort: log write failures are
	// logged, not surfaced.
	TrackBehavior(ctx context.Context, input *domain.TrackBehaviorInput) (*domain.BehaviorEvent, error)

	// RecordPurchase writes the purchase-pattern record for an order and
	// credits loyalty points.
	RecordPurchase(ctx context.Context, userID uuid.UUID, orderID string, products []domain.PatternProduct, orderDate time.Time) (*domain.PurchasePattern, error)

	// RefreshSimilarUsers recomputes and caches the similar-user list.
	// Invoked by the periodic refresh worker, not the request path.
	RefreshSimilarUsers(ctx context.Context, userID uuid.UUID) ([]domain.SimilarUser, error)

	// GetProfile returns the personalization profile, or nil when the user
	// has no tracked behavior yet.
	GetProfile(ctx context.Context, userID uuid.UUID) (*domain.UserProfile, error)
}
