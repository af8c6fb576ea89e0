package out

import (
	"context"

	"market_server/core/domain"

	"github.com/google/uuid"
)

// PatternRepository is the outbound port for purchase-pattern records.
type PatternRepository interface {
	// Save writes one pattern. OrderID carries a unique index; re-saving the
	// same order is a conflict.
	Save(ctx context.Context, pattern *domain.PurchasePattern) error

	// RecentByUser returns the user's most recent patterns, newest first.
	RecentByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.PurchasePattern, error)
}
