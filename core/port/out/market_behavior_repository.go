package out

import (
	"context"
	"time"

	"market_server/core/domain"

	"github.com/google/uuid"
)

// BehaviorRepository is the outbound port for the append-only behavior log.
type BehaviorRepository interface {
	// Append writes one behavior event. Events are immutable once written.
	Append(ctx context.Context, event *domain.BehaviorEvent) error

	// CoPurchaseStats aggregates purchase events of the given users grouped
	// by product, with purchase counts and average reported rating.
	CoPurchaseStats(ctx context.Context, userIDs []uuid.UUID, limit int) ([]CoPurchaseStat, error)

	// TrendingStats aggregates view_product events since the given time,
	// grouped by product with total and unique viewer counts.
	TrendingStats(ctx context.Context, since time.Time, limit int) ([]ProductViewStat, error)

	// CountByUser returns the number of events logged for a user.
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

// CoPurchaseStat is one row of the co-purchase aggregation.
type CoPurchaseStat struct {
	ProductID     uuid.UUID
	PurchaseCount int
	AvgRating     float64
}

// ProductViewStat is one row of the trending aggregation.
type ProductViewStat struct {
	ProductID     uuid.UUID
	ViewCount     int
	UniqueViewers int
}
