package out

import (
	"context"

	"market_server/core/domain"

	"github.com/google/uuid"
)

// LoyaltyRepository is the outbound port for the loyalty points ledger.
type LoyaltyRepository interface {
	// Insert appends one ledger entry and fills in its ID.
	Insert(ctx context.Context, tx *domain.LoyaltyTransaction) error

	// Balance sums the user's ledger.
	Balance(ctx context.Context, userID uuid.UUID) (int, error)

	// History returns the user's entries, newest first.
	History(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.LoyaltyTransaction, error)
}
