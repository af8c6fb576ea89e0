package domain

import (
	"time"

	"github.com/google/uuid"
)

// LoyaltyTxType enumerates ledger entry kinds.
type LoyaltyTxType string

const (
	LoyaltyEarn   LoyaltyTxType = "earn"
	LoyaltyRedeem LoyaltyTxType = "redeem"
	LoyaltyAdjust LoyaltyTxType = "adjust"
)

// PointsPerCurrencyUnit: one point per 10 currency units of order value.
const PointsPerCurrencyUnit = 10.0

// LoyaltyTransaction is one immutable ledger entry. Balance is the sum of
// Points over a user's ledger (redeem entries carry negative Points).
type LoyaltyTransaction struct {
	ID      int64         `json:"id"`
	UserID  uuid.UUID     `json:"user_id"`
	Type    LoyaltyTxType `json:"type"`
	Points  int           `json:"points"`
	OrderID string        `json:"order_id,omitempty"`
	Note    string        `json:"note,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// PointsForOrder converts order value to earned points, floored.
func PointsForOrder(orderValue float64) int {
	if orderValue <= 0 {
		return 0
	}
	return int(orderValue / PointsPerCurrencyUnit)
}
