// Package loyalty implements the points ledger: earn on recorded purchases,
// redeem against the current balance.
package loyalty

import (
	"context"
	"time"

	"market_server/core/domain"
	"market_server/core/port/in"
	"market_server/core/port/out"
	"market_server/pkg/apperr"

	"github.com/google/uuid"
)

const defaultHistoryLimit = 50

// Service implements in.LoyaltyService.
type Service struct {
	loyaltyRepo out.LoyaltyRepository
}

func NewService(loyaltyRepo out.LoyaltyRepository) *Service {
	return &Service{loyaltyRepo: loyaltyRepo}
}

// EarnPoints credits points for an order. Orders too small to earn a point
// produce no ledger entry and return nil.
func (s *Service) EarnPoints(ctx context.Context, userID uuid.UUID, orderID string, orderValue float64) (*domain.LoyaltyTransaction, error) {
	if userID == uuid.Nil {
		return nil, apperr.MissingField("user_id")
	}
	points := domain.PointsForOrder(orderValue)
	if points == 0 {
		return nil, nil
	}

	tx := &domain.LoyaltyTransaction{
		UserID:    userID,
		Type:      domain.LoyaltyEarn,
		Points:    points,
		OrderID:   orderID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.loyaltyRepo.Insert(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// RedeemPoints writes a negative ledger entry after checking the balance.
// The check and the insert are not atomic; a concurrent redeem can briefly
// overdraw, which the ledger tolerates.
func (s *Service) RedeemPoints(ctx context.Context, userID uuid.UUID, points int, note string) (*domain.LoyaltyTransaction, error) {
	if userID == uuid.Nil {
		return nil, apperr.MissingField("user_id")
	}
	if points <= 0 {
		return nil, apperr.InvalidInput("points", "must be positive")
	}

	balance, err := s.loyaltyRepo.Balance(ctx, userID)
	if err != nil {
		return nil, err
	}
	if balance < points {
		return nil, apperr.InsufficientPoints(balance, points)
	}

	tx := &domain.LoyaltyTransaction{
		UserID:    userID,
		Type:      domain.LoyaltyRedeem,
		Points:    -points,
		Note:      note,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.loyaltyRepo.Insert(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

func (s *Service) GetBalance(ctx context.Context, userID uuid.UUID) (int, error) {
	if userID == uuid.Nil {
		return 0, apperr.MissingField("user_id")
	}
	return s.loyaltyRepo.Balance(ctx, userID)
}

func (s *Service) GetHistory(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.LoyaltyTransaction, error) {
	if userID == uuid.Nil {
		return nil, apperr.MissingField("user_id")
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return s.loyaltyRepo.History(ctx, userID, limit)
}

var _ in.LoyaltyService = (*Service)(nil)
