// Package behavior implements behavior tracking, the profile aggregates
// derived from it, and similar-user mining.
package behavior

import (
	"context"
	"time"

	"market_server/core/domain"
	"market_server/core/port/in"
	"market_server/core/port/out"
	"market_server/pkg/apperr"
	"market_server/pkg/logger"

	"github.com/google/uuid"
)

// Preference increment applied on each product view.
const viewPreferenceDelta = 0.1

// Service implements in.BehaviorService.
//
// Profile updates are read-modify-write without optimistic locking:
// concurrent tracking calls for the same user can drop one update. That is
// tolerated; personalization data is best-effort.
type Service struct {
	behaviorRepo out.BehaviorRepository
	profileRepo  out.ProfileRepository
	patternRepo  out.PatternRepository
	loyalty      in.LoyaltyService
	log          *logger.Logger
}

// NewService creates the behavior service.
func NewService(
	behaviorRepo out.BehaviorRepository,
	profileRepo out.ProfileRepository,
	patternRepo out.PatternRepository,
	loyalty in.LoyaltyService,
) *Service {
	return &Service{
		behaviorRepo: behaviorRepo,
		profileRepo:  profileRepo,
		patternRepo:  patternRepo,
		loyalty:      loyalty,
		log:          logger.WithField("component", "behavior"),
	}
}

// TrackBehavior appends the event and updates the user profile. The event
// write is best-effort: failures are logged and the profile update still
// runs. The two writes are not atomic.
func (s *Service) TrackBehavior(ctx context.Context, input *domain.TrackBehaviorInput) (*domain.BehaviorEvent, error) {
	if input.UserID == uuid.Nil {
		return nil, apperr.MissingField("user_id")
	}
	if !input.Type.Valid() {
		return nil, apperr.InvalidInput("type", string(input.Type))
	}

	now := time.Now().UTC()
	event := &domain.BehaviorEvent{
		ID:            uuid.New(),
		UserID:        input.UserID,
		SessionID:     input.SessionID,
		Type:          input.Type,
		ProductID:     input.ProductID,
		Category:      input.Category,
		Brand:         input.Brand,
		Price:         input.Price,
		Rating:        input.Rating,
		SearchQuery:   input.SearchQuery,
		SearchFilters: input.SearchFilters,
		Timestamp:     now,
	}

	if err := s.behaviorRepo.Append(ctx, event); err != nil {
		s.log.WithError(err).WithField("user_id", input.UserID.String()).
			Error("behavior event write failed")
	}

	if err := s.updateProfile(ctx, event, now); err != nil {
		return nil, err
	}

	return event, nil
}

func (s *Service) updateProfile(ctx context.Context, event *domain.BehaviorEvent, now time.Time) error {
	profile, err := s.profileRepo.GetByUserID(ctx, event.UserID)
	if err != nil {
		return apperr.QueryFailed("profile lookup", err)
	}
	if profile == nil {
		profile = &domain.UserProfile{
			UserID:    event.UserID,
			CreatedAt: now,
		}
	}

	switch event.Type {
	case domain.BehaviorSearch:
		profile.AppendSearch(domain.SearchEntry{
			Query:     event.SearchQuery,
			Filters:   event.SearchFilters,
			Timestamp: now,
		})

	case domain.BehaviorViewProduct:
		if event.Category != "" {
			profile.Preferences.Categories = domain.Bump(profile.Preferences.Categories, event.Category, viewPreferenceDelta, now)
		}
		if event.Brand != "" {
			profile.Preferences.Brands = domain.Bump(profile.Preferences.Brands, event.Brand, viewPreferenceDelta, now)
		}

	case domain.BehaviorPurchase:
		entry := domain.PurchaseEntry{
			Category:  event.Category,
			Brand:     event.Brand,
			Price:     event.Price,
			Timestamp: now,
		}
		if event.ProductID != nil {
			entry.ProductID = *event.ProductID
		}
		profile.AppendPurchase(entry)
	}

	profile.UpdatedAt = now
	if err := s.profileRepo.Upsert(ctx, profile); err != nil {
		return apperr.QueryFailed("profile upsert", err)
	}
	return nil
}

// RecordPurchase writes the purchase-pattern record for an order and credits
// loyalty points. The loyalty credit is best-effort; a failure leaves the
// pattern recorded and is logged.
func (s *Service) RecordPurchase(ctx context.Context, userID uuid.UUID, orderID string, products []domain.PatternProduct, orderDate time.Time) (*domain.PurchasePattern, error) {
	if userID == uuid.Nil {
		return nil, apperr.MissingField("user_id")
	}
	if orderID == "" {
		return nil, apperr.MissingField("order_id")
	}
	if len(products) == 0 {
		return nil, apperr.MissingField("products")
	}

	pattern := domain.NewPurchasePattern(userID, orderID, products, orderDate)
	if err := s.patternRepo.Save(ctx, pattern); err != nil {
		return nil, err
	}

	if s.loyalty != nil {
		if _, err := s.loyalty.EarnPoints(ctx, userID, orderID, pattern.OrderValue); err != nil {
			s.log.WithError(err).WithField("order_id", orderID).
				Warn("loyalty credit failed for recorded purchase")
		}
	}

	return pattern, nil
}

// GetProfile returns the personalization profile, nil when absent.
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.UserProfile, error) {
	return s.profileRepo.GetByUserID(ctx, userID)
}

var _ in.BehaviorService = (*Service)(nil)
