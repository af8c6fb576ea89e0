package worker

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"market_server/core/domain"
	"market_server/core/port/in"
	"market_server/pkg/logger"

	"github.com/google/uuid"
)

// Handler dispatches dequeued jobs to the behavior service.
type Handler struct {
	behaviorService in.BehaviorService
}

func NewHandler(behaviorService in.BehaviorService) *Handler {
	return &Handler{behaviorService: behaviorService}
}

func (h *Handler) Process(ctx context.Context, msg *Message) error {
	logger.Debug("Processing message: %s", msg.Type)

	switch msg.Type {
	case JobBehaviorTrack:
		return h.processBehaviorTrack(ctx, msg)
	case JobPurchaseRecord:
		return h.processPurchaseRecord(ctx, msg)
	case JobProfileRefresh:
		return h.processProfileRefresh(ctx, msg)
	default:
		logger.Warn("Unknown job type: %s", msg.Type)
		return nil
	}
}

func (h *Handler) processBehaviorTrack(ctx context.Context, msg *Message) error {
	payload, err := ParsePayload[BehaviorTrackPayload](msg)
	if err != nil {
		return err
	}

	userID, err := uuid.Parse(payload.UserID)
	if err != nil {
		return fmt.Errorf("invalid user_id in behavior job: %w", err)
	}

	input := &domain.TrackBehaviorInput{
		UserID:        userID,
		SessionID:     payload.SessionID,
		Type:          domain.BehaviorType(payload.Type),
		Category:      payload.Category,
		Brand:         payload.Brand,
		Price:         payload.Price,
		Rating:        payload.Rating,
		SearchQuery:   payload.SearchQuery,
		SearchFilters: payload.SearchFilters,
	}
	if payload.ProductID != "" {
		productID, err := uuid.Parse(payload.ProductID)
		if err != nil {
			return fmt.Errorf("invalid product_id in behavior job: %w", err)
		}
		input.ProductID = &productID
	}

	_, err = h.behaviorService.TrackBehavior(ctx, input)
	return err
}

func (h *Handler) processPurchaseRecord(ctx context.Context, msg *Message) error {
	payload, err := ParsePayload[PurchaseRecordPayload](msg)
	if err != nil {
		return err
	}

	userID, err := uuid.Parse(payload.UserID)
	if err != nil {
		return fmt.Errorf("invalid user_id in purchase job: %w", err)
	}

	products := make([]domain.PatternProduct, 0, len(payload.Products))
	for _, p := range payload.Products {
		productID, err := uuid.Parse(p.ProductID)
		if err != nil {
			return fmt.Errorf("invalid product_id in purchase job: %w", err)
		}
		products = append(products, domain.PatternProduct{
			ProductID: productID,
			Quantity:  p.Quantity,
			Price:     p.Price,
			Category:  p.Category,
			Brand:     p.Brand,
		})
	}

	_, err = h.behaviorService.RecordPurchase(ctx, userID, payload.OrderID, products, payload.Date)
	return err
}

func (h *Handler) processProfileRefresh(ctx context.Context, msg *Message) error {
	payload, err := ParsePayload[ProfileRefreshPayload](msg)
	if err != nil {
		return err
	}

	userID, err := uuid.Parse(payload.UserID)
	if err != nil {
		return fmt.Errorf("invalid user_id in refresh job: %w", err)
	}

	_, err = h.behaviorService.RefreshSimilarUsers(ctx, userID)
	return err
}

func ParsePayload[T any](msg *Message) (*T, error) {
	var payload T
	data, err := json.Marshal(msg.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse payload: %w", err)
	}
	return &payload, nil
}
