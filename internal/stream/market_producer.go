package stream

import (
	"context"
	"time"

	"market_server/adapter/in/worker"
	"market_server/core/domain"
	"market_server/core/port/out"

	"github.com/google/uuid"
)

// Producer implements out.EventPublisher on top of Redis Streams.
type Producer struct {
	stream *RedisStream
}

func NewProducer(stream *RedisStream) *Producer {
	return &Producer{stream: stream}
}

type Job struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload"`
	CreatedAt time.Time      `json:"created_at"`
}

// PublishBehavior enqueues a behavior event for async ingestion.
func (p *Producer) PublishBehavior(ctx context.Context, input *domain.TrackBehaviorInput) error {
	payload := map[string]any{
		"user_id":    input.UserID.String(),
		"session_id": input.SessionID,
		"type":       string(input.Type),
		"category":   input.Category,
		"brand":      input.Brand,
		"price":      input.Price,
		"rating":     input.Rating,
	}
	if input.ProductID != nil {
		payload["product_id"] = input.ProductID.String()
	}
	if input.SearchQuery != "" {
		payload["search_query"] = input.SearchQuery
	}
	if len(input.SearchFilters) > 0 {
		payload["search_filters"] = input.SearchFilters
	}

	job := &Job{
		ID:        uuid.New().String(),
		Type:      worker.JobBehaviorTrack,
		Payload:   payload,
		CreatedAt: time.Now(),
	}
	_, err := p.stream.Publish(ctx, StreamBehavior, job)
	return err
}

// PublishRefresh enqueues a similar-user refresh for the given user.
func (p *Producer) PublishRefresh(ctx context.Context, userID uuid.UUID) error {
	job := &Job{
		ID:   uuid.New().String(),
		Type: worker.JobProfileRefresh,
		Payload: map[string]any{
			"user_id": userID.String(),
		},
		CreatedAt: time.Now(),
	}
	_, err := p.stream.Publish(ctx, StreamProfile, job)
	return err
}

var _ out.EventPublisher = (*Producer)(nil)
