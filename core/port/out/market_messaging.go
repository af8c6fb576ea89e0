package out

import (
	"context"

	"market_server/core/domain"

	"github.com/google/uuid"
)

// EventPublisher is the outbound port for async job publication.
type EventPublisher interface {
	// PublishBehavior enqueues a behavior event for async ingestion.
	PublishBehavior(ctx context.Context, input *domain.TrackBehaviorInput) error

	// PublishRefresh enqueues a similar-user refresh for the given user.
	PublishRefresh(ctx context.Context, userID uuid.UUID) error
}
