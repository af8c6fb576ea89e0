package out

import (
	"context"

	"market_server/core/domain"

	"github.com/google/uuid"
)

// ProfileRepository is the outbound port for user personalization profiles.
type ProfileRepository interface {
	// GetByUserID retrieves a profile, or nil when none exists yet.
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.UserProfile, error)

	// Upsert creates or replaces a profile (upsert-on-first-write).
	// Last writer wins; profile updates carry no optimistic locking.
	Upsert(ctx context.Context, profile *domain.UserProfile) error

	// SetSimilarUsers replaces the cached similar-user list.
	SetSimilarUsers(ctx context.Context, userID uuid.UUID, similar []domain.SimilarUser) error

	// CacheRecommendations stores a candidate list under the given kind.
	CacheRecommendations(ctx context.Context, userID uuid.UUID, kind domain.CandidateSource, candidates []domain.Candidate) error

	// ListOthers returns up to limit profiles excluding the given user,
	// for similar-user mining.
	ListOthers(ctx context.Context, excludeUserID uuid.UUID, limit int) ([]*domain.UserProfile, error)

	// StaleSimilarUserIDs returns user IDs whose similar-user cache is older
	// than the cutoff (or missing), for the periodic refresh job.
	StaleSimilarUserIDs(ctx context.Context, olderThanSec int64, limit int) ([]uuid.UUID, error)
}
