package out

import (
	"context"
	"time"
)

// Cache is the outbound port for short-lived JSON caching.
type Cache interface {
	// GetJSON unmarshals the cached value into dest. Returns false on miss.
	GetJSON(ctx context.Context, key string, dest any) (bool, error)

	// SetJSON marshals and stores the value with a TTL.
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error

	Delete(ctx context.Context, key string) error
}
