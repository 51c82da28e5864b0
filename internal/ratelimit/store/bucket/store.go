// Package bucket implements sliding window request counting. The
// sliding window avoids the boundary burst a fixed window allows.
package bucket

import (
	"context"
	"time"

	"github.com/TiberiusB/Nondominium/internal/ratelimit/models"
)

// BucketStore counts requests per key over a sliding window.
type BucketStore interface {
	// Allow records one request against the key and reports whether it
	// fits within the limit.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.Result, error)

	// Reset clears the counter for a key.
	Reset(ctx context.Context, key string) error

	// GetCurrentCount returns the live request count for a key.
	GetCurrentCount(ctx context.Context, key string) (int, error)
}
