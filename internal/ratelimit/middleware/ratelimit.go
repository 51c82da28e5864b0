// Package middleware applies rate limits to directory write endpoints.
package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/TiberiusB/Nondominium/internal/ratelimit/models"
	"github.com/TiberiusB/Nondominium/internal/ratelimit/store/bucket"
	"github.com/TiberiusB/Nondominium/pkg/platform/httputil"
	"github.com/TiberiusB/Nondominium/pkg/platform/sentinel"
	"github.com/TiberiusB/Nondominium/pkg/requestcontext"
)

// Middleware checks write requests against per-agent limits. Record
// writes replicate to every peer, so the write path is the one worth
// guarding; reads stay unlimited.
type Middleware struct {
	store    bucket.BucketStore
	logger   *slog.Logger
	limit    int
	window   time.Duration
	disabled bool
}

// Option configures the middleware.
type Option func(*Middleware)

// WithLimit overrides the default requests-per-window budget.
func WithLimit(limit int, window time.Duration) Option {
	return func(m *Middleware) {
		m.limit = limit
		m.window = window
	}
}

// WithDisabled turns rate limiting off (testing and demo setups).
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

// New creates the middleware with a 60 writes/minute default budget.
func New(store bucket.BucketStore, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		store:  store,
		logger: logger,
		limit:  60,
		window: time.Minute,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

// LimitWrites wraps a handler with the per-agent write limit. Requests
// without an authenticated agent fall back to a per-IP bucket. A store
// failure fails open: replication tolerates the extra writes, an outage
// page does not.
func (m *Middleware) LimitWrites(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.disabled {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		key := models.IPKey(requestcontext.ClientIP(ctx))
		if agentID := requestcontext.AgentID(ctx); !agentID.IsZero() {
			key = models.AgentKey(agentID.String())
		}

		result, err := m.store.Allow(ctx, key, m.limit, m.window)
		if err != nil {
			if errors.Is(err, sentinel.ErrUnavailable) {
				m.logger.Warn("rate limit store unavailable, failing open", "key", key, "error", err)
			} else {
				m.logger.Error("rate limit check failed", "key", key, "error", err)
			}
			next.ServeHTTP(w, r)
			return
		}

		addRateLimitHeaders(w, result)
		if !result.Allowed {
			retryAfter := int(time.Until(result.ResetAt).Seconds()) + 1
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			httputil.WriteJSON(w, http.StatusTooManyRequests, &models.ExceededResponse{
				Error:       "rate_limited",
				Description: "write budget exhausted, retry later",
				RetryAfter:  retryAfter,
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}
