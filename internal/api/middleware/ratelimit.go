package middleware

import (
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sunflower/sunflower-api/internal/core/domain"
	"github.com/sunflower/sunflower-api/internal/core/ports"
	"github.com/sunflower/sunflower-api/internal/pkg/metrics"
)

// RateLimit allows one request per window for each caller of the route.
// Callers are identified by the authenticated user id when RequireAuth ran
// first, else by client IP. A limiter outage fails the request.
func RateLimit(limiter ports.RateLimiter, prefix string, window time.Duration, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.RealIP()
			if user, ok := UserFrom(c); ok {
				id = user.ID
			}

			decision, err := limiter.Allow(c.Request().Context(), ports.RateLimitKey(prefix, id), window)
			if err != nil {
				metrics.RateLimitDecisionsTotal.WithLabelValues(prefix, "error").Inc()
				return fmt.Errorf("rate limit: %w", err)
			}
			if !decision.Allowed {
				metrics.RateLimitDecisionsTotal.WithLabelValues(prefix, "throttled").Inc()
				log.Debug().Str("prefix", prefix).Dur("retry_after", decision.RetryAfter).Msg("request throttled")
				return &domain.ThrottledError{RetryAfter: decision.RetryAfter}
			}

			metrics.RateLimitDecisionsTotal.WithLabelValues(prefix, "allowed").Inc()
			return next(c)
		}
	}
}
