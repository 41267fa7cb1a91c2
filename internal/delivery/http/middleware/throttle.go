package middleware

import (
	"context"
	"math"
	"strconv"

	"account-service/internal/infrastructure/ratelimit"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

// Limiter is the throttle decision point. Implemented by
// ratelimit.FixedWindowLimiter.
type Limiter interface {
	Allow(ctx context.Context, scope, subject string) ratelimit.Decision
}

type ThrottleMiddleware struct {
	limiter Limiter
	scope   string
}

func NewThrottleMiddleware(limiter Limiter, scope string) *ThrottleMiddleware {
	return &ThrottleMiddleware{limiter: limiter, scope: scope}
}

// Middleware charges the authenticated user one request against the scope's
// budget. It must sit behind the auth middleware: the subject is the resolved
// user id, never anything taken from the request itself.
func (m *ThrottleMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		userID, ok := c.Locals(CtxUserIDKey).(uuid.UUID)
		if !ok {
			return NewAppError(fiber.StatusUnauthorized, "Authentication credentials were not provided", nil, nil)
		}

		d := m.limiter.Allow(c.Context(), m.scope, userID.String())
		if !d.Allowed {
			if d.RetryAfter > 0 {
				c.Set("Retry-After", strconv.Itoa(int(math.Ceil(d.RetryAfter.Seconds()))))
			}
			return NewAppError(fiber.StatusTooManyRequests, "Request was throttled", nil, nil)
		}

		return c.Next()
	}
}
