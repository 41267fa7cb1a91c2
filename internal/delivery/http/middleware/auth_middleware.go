package middleware

import (
	"errors"
	"strings"

	"account-service/internal/usecase/auth"

	"github.com/gofiber/fiber/v3"
)

const (
	CtxUserIDKey   = "user_id"
	CtxUsernameKey = "username"
	CtxUserKey     = "user"
)

type AuthMiddleware struct {
	auth auth.Usecase
}

func NewAuthMiddleware(authUC auth.Usecase) *AuthMiddleware {
	return &AuthMiddleware{auth: authUC}
}

// Middleware resolves the bearer token to its owning user and stashes the
// identity in request locals. It runs before the throttle middleware, so
// unauthenticated requests are rejected without touching the rate budget.
func (m *AuthMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		key, ok := tokenFromHeader(c.Get("Authorization"))
		if !ok {
			return NewAppError(fiber.StatusUnauthorized, "Authentication credentials were not provided", nil, nil)
		}

		usr, err := m.auth.Authenticate(c.Context(), key)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				return NewAppError(fiber.StatusUnauthorized, "Invalid token", nil, err)
			}
			return NewAppError(fiber.StatusInternalServerError, "Internal server error", nil, err)
		}

		c.Locals(CtxUserKey, usr)
		c.Locals(CtxUserIDKey, usr.ID)
		c.Locals(CtxUsernameKey, usr.Username)

		return c.Next()
	}
}

// tokenFromHeader accepts both "Bearer <key>" and the legacy "Token <key>"
// scheme clients of the old API still send.
func tokenFromHeader(authHeader string) (string, bool) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") && !strings.EqualFold(parts[0], "Token") {
		return "", false
	}

	key := strings.TrimSpace(parts[1])
	if key == "" {
		return "", false
	}

	return key, true
}
