package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/boardkit/ticket-board/pkg/util"
)

// Middleware validates bearer tokens on mutating routes. When no admin
// password hash is configured the board runs open and the middleware
// passes everything through.
type Middleware struct {
	tokens  *TokenManager
	enabled bool
}

// NewMiddleware constructs middleware.
func NewMiddleware(tokens *TokenManager, enabled bool) *Middleware {
	return &Middleware{tokens: tokens, enabled: enabled}
}

// Handle enforces authentication for protected routes.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	if !m.enabled {
		return c.Next()
	}

	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	if _, err := m.tokens.ParseToken(parts[1]); err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}
	return c.Next()
}
