package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/boardkit/ticket-board/internal/api/dto"
	"github.com/boardkit/ticket-board/internal/auth"
	apperrors "github.com/boardkit/ticket-board/pkg/util"
)

// AuthHandler issues bearer tokens for mutation endpoints.
type AuthHandler struct {
	tokens       *auth.TokenManager
	passwordHash string
}

// NewAuthHandler constructs handler.
func NewAuthHandler(tokens *auth.TokenManager, passwordHash string) *AuthHandler {
	return &AuthHandler{tokens: tokens, passwordHash: passwordHash}
}

// IssueToken POST /auth/token.
func (h *AuthHandler) IssueToken(c *fiber.Ctx) error {
	if h.passwordHash == "" {
		return apperrors.NewValidationError("authentication is not configured", nil)
	}
	var req dto.TokenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := auth.ComparePassword(h.passwordHash, req.Password); err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}
	token, expiresAt, err := h.tokens.GenerateToken()
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(dto.OK(dto.TokenResponse{Token: token, ExpiresAt: expiresAt}))
}
