package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ticketdesk/transcript-ledger/internal/api/dto"
	"github.com/ticketdesk/transcript-ledger/internal/service"
	apperrors "github.com/ticketdesk/transcript-ledger/pkg/util"
)

// AuthHandler exchanges the reporter key for API tokens.
type AuthHandler struct {
	access *service.AccessService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(access *service.AccessService) *AuthHandler {
	return &AuthHandler{access: access}
}

// Token handles POST /auth/token.
func (h *AuthHandler) Token(c *fiber.Ctx) error {
	var req dto.TokenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Subject == "" || req.Key == "" {
		return apperrors.NewValidationError("subject and key required", nil)
	}

	meta, token, err := h.access.Exchange(req.Subject, req.Key)
	switch {
	case errors.Is(err, service.ErrKeyExchangeDisabled):
		return apperrors.NewForbidden("key exchange disabled")
	case errors.Is(err, service.ErrInvalidKey):
		return apperrors.NewUnauthorized("invalid credentials")
	case err != nil:
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.AuthResponse{Token: token, ExpiresAt: meta.ExpiresAt}})
}
