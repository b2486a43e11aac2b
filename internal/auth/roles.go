package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ticketdesk/transcript-ledger/internal/domain"
	apperrors "github.com/ticketdesk/transcript-ledger/pkg/util"
)

// RequireRole ensures the principal holds one of the allowed roles. Admins
// pass every check.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed)+1)
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}
	allowedSet[domain.RoleAdmin] = struct{}{}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if _, exists := allowedSet[principal.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
