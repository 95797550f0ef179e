package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/worksphere/admin-auth/pkg/util"
)

// RequireSuperAdmin ensures the authenticated principal carries the SUPER_ADMIN role.
func RequireSuperAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.Claims == nil {
			return apperrors.NewUnauthorized("invalid token")
		}
		if !principal.Claims.IsSuperAdmin() {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
