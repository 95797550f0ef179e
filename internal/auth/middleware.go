package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/worksphere/admin-auth/internal/domain"
	apperrors "github.com/worksphere/admin-auth/pkg/util"
)

const principalKey = "auth_principal"

// TokenVerifier turns a presented bearer token into a verified claim set.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*domain.ClaimSet, error)
}

// Principal represents the authenticated caller.
type Principal struct {
	Claims *domain.ClaimSet
}

// AuthMiddleware validates bearer tokens and stores the principal on the request.
type AuthMiddleware struct {
	tokens TokenVerifier
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	token, ok := BearerToken(c.Get(fiber.HeaderAuthorization))
	if !ok {
		return apperrors.NewUnauthorized("invalid token")
	}

	claims, err := m.tokens.VerifyToken(c.UserContext(), token)
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	c.Locals(principalKey, &Principal{Claims: claims})
	return c.Next()
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" value.
func BearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
