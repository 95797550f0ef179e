package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/worksphere/admin-auth/internal/api/dto"
	"github.com/worksphere/admin-auth/internal/auth"
	"github.com/worksphere/admin-auth/internal/domain"
	"github.com/worksphere/admin-auth/internal/service"
	apperrors "github.com/worksphere/admin-auth/pkg/util"
)

// AdminAuthenticator is the login side of the admin auth service.
type AdminAuthenticator interface {
	Login(ctx context.Context, identity, secret string) (*service.LoginResult, error)
}

// AdminAuthHandler exposes the admin login endpoints.
type AdminAuthHandler struct {
	auth AdminAuthenticator
}

// NewAdminAuthHandler constructs handler.
func NewAdminAuthHandler(authService AdminAuthenticator) *AdminAuthHandler {
	return &AdminAuthHandler{auth: authService}
}

// Login handles POST /api/v1/admin/auth/login.
func (h *AdminAuthHandler) Login(c *fiber.Ctx) error {
	var req dto.AdminLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password are required", nil)
	}

	result, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrTooManyAttempts):
		return apperrors.NewTooManyRequests("too many failed login attempts, try again later")
	case errors.Is(err, service.ErrInvalidCredentials):
		return apperrors.NewUnauthorized("invalid credentials")
	default:
		return apperrors.NewInternalError(err)
	}

	return c.JSON(fiber.Map{
		"data": dto.AuthResponse{
			Token:     result.Token,
			Role:      string(result.Claims.Role),
			ExpiresAt: result.Claims.ExpiresAt,
		},
	})
}

// Check handles GET /api/v1/admin/auth/check. It runs behind AuthMiddleware.
func (h *AdminAuthHandler) Check(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Claims == nil {
		return apperrors.NewUnauthorized("invalid token")
	}
	return c.JSON(fiber.Map{"data": sessionResponse(principal.Claims)})
}

func sessionResponse(claims *domain.ClaimSet) dto.AdminSessionResponse {
	return dto.AdminSessionResponse{
		Email:     claims.Identity,
		Role:      string(claims.Role),
		TokenID:   claims.ID,
		IssuedAt:  claims.IssuedAt,
		ExpiresAt: claims.ExpiresAt,
	}
}
