package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/worksphere/admin-auth/internal/api/dto"
	"github.com/worksphere/admin-auth/internal/service"
)

// AuditHandler exposes the admin authentication audit trail.
type AuditHandler struct {
	audit *service.AuditService
}

// NewAuditHandler constructs handler.
func NewAuditHandler(audit *service.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// List handles GET /api/v1/admin/auth/audit.
func (h *AuditHandler) List(c *fiber.Ctx) error {
	limit := parseIntQuery(c, "limit", 50)
	entries, err := h.audit.Recent(c.UserContext(), limit)
	if err != nil {
		return err
	}

	resp := make([]dto.AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, dto.AuditEntryResponse{
			ID:         e.ID,
			EventType:  e.EventType,
			Email:      e.Identity,
			TokenID:    e.TokenID,
			Reason:     e.Reason,
			RemoteIP:   e.RemoteIP,
			OccurredAt: e.OccurredAt,
		})
	}
	return c.JSON(fiber.Map{
		"data": resp,
		"meta": fiber.Map{"persistent": h.audit.Persistent()},
	})
}

func parseIntQuery(c *fiber.Ctx, key string, defaultVal int) int {
	if val := c.Query(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultVal
}
