package handler

import (
	"github.com/gofiber/fiber/v2"

	"portfolio-backend/internal/service/audit"
)

type AuditHandler struct {
	auditService audit.Service
}

func NewAuditHandler(auditService audit.Service) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) GetRecentActivities(c *fiber.Ctx) error {
	params := getPaginationParams(c)

	logs, err := h.auditService.GetRecentActivities(c.Context(), params)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(logs)
}
