package handler

import (
	"github.com/gofiber/fiber/v2"

	"portfolio-backend/internal/domain"
	"portfolio-backend/internal/middleware"
	"portfolio-backend/internal/service/checkout"
)

type CheckoutHandler struct {
	checkoutService checkout.Service
}

func NewCheckoutHandler(checkoutService checkout.Service) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

func (h *CheckoutHandler) CreateSession(c *fiber.Ctx) error {
	var input domain.CreateCheckoutInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	if input.Quantity < 1 {
		input.Quantity = 1
	}

	session, err := h.checkoutService.CreateSession(c.Context(), input)
	if err != nil {
		return middleware.BadRequest(err.Error())
	}

	return c.Status(fiber.StatusOK).JSON(session)
}
