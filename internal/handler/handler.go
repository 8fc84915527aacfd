package handler

import (
	"github.com/gofiber/fiber/v2"

	"portfolio-backend/internal/domain"
	"portfolio-backend/internal/service"
)

type Handlers struct {
	Auth     *AuthHandler
	Review   *ReviewHandler
	Media    *MediaHandler
	Checkout *CheckoutHandler
	Audit    *AuditHandler
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Auth:     NewAuthHandler(services.Auth),
		Review:   NewReviewHandler(services.Review),
		Media:    NewMediaHandler(services.Media),
		Checkout: NewCheckoutHandler(services.Checkout),
		Audit:    NewAuditHandler(services.Audit),
	}
}

func getPaginationParams(c *fiber.Ctx) domain.PaginationParams {
	params := domain.PaginationParams{
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("page_size", domain.DefaultReviewPageSize),
	}
	params.Validate()
	return params
}
