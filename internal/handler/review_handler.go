package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"portfolio-backend/internal/domain"
	"portfolio-backend/internal/middleware"
	"portfolio-backend/internal/service/review"
)

type ReviewHandler struct {
	reviewService review.Service
}

func NewReviewHandler(reviewService review.Service) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// GetTree returns the paginated review tree. rating and package are
// repeatable query parameters; malformed rating values are dropped, matching
// the URL codec.
func (h *ReviewHandler) GetTree(c *fiber.Ctx) error {
	filter := domain.CommentFilter{
		Sort:     c.Query("sort"),
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("page_size", domain.DefaultReviewPageSize),
	}

	for _, v := range c.Context().QueryArgs().PeekMulti("rating") {
		rating, err := strconv.Atoi(string(v))
		if err != nil {
			continue
		}
		filter.Rating = append(filter.Rating, rating)
	}
	for _, v := range c.Context().QueryArgs().PeekMulti("package") {
		filter.PackageType = append(filter.PackageType, string(v))
	}

	result, err := h.reviewService.GetCommentTree(c.Context(), filter)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *ReviewHandler) GetRating(c *fiber.Ctx) error {
	summary, err := h.reviewService.GetAverageRating(c.Context())
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(summary)
}

func (h *ReviewHandler) Create(c *fiber.Ctx) error {
	userID := middleware.GetCurrentUserID(c)

	var input domain.CreateCommentInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	if err := h.reviewService.Add(c.Context(), userID, input); err != nil {
		return mapReviewError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true})
}

func (h *ReviewHandler) Update(c *fiber.Ctx) error {
	userID := middleware.GetCurrentUserID(c)

	commentID, err := uuid.Parse(c.Params("commentId"))
	if err != nil {
		return middleware.BadRequest("Invalid comment ID")
	}

	var input domain.UpdateCommentInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	if err := h.reviewService.Update(c.Context(), userID, commentID, input); err != nil {
		return mapReviewError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}

func (h *ReviewHandler) Delete(c *fiber.Ctx) error {
	userID := middleware.GetCurrentUserID(c)

	commentID, err := uuid.Parse(c.Params("commentId"))
	if err != nil {
		return middleware.BadRequest("Invalid comment ID")
	}

	if err := h.reviewService.Delete(c.Context(), userID, commentID); err != nil {
		return mapReviewError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}

func mapReviewError(err error) error {
	switch {
	case errors.Is(err, review.ErrNotFound):
		return middleware.NotFound("Comment not found")
	case errors.Is(err, review.ErrForbidden):
		return middleware.Forbidden("You don't have permission to modify this comment")
	case errors.Is(err, review.ErrParentNotFound):
		return middleware.BadRequest("Parent comment not found")
	case errors.Is(err, review.ErrEmptyText),
		errors.Is(err, review.ErrInvalidRating),
		errors.Is(err, review.ErrInvalidWebsiteURL),
		errors.Is(err, review.ErrInvalidPackage):
		return middleware.BadRequest(err.Error())
	default:
		return err
	}
}
