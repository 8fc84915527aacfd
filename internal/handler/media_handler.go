package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"portfolio-backend/internal/middleware"
	"portfolio-backend/internal/service/media"
)

type MediaHandler struct {
	mediaService media.Service
}

func NewMediaHandler(mediaService media.Service) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

func (h *MediaHandler) Upload(c *fiber.Ctx) error {
	userID := middleware.GetCurrentUserID(c)

	commentID, err := uuid.Parse(c.Params("commentId"))
	if err != nil {
		return middleware.BadRequest("Invalid comment ID")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return middleware.BadRequest("File is required")
	}

	if file.Size > 10*1024*1024 {
		return middleware.BadRequest("File size must be less than 10MB")
	}

	mimeType := file.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	fileReader, err := file.Open()
	if err != nil {
		return middleware.BadRequest("Failed to read file")
	}
	defer fileReader.Close()

	uploaded, err := h.mediaService.Upload(c.Context(), userID, commentID, file.Filename, file.Size, mimeType, fileReader)
	if err != nil {
		return mapMediaError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(uploaded)
}

func (h *MediaHandler) Delete(c *fiber.Ctx) error {
	userID := middleware.GetCurrentUserID(c)

	mediaID, err := uuid.Parse(c.Params("mediaId"))
	if err != nil {
		return middleware.BadRequest("Invalid media ID")
	}

	if err := h.mediaService.Delete(c.Context(), userID, mediaID); err != nil {
		return mapMediaError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}

func mapMediaError(err error) error {
	switch {
	case errors.Is(err, media.ErrNotFound):
		return middleware.NotFound("Media not found")
	case errors.Is(err, media.ErrCommentNotFound):
		return middleware.NotFound("Comment not found")
	case errors.Is(err, media.ErrForbidden):
		return middleware.Forbidden("You don't have permission to modify this media")
	default:
		return err
	}
}
