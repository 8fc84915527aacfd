package handler

import (
	"github.com/gofiber/fiber/v2"

	"portfolio-backend/internal/domain"
	"portfolio-backend/internal/middleware"
	"portfolio-backend/internal/service/auth"
)

type AuthHandler struct {
	authService auth.Service
}

func NewAuthHandler(authService auth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input domain.CreateUserInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	user, tokens, err := h.authService.Register(c.Context(), input)
	if err != nil {
		if err == auth.ErrEmailExists {
			return middleware.Conflict("Email already registered")
		}
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":          user,
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_in":    tokens.ExpiresIn,
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input domain.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	user, tokens, err := h.authService.Login(c.Context(), input)
	if err != nil {
		if err == auth.ErrInvalidCredentials {
			return middleware.Unauthorized("Invalid email or password")
		}
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"user":          user,
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_in":    tokens.ExpiresIn,
	})
}

func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	var input struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	tokens, err := h.authService.RefreshToken(c.Context(), input.RefreshToken)
	if err != nil {
		if err == auth.ErrInvalidToken {
			return middleware.Unauthorized("Invalid refresh token")
		}
		if err == auth.ErrUserNotFound {
			return middleware.Unauthorized("User not found")
		}
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_in":    tokens.ExpiresIn,
	})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return middleware.Unauthorized("User not authenticated")
	}

	return c.Status(fiber.StatusOK).JSON(user)
}
