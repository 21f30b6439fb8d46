package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"moves/middleware"
	"moves/models"
)

type AuthResponse struct {
	Message string              `json:"message"`
	User    models.UserResponse `json:"user"`
	Token   string              `json:"token"`
}

// Register creates an account and returns a session token for it
func (h *Handler) Register(c *fiber.Ctx) error {
	var input models.RegisterInput
	if ok, err := h.bind(c, &input); !ok {
		return err
	}

	user, err := h.svc.Register(c.UserContext(), input)
	if err != nil {
		return respondError(c, err, "Failed to create user")
	}

	token, err := h.generateToken(user)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate token",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(AuthResponse{
		Message: "User registered successfully",
		User:    user.ToResponse(),
		Token:   token,
	})
}

// Login authenticates a user and returns a JWT token
func (h *Handler) Login(c *fiber.Ctx) error {
	var input models.LoginInput
	if ok, err := h.bind(c, &input); !ok {
		return err
	}

	user, err := h.svc.Authenticate(c.UserContext(), input.Username, input.Password)
	if err != nil {
		return respondError(c, err, "Failed to log in")
	}

	token, err := h.generateToken(user)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate token",
		})
	}

	return c.JSON(AuthResponse{
		Message: "Login successful",
		User:    user.ToResponse(),
		Token:   token,
	})
}

// GetCurrentUser returns the currently authenticated user
func (h *Handler) GetCurrentUser(c *fiber.Ctx) error {
	user, err := h.svc.GetUser(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return respondError(c, err, "Failed to fetch user")
	}
	return c.JSON(user.ToResponse())
}

func (h *Handler) generateToken(user *models.User) (string, error) {
	ttl := time.Duration(h.cfg.SessionDurationHours) * time.Hour
	return middleware.GenerateToken(h.cfg.JWTSecret, user.ID, user.Username, ttl)
}
