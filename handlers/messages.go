package handlers

import (
	"github.com/gofiber/fiber/v2"

	"moves/models"
)

// SendMessage stores a direct message and pushes it to the recipient's live connections
func (h *Handler) SendMessage(c *fiber.Ctx) error {
	var input models.MessageInput
	if ok, err := h.bind(c, &input); !ok {
		return err
	}

	msg, err := h.svc.SendMessage(c.UserContext(), input)
	if err != nil {
		return respondError(c, err, "Failed to send message")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Message sent successfully",
		"data":    msg,
	})
}

// GetConversation returns the messages between two users and marks those
// addressed to the first one as read
func (h *Handler) GetConversation(c *fiber.Ctx) error {
	reader, ok := parseID(c, "user1")
	if !ok {
		return badRequest(c, "Invalid user ID")
	}
	other, ok := parseID(c, "user2")
	if !ok {
		return badRequest(c, "Invalid user ID")
	}

	messages, err := h.svc.Conversation(c.UserContext(), reader, other)
	if err != nil {
		return respondError(c, err, "Failed to fetch conversation")
	}
	return c.JSON(messages)
}

func (h *Handler) ListConversations(c *fiber.Ctx) error {
	userID, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid user ID")
	}

	conversations, err := h.svc.Conversations(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err, "Failed to fetch conversations")
	}
	return c.JSON(conversations)
}
