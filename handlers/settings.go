package handlers

import (
	"github.com/gofiber/fiber/v2"

	"moves/models"
)

// GetSettings returns the group together with its vote policy
func (h *Handler) GetSettings(c *fiber.Ctx) error {
	groupID, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid group ID")
	}

	group, err := h.svc.GetGroup(c.UserContext(), groupID)
	if err != nil {
		return respondError(c, err, "Failed to fetch group")
	}
	return c.JSON(group)
}

// UpdateSettings changes the vote policy (owner only)
func (h *Handler) UpdateSettings(c *fiber.Ctx) error {
	groupID, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid group ID")
	}

	var input models.SettingsInput
	if ok, err := h.bind(c, &input); !ok {
		return err
	}

	group, err := h.svc.UpdateSettings(c.UserContext(), groupID, input, h.actor(c, *input.UserID))
	if err != nil {
		return respondError(c, err, "Failed to save settings")
	}

	return c.JSON(fiber.Map{
		"message": "Settings updated successfully",
		"group":   group,
	})
}
