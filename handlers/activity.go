package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"moves/models"
	"moves/services"
)

// ListActivity returns a page of the group's activity log
func (h *Handler) ListActivity(c *fiber.Ctx) error {
	groupID, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid group ID")
	}

	// Parse query parameters
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	filter := services.ActivityFilter{
		Action: c.Query("action"),
		Page:   page,
		Limit:  limit,
	}
	if userIDStr := c.Query("user_id"); userIDStr != "" {
		if userID, err := strconv.ParseUint(userIDStr, 10, 32); err == nil {
			id := uint(userID)
			filter.UserID = &id
		}
	}

	result, err := h.svc.ListActivity(c.UserContext(), groupID, filter)
	if err != nil {
		return respondError(c, err, "Failed to fetch activity")
	}
	return c.JSON(result)
}

// GetActivityActions returns available activity actions for filtering
func (h *Handler) GetActivityActions(c *fiber.Ctx) error {
	actions := make([]string, len(models.ActivityActions))
	for i, a := range models.ActivityActions {
		actions[i] = string(a)
	}
	return c.JSON(actions)
}
