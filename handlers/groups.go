package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"moves/models"
)

// ListUserGroups returns every group the user belongs to
func (h *Handler) ListUserGroups(c *fiber.Ctx) error {
	userID, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid user ID")
	}

	groups, err := h.svc.UserGroups(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err, "Failed to fetch groups")
	}
	return c.JSON(groups)
}

// CreateGroup creates a group owned by created_by, who also becomes its first member
func (h *Handler) CreateGroup(c *fiber.Ctx) error {
	var input models.GroupInput
	if ok, err := h.bind(c, &input); !ok {
		return err
	}

	group, err := h.svc.CreateGroup(c.UserContext(), input, h.actor(c, input.CreatedBy))
	if err != nil {
		return respondError(c, err, "Failed to create group")
	}
	return c.Status(fiber.StatusCreated).JSON(group)
}

// JoinGroup adds the user to the group matching the join key
func (h *Handler) JoinGroup(c *fiber.Ctx) error {
	var input models.JoinInput
	if ok, err := h.bind(c, &input); !ok {
		return err
	}

	group, err := h.svc.JoinByKey(c.UserContext(), input, h.actor(c, input.UserID))
	if err != nil {
		return respondError(c, err, "Failed to join group")
	}
	return c.JSON(fiber.Map{
		"message": "Joined group successfully",
		"group":   group,
	})
}

// GetMemberCount returns how many users belong to a group
func (h *Handler) GetMemberCount(c *fiber.Ctx) error {
	groupID, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid group ID")
	}

	count, err := h.svc.MemberCount(c.UserContext(), groupID)
	if err != nil {
		return respondError(c, err, "Failed to count members")
	}
	return c.JSON(fiber.Map{"count": count})
}

func (h *Handler) ListMembers(c *fiber.Ctx) error {
	groupID, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid group ID")
	}

	members, err := h.svc.Members(c.UserContext(), groupID)
	if err != nil {
		return respondError(c, err, "Failed to fetch members")
	}
	return c.JSON(members)
}

// RemoveMember removes a membership. The owner may remove anyone else, and
// members may remove themselves.
func (h *Handler) RemoveMember(c *fiber.Ctx) error {
	groupID, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid group ID")
	}
	userID, ok := parseID(c, "user_id")
	if !ok {
		return badRequest(c, "Invalid user ID")
	}

	requestedBy, ok := queryID(c, "requested_by")
	if !ok {
		return badRequest(c, "requested_by must be a user ID")
	}

	if err := h.svc.RemoveMember(c.UserContext(), groupID, userID, requestedBy, h.actor(c, requestedBy)); err != nil {
		return respondError(c, err, "Failed to remove member")
	}
	return c.JSON(fiber.Map{"message": "Member removed"})
}

// CleanupMoves deletes the group's expired moves that missed the vote threshold
func (h *Handler) CleanupMoves(c *fiber.Ctx) error {
	groupID, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid group ID")
	}

	deleted, err := h.svc.CleanupExpiredMoves(c.UserContext(), groupID, h.actor(c, 0))
	if err != nil {
		return respondError(c, err, "Failed to clean up moves")
	}
	return c.JSON(fiber.Map{
		"message":       fmt.Sprintf("Cleanup complete. %d move(s) deleted.", deleted),
		"deleted_count": deleted,
	})
}
