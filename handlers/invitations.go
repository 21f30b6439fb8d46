package handlers

import (
	"github.com/gofiber/fiber/v2"

	"moves/models"
)

// InviteMember sends a group invitation on behalf of an existing member
func (h *Handler) InviteMember(c *fiber.Ctx) error {
	groupID, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid group ID")
	}

	var input models.InviteInput
	if ok, err := h.bind(c, &input); !ok {
		return err
	}

	if _, err := h.svc.InviteMember(c.UserContext(), groupID, input, h.actor(c, input.AddedBy)); err != nil {
		return respondError(c, err, "Failed to send invitation")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Group invitation sent successfully",
	})
}

// ListInvitations returns the user's pending group invitations
func (h *Handler) ListInvitations(c *fiber.Ctx) error {
	userID, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid user ID")
	}

	invitations, err := h.svc.PendingInvitations(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err, "Failed to fetch invitations")
	}
	return c.JSON(invitations)
}

func (h *Handler) AcceptInvitation(c *fiber.Ctx) error {
	return h.answerInvitation(c, true)
}

func (h *Handler) DeclineInvitation(c *fiber.Ctx) error {
	return h.answerInvitation(c, false)
}

func (h *Handler) answerInvitation(c *fiber.Ctx, accept bool) error {
	invitationID, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid invitation ID")
	}

	// the body is optional; when present it names the responding user
	var input models.InvitationReplyInput
	if len(c.Body()) > 0 {
		if ok, err := h.bind(c, &input); !ok {
			return err
		}
	}

	var actor uint
	if input.UserID != nil {
		actor = *input.UserID
	}

	if accept {
		if _, err := h.svc.AcceptInvitation(c.UserContext(), invitationID, input.UserID, h.actor(c, actor)); err != nil {
			return respondError(c, err, "Failed to accept invitation")
		}
		return c.JSON(fiber.Map{"message": "Group invitation accepted"})
	}

	if _, err := h.svc.DeclineInvitation(c.UserContext(), invitationID, input.UserID, h.actor(c, actor)); err != nil {
		return respondError(c, err, "Failed to decline invitation")
	}
	return c.JSON(fiber.Map{"message": "Group invitation declined"})
}
