package handlers

import (
	"github.com/gofiber/fiber/v2"

	"moves/models"
)

// ListMoves returns a group's moves with their deadline state
func (h *Handler) ListMoves(c *fiber.Ctx) error {
	groupID, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid group ID")
	}

	moves, err := h.svc.ListMoves(c.UserContext(), groupID)
	if err != nil {
		return respondError(c, err, "Failed to fetch moves")
	}
	return c.JSON(moves)
}

// CreateMove proposes a new move in a group
func (h *Handler) CreateMove(c *fiber.Ctx) error {
	groupID, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid group ID")
	}

	var input models.MoveInput
	if ok, err := h.bind(c, &input); !ok {
		return err
	}

	move, err := h.svc.CreateMove(c.UserContext(), groupID, input, h.actor(c, input.CreatedBy))
	if err != nil {
		return respondError(c, err, "Failed to create move")
	}
	return c.Status(fiber.StatusCreated).JSON(move)
}

// UpdateMove edits a move's name or description
func (h *Handler) UpdateMove(c *fiber.Ctx) error {
	moveID, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid move ID")
	}

	var input models.MoveUpdateInput
	if ok, err := h.bind(c, &input); !ok {
		return err
	}

	move, err := h.svc.UpdateMove(c.UserContext(), moveID, input, h.actor(c, 0))
	if err != nil {
		return respondError(c, err, "Failed to update move")
	}
	return c.JSON(move)
}

// DeleteMove removes a move and its votes
func (h *Handler) DeleteMove(c *fiber.Ctx) error {
	moveID, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid move ID")
	}

	if err := h.svc.DeleteMove(c.UserContext(), moveID, h.actor(c, 0)); err != nil {
		return respondError(c, err, "Failed to delete move")
	}
	return c.JSON(fiber.Map{"message": "Move deleted"})
}
