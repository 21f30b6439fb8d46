package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"moves/models"
)

// ToggleVote casts the user's vote on a move, or retracts it if already cast
func (h *Handler) ToggleVote(c *fiber.Ctx) error {
	moveID, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid move ID")
	}

	var input models.VoteInput
	if ok, err := h.bind(c, &input); !ok {
		return err
	}

	voted, err := h.svc.ToggleVote(c.UserContext(), moveID, input.UserID)
	if err != nil {
		return respondError(c, err, "Failed to record vote")
	}

	message := "Vote removed"
	if voted {
		message = "Vote added"
	}
	return c.JSON(fiber.Map{
		"message": message,
		"voted":   voted,
	})
}

func (h *Handler) GetMoveVotes(c *fiber.Ctx) error {
	moveID, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid move ID")
	}

	votes, err := h.svc.MoveVotes(c.UserContext(), moveID)
	if err != nil {
		return respondError(c, err, "Failed to fetch votes")
	}
	return c.JSON(votes)
}

// GetGroupVotes returns the vote tally of every move in a group, keyed by move id
func (h *Handler) GetGroupVotes(c *fiber.Ctx) error {
	groupID, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid group ID")
	}

	tallies, err := h.svc.GroupVotes(c.UserContext(), groupID)
	if err != nil {
		return respondError(c, err, "Failed to fetch votes")
	}

	resp := make(map[string]models.VoteTally, len(tallies))
	for moveID, tally := range tallies {
		resp[strconv.FormatUint(uint64(moveID), 10)] = tally
	}
	return c.JSON(resp)
}
