package handlers

import (
	"github.com/gofiber/fiber/v2"

	"moves/models"
)

// SendFriendRequest asks the user named friend_username to become a friend
func (h *Handler) SendFriendRequest(c *fiber.Ctx) error {
	var input models.FriendRequestInput
	if ok, err := h.bind(c, &input); !ok {
		return err
	}

	if _, err := h.svc.SendFriendRequest(c.UserContext(), input); err != nil {
		return respondError(c, err, "Failed to send friend request")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Friend request sent"})
}

// ListFriends returns the user's accepted friends
func (h *Handler) ListFriends(c *fiber.Ctx) error {
	userID, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid user ID")
	}

	friends, err := h.svc.Friends(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err, "Failed to fetch friends")
	}
	return c.JSON(friends)
}

// ListFriendRequests returns pending requests addressed to the user
func (h *Handler) ListFriendRequests(c *fiber.Ctx) error {
	userID, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid user ID")
	}

	requests, err := h.svc.FriendRequests(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err, "Failed to fetch friend requests")
	}
	return c.JSON(requests)
}

func (h *Handler) AcceptFriendRequest(c *fiber.Ctx) error {
	friendshipID, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid friendship ID")
	}

	if _, err := h.svc.AcceptFriendRequest(c.UserContext(), friendshipID); err != nil {
		return respondError(c, err, "Failed to accept friend request")
	}
	return c.JSON(fiber.Map{"message": "Friend request accepted"})
}

func (h *Handler) RemoveFriend(c *fiber.Ctx) error {
	friendshipID, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid friendship ID")
	}

	if err := h.svc.RemoveFriendship(c.UserContext(), friendshipID); err != nil {
		return respondError(c, err, "Failed to remove friendship")
	}
	return c.JSON(fiber.Map{"message": "Friendship removed"})
}

// GetProfile returns a user's profile. With ?current_user_id= the groups shared
// with that viewer are included.
func (h *Handler) GetProfile(c *fiber.Ctx) error {
	userID, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid user ID")
	}

	var viewer *uint
	if v := c.QueryInt("current_user_id"); v > 0 {
		id := uint(v)
		viewer = &id
	}

	profile, err := h.svc.Profile(c.UserContext(), userID, viewer)
	if err != nil {
		return respondError(c, err, "Failed to fetch profile")
	}
	return c.JSON(profile)
}
