package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"moves/models"
)

func orderedPair(a, b uint) (uint, uint) {
	if a < b {
		return a, b
	}
	return b, a
}

// SendFriendRequest creates a pending friendship from userID to the user
// named friendUsername. Any existing friendship between the two, in either
// direction and in any state, is a Conflict.
func (s *Service) SendFriendRequest(ctx context.Context, input models.FriendRequestInput) (*models.Friendship, error) {
	var friendship models.Friendship
	err := s.session(ctx).Transaction(func(tx *gorm.DB) error {
		var requester models.User
		if err := first(tx, &requester, input.UserID, "User"); err != nil {
			return err
		}

		var friend models.User
		if err := tx.Where("username = ?", strings.TrimSpace(input.FriendUsername)).First(&friend).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("User not found")
			}
			return fmt.Errorf("failed to look up user: %w", err)
		}

		if friend.ID == requester.ID {
			return invalid("Cannot add yourself as friend")
		}

		low, high := orderedPair(requester.ID, friend.ID)

		var existing int64
		if err := tx.Model(&models.Friendship{}).Where("pair_low = ? AND pair_high = ?", low, high).Count(&existing).Error; err != nil {
			return fmt.Errorf("failed to check friendship: %w", err)
		}
		if existing > 0 {
			return conflict("Friend request already exists")
		}

		friendship = models.Friendship{
			UserID:    requester.ID,
			FriendID:  friend.ID,
			Status:    models.FriendshipPending,
			CreatedAt: s.Now(),
		}
		if err := tx.Create(&friendship).Error; err != nil {
			if isDuplicate(err) {
				return conflict("Friend request already exists")
			}
			return fmt.Errorf("failed to create friend request: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Friend request sent", "friendship_id", friendship.ID, "from", friendship.UserID, "to", friendship.FriendID)
	return &friendship, nil
}

// Friends lists the accepted friends of a user.
func (s *Service) Friends(ctx context.Context, userID uint) ([]models.UserResponse, error) {
	db := s.session(ctx)

	var friendships []models.Friendship
	err := db.Where("(user_id = ? OR friend_id = ?) AND status = ?", userID, userID, models.FriendshipAccepted).
		Order("id").
		Find(&friendships).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch friendships: %w", err)
	}

	ids := make([]uint, len(friendships))
	for i, f := range friendships {
		ids[i] = otherSide(f, userID)
	}
	users, err := usersByID(db, ids)
	if err != nil {
		return nil, err
	}

	friends := make([]models.UserResponse, 0, len(friendships))
	for _, id := range ids {
		if u, ok := users[id]; ok {
			friends = append(friends, u.ToResponse())
		}
	}
	return friends, nil
}

func otherSide(f models.Friendship, userID uint) uint {
	if f.UserID == userID {
		return f.FriendID
	}
	return f.UserID
}

// FriendRequests lists pending requests addressed to the user.
func (s *Service) FriendRequests(ctx context.Context, userID uint) ([]models.FriendRequestResponse, error) {
	db := s.session(ctx)

	var pending []models.Friendship
	err := db.Where("friend_id = ? AND status = ?", userID, models.FriendshipPending).
		Order("created_at").Order("id").
		Find(&pending).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch friend requests: %w", err)
	}

	ids := make([]uint, len(pending))
	for i, f := range pending {
		ids[i] = f.UserID
	}
	senders, err := usersByID(db, ids)
	if err != nil {
		return nil, err
	}

	requests := make([]models.FriendRequestResponse, 0, len(pending))
	for _, f := range pending {
		sender, ok := senders[f.UserID]
		if !ok {
			continue
		}
		requests = append(requests, models.FriendRequestResponse{
			ID:        f.ID,
			User:      sender.ToResponse(),
			CreatedAt: f.CreatedAt.UTC(),
		})
	}
	return requests, nil
}

// AcceptFriendRequest flips a pending friendship to accepted.
func (s *Service) AcceptFriendRequest(ctx context.Context, friendshipID uint) (*models.Friendship, error) {
	var friendship models.Friendship
	err := s.session(ctx).Transaction(func(tx *gorm.DB) error {
		if err := first(tx, &friendship, friendshipID, "Friend request"); err != nil {
			return err
		}
		if friendship.Status == models.FriendshipAccepted {
			return conflict("Friend request already accepted")
		}
		friendship.Status = models.FriendshipAccepted
		if err := tx.Save(&friendship).Error; err != nil {
			return fmt.Errorf("failed to accept friend request: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &friendship, nil
}

// RemoveFriendship deletes a friendship or pending request.
func (s *Service) RemoveFriendship(ctx context.Context, friendshipID uint) error {
	result := s.session(ctx).Delete(&models.Friendship{}, friendshipID)
	if result.Error != nil {
		return fmt.Errorf("failed to remove friendship: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return notFound("Friendship not found")
	}
	return nil
}

// Profile aggregates a user's friend and group counts. When viewerID is set
// the groups both users belong to are included.
func (s *Service) Profile(ctx context.Context, userID uint, viewerID *uint) (*models.ProfileResponse, error) {
	db := s.session(ctx)

	var user models.User
	if err := first(db, &user, userID, "User"); err != nil {
		return nil, err
	}

	profile := &models.ProfileResponse{
		User:         user.ToResponse(),
		MutualGroups: []models.Group{},
	}

	err := db.Model(&models.Friendship{}).
		Where("(user_id = ? OR friend_id = ?) AND status = ?", userID, userID, models.FriendshipAccepted).
		Count(&profile.FriendCount).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count friends: %w", err)
	}

	if err := db.Model(&models.GroupMember{}).Where("user_id = ?", userID).Count(&profile.GroupCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count groups: %w", err)
	}

	if viewerID != nil && *viewerID != 0 {
		mine := db.Model(&models.GroupMember{}).Select("group_id").Where("user_id = ?", userID)
		theirs := db.Model(&models.GroupMember{}).Select("group_id").Where("user_id = ?", *viewerID)
		err := db.Where("id IN (?) AND id IN (?)", mine, theirs).Order("id").Find(&profile.MutualGroups).Error
		if err != nil {
			return nil, fmt.Errorf("failed to fetch mutual groups: %w", err)
		}
	}

	return profile, nil
}
