package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"moves/models"
)

const joinKeyAttempts = 5

// generateJoinKey returns an 11 character URL-safe token from 8 random bytes.
func generateJoinKey() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// uniqueJoinKey draws keys until one is not in use.
func uniqueJoinKey(tx *gorm.DB) (string, error) {
	for attempt := 0; attempt < joinKeyAttempts; attempt++ {
		key, err := generateJoinKey()
		if err != nil {
			return "", fmt.Errorf("failed to generate join key: %w", err)
		}
		var count int64
		if err := tx.Model(&models.Group{}).Where("join_key = ?", key).Count(&count).Error; err != nil {
			return "", fmt.Errorf("failed to check join key: %w", err)
		}
		if count == 0 {
			return key, nil
		}
	}
	return "", fmt.Errorf("no free join key after %d attempts", joinKeyAttempts)
}

func isMember(tx *gorm.DB, groupID, userID uint) (bool, error) {
	var count int64
	err := tx.Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return count > 0, nil
}

// addMember inserts a membership row. The unique index on (group, user)
// turns a concurrent duplicate into a Conflict.
func (s *Service) addMember(tx *gorm.DB, groupID, userID uint) error {
	member := models.GroupMember{GroupID: groupID, UserID: userID, JoinedAt: s.Now()}
	if err := tx.Create(&member).Error; err != nil {
		if isDuplicate(err) {
			return conflict("Already a member")
		}
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

// CreateGroup creates a group owned by input.CreatedBy and makes the owner
// its first member.
func (s *Service) CreateGroup(ctx context.Context, input models.GroupInput, actor Actor) (*models.Group, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, invalid("Name is required")
	}

	var group models.Group
	err := s.session(ctx).Transaction(func(tx *gorm.DB) error {
		var owner models.User
		if err := first(tx, &owner, input.CreatedBy, "User"); err != nil {
			return err
		}

		key, err := uniqueJoinKey(tx)
		if err != nil {
			return err
		}

		group = models.Group{
			Name:              name,
			CreatedBy:         owner.ID,
			JoinKey:           key,
			MinVotesRequired:  s.defaultMinVotes,
			VoteDeadlineHours: s.defaultDeadlineHours,
			CreatedAt:         s.Now(),
		}
		if err := tx.Create(&group).Error; err != nil {
			if isDuplicate(err) {
				return conflict("Join key collision, please retry")
			}
			return fmt.Errorf("failed to create group: %w", err)
		}

		if err := s.addMember(tx, group.ID, owner.ID); err != nil {
			return err
		}
		return s.logActivity(tx, group.ID, actor, models.ActivityGroupCreate, nil, "Created group "+group.Name)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Group created", "group_id", group.ID, "owner", group.CreatedBy)
	return &group, nil
}

// UserGroups lists the groups the user belongs to.
func (s *Service) UserGroups(ctx context.Context, userID uint) ([]models.Group, error) {
	groups := []models.Group{}
	err := s.session(ctx).
		Where("id IN (?)", s.session(ctx).Model(&models.GroupMember{}).Select("group_id").Where("user_id = ?", userID)).
		Order("id").
		Find(&groups).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch groups: %w", err)
	}
	return groups, nil
}

// JoinByKey adds the user to the group whose join key matches exactly.
func (s *Service) JoinByKey(ctx context.Context, input models.JoinInput, actor Actor) (*models.Group, error) {
	var group models.Group
	err := s.session(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("join_key = ?", input.JoinKey).First(&group).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("Invalid join key")
			}
			return fmt.Errorf("failed to look up join key: %w", err)
		}

		var user models.User
		if err := first(tx, &user, input.UserID, "User"); err != nil {
			return err
		}

		member, err := isMember(tx, group.ID, user.ID)
		if err != nil {
			return err
		}
		if member {
			return conflict("Already a member")
		}

		if err := s.addMember(tx, group.ID, user.ID); err != nil {
			return err
		}
		return s.logActivity(tx, group.ID, actor, models.ActivityMemberJoin, nil, user.Username+" joined with the group key")
	})
	if err != nil {
		return nil, err
	}

	slog.Info("User joined group", "group_id", group.ID, "user_id", input.UserID)
	return &group, nil
}

func (s *Service) GetGroup(ctx context.Context, groupID uint) (*models.Group, error) {
	var group models.Group
	if err := first(s.session(ctx), &group, groupID, "Group"); err != nil {
		return nil, err
	}
	return &group, nil
}

// UpdateSettings changes the vote policy. Only the owner may do this and only
// the fields present in the input change. The new values apply to every
// existing move of the group on the next read or cleanup.
func (s *Service) UpdateSettings(ctx context.Context, groupID uint, input models.SettingsInput, actor Actor) (*models.Group, error) {
	if input.UserID == nil {
		return nil, invalid("user_id is required")
	}
	if input.MinVotesRequired != nil && *input.MinVotesRequired < 0 {
		return nil, invalid("min_votes_required must be zero or more")
	}
	if input.VoteDeadlineHours != nil && *input.VoteDeadlineHours <= 0 {
		return nil, invalid("vote_deadline_hours must be positive")
	}

	var group models.Group
	err := s.session(ctx).Transaction(func(tx *gorm.DB) error {
		if err := first(tx, &group, groupID, "Group"); err != nil {
			return err
		}
		if group.CreatedBy != *input.UserID {
			return forbidden("Only the group owner can update settings")
		}

		if input.MinVotesRequired == nil && input.VoteDeadlineHours == nil {
			return nil
		}
		if input.MinVotesRequired != nil {
			group.MinVotesRequired = *input.MinVotesRequired
		}
		if input.VoteDeadlineHours != nil {
			group.VoteDeadlineHours = *input.VoteDeadlineHours
		}

		if err := tx.Save(&group).Error; err != nil {
			return fmt.Errorf("failed to update settings: %w", err)
		}
		details := fmt.Sprintf("min_votes_required=%d vote_deadline_hours=%d", group.MinVotesRequired, group.VoteDeadlineHours)
		return s.logActivity(tx, group.ID, actor, models.ActivitySettingsUpdate, nil, details)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Group settings updated",
		"group_id", group.ID,
		"min_votes_required", group.MinVotesRequired,
		"vote_deadline_hours", group.VoteDeadlineHours,
	)
	return &group, nil
}

func (s *Service) MemberCount(ctx context.Context, groupID uint) (int64, error) {
	db := s.session(ctx)

	var group models.Group
	if err := first(db, &group, groupID, "Group"); err != nil {
		return 0, err
	}

	var count int64
	if err := db.Model(&models.GroupMember{}).Where("group_id = ?", groupID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}
	return count, nil
}

// Members returns the profiles of a group's members in join order.
func (s *Service) Members(ctx context.Context, groupID uint) ([]models.UserResponse, error) {
	db := s.session(ctx)

	var group models.Group
	if err := first(db, &group, groupID, "Group"); err != nil {
		return nil, err
	}

	var memberships []models.GroupMember
	if err := db.Where("group_id = ?", groupID).Order("id").Find(&memberships).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch members: %w", err)
	}

	ids := make([]uint, len(memberships))
	for i, m := range memberships {
		ids[i] = m.UserID
	}
	users, err := usersByID(db, ids)
	if err != nil {
		return nil, err
	}

	members := make([]models.UserResponse, 0, len(memberships))
	for _, m := range memberships {
		if u, ok := users[m.UserID]; ok {
			members = append(members, u.ToResponse())
		}
	}
	return members, nil
}

// RemoveMember deletes a membership. The owner may remove anyone but
// themselves; any member may leave.
func (s *Service) RemoveMember(ctx context.Context, groupID, userID, requestedBy uint, actor Actor) error {
	return s.session(ctx).Transaction(func(tx *gorm.DB) error {
		var group models.Group
		if err := first(tx, &group, groupID, "Group"); err != nil {
			return err
		}

		if userID == group.CreatedBy {
			return forbidden("The group owner cannot be removed")
		}
		if requestedBy != userID && requestedBy != group.CreatedBy {
			return forbidden("Only the group owner can remove other members")
		}

		result := tx.Where("group_id = ? AND user_id = ?", groupID, userID).Delete(&models.GroupMember{})
		if result.Error != nil {
			return fmt.Errorf("failed to remove member: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return notFound("Membership not found")
		}

		return s.logActivity(tx, groupID, actor, models.ActivityMemberRemove, nil, fmt.Sprintf("Removed user %d", userID))
	})
}
