package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"moves/models"
)

// InviteMember creates a pending invitation for userID, sent by addedBy.
func (s *Service) InviteMember(ctx context.Context, groupID uint, input models.InviteInput, actor Actor) (*models.GroupInvitation, error) {
	var invitation models.GroupInvitation
	err := s.session(ctx).Transaction(func(tx *gorm.DB) error {
		var group models.Group
		if err := first(tx, &group, groupID, "Group"); err != nil {
			return err
		}

		inviterIsMember, err := isMember(tx, groupID, input.AddedBy)
		if err != nil {
			return err
		}
		if !inviterIsMember {
			return forbidden("You must be a member to invite others")
		}

		var invitee models.User
		if err := first(tx, &invitee, input.UserID, "User"); err != nil {
			return err
		}

		alreadyMember, err := isMember(tx, groupID, input.UserID)
		if err != nil {
			return err
		}
		if alreadyMember {
			return conflict("User is already a member")
		}

		var pending int64
		err = tx.Model(&models.GroupInvitation{}).
			Where("group_id = ? AND user_id = ? AND status = ?", groupID, input.UserID, models.InvitationPending).
			Count(&pending).Error
		if err != nil {
			return fmt.Errorf("failed to check invitations: %w", err)
		}
		if pending > 0 {
			return conflict("Invitation already sent")
		}

		now := s.Now()
		invitation = models.GroupInvitation{
			GroupID:   groupID,
			UserID:    input.UserID,
			InvitedBy: input.AddedBy,
			Status:    models.InvitationPending,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Create(&invitation).Error; err != nil {
			if isDuplicate(err) {
				return conflict("Invitation already sent")
			}
			return fmt.Errorf("failed to create invitation: %w", err)
		}

		return s.logActivity(tx, groupID, actor, models.ActivityInviteSend, nil, "Invited "+invitee.Username)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Group invitation sent", "group_id", groupID, "user_id", input.UserID, "invited_by", input.AddedBy)
	return &invitation, nil
}

// PendingInvitations lists the user's pending invitations, oldest first.
// Invitations whose group or inviter no longer exists are left out.
func (s *Service) PendingInvitations(ctx context.Context, userID uint) ([]models.InvitationResponse, error) {
	db := s.session(ctx)

	var invitations []models.GroupInvitation
	err := db.Where("user_id = ? AND status = ?", userID, models.InvitationPending).
		Order("created_at").Order("id").
		Find(&invitations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch invitations: %w", err)
	}

	groupIDs := make([]uint, 0, len(invitations))
	inviterIDs := make([]uint, 0, len(invitations))
	for _, inv := range invitations {
		groupIDs = append(groupIDs, inv.GroupID)
		inviterIDs = append(inviterIDs, inv.InvitedBy)
	}

	groups := map[uint]models.Group{}
	if len(groupIDs) > 0 {
		var rows []models.Group
		if err := db.Where("id IN ?", groupIDs).Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to load groups: %w", err)
		}
		for _, g := range rows {
			groups[g.ID] = g
		}
	}
	inviters, err := usersByID(db, inviterIDs)
	if err != nil {
		return nil, err
	}

	result := make([]models.InvitationResponse, 0, len(invitations))
	for _, inv := range invitations {
		group, ok := groups[inv.GroupID]
		if !ok {
			continue
		}
		inviter, ok := inviters[inv.InvitedBy]
		if !ok {
			continue
		}
		result = append(result, models.InvitationResponse{
			ID:        inv.ID,
			Group:     group,
			InvitedBy: inviter.ToResponse(),
			CreatedAt: inv.CreatedAt,
		})
	}
	return result, nil
}

// AcceptInvitation moves a pending invitation to accepted and adds the
// invitee to the group. If the invitee already joined another way the
// invitation is still accepted and no second membership is created.
func (s *Service) AcceptInvitation(ctx context.Context, invitationID uint, responder *uint, actor Actor) (*models.GroupInvitation, error) {
	return s.answerInvitation(ctx, invitationID, responder, actor, models.InvitationAccepted)
}

// DeclineInvitation moves a pending invitation to declined.
func (s *Service) DeclineInvitation(ctx context.Context, invitationID uint, responder *uint, actor Actor) (*models.GroupInvitation, error) {
	return s.answerInvitation(ctx, invitationID, responder, actor, models.InvitationDeclined)
}

func (s *Service) answerInvitation(ctx context.Context, invitationID uint, responder *uint, actor Actor, status models.InvitationStatus) (*models.GroupInvitation, error) {
	var invitation models.GroupInvitation
	err := s.session(ctx).Transaction(func(tx *gorm.DB) error {
		if err := first(tx, &invitation, invitationID, "Invitation"); err != nil {
			return err
		}
		if responder != nil && *responder != invitation.UserID {
			return forbidden("Only the invited user can answer this invitation")
		}
		if invitation.Status != models.InvitationPending {
			return conflict("Invitation already %s", invitation.Status)
		}

		action := models.ActivityInviteDecline
		if status == models.InvitationAccepted {
			action = models.ActivityInviteAccept
			member, err := isMember(tx, invitation.GroupID, invitation.UserID)
			if err != nil {
				return err
			}
			if !member {
				if err := s.addMember(tx, invitation.GroupID, invitation.UserID); err != nil {
					return err
				}
			}
		}

		invitation.Status = status
		invitation.UpdatedAt = s.Now()
		if err := tx.Save(&invitation).Error; err != nil {
			return fmt.Errorf("failed to update invitation: %w", err)
		}

		return s.logActivity(tx, invitation.GroupID, actor, action, nil, fmt.Sprintf("Invitation %d %s", invitation.ID, status))
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Group invitation answered", "invitation_id", invitation.ID, "status", status)
	return &invitation, nil
}
