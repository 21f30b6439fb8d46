package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"moves/models"
)

// ToggleVote casts the user's vote on the move, or retracts it if one is
// already there. It reports whether the user has a vote afterwards.
//
// Expiry and group membership are not checked: any user id is accepted.
func (s *Service) ToggleVote(ctx context.Context, moveID, userID uint) (bool, error) {
	var voted bool
	err := s.session(ctx).Transaction(func(tx *gorm.DB) error {
		var move models.Move
		if err := first(tx, &move, moveID, "Move"); err != nil {
			return err
		}

		result := tx.Where("move_id = ? AND user_id = ?", moveID, userID).Delete(&models.Vote{})
		if result.Error != nil {
			return fmt.Errorf("failed to remove vote: %w", result.Error)
		}
		if result.RowsAffected > 0 {
			voted = false
			return nil
		}

		vote := models.Vote{MoveID: moveID, UserID: userID, CreatedAt: s.Now()}
		if err := tx.SavePoint("cast_vote").Error; err != nil {
			return fmt.Errorf("failed to add vote: %w", err)
		}
		if err := tx.Create(&vote).Error; err != nil {
			if isDuplicate(err) {
				// a concurrent toggle inserted the same vote
				if err := tx.RollbackTo("cast_vote").Error; err != nil {
					return fmt.Errorf("failed to add vote: %w", err)
				}
				voted = true
				return nil
			}
			return fmt.Errorf("failed to add vote: %w", err)
		}
		voted = true
		return nil
	})
	if err != nil {
		return false, err
	}

	action := "retract"
	if voted {
		action = "cast"
	}
	s.metrics.Votes.WithLabelValues(action).Inc()
	return voted, nil
}

// MoveVotes lists a move's votes with voter profiles. Votes from users that
// no longer exist are skipped and not counted.
func (s *Service) MoveVotes(ctx context.Context, moveID uint) (*models.MoveVotes, error) {
	db := s.session(ctx)

	var move models.Move
	if err := first(db, &move, moveID, "Move"); err != nil {
		return nil, err
	}

	var votes []models.Vote
	if err := db.Where("move_id = ?", moveID).Order("created_at").Order("id").Find(&votes).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch votes: %w", err)
	}

	ids := make([]uint, len(votes))
	for i, v := range votes {
		ids[i] = v.UserID
	}
	users, err := usersByID(db, ids)
	if err != nil {
		return nil, err
	}

	details := make([]models.VoteDetail, 0, len(votes))
	for _, v := range votes {
		u, ok := users[v.UserID]
		if !ok {
			continue
		}
		details = append(details, models.VoteDetail{
			ID:        v.ID,
			User:      u.ToResponse(),
			CreatedAt: v.CreatedAt.UTC(),
		})
	}

	return &models.MoveVotes{VoteCount: len(details), Votes: details}, nil
}

// GroupVotes tallies votes for every move in the group, keyed by move id.
func (s *Service) GroupVotes(ctx context.Context, groupID uint) (map[uint]models.VoteTally, error) {
	db := s.session(ctx)

	var group models.Group
	if err := first(db, &group, groupID, "Group"); err != nil {
		return nil, err
	}

	var moveIDs []uint
	if err := db.Model(&models.Move{}).Where("group_id = ?", groupID).Order("id").Pluck("id", &moveIDs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch moves: %w", err)
	}

	tallies := make(map[uint]models.VoteTally, len(moveIDs))
	for _, id := range moveIDs {
		tallies[id] = models.VoteTally{VoteCount: 0, VoterIDs: []uint{}}
	}
	if len(moveIDs) == 0 {
		return tallies, nil
	}

	var votes []models.Vote
	if err := db.Where("move_id IN ?", moveIDs).Order("id").Find(&votes).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch votes: %w", err)
	}
	for _, v := range votes {
		t := tallies[v.MoveID]
		t.VoteCount++
		t.VoterIDs = append(t.VoterIDs, v.UserID)
		tallies[v.MoveID] = t
	}
	return tallies, nil
}
