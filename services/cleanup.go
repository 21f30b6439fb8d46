package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"moves/models"
)

// CleanupExpiredMoves deletes every move of the group whose deadline has
// passed and whose vote count is below the group's min_votes_required. The
// group's current settings are used for all moves, whatever they were when
// the move was created.
//
// Each move is removed in its own transaction, votes before the move. If the
// sweep fails part way, moves already processed stay deleted and the rest
// are untouched. The count of deleted moves is returned alongside any error.
func (s *Service) CleanupExpiredMoves(ctx context.Context, groupID uint, actor Actor) (int, error) {
	db := s.session(ctx)

	var group models.Group
	if err := first(db, &group, groupID, "Group"); err != nil {
		return 0, err
	}

	var moves []models.Move
	if err := db.Where("group_id = ?", groupID).Order("id").Find(&moves).Error; err != nil {
		return 0, fmt.Errorf("failed to fetch moves: %w", err)
	}

	now := s.Now()
	deleted := 0
	for _, move := range moves {
		if !ComputeTiming(move, group, now).IsExpired {
			continue
		}

		// votes are counted in the same transaction that deletes
		removed := false
		err := db.Transaction(func(tx *gorm.DB) error {
			var votes int64
			if err := tx.Model(&models.Vote{}).Where("move_id = ?", move.ID).Count(&votes).Error; err != nil {
				return fmt.Errorf("failed to count votes for move %d: %w", move.ID, err)
			}
			if votes >= int64(group.MinVotesRequired) {
				return nil
			}
			if err := deleteMoveWithVotes(tx, move.ID); err != nil {
				return err
			}
			removed = true
			details := fmt.Sprintf("%s expired with %d of %d votes", move.Name, votes, group.MinVotesRequired)
			return s.logActivity(tx, groupID, actor, models.ActivityMoveExpire, &move.ID, details)
		})
		if err != nil {
			return deleted, err
		}
		if !removed {
			continue
		}
		deleted++
		s.metrics.MovesExpired.Inc()
	}

	slog.Info("Move cleanup complete", "group_id", groupID, "checked", len(moves), "deleted", deleted)
	return deleted, nil
}
