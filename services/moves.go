package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"moves/models"
)

// Timing is the deadline state of a move at one instant.
type Timing struct {
	Deadline      time.Time
	TimeRemaining time.Duration
	IsExpired     bool
}

// ComputeTiming derives a move's deadline from its creation time and the
// group's current vote_deadline_hours. All arithmetic happens in UTC.
func ComputeTiming(move models.Move, group models.Group, now time.Time) Timing {
	deadline := move.CreatedAt.UTC().Add(time.Duration(group.VoteDeadlineHours) * time.Hour)
	now = now.UTC()

	remaining := deadline.Sub(now)
	if remaining < 0 {
		remaining = 0
	}

	return Timing{
		Deadline:      deadline,
		TimeRemaining: remaining,
		IsExpired:     now.After(deadline),
	}
}

// Decorate builds the response for a move with its timing fields.
func Decorate(move models.Move, group models.Group, now time.Time) models.MoveResponse {
	timing := ComputeTiming(move, group, now)
	return models.MoveResponse{
		ID:            move.ID,
		Name:          move.Name,
		Description:   move.Description,
		GroupID:       move.GroupID,
		CreatedBy:     move.CreatedBy,
		CreatedAt:     move.CreatedAt.UTC(),
		Deadline:      timing.Deadline,
		TimeRemaining: int64(timing.TimeRemaining / time.Second),
		IsExpired:     timing.IsExpired,
	}
}

// ListMoves returns the group's moves in creation order.
func (s *Service) ListMoves(ctx context.Context, groupID uint) ([]models.MoveResponse, error) {
	db := s.session(ctx)

	var group models.Group
	if err := first(db, &group, groupID, "Group"); err != nil {
		return nil, err
	}

	var moves []models.Move
	if err := db.Where("group_id = ?", groupID).Order("created_at").Order("id").Find(&moves).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch moves: %w", err)
	}

	now := s.Now()
	responses := make([]models.MoveResponse, len(moves))
	for i, m := range moves {
		responses[i] = Decorate(m, group, now)
	}
	return responses, nil
}

// CreateMove proposes a move in the group.
func (s *Service) CreateMove(ctx context.Context, groupID uint, input models.MoveInput, actor Actor) (*models.MoveResponse, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, invalid("Name is required")
	}

	var (
		group models.Group
		move  models.Move
	)
	err := s.session(ctx).Transaction(func(tx *gorm.DB) error {
		if err := first(tx, &group, groupID, "Group"); err != nil {
			return err
		}

		move = models.Move{
			Name:        name,
			Description: input.Description,
			GroupID:     groupID,
			CreatedBy:   input.CreatedBy,
			CreatedAt:   s.Now(),
		}
		if err := tx.Create(&move).Error; err != nil {
			return fmt.Errorf("failed to create move: %w", err)
		}

		return s.logActivity(tx, groupID, actor, models.ActivityMoveCreate, &move.ID, "Proposed "+move.Name)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.MovesCreated.Inc()
	slog.Info("Move created", "move_id", move.ID, "group_id", groupID, "created_by", move.CreatedBy)

	resp := Decorate(move, group, s.Now())
	return &resp, nil
}

// UpdateMove changes the name and/or description. Timing is recomputed from
// the unchanged creation time.
func (s *Service) UpdateMove(ctx context.Context, moveID uint, input models.MoveUpdateInput, actor Actor) (*models.MoveResponse, error) {
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return nil, invalid("Name cannot be empty")
	}

	var (
		group models.Group
		move  models.Move
	)
	err := s.session(ctx).Transaction(func(tx *gorm.DB) error {
		if err := first(tx, &move, moveID, "Move"); err != nil {
			return err
		}
		if err := first(tx, &group, move.GroupID, "Group"); err != nil {
			return err
		}

		if input.Name == nil && input.Description == nil {
			return nil
		}
		if input.Name != nil {
			move.Name = strings.TrimSpace(*input.Name)
		}
		if input.Description != nil {
			move.Description = *input.Description
		}

		if err := tx.Save(&move).Error; err != nil {
			return fmt.Errorf("failed to update move: %w", err)
		}
		return s.logActivity(tx, move.GroupID, actor, models.ActivityMoveUpdate, &move.ID, "Edited "+move.Name)
	})
	if err != nil {
		return nil, err
	}

	resp := Decorate(move, group, s.Now())
	return &resp, nil
}

// DeleteMove removes a move together with its votes.
func (s *Service) DeleteMove(ctx context.Context, moveID uint, actor Actor) error {
	var move models.Move
	err := s.session(ctx).Transaction(func(tx *gorm.DB) error {
		if err := first(tx, &move, moveID, "Move"); err != nil {
			return err
		}
		if err := deleteMoveWithVotes(tx, move.ID); err != nil {
			return err
		}
		return s.logActivity(tx, move.GroupID, actor, models.ActivityMoveDelete, &move.ID, "Deleted "+move.Name)
	})
	if err != nil {
		return err
	}

	slog.Info("Move deleted", "move_id", move.ID, "group_id", move.GroupID)
	return nil
}

// deleteMoveWithVotes removes the votes first so an interrupted deletion
// never leaves votes pointing at a missing move.
func deleteMoveWithVotes(tx *gorm.DB, moveID uint) error {
	if err := tx.Where("move_id = ?", moveID).Delete(&models.Vote{}).Error; err != nil {
		return fmt.Errorf("failed to delete votes: %w", err)
	}
	if err := tx.Delete(&models.Move{}, moveID).Error; err != nil {
		return fmt.Errorf("failed to delete move: %w", err)
	}
	return nil
}
