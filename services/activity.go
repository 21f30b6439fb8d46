package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"moves/models"
)

// Actor identifies who triggered a change and from where.
type Actor struct {
	UserID    uint
	IPAddress string
}

// logActivity writes an activity entry inside the caller's transaction so the
// entry commits or rolls back with the change it describes.
func (s *Service) logActivity(tx *gorm.DB, groupID uint, actor Actor, action models.ActivityAction, moveID *uint, details string) error {
	entry := models.ActivityLog{
		GroupID:   groupID,
		UserID:    actor.UserID,
		Action:    action,
		MoveID:    moveID,
		Details:   details,
		IPAddress: actor.IPAddress,
		CreatedAt: s.Now(),
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to write activity log: %w", err)
	}
	return nil
}

type ActivityFilter struct {
	Action string
	UserID *uint
	Page   int
	Limit  int
}

// ListActivity returns a page of a group's activity, newest first.
func (s *Service) ListActivity(ctx context.Context, groupID uint, filter ActivityFilter) (*models.ActivityPage, error) {
	db := s.session(ctx)

	var group models.Group
	if err := first(db, &group, groupID, "Group"); err != nil {
		return nil, err
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 50
	}
	offset := (filter.Page - 1) * filter.Limit

	query := db.Model(&models.ActivityLog{}).Where("group_id = ?", groupID)
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count activity: %w", err)
	}

	logs := []models.ActivityLog{}
	if err := query.Order("created_at DESC").Order("id DESC").Offset(offset).Limit(filter.Limit).Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch activity: %w", err)
	}

	return &models.ActivityPage{
		Logs:  logs,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}
