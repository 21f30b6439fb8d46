package models

import (
	"time"
)

type Move struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `gorm:"not null;default:''" json:"description"`
	GroupID     uint      `gorm:"not null;index" json:"group_id"`
	CreatedBy   uint      `gorm:"not null" json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// Vote is unique per (move, user).
type Vote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	MoveID    uint      `gorm:"not null;uniqueIndex:idx_move_vote,priority:1" json:"move_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_move_vote,priority:2" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// MoveResponse carries the deadline fields derived at read time. They are
// never persisted.
type MoveResponse struct {
	ID            uint      `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	GroupID       uint      `json:"group_id"`
	CreatedBy     uint      `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
	Deadline      time.Time `json:"deadline"`
	TimeRemaining int64     `json:"time_remaining"`
	IsExpired     bool      `json:"is_expired"`
}

type MoveInput struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	CreatedBy   uint   `json:"created_by" validate:"required"`
}

type MoveUpdateInput struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

type VoteInput struct {
	UserID uint `json:"user_id" validate:"required"`
}

// VoteDetail is one vote with the voter's profile
type VoteDetail struct {
	ID        uint         `json:"id"`
	User      UserResponse `json:"user"`
	CreatedAt time.Time    `json:"created_at"`
}

type MoveVotes struct {
	VoteCount int          `json:"vote_count"`
	Votes     []VoteDetail `json:"votes"`
}

// VoteTally is the cheap per-move aggregate used for group views
type VoteTally struct {
	VoteCount int    `json:"vote_count"`
	VoterIDs  []uint `json:"voter_ids"`
}
