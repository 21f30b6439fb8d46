package models

import (
	"time"
)

type Group struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Name              string    `gorm:"not null" json:"name"`
	CreatedBy         uint      `gorm:"not null;index" json:"created_by"`
	JoinKey           string    `gorm:"uniqueIndex;not null" json:"join_key"`
	MinVotesRequired  int       `gorm:"not null" json:"min_votes_required"`
	VoteDeadlineHours int       `gorm:"not null" json:"vote_deadline_hours"`
	CreatedAt         time.Time `json:"created_at"`
}

// GroupMember links a user to a group. The pair is unique at the storage layer.
type GroupMember struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	GroupID  uint      `gorm:"not null;uniqueIndex:idx_group_member,priority:1" json:"group_id"`
	UserID   uint      `gorm:"not null;uniqueIndex:idx_group_member,priority:2;index" json:"user_id"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`
}

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
)

// GroupInvitation allows at most one pending row per (group, user).
type GroupInvitation struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	GroupID   uint             `gorm:"not null;uniqueIndex:idx_pending_invitation,where:status = 'pending'" json:"group_id"`
	UserID    uint             `gorm:"not null;index;uniqueIndex:idx_pending_invitation,where:status = 'pending'" json:"user_id"`
	InvitedBy uint             `gorm:"not null" json:"invited_by"`
	Status    InvitationStatus `gorm:"not null;default:pending" json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// InvitationResponse is a pending invitation as shown to the invitee
type InvitationResponse struct {
	ID        uint         `json:"id"`
	Group     Group        `json:"group"`
	InvitedBy UserResponse `json:"invited_by"`
	CreatedAt time.Time    `json:"created_at"`
}

type GroupInput struct {
	Name      string `json:"name" validate:"required,max=120"`
	CreatedBy uint   `json:"created_by" validate:"required"`
}

type JoinInput struct {
	JoinKey string `json:"join_key" validate:"required"`
	UserID  uint   `json:"user_id" validate:"required"`
}

type InviteInput struct {
	UserID  uint `json:"user_id" validate:"required"`
	AddedBy uint `json:"added_by" validate:"required"`
}

// InvitationReplyInput optionally names the user answering the invitation
type InvitationReplyInput struct {
	UserID *uint `json:"user_id"`
}

// SettingsInput is a partial update; nil fields keep their stored value.
type SettingsInput struct {
	UserID            *uint `json:"user_id" validate:"required"`
	MinVotesRequired  *int  `json:"min_votes_required" validate:"omitempty,min=0"`
	VoteDeadlineHours *int  `json:"vote_deadline_hours" validate:"omitempty,gt=0"`
}
