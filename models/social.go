package models

import (
	"time"

	"gorm.io/gorm"
)

type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
)

// Friendship stores the requester in UserID and the recipient in FriendID.
// PairLow/PairHigh hold the same two ids in sorted order so the unordered
// pair is unique.
type Friendship struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	UserID    uint             `gorm:"not null;index" json:"user_id"`
	FriendID  uint             `gorm:"not null;index" json:"friend_id"`
	PairLow   uint             `gorm:"not null;uniqueIndex:idx_friend_pair,priority:1" json:"-"`
	PairHigh  uint             `gorm:"not null;uniqueIndex:idx_friend_pair,priority:2" json:"-"`
	Status    FriendshipStatus `gorm:"not null;default:pending" json:"status"`
	CreatedAt time.Time        `json:"created_at"`
}

func (f *Friendship) BeforeCreate(tx *gorm.DB) error {
	f.PairLow, f.PairHigh = f.UserID, f.FriendID
	if f.PairLow > f.PairHigh {
		f.PairLow, f.PairHigh = f.PairHigh, f.PairLow
	}
	return nil
}

type Message struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SenderID    uint      `gorm:"not null;index" json:"sender_id"`
	RecipientID uint      `gorm:"not null;index" json:"recipient_id"`
	Content     string    `gorm:"not null" json:"content"`
	Read        bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

type FriendRequestInput struct {
	UserID         uint   `json:"user_id" validate:"required"`
	FriendUsername string `json:"friend_username" validate:"required"`
}

// FriendRequestResponse is a pending request as seen by its recipient
type FriendRequestResponse struct {
	ID        uint         `json:"id"`
	User      UserResponse `json:"user"`
	CreatedAt time.Time    `json:"created_at"`
}

type ProfileResponse struct {
	User         UserResponse `json:"user"`
	FriendCount  int64        `json:"friend_count"`
	GroupCount   int64        `json:"group_count"`
	MutualGroups []Group      `json:"mutual_groups"`
}

type MessageInput struct {
	SenderID    uint   `json:"sender_id" validate:"required"`
	RecipientID uint   `json:"recipient_id" validate:"required"`
	Content     string `json:"content" validate:"required,max=4000"`
}

type ConversationResponse struct {
	User        UserResponse `json:"user"`
	LastMessage *Message     `json:"last_message"`
	UnreadCount int64        `json:"unread_count"`
}
