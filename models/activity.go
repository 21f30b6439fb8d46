package models

import (
	"time"
)

type ActivityAction string

const (
	ActivityGroupCreate    ActivityAction = "group_create"
	ActivityMemberJoin     ActivityAction = "member_join"
	ActivityMemberRemove   ActivityAction = "member_remove"
	ActivityInviteSend     ActivityAction = "invite_send"
	ActivityInviteAccept   ActivityAction = "invite_accept"
	ActivityInviteDecline  ActivityAction = "invite_decline"
	ActivitySettingsUpdate ActivityAction = "settings_update"
	ActivityMoveCreate     ActivityAction = "move_create"
	ActivityMoveUpdate     ActivityAction = "move_update"
	ActivityMoveDelete     ActivityAction = "move_delete"
	ActivityMoveExpire     ActivityAction = "move_expire"
)

// ActivityActions lists every action in display order.
var ActivityActions = []ActivityAction{
	ActivityGroupCreate,
	ActivityMemberJoin,
	ActivityMemberRemove,
	ActivityInviteSend,
	ActivityInviteAccept,
	ActivityInviteDecline,
	ActivitySettingsUpdate,
	ActivityMoveCreate,
	ActivityMoveUpdate,
	ActivityMoveDelete,
	ActivityMoveExpire,
}

// ActivityLog records state changes inside a group. UserID is zero for
// changes made by the cleanup sweep.
type ActivityLog struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	GroupID   uint           `gorm:"index" json:"group_id"`
	UserID    uint           `gorm:"index" json:"user_id"`
	Action    ActivityAction `gorm:"index" json:"action"`
	MoveID    *uint          `gorm:"index" json:"move_id,omitempty"`
	Details   string         `json:"details,omitempty"`
	IPAddress string         `json:"ip_address,omitempty"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
}

type ActivityPage struct {
	Logs  []ActivityLog `json:"logs"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}
