package models

import (
	"time"

	"github.com/google/uuid"
)

// GroupMember is the acting identity of a person inside one group. UserID is
// nil for guests; attaching a user is one-directional and never undone. The
// first member created in a group is its bootstrap admin.
type GroupMember struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	GroupID     uuid.UUID  `gorm:"column:group_id;type:uuid;not null;index"`
	Group       *Group     `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
	UserID      *uuid.UUID `gorm:"column:user_id;type:uuid;index"`
	User        *User      `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL"`
	DisplayName string     `gorm:"column:display_name;type:text;not null"`
	Email       *string    `gorm:"column:email;type:text"`
	IsAdmin     bool       `gorm:"column:is_admin;not null;default:false"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
}

// Linked reports whether the membership has been claimed by a platform account.
func (m *GroupMember) Linked() bool {
	return m.UserID != nil
}
