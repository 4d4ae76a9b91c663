package models

import (
	"time"

	"github.com/google/uuid"
)

// MemberSession is a per-browser guest session scoped to one group. Its ID is
// the opaque token in the member_session_id cookie. MemberID stays nil in the
// "password gate passed, no display name yet" state.
type MemberSession struct {
	ID        string       `gorm:"column:id;type:text;primaryKey"`
	GroupID   uuid.UUID    `gorm:"column:group_id;type:uuid;not null;index"`
	Group     *Group       `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
	MemberID  *uuid.UUID   `gorm:"column:member_id;type:uuid;index"`
	Member    *GroupMember `gorm:"foreignKey:MemberID;constraint:OnDelete:SET NULL"`
	CreatedAt time.Time    `gorm:"column:created_at;autoCreateTime"`
	ExpiresAt *time.Time   `gorm:"column:expires_at"`
}

// Expired reports whether the session carries an expiry in the past.
func (s *MemberSession) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && s.ExpiresAt.Before(now)
}
