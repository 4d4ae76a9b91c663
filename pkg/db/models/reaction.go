package models

import (
	"time"

	"github.com/google/uuid"
)

// Reaction is an emoji left on a post by a member.
type Reaction struct {
	ID        uuid.UUID    `gorm:"column:id;type:uuid;primaryKey"`
	PostID    uuid.UUID    `gorm:"column:post_id;type:uuid;not null;index"`
	Post      *Post        `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	MemberID  uuid.UUID    `gorm:"column:member_id;type:uuid;not null"`
	Member    *GroupMember `gorm:"foreignKey:MemberID;constraint:OnDelete:CASCADE"`
	Emoji     string       `gorm:"column:emoji;type:text;not null"`
	CreatedAt time.Time    `gorm:"column:created_at;autoCreateTime"`
}
