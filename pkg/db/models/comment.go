package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment belongs to a post. ParentID supports one level of replies; a comment
// whose parent itself has a parent is rejected before insert.
type Comment struct {
	ID        uuid.UUID    `gorm:"column:id;type:uuid;primaryKey"`
	PostID    uuid.UUID    `gorm:"column:post_id;type:uuid;not null;index"`
	Post      *Post        `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	MemberID  uuid.UUID    `gorm:"column:member_id;type:uuid;not null"`
	Member    *GroupMember `gorm:"foreignKey:MemberID;constraint:OnDelete:CASCADE"`
	ParentID  *uuid.UUID   `gorm:"column:parent_id;type:uuid"`
	Text      string       `gorm:"column:text;type:text;not null"`
	CreatedAt time.Time    `gorm:"column:created_at;autoCreateTime"`
}
