package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Post is a media entry inside a group, authored by a GroupMember.
type Post struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	GroupID   uuid.UUID      `gorm:"column:group_id;type:uuid;not null;index"`
	Group     *Group         `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
	AuthorID  uuid.UUID      `gorm:"column:author_id;type:uuid;not null"`
	Author    *GroupMember   `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Title     *string        `gorm:"column:title;type:text"`
	Body      *string        `gorm:"column:body;type:text"`
	MediaURLs pq.StringArray `gorm:"column:media_urls;type:text[]"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
}
