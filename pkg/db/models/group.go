package models

import (
	"time"

	"github.com/google/uuid"
)

// Group is a named, slugged private space. A non-nil PasswordHash puts the
// join flow behind a password gate.
type Group struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Slug         string    `gorm:"column:slug;type:text;not null;uniqueIndex"`
	Name         string    `gorm:"column:name;type:text;not null"`
	PasswordHash *string   `gorm:"column:password_hash;type:text"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}
