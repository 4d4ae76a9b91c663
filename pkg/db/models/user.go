package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the durable platform account. Group-level identity lives on
// GroupMember; a person can act in groups without ever owning a User row.
type User struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Email        string    `gorm:"column:email;type:text;not null;uniqueIndex"`
	Username     *string   `gorm:"column:username;type:text;uniqueIndex"`
	AvatarURL    *string   `gorm:"column:avatar_url;type:text"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}
