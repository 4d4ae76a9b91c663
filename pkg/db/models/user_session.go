package models

import (
	"time"

	"github.com/google/uuid"
)

// UserSession is a platform-wide browser session. Its ID is the opaque token
// stored in the user_session_id cookie. A nil ExpiresAt means valid forever.
type UserSession struct {
	ID        string     `gorm:"column:id;type:text;primaryKey"`
	UserID    uuid.UUID  `gorm:"column:user_id;type:uuid;not null"`
	User      *User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	ExpiresAt *time.Time `gorm:"column:expires_at"`
}

// Expired reports whether the session carries an expiry in the past.
func (s *UserSession) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && s.ExpiresAt.Before(now)
}
