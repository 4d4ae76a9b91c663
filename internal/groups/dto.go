package groups

import (
	"time"

	"github.com/google/uuid"

	"github.com/tripnest/tripnest-backend/pkg/db/models"
)

// GroupDTO is the transport shape of a group. The password credential never
// leaves the service; only its presence is exposed.
type GroupDTO struct {
	ID          uuid.UUID `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	HasPassword bool      `json:"has_password"`
	CreatedAt   time.Time `json:"created_at"`
}

func FromModel(g *models.Group) *GroupDTO {
	if g == nil {
		return nil
	}
	return &GroupDTO{
		ID:          g.ID,
		Slug:        g.Slug,
		Name:        g.Name,
		HasPassword: g.PasswordHash != nil,
		CreatedAt:   g.CreatedAt,
	}
}

// CreateGroupRequest carries the inputs for group creation. Password is
// optional; an empty password leaves the group open.
type CreateGroupRequest struct {
	Slug        string
	Name        string
	Password    string
	DisplayName string
}

// UpdateGroupRequest mutates group settings. Nil fields are left untouched;
// RemovePassword clears the password gate regardless of Password.
type UpdateGroupRequest struct {
	Name           *string
	Slug           *string
	Password       *string
	RemovePassword bool
}
