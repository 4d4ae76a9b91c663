package members

import (
	"time"

	"github.com/google/uuid"

	"github.com/tripnest/tripnest-backend/pkg/db/models"
)

// ActorKind tags which identity plane resolved the acting member.
type ActorKind string

const (
	ActorAnonymous     ActorKind = "anonymous"
	ActorGuest         ActorKind = "guest"
	ActorAuthenticated ActorKind = "authenticated"
)

// Actor is the result of membership resolution: at most one acting member in
// the target group, plus the platform user when an account session is present.
// User may be non-nil even for a guest-resolved actor; the account session is
// valid platform-wide while the membership lookup is per group.
type Actor struct {
	Kind   ActorKind
	User   *models.User
	Member *models.GroupMember
}

// IsMember reports whether the actor resolved to a membership in the group.
func (a Actor) IsMember() bool {
	return a.Member != nil
}

// IsAdmin reports whether the resolved membership carries the admin flag.
func (a Actor) IsAdmin() bool {
	return a.Member != nil && a.Member.IsAdmin
}

// MemberDTO is the transport shape of a group membership.
type MemberDTO struct {
	ID          uuid.UUID `json:"id"`
	GroupID     uuid.UUID `json:"group_id"`
	DisplayName string    `json:"display_name"`
	Email       *string   `json:"email,omitempty"`
	IsAdmin     bool      `json:"is_admin"`
	Linked      bool      `json:"linked"`
	CreatedAt   time.Time `json:"created_at"`
}

func FromModel(m *models.GroupMember) *MemberDTO {
	if m == nil {
		return nil
	}
	return &MemberDTO{
		ID:          m.ID,
		GroupID:     m.GroupID,
		DisplayName: m.DisplayName,
		Email:       m.Email,
		IsAdmin:     m.IsAdmin,
		Linked:      m.Linked(),
		CreatedAt:   m.CreatedAt,
	}
}

// RosterEntry is the member shape shared with the whole group. Email stays
// private to the member it belongs to.
type RosterEntry struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
	IsAdmin     bool      `json:"is_admin"`
	Linked      bool      `json:"linked"`
	CreatedAt   time.Time `json:"created_at"`
}

func RosterEntryFromModel(m *models.GroupMember) RosterEntry {
	return RosterEntry{
		ID:          m.ID,
		DisplayName: m.DisplayName,
		IsAdmin:     m.IsAdmin,
		Linked:      m.Linked(),
		CreatedAt:   m.CreatedAt,
	}
}

// JoinRequest carries the inputs of the join flow. Password and DisplayName
// are both optional: a caller may pass the password gate without picking a
// name, and open groups need no password at all.
type JoinRequest struct {
	Slug        string
	Password    string
	DisplayName string
	Email       *string
}

// JoinResult reports whether the caller now acts as a member of the group.
// Established is false only in the "password gate passed, no name yet" state.
type JoinResult struct {
	GroupID     uuid.UUID  `json:"group_id"`
	Established bool       `json:"membership_established"`
	Member      *MemberDTO `json:"member,omitempty"`
}

// MembershipWithGroup pairs a membership with its group for listings.
type MembershipWithGroup struct {
	Member    MemberDTO `json:"member"`
	GroupSlug string    `json:"group_slug"`
	GroupName string    `json:"group_name"`
}
