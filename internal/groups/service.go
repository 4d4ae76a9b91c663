package groups

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "github.com/tripnest/tripnest-backend/pkg/errors"

	"github.com/tripnest/tripnest-backend/internal/members"
	"github.com/tripnest/tripnest-backend/pkg/config"
	"github.com/tripnest/tripnest-backend/pkg/db/models"
	"github.com/tripnest/tripnest-backend/pkg/security"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// userSessionSource is the slice of the session manager the service needs to
// identify authenticated callers.
type userSessionSource interface {
	UserSession(ctx context.Context, r *http.Request) *models.UserSession
}

// adminGate guards the settings mutations.
type adminGate interface {
	RequireAdmin(ctx context.Context, r *http.Request, groupID uuid.UUID) (*models.GroupMember, error)
}

// membershipResolver identifies the caller inside a group.
type membershipResolver interface {
	Resolve(ctx context.Context, r *http.Request, groupID uuid.UUID) (members.Actor, error)
}

// Service owns group lifecycle: creation with its bootstrap admin, the
// member-only roster, and admin-gated settings changes.
type Service struct {
	tx       txRunner
	repo     *Repository
	memberRp *members.Repository
	sessions userSessionSource
	resolver membershipResolver
	gate     adminGate
	pwCfg    config.PasswordConfig
}

// NewService wires the groups service.
func NewService(tx txRunner, repo *Repository, memberRepo *members.Repository, sessions userSessionSource, resolver membershipResolver, gate adminGate, pwCfg config.PasswordConfig) *Service {
	return &Service{tx: tx, repo: repo, memberRp: memberRepo, sessions: sessions, resolver: resolver, gate: gate, pwCfg: pwCfg}
}

// Create makes a new group and its first membership in one transaction. The
// creator must be authenticated and becomes the bootstrap admin; both rows
// are inserted or neither is.
func (s *Service) Create(ctx context.Context, r *http.Request, req CreateGroupRequest) (*GroupDTO, *members.MemberDTO, error) {
	us := s.sessions.UserSession(ctx, r)
	if us == nil || us.User == nil {
		return nil, nil, apperrors.New(apperrors.CodeUnauthorized, "must be logged in")
	}

	slug := strings.ToLower(strings.TrimSpace(req.Slug))
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, nil, apperrors.New(apperrors.CodeValidation, "group name is required")
	}
	if !slugPattern.MatchString(slug) {
		return nil, nil, apperrors.New(apperrors.CodeValidation, "slug must be lowercase letters, digits and hyphens")
	}

	taken, err := s.repo.SlugExists(ctx, slug)
	if err != nil {
		return nil, nil, apperrors.Wrap(apperrors.CodeInternal, err, "checking slug")
	}
	if taken {
		return nil, nil, apperrors.New(apperrors.CodeConflict, "slug already taken")
	}

	var passwordHash *string
	if req.Password != "" {
		hash, err := security.HashPassword(req.Password, s.pwCfg)
		if err != nil {
			return nil, nil, apperrors.Wrap(apperrors.CodeInternal, err, "hashing group password")
		}
		passwordHash = &hash
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = displayNameFor(us.User)
	}

	group := &models.Group{Slug: slug, Name: name, PasswordHash: passwordHash}
	admin := &models.GroupMember{
		UserID:      &us.UserID,
		DisplayName: displayName,
		Email:       &us.User.Email,
		IsAdmin:     true,
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, group); err != nil {
			return err
		}
		admin.GroupID = group.ID
		return s.memberRp.WithTx(tx).Create(ctx, admin)
	})
	if err != nil {
		return nil, nil, apperrors.Wrap(apperrors.CodeInternal, err, "creating group")
	}
	return FromModel(group), members.FromModel(admin), nil
}

// Get returns the group behind a slug.
func (s *Service) Get(ctx context.Context, slug string) (*GroupDTO, error) {
	group, err := s.findBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return FromModel(group), nil
}

// UpdateSettings renames, re-slugs, or changes the password gate of a group.
// Admin-only.
func (s *Service) UpdateSettings(ctx context.Context, r *http.Request, groupID uuid.UUID, req UpdateGroupRequest) (*GroupDTO, error) {
	if _, err := s.gate.RequireAdmin(ctx, r, groupID); err != nil {
		return nil, err
	}
	group, err := s.repo.FindByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "group not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "looking up group")
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperrors.New(apperrors.CodeValidation, "group name is required")
		}
		group.Name = name
	}
	if req.Slug != nil {
		slug := strings.ToLower(strings.TrimSpace(*req.Slug))
		if !slugPattern.MatchString(slug) {
			return nil, apperrors.New(apperrors.CodeValidation, "slug must be lowercase letters, digits and hyphens")
		}
		if slug != group.Slug {
			taken, err := s.repo.SlugExists(ctx, slug)
			if err != nil {
				return nil, apperrors.Wrap(apperrors.CodeInternal, err, "checking slug")
			}
			if taken {
				return nil, apperrors.New(apperrors.CodeConflict, "slug already taken")
			}
			group.Slug = slug
		}
	}
	switch {
	case req.RemovePassword:
		group.PasswordHash = nil
	case req.Password != nil && *req.Password != "":
		hash, err := security.HashPassword(*req.Password, s.pwCfg)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeInternal, err, "hashing group password")
		}
		group.PasswordHash = &hash
	}

	if err := s.repo.Update(ctx, group); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "updating group")
	}
	return FromModel(group), nil
}

// Roster returns the member list of a group. Only members may view it, and
// the entries never carry email addresses.
func (s *Service) Roster(ctx context.Context, r *http.Request, groupID uuid.UUID) ([]members.RosterEntry, error) {
	actor, err := s.resolver.Resolve(ctx, r, groupID)
	if err != nil {
		return nil, err
	}
	if !actor.IsMember() {
		return nil, apperrors.New(apperrors.CodeForbidden, "not a member of this group")
	}
	rows, err := s.memberRp.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "listing members")
	}
	out := make([]members.RosterEntry, 0, len(rows))
	for i := range rows {
		out = append(out, members.RosterEntryFromModel(&rows[i]))
	}
	return out, nil
}

func (s *Service) findBySlug(ctx context.Context, slug string) (*models.Group, error) {
	group, err := s.repo.FindBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "group not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "looking up group")
	}
	return group, nil
}

func displayNameFor(user *models.User) string {
	if user.Username != nil && *user.Username != "" {
		return *user.Username
	}
	if at := strings.IndexByte(user.Email, '@'); at > 0 {
		return user.Email[:at]
	}
	return user.Email
}
