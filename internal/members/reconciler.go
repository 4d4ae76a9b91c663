package members

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "github.com/tripnest/tripnest-backend/pkg/errors"

	"github.com/tripnest/tripnest-backend/pkg/db/models"
	"github.com/tripnest/tripnest-backend/pkg/security"
)

// txRunner runs a function inside a database transaction.
type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// groupFinder is the slice of the groups store the reconciler needs.
type groupFinder interface {
	FindBySlug(ctx context.Context, slug string) (*models.Group, error)
}

// sessionWriter is the cookie-mutating surface of the session manager used by
// the join flow.
type sessionWriter interface {
	sessionSource
	IssueMemberSession(ctx context.Context, w http.ResponseWriter, groupID uuid.UUID, memberID *uuid.UUID) (*models.MemberSession, error)
	AttachMember(ctx context.Context, w http.ResponseWriter, sessionID string, memberID uuid.UUID) error
}

// Reconciler owns every side-effecting membership path: joining a group,
// establishing (or inhabiting) a membership, and the bulk link sweep run
// after login and registration.
type Reconciler struct {
	tx       txRunner
	repo     *Repository
	groups   groupFinder
	sessions sessionWriter
	resolver *Resolver
}

// NewReconciler wires the reconciler to its collaborators.
func NewReconciler(tx txRunner, repo *Repository, groups groupFinder, sessions sessionWriter, resolver *Resolver) *Reconciler {
	return &Reconciler{tx: tx, repo: repo, groups: groups, sessions: sessions, resolver: resolver}
}

// JoinGroup is the idempotent entry point of the join flow. A caller who
// already resolves to a membership in the group succeeds immediately with no
// side effects; everyone else passes the password gate (when the group has
// one) and, when a display name is supplied, establishes a membership.
func (rc *Reconciler) JoinGroup(ctx context.Context, w http.ResponseWriter, r *http.Request, req JoinRequest) (*JoinResult, error) {
	group, err := rc.groups.FindBySlug(ctx, strings.TrimSpace(req.Slug))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "group not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "looking up group")
	}

	actor, err := rc.resolver.Resolve(ctx, r, group.ID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "resolving membership")
	}
	if actor.IsMember() {
		return &JoinResult{GroupID: group.ID, Established: true, Member: FromModel(actor.Member)}, nil
	}

	if group.PasswordHash != nil {
		if !rc.pastPasswordGate(ctx, r, group.ID) {
			if req.Password == "" {
				return nil, apperrors.New(apperrors.CodeUnauthorized, "group password required")
			}
			ok, err := security.VerifyPassword(req.Password, *group.PasswordHash)
			if err != nil {
				return nil, apperrors.Wrap(apperrors.CodeInternal, err, "verifying group password")
			}
			if !ok {
				return nil, apperrors.New(apperrors.CodeUnauthorized, "invalid group password")
			}
		}
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		// Password gate passed but no name chosen yet. An unauthenticated
		// caller gets a memberless guest session so later requests are
		// recognized as past the gate; an authenticated caller never needs
		// a guest cookie.
		if actor.User == nil && rc.sessions.MemberSession(ctx, r, &group.ID) == nil {
			if _, err := rc.sessions.IssueMemberSession(ctx, w, group.ID, nil); err != nil {
				return nil, apperrors.Wrap(apperrors.CodeInternal, err, "issuing guest session")
			}
		}
		return &JoinResult{GroupID: group.ID, Established: false}, nil
	}

	member, err := rc.EstablishMembership(ctx, w, r, group.ID, displayName, req.Email)
	if err != nil {
		return nil, err
	}
	return &JoinResult{GroupID: group.ID, Established: true, Member: FromModel(member)}, nil
}

// pastPasswordGate reports whether the caller already holds a guest session
// for the group, meaning the password gate was cleared on a prior request.
func (rc *Reconciler) pastPasswordGate(ctx context.Context, r *http.Request, groupID uuid.UUID) bool {
	return rc.sessions.MemberSession(ctx, r, &groupID) != nil
}

// EstablishMembership finds or creates the caller's membership in the group.
// An existing unlinked membership matching the display name (case-insensitive)
// or the email is inhabited instead of duplicated, so a returning guest keeps
// their comment and reaction history. The bootstrap check and the insert run
// in one transaction so concurrent first joiners cannot both become admin.
func (rc *Reconciler) EstablishMembership(ctx context.Context, w http.ResponseWriter, r *http.Request, groupID uuid.UUID, displayName string, email *string) (*models.GroupMember, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "display name is required")
	}

	var user *models.User
	if us := rc.sessions.UserSession(ctx, r); us != nil {
		user = us.User
	}

	var member *models.GroupMember
	err := rc.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := rc.repo.WithTx(tx)

		found, err := repo.FindUnlinkedMatch(ctx, groupID, displayName, email)
		switch {
		case err == nil:
			if user != nil {
				if err := repo.AttachUser(ctx, found.ID, user.ID); err != nil {
					return err
				}
				found.UserID = &user.ID
			}
			if found.Email == nil && email != nil && *email != "" {
				if err := repo.BackfillEmail(ctx, found.ID, *email); err != nil {
					return err
				}
				found.Email = email
			}
			member = found
			return nil
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		count, err := repo.CountByGroup(ctx, groupID)
		if err != nil {
			return err
		}
		fresh := &models.GroupMember{
			GroupID:     groupID,
			DisplayName: displayName,
			Email:       email,
			IsAdmin:     count == 0,
		}
		if user != nil {
			fresh.UserID = &user.ID
		}
		if err := repo.Create(ctx, fresh); err != nil {
			return err
		}
		member = fresh
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "establishing membership")
	}

	if user == nil {
		if err := rc.bindGuestSession(ctx, w, r, groupID, member.ID); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeInternal, err, "binding guest session")
		}
	}
	return member, nil
}

// bindGuestSession attaches the membership to the caller's existing guest
// session, or issues a fresh one when none is present.
func (rc *Reconciler) bindGuestSession(ctx context.Context, w http.ResponseWriter, r *http.Request, groupID, memberID uuid.UUID) error {
	if existing := rc.sessions.MemberSession(ctx, r, &groupID); existing != nil {
		return rc.sessions.AttachMember(ctx, w, existing.ID, memberID)
	}
	_, err := rc.sessions.IssueMemberSession(ctx, w, groupID, &memberID)
	return err
}

// LinkGuestMemberships claims past guest activity for a freshly authenticated
// account: every unlinked membership across all groups whose stored email
// matches exactly gets the account attached. Memberships already linked to
// another account are never touched.
func (rc *Reconciler) LinkGuestMemberships(ctx context.Context, userID uuid.UUID, email string) (int64, error) {
	if email == "" {
		return 0, nil
	}
	claimed, err := rc.repo.ClaimByEmail(ctx, userID, email)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeInternal, err, "linking guest memberships")
	}
	return claimed, nil
}
