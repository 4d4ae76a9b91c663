package members

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "github.com/tripnest/tripnest-backend/pkg/errors"

	"github.com/tripnest/tripnest-backend/pkg/db/models"
)

// Gate derives admin predicates from resolved memberships. Every privileged
// mutation in the system funnels through RequireAdmin before touching data.
type Gate struct {
	tx       txRunner
	repo     *Repository
	resolver *Resolver
}

// NewGate wires the authorization gate.
func NewGate(tx txRunner, repo *Repository, resolver *Resolver) *Gate {
	return &Gate{tx: tx, repo: repo, resolver: resolver}
}

// RequireAdmin resolves the caller in the group and fails unless the resolved
// membership carries the admin flag.
func (g *Gate) RequireAdmin(ctx context.Context, r *http.Request, groupID uuid.UUID) (*models.GroupMember, error) {
	actor, err := g.resolver.Resolve(ctx, r, groupID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "resolving membership")
	}
	if !actor.IsAdmin() {
		return nil, apperrors.New(apperrors.CodeForbidden, "admins only")
	}
	return actor.Member, nil
}

// ToggleAdmin flips the admin flag on another member. Admins cannot change
// their own role, and guests cannot hold admin rights: admin is a durable
// trust grant tied to a real account.
func (g *Gate) ToggleAdmin(ctx context.Context, r *http.Request, groupID, targetID uuid.UUID) (*models.GroupMember, error) {
	caller, err := g.RequireAdmin(ctx, r, groupID)
	if err != nil {
		return nil, err
	}
	target, err := g.targetInGroup(ctx, groupID, targetID)
	if err != nil {
		return nil, err
	}
	if target.ID == caller.ID {
		return nil, apperrors.New(apperrors.CodeStateConflict, "cannot change your own role")
	}
	if !target.Linked() {
		return nil, apperrors.New(apperrors.CodeStateConflict, "only registered users can be admins")
	}
	if err := g.repo.SetAdmin(ctx, target.ID, !target.IsAdmin); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "updating admin flag")
	}
	target.IsAdmin = !target.IsAdmin
	return target, nil
}

// DeleteMember removes another member from the group, cascading to their
// guest sessions. Admins may never delete themselves.
func (g *Gate) DeleteMember(ctx context.Context, r *http.Request, groupID, targetID uuid.UUID) error {
	caller, err := g.RequireAdmin(ctx, r, groupID)
	if err != nil {
		return err
	}
	target, err := g.targetInGroup(ctx, groupID, targetID)
	if err != nil {
		return err
	}
	if target.ID == caller.ID {
		return apperrors.New(apperrors.CodeStateConflict, "cannot remove yourself")
	}
	err = g.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := g.repo.WithTx(tx)
		if err := repo.DeleteSessions(ctx, target.ID); err != nil {
			return err
		}
		return repo.Delete(ctx, target.ID)
	})
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "deleting member")
	}
	return nil
}

// RevokeMemberSessions drops the target's guest sessions without removing the
// membership, forcing the guest browser to re-join.
func (g *Gate) RevokeMemberSessions(ctx context.Context, r *http.Request, groupID, targetID uuid.UUID) error {
	if _, err := g.RequireAdmin(ctx, r, groupID); err != nil {
		return err
	}
	target, err := g.targetInGroup(ctx, groupID, targetID)
	if err != nil {
		return err
	}
	if err := g.repo.DeleteSessions(ctx, target.ID); err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "revoking member sessions")
	}
	return nil
}

func (g *Gate) targetInGroup(ctx context.Context, groupID, targetID uuid.UUID) (*models.GroupMember, error) {
	target, err := g.repo.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "member not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "looking up member")
	}
	if target.GroupID != groupID {
		return nil, apperrors.New(apperrors.CodeNotFound, "member not found")
	}
	return target, nil
}
