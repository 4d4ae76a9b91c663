package members

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripnest/tripnest-backend/pkg/db/models"
)

// sessionSource is the read surface the resolver needs from the session
// manager. Declared here, on the consumer side, so the sessions package never
// depends on this one.
type sessionSource interface {
	UserSession(ctx context.Context, r *http.Request) *models.UserSession
	MemberSession(ctx context.Context, r *http.Request, groupID *uuid.UUID) *models.MemberSession
}

// Resolver maps ambient session state plus a target group to at most one
// acting membership. Every operation that needs to know "who is acting in
// this group right now" goes through Resolve.
type Resolver struct {
	sessions sessionSource
	repo     *Repository
}

// NewResolver wires the resolver to its session source and member store.
func NewResolver(sessions sessionSource, repo *Repository) *Resolver {
	return &Resolver{sessions: sessions, repo: repo}
}

// Resolve applies the precedence rule: an account session's membership in the
// group always wins, even when a guest cookie for the same group is present.
// A guest cookie only resolves when it was issued for this exact group and
// carries a membership. A person logged in on the platform may still carry a
// stale guest cookie from before they registered; the account branch wins so
// admin rights tied to the account are never shadowed by an orphaned cookie.
func (rs *Resolver) Resolve(ctx context.Context, r *http.Request, groupID uuid.UUID) (Actor, error) {
	actor := Actor{Kind: ActorAnonymous}

	if us := rs.sessions.UserSession(ctx, r); us != nil {
		actor.User = us.User
		member, err := rs.repo.GetByGroupAndUser(ctx, groupID, us.UserID)
		switch {
		case err == nil:
			actor.Kind = ActorAuthenticated
			actor.Member = member
			return actor, nil
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return actor, err
		}
	}

	ms := rs.sessions.MemberSession(ctx, r, &groupID)
	if ms == nil || ms.MemberID == nil {
		return actor, nil
	}
	member, err := rs.repo.GetByID(ctx, *ms.MemberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return actor, nil
		}
		return actor, err
	}
	actor.Kind = ActorGuest
	actor.Member = member
	return actor, nil
}
