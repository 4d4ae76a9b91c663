package controllers

import (
	"net/http"

	"github.com/tripnest/tripnest-backend/api/responses"
	"github.com/tripnest/tripnest-backend/api/validators"
	"github.com/tripnest/tripnest-backend/internal/groups"
	"github.com/tripnest/tripnest-backend/internal/members"
	"github.com/tripnest/tripnest-backend/pkg/logger"
)

type establishMemberBody struct {
	DisplayName string  `json:"display_name" validate:"required,min=1,max=64"`
	Email       *string `json:"email" validate:"omitempty,email"`
}

// MemberMe reports how the caller resolves inside the group: kind, membership
// and admin flag.
func MemberMe(resolver *members.Resolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		groupID, err := uuidParam(r, "groupID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		actor, err := resolver.Resolve(ctx, r, groupID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"kind":   actor.Kind,
			"member": members.FromModel(actor.Member),
		})
	}
}

// MemberEstablish sets the caller's display name in the group, inhabiting a
// matching unlinked membership when one exists.
func MemberEstablish(rc *members.Reconciler, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		groupID, err := uuidParam(r, "groupID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var body establishMemberBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		member, err := rc.EstablishMembership(ctx, w, r, groupID, body.DisplayName, body.Email)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, members.FromModel(member))
	}
}

func MemberList(svc *groups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		groupID, err := uuidParam(r, "groupID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		roster, err := svc.Roster(ctx, r, groupID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, roster)
	}
}

func MemberToggleAdmin(gate *members.Gate, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		groupID, err := uuidParam(r, "groupID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		memberID, err := uuidParam(r, "memberID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		updated, err := gate.ToggleAdmin(ctx, r, groupID, memberID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, members.FromModel(updated))
	}
}

func MemberDelete(gate *members.Gate, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		groupID, err := uuidParam(r, "groupID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		memberID, err := uuidParam(r, "memberID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if err := gate.DeleteMember(ctx, r, groupID, memberID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func MemberRevokeSessions(gate *members.Gate, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		groupID, err := uuidParam(r, "groupID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		memberID, err := uuidParam(r, "memberID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if err := gate.RevokeMemberSessions(ctx, r, groupID, memberID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "sessions_revoked"})
	}
}
