package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tripnest/tripnest-backend/api/responses"
	"github.com/tripnest/tripnest-backend/api/validators"
	"github.com/tripnest/tripnest-backend/internal/groups"
	"github.com/tripnest/tripnest-backend/internal/members"
	"github.com/tripnest/tripnest-backend/pkg/logger"
)

type createGroupBody struct {
	Slug        string `json:"slug" validate:"required,min=2,max=64"`
	Name        string `json:"name" validate:"required,min=1,max=120"`
	Password    string `json:"password" validate:"omitempty,min=4,max=128"`
	DisplayName string `json:"display_name" validate:"omitempty,min=1,max=64"`
}

type updateGroupBody struct {
	Name           *string `json:"name" validate:"omitempty,min=1,max=120"`
	Slug           *string `json:"slug" validate:"omitempty,min=2,max=64"`
	Password       *string `json:"password" validate:"omitempty,min=4,max=128"`
	RemovePassword bool    `json:"remove_password"`
}

type joinGroupBody struct {
	Password    string  `json:"password"`
	DisplayName string  `json:"display_name" validate:"omitempty,min=1,max=64"`
	Email       *string `json:"email" validate:"omitempty,email"`
}

func GroupCreate(svc *groups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var body createGroupBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		group, admin, err := svc.Create(ctx, r, groups.CreateGroupRequest{
			Slug:        body.Slug,
			Name:        body.Name,
			Password:    body.Password,
			DisplayName: body.DisplayName,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"group":  group,
			"member": admin,
		})
	}
}

func GroupGet(svc *groups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		group, err := svc.Get(ctx, chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, group)
	}
}

func GroupUpdate(svc *groups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		groupID, err := uuidParam(r, "groupID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var body updateGroupBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		group, err := svc.UpdateSettings(ctx, r, groupID, groups.UpdateGroupRequest{
			Name:           body.Name,
			Slug:           body.Slug,
			Password:       body.Password,
			RemovePassword: body.RemovePassword,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, group)
	}
}

func GroupJoin(rc *members.Reconciler, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var body joinGroupBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		result, err := rc.JoinGroup(ctx, w, r, members.JoinRequest{
			Slug:        chi.URLParam(r, "slug"),
			Password:    body.Password,
			DisplayName: body.DisplayName,
			Email:       body.Email,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
