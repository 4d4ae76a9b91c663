package controllers

import (
	"net/http"

	"github.com/tripnest/tripnest-backend/api/responses"
	"github.com/tripnest/tripnest-backend/api/validators"
	"github.com/tripnest/tripnest-backend/internal/posts"
	"github.com/tripnest/tripnest-backend/pkg/logger"
)

func PostCreate(svc *posts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		groupID, err := uuidParam(r, "groupID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var req posts.CreatePostRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		post, err := svc.CreatePost(ctx, r, groupID, req)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, post)
	}
}

func PostList(svc *posts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		groupID, err := uuidParam(r, "groupID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		feed, err := svc.ListGroupPosts(ctx, r, groupID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, feed)
	}
}

func PostDelete(svc *posts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		groupID, err := uuidParam(r, "groupID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		postID, err := uuidParam(r, "postID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if err := svc.DeletePost(ctx, r, groupID, postID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func CommentCreate(svc *posts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		groupID, err := uuidParam(r, "groupID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		postID, err := uuidParam(r, "postID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var req posts.CreateCommentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		comment, err := svc.CreateComment(ctx, r, groupID, postID, req)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, comment)
	}
}

func CommentList(svc *posts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		groupID, err := uuidParam(r, "groupID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		postID, err := uuidParam(r, "postID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		comments, err := svc.ListComments(ctx, r, groupID, postID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, comments)
	}
}

func CommentDelete(svc *posts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		groupID, err := uuidParam(r, "groupID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		postID, err := uuidParam(r, "postID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		commentID, err := uuidParam(r, "commentID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if err := svc.DeleteComment(ctx, r, groupID, postID, commentID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func ReactionToggle(svc *posts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		groupID, err := uuidParam(r, "groupID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		postID, err := uuidParam(r, "postID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var req posts.ReactionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		reaction, added, err := svc.ToggleReaction(ctx, r, groupID, postID, req)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"added": added, "reaction": reaction})
	}
}

func ReactionList(svc *posts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		groupID, err := uuidParam(r, "groupID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		postID, err := uuidParam(r, "postID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		reactions, err := svc.ListReactions(ctx, r, groupID, postID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, reactions)
	}
}
