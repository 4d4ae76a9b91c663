package posts

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	apperrors "github.com/tripnest/tripnest-backend/pkg/errors"

	"github.com/tripnest/tripnest-backend/internal/members"
	"github.com/tripnest/tripnest-backend/pkg/db/models"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// membershipResolver identifies the acting member for write operations.
type membershipResolver interface {
	Resolve(ctx context.Context, r *http.Request, groupID uuid.UUID) (members.Actor, error)
}

// adminGate guards the moderation operations.
type adminGate interface {
	RequireAdmin(ctx context.Context, r *http.Request, groupID uuid.UUID) (*models.GroupMember, error)
}

// Service is the consumer plane over the identity core: posts, comments and
// reactions inside a group. Every operation resolves the acting member first;
// deletes are admin moderation actions.
type Service struct {
	tx       txRunner
	repo     *Repository
	resolver membershipResolver
	gate     adminGate
}

// NewService wires the posts service.
func NewService(tx txRunner, repo *Repository, resolver membershipResolver, gate adminGate) *Service {
	return &Service{tx: tx, repo: repo, resolver: resolver, gate: gate}
}

// CreatePost publishes a post into the group as the resolved member.
func (s *Service) CreatePost(ctx context.Context, r *http.Request, groupID uuid.UUID, req CreatePostRequest) (*PostDTO, error) {
	member, err := s.requireMember(ctx, r, groupID)
	if err != nil {
		return nil, err
	}
	if emptyPost(req) {
		return nil, apperrors.New(apperrors.CodeValidation, "post needs a title, body or media")
	}
	post := &models.Post{
		GroupID:   groupID,
		AuthorID:  member.ID,
		Title:     req.Title,
		Body:      req.Body,
		MediaURLs: pq.StringArray(req.MediaURLs),
	}
	if err := s.repo.CreatePost(ctx, post); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "creating post")
	}
	post.Author = member
	return PostFromModel(post), nil
}

// ListGroupPosts returns the group's feed to any resolved member.
func (s *Service) ListGroupPosts(ctx context.Context, r *http.Request, groupID uuid.UUID) ([]PostDTO, error) {
	if _, err := s.requireMember(ctx, r, groupID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "listing posts")
	}
	out := make([]PostDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *PostFromModel(&rows[i]))
	}
	return out, nil
}

// DeletePost is an admin moderation action; it removes the post together with
// its comments and reactions.
func (s *Service) DeletePost(ctx context.Context, r *http.Request, groupID, postID uuid.UUID) error {
	if _, err := s.gate.RequireAdmin(ctx, r, groupID); err != nil {
		return err
	}
	post, err := s.postInGroup(ctx, groupID, postID)
	if err != nil {
		return err
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).DeletePost(ctx, post.ID)
	})
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "deleting post")
	}
	return nil
}

// CreateComment adds a comment or a reply. Replies are limited to 2 levels: a
// parent that itself has a parent is rejected before insert.
func (s *Service) CreateComment(ctx context.Context, r *http.Request, groupID, postID uuid.UUID, req CreateCommentRequest) (*CommentDTO, error) {
	member, err := s.requireMember(ctx, r, groupID)
	if err != nil {
		return nil, err
	}
	if _, err := s.postInGroup(ctx, groupID, postID); err != nil {
		return nil, err
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "comment text is required")
	}
	if req.ParentID != nil {
		parent, err := s.repo.GetComment(ctx, *req.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.New(apperrors.CodeNotFound, "parent comment not found")
			}
			return nil, apperrors.Wrap(apperrors.CodeInternal, err, "looking up parent comment")
		}
		if parent.PostID != postID {
			return nil, apperrors.New(apperrors.CodeNotFound, "parent comment not found")
		}
		if parent.ParentID != nil {
			return nil, apperrors.New(apperrors.CodeValidation, "replies are limited to 2 levels")
		}
	}
	comment := &models.Comment{
		PostID:   postID,
		MemberID: member.ID,
		ParentID: req.ParentID,
		Text:     text,
	}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "creating comment")
	}
	comment.Member = member
	return CommentFromModel(comment), nil
}

// ListComments returns a post's comments to any resolved member.
func (s *Service) ListComments(ctx context.Context, r *http.Request, groupID, postID uuid.UUID) ([]CommentDTO, error) {
	if _, err := s.requireMember(ctx, r, groupID); err != nil {
		return nil, err
	}
	if _, err := s.postInGroup(ctx, groupID, postID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListComments(ctx, postID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "listing comments")
	}
	out := make([]CommentDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *CommentFromModel(&rows[i]))
	}
	return out, nil
}

// DeleteComment is an admin moderation action; direct replies go with it.
func (s *Service) DeleteComment(ctx context.Context, r *http.Request, groupID, postID, commentID uuid.UUID) error {
	if _, err := s.gate.RequireAdmin(ctx, r, groupID); err != nil {
		return err
	}
	if _, err := s.postInGroup(ctx, groupID, postID); err != nil {
		return err
	}
	comment, err := s.repo.GetComment(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.New(apperrors.CodeNotFound, "comment not found")
		}
		return apperrors.Wrap(apperrors.CodeInternal, err, "looking up comment")
	}
	if comment.PostID != postID {
		return apperrors.New(apperrors.CodeNotFound, "comment not found")
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).DeleteComment(ctx, comment.ID)
	})
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "deleting comment")
	}
	return nil
}

// ToggleReaction adds the member's emoji to the post, or removes it when the
// same emoji is already present.
func (s *Service) ToggleReaction(ctx context.Context, r *http.Request, groupID, postID uuid.UUID, req ReactionRequest) (*ReactionDTO, bool, error) {
	member, err := s.requireMember(ctx, r, groupID)
	if err != nil {
		return nil, false, err
	}
	if _, err := s.postInGroup(ctx, groupID, postID); err != nil {
		return nil, false, err
	}

	existing, err := s.repo.FindReaction(ctx, postID, member.ID, req.Emoji)
	switch {
	case err == nil:
		if err := s.repo.DeleteReaction(ctx, existing.ID); err != nil {
			return nil, false, apperrors.Wrap(apperrors.CodeInternal, err, "removing reaction")
		}
		return nil, false, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, false, apperrors.Wrap(apperrors.CodeInternal, err, "looking up reaction")
	}

	reaction := &models.Reaction{PostID: postID, MemberID: member.ID, Emoji: req.Emoji}
	if err := s.repo.CreateReaction(ctx, reaction); err != nil {
		return nil, false, apperrors.Wrap(apperrors.CodeInternal, err, "creating reaction")
	}
	return ReactionFromModel(reaction), true, nil
}

// ListReactions returns a post's reactions to any resolved member.
func (s *Service) ListReactions(ctx context.Context, r *http.Request, groupID, postID uuid.UUID) ([]ReactionDTO, error) {
	if _, err := s.requireMember(ctx, r, groupID); err != nil {
		return nil, err
	}
	if _, err := s.postInGroup(ctx, groupID, postID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListReactions(ctx, postID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "listing reactions")
	}
	out := make([]ReactionDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *ReactionFromModel(&rows[i]))
	}
	return out, nil
}

func (s *Service) requireMember(ctx context.Context, r *http.Request, groupID uuid.UUID) (*models.GroupMember, error) {
	actor, err := s.resolver.Resolve(ctx, r, groupID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "resolving membership")
	}
	if !actor.IsMember() {
		return nil, apperrors.New(apperrors.CodeForbidden, "not a member of this group")
	}
	return actor.Member, nil
}

func (s *Service) postInGroup(ctx context.Context, groupID, postID uuid.UUID) (*models.Post, error) {
	post, err := s.repo.GetPost(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "post not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "looking up post")
	}
	if post.GroupID != groupID {
		return nil, apperrors.New(apperrors.CodeNotFound, "post not found")
	}
	return post, nil
}

func emptyPost(req CreatePostRequest) bool {
	hasTitle := req.Title != nil && strings.TrimSpace(*req.Title) != ""
	hasBody := req.Body != nil && strings.TrimSpace(*req.Body) != ""
	return !hasTitle && !hasBody && len(req.MediaURLs) == 0
}
