package posts

import (
	"time"

	"github.com/google/uuid"

	"github.com/tripnest/tripnest-backend/pkg/db/models"
)

// PostDTO is the transport shape of a post.
type PostDTO struct {
	ID        uuid.UUID `json:"id"`
	GroupID   uuid.UUID `json:"group_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Author    string    `json:"author,omitempty"`
	Title     *string   `json:"title,omitempty"`
	Body      *string   `json:"body,omitempty"`
	MediaURLs []string  `json:"media_urls,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func PostFromModel(p *models.Post) *PostDTO {
	if p == nil {
		return nil
	}
	dto := &PostDTO{
		ID:        p.ID,
		GroupID:   p.GroupID,
		AuthorID:  p.AuthorID,
		Title:     p.Title,
		Body:      p.Body,
		MediaURLs: []string(p.MediaURLs),
		CreatedAt: p.CreatedAt,
	}
	if p.Author != nil {
		dto.Author = p.Author.DisplayName
	}
	return dto
}

// CommentDTO is the transport shape of a comment.
type CommentDTO struct {
	ID        uuid.UUID  `json:"id"`
	PostID    uuid.UUID  `json:"post_id"`
	MemberID  uuid.UUID  `json:"member_id"`
	Author    string     `json:"author,omitempty"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	Text      string     `json:"text"`
	CreatedAt time.Time  `json:"created_at"`
}

func CommentFromModel(c *models.Comment) *CommentDTO {
	if c == nil {
		return nil
	}
	dto := &CommentDTO{
		ID:        c.ID,
		PostID:    c.PostID,
		MemberID:  c.MemberID,
		ParentID:  c.ParentID,
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
	}
	if c.Member != nil {
		dto.Author = c.Member.DisplayName
	}
	return dto
}

// ReactionDTO is the transport shape of a reaction.
type ReactionDTO struct {
	ID        uuid.UUID `json:"id"`
	PostID    uuid.UUID `json:"post_id"`
	MemberID  uuid.UUID `json:"member_id"`
	Emoji     string    `json:"emoji"`
	CreatedAt time.Time `json:"created_at"`
}

func ReactionFromModel(r *models.Reaction) *ReactionDTO {
	if r == nil {
		return nil
	}
	return &ReactionDTO{
		ID:        r.ID,
		PostID:    r.PostID,
		MemberID:  r.MemberID,
		Emoji:     r.Emoji,
		CreatedAt: r.CreatedAt,
	}
}

// CreatePostRequest carries the inputs for posting into a group.
type CreatePostRequest struct {
	Title     *string  `json:"title" validate:"omitempty,max=200"`
	Body      *string  `json:"body" validate:"omitempty,max=10000"`
	MediaURLs []string `json:"media_urls" validate:"omitempty,dive,url"`
}

// CreateCommentRequest carries the inputs for commenting on a post.
type CreateCommentRequest struct {
	Text     string     `json:"text" validate:"required,max=2000"`
	ParentID *uuid.UUID `json:"parent_id"`
}

// ReactionRequest carries the emoji being toggled on a post.
type ReactionRequest struct {
	Emoji string `json:"emoji" validate:"required,max=16"`
}
