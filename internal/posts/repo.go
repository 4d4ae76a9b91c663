package posts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripnest/tripnest-backend/pkg/db/models"
)

// Repository exposes post, comment and reaction persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a posts repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx rebinds the repository to a transaction handle.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// CreatePost inserts a post row with a client-generated ID.
func (r *Repository) CreatePost(ctx context.Context, post *models.Post) error {
	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(post).Error
}

// GetPost loads a post by ID.
func (r *Repository) GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// ListByGroup returns the group's posts, newest first, with authors preloaded.
func (r *Repository) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]models.Post, error) {
	var rows []models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("group_id = ?", groupID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// DeletePost removes the post and everything hanging off it.
func (r *Repository) DeletePost(ctx context.Context, postID uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&models.Reaction{}, "post_id = ?", postID).Error; err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Delete(&models.Comment{}, "post_id = ?", postID).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(&models.Post{}, "id = ?", postID).Error
}

// CreateComment inserts a comment row with a client-generated ID.
func (r *Repository) CreateComment(ctx context.Context, comment *models.Comment) error {
	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(comment).Error
}

// GetComment loads a comment by ID.
func (r *Repository) GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListComments returns a post's comments, oldest first, authors preloaded.
func (r *Repository) ListComments(ctx context.Context, postID uuid.UUID) ([]models.Comment, error) {
	var rows []models.Comment
	err := r.db.WithContext(ctx).
		Preload("Member").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

// DeleteComment removes a comment and its direct replies.
func (r *Repository) DeleteComment(ctx context.Context, commentID uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&models.Comment{}, "parent_id = ?", commentID).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(&models.Comment{}, "id = ?", commentID).Error
}

// FindReaction returns the member's existing reaction with this emoji, if any.
func (r *Repository) FindReaction(ctx context.Context, postID, memberID uuid.UUID, emoji string) (*models.Reaction, error) {
	var reaction models.Reaction
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND member_id = ? AND emoji = ?", postID, memberID, emoji).
		First(&reaction).Error
	if err != nil {
		return nil, err
	}
	return &reaction, nil
}

// CreateReaction inserts a reaction row with a client-generated ID.
func (r *Repository) CreateReaction(ctx context.Context, reaction *models.Reaction) error {
	if reaction.ID == uuid.Nil {
		reaction.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(reaction).Error
}

// DeleteReaction removes a reaction row.
func (r *Repository) DeleteReaction(ctx context.Context, reactionID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Reaction{}, "id = ?", reactionID).Error
}

// ListReactions returns a post's reactions, oldest first.
func (r *Repository) ListReactions(ctx context.Context, postID uuid.UUID) ([]models.Reaction, error) {
	var rows []models.Reaction
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}
