package groups

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripnest/tripnest-backend/pkg/db/models"
)

// Repository exposes group persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a groups repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx rebinds the repository to a transaction handle.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindBySlug loads a group by its unique slug.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Group, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// FindByID loads a group by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Group, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).First(&group, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// SlugExists reports whether a slug is already taken.
func (r *Repository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Group{}).
		Where("slug = ?", slug).
		Count(&count).Error
	return count > 0, err
}

// Create inserts a group row with a client-generated ID.
func (r *Repository) Create(ctx context.Context, group *models.Group) error {
	if group.ID == uuid.Nil {
		group.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(group).Error
}

// Update persists changed group columns.
func (r *Repository) Update(ctx context.Context, group *models.Group) error {
	return r.db.WithContext(ctx).
		Model(&models.Group{}).
		Where("id = ?", group.ID).
		Select("slug", "name", "password_hash").
		Updates(map[string]any{
			"slug":          group.Slug,
			"name":          group.Name,
			"password_hash": group.PasswordHash,
		}).Error
}
