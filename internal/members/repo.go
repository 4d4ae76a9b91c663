package members

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripnest/tripnest-backend/pkg/db/models"
)

// Repository exposes membership persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a members repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx rebinds the repository to a transaction handle.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// GetByID loads a membership by its UUID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.GroupMember, error) {
	var member models.GroupMember
	if err := r.db.WithContext(ctx).First(&member, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// GetByGroupAndUser finds the membership linking a platform account to a
// group. Where duplicates exist the oldest row wins; reconciliation tolerates
// legacy duplicates instead of rejecting them.
func (r *Repository) GetByGroupAndUser(ctx context.Context, groupID, userID uuid.UUID) (*models.GroupMember, error) {
	var member models.GroupMember
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Order("created_at ASC").
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// FindUnlinkedMatch looks for an unclaimed membership in the group matching
// the display name case-insensitively, or the email when one is supplied.
func (r *Repository) FindUnlinkedMatch(ctx context.Context, groupID uuid.UUID, displayName string, email *string) (*models.GroupMember, error) {
	query := r.db.WithContext(ctx).
		Where("group_id = ? AND user_id IS NULL", groupID)
	if email != nil && *email != "" {
		query = query.Where("LOWER(display_name) = LOWER(?) OR LOWER(email) = LOWER(?)", displayName, *email)
	} else {
		query = query.Where("LOWER(display_name) = LOWER(?)", displayName)
	}

	var member models.GroupMember
	if err := query.Order("created_at ASC").First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// CountByGroup returns the number of memberships in the group.
func (r *Repository) CountByGroup(ctx context.Context, groupID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.GroupMember{}).
		Where("group_id = ?", groupID).
		Count(&count).Error
	return count, err
}

// Create inserts a membership row with a client-generated ID.
func (r *Repository) Create(ctx context.Context, member *models.GroupMember) error {
	if member.ID == uuid.Nil {
		member.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(member).Error
}

// AttachUser links a platform account to a membership. The link is
// one-directional and never undone.
func (r *Repository) AttachUser(ctx context.Context, memberID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.GroupMember{}).
		Where("id = ? AND user_id IS NULL", memberID).
		UpdateColumn("user_id", userID).Error
}

// BackfillEmail stores a contact email on a membership that has none.
func (r *Repository) BackfillEmail(ctx context.Context, memberID uuid.UUID, email string) error {
	return r.db.WithContext(ctx).
		Model(&models.GroupMember{}).
		Where("id = ? AND email IS NULL", memberID).
		UpdateColumn("email", email).Error
}

// SetAdmin flips the admin flag on a membership.
func (r *Repository) SetAdmin(ctx context.Context, memberID uuid.UUID, isAdmin bool) error {
	return r.db.WithContext(ctx).
		Model(&models.GroupMember{}).
		Where("id = ?", memberID).
		UpdateColumn("is_admin", isAdmin).Error
}

// ClaimByEmail attaches userID to every unlinked membership across all groups
// whose stored email matches exactly. Memberships already linked to an
// account are never touched.
func (r *Repository) ClaimByEmail(ctx context.Context, userID uuid.UUID, email string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.GroupMember{}).
		Where("email = ? AND user_id IS NULL", email).
		UpdateColumn("user_id", userID)
	return result.RowsAffected, result.Error
}

// ListByGroup returns the group roster, oldest membership first.
func (r *Repository) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]models.GroupMember, error) {
	var rows []models.GroupMember
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

// ListForUser returns every membership linked to the account, with the group
// preloaded for listings.
func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.GroupMember, error) {
	var rows []models.GroupMember
	err := r.db.WithContext(ctx).
		Preload("Group").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

// Delete removes the membership row.
func (r *Repository) Delete(ctx context.Context, memberID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.GroupMember{}, "id = ?", memberID).Error
}

// DeleteSessions drops every guest session pointing at the membership without
// touching the membership row itself.
func (r *Repository) DeleteSessions(ctx context.Context, memberID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.MemberSession{}, "member_id = ?", memberID).Error
}
