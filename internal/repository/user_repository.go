package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/travellinq/backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Where("id = ? AND deleted_at IS NULL", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.User, error) {
	var users []domain.User
	if len(ids) == 0 {
		return users, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ? AND deleted_at IS NULL", ids).Find(&users).Error
	return users, err
}

// EnsureExists creates a placeholder profile for a subject the auth provider
// vouched for. Existing rows are left untouched.
func (r *UserRepository) EnsureExists(ctx context.Context, id uuid.UUID) error {
	handle := "traveller-" + strings.ReplaceAll(id.String(), "-", "")[:12]
	user := &domain.User{
		BaseModel:   domain.BaseModel{ID: id},
		Username:    handle,
		DisplayName: handle,
		Role:        domain.RoleTraveller,
		IsActive:    true,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(user).Error
}

// Touch records that the user was just seen.
func (r *UserRepository) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", id).
		UpdateColumn("last_seen_at", at).Error
}

func (r *UserRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	res := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Updates(map[string]interface{}{
			"is_active":  active,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List is the admin user search.
func (r *UserRepository) List(ctx context.Context, search string, isActive *bool, page, limit int) ([]domain.User, int64, error) {
	var users []domain.User
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.User{}).Where("deleted_at IS NULL")

	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("(LOWER(username) LIKE ? OR LOWER(display_name) LIKE ?)", pattern, pattern)
	}
	if isActive != nil {
		query = query.Where("is_active = ?", *isActive)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error
	return users, total, err
}

// Stats returns user counts for the admin dashboard.
func (r *UserRepository) Stats(ctx context.Context, since time.Time) (total, admins, inactive, newSince int64, err error) {
	db := r.db.WithContext(ctx)

	if err = db.Model(&domain.User{}).Where("deleted_at IS NULL").Count(&total).Error; err != nil {
		return
	}
	if err = db.Model(&domain.User{}).Where("deleted_at IS NULL AND role = ?", domain.RoleAdmin).Count(&admins).Error; err != nil {
		return
	}
	if err = db.Model(&domain.User{}).Where("deleted_at IS NULL AND is_active = ?", false).Count(&inactive).Error; err != nil {
		return
	}
	err = db.Model(&domain.User{}).Where("deleted_at IS NULL AND created_at >= ?", since).Count(&newSince).Error
	return
}
