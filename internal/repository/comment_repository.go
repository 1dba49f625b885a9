package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/travellinq/backend/internal/domain"
	"gorm.io/gorm"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *CommentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	var comment domain.Comment
	err := r.db.WithContext(ctx).Preload("User").
		Where("id = ? AND deleted_at IS NULL", id).
		First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByPost returns every live comment on a post as a flat list. Rows come
// back oldest first, but callers rebuild the thread themselves and must not
// rely on any particular order.
func (r *CommentRepository) ListByPost(ctx context.Context, postID uuid.UUID) ([]domain.Comment, error) {
	var comments []domain.Comment
	err := r.db.WithContext(ctx).Preload("User").
		Where("post_id = ? AND deleted_at IS NULL", postID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

// SetHidden flips the moderation flag. Unhiding clears reason and moderator.
func (r *CommentRepository) SetHidden(ctx context.Context, id uuid.UUID, hidden bool, reason *string, by *uuid.UUID) error {
	updates := map[string]interface{}{
		"is_hidden":     hidden,
		"hidden_reason": reason,
		"hidden_by":     by,
		"updated_at":    time.Now(),
	}
	if !hidden {
		updates["hidden_reason"] = nil
		updates["hidden_by"] = nil
	}
	res := r.db.WithContext(ctx).Model(&domain.Comment{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the comment and its votes. Replies stay; the thread builder
// lifts them to top level once their parent is gone.
func (r *CommentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("comment_id = ?", id).Delete(&domain.CommentVote{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Comment{}, "id = ?", id).Error
	})
}

func (r *CommentRepository) CountByPost(ctx context.Context, postID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Comment{}).
		Where("post_id = ? AND deleted_at IS NULL", postID).
		Count(&count).Error
	return count, err
}

// CountHidden counts comments currently hidden by moderators.
func (r *CommentRepository) CountHidden(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Comment{}).
		Where("is_hidden = ? AND deleted_at IS NULL", true).
		Count(&count).Error
	return count, err
}
