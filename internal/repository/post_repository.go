package repository

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/travellinq/backend/internal/domain"
	"github.com/travellinq/backend/internal/geo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Create(ctx context.Context, post *domain.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *PostRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	var post domain.Post
	err := r.db.WithContext(ctx).Preload("User").
		Where("id = ? AND deleted_at IS NULL", id).
		First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// ListWithinBox returns visible posts inside the rectangle, closest to center
// first by an equirectangular estimate. A box that crosses the antimeridian
// matches both longitude bands.
func (r *PostRepository) ListWithinBox(ctx context.Context, center geo.Point, box geo.Box, limit int) ([]domain.Post, error) {
	var posts []domain.Post

	query := r.db.WithContext(ctx).Preload("User").
		Where("deleted_at IS NULL AND status = ?", domain.PostVisible).
		Where("latitude BETWEEN ? AND ?", box.MinLat, box.MaxLat)

	if box.WrapsAntimeridian() {
		query = query.Where("(longitude >= ? OR longitude <= ?)", box.MinLng, box.MaxLng)
	} else {
		query = query.Where("longitude BETWEEN ? AND ?", box.MinLng, box.MaxLng)
	}

	err := query.Order(approxDistanceOrder(center)).Limit(limit).Find(&posts).Error
	return posts, err
}

// approxDistanceOrder sorts by squared planar distance in degrees, with
// longitude scaled by cos(center latitude) and wrapped across ±180.
func approxDistanceOrder(center geo.Point) clause.OrderBy {
	k := math.Cos(center.Lat * math.Pi / 180)
	return clause.OrderBy{Expression: clause.Expr{
		SQL: "(latitude - ?) * (latitude - ?) + ? * CASE WHEN ABS(longitude - ?) > 180 " +
			"THEN (360 - ABS(longitude - ?)) * (360 - ABS(longitude - ?)) " +
			"ELSE (longitude - ?) * (longitude - ?) END",
		Vars: []interface{}{
			center.Lat, center.Lat, k * k,
			center.Lng, center.Lng, center.Lng, center.Lng, center.Lng,
		},
		WithoutParentheses: true,
	}}
}

// ListRecent returns visible posts newest first with pagination.
func (r *PostRepository) ListRecent(ctx context.Context, page, limit int) ([]domain.Post, int64, error) {
	var posts []domain.Post
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Post{}).
		Where("deleted_at IS NULL AND status = ?", domain.PostVisible)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Preload("User").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

func (r *PostRepository) SetStatus(ctx context.Context, id uuid.UUID, status domain.PostStatus) error {
	res := r.db.WithContext(ctx).Model(&domain.Post{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Updates(map[string]interface{}{
			"status":     status,
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

// Delete removes a post together with its comments and their votes.
func (r *PostRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		commentIDs := tx.Model(&domain.Comment{}).Select("id").Where("post_id = ?", id)
		if err := tx.Where("comment_id IN (?)", commentIDs).Delete(&domain.CommentVote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&domain.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Post{}, "id = ?", id).Error
	})
}

// IncrementCommentCount adjusts the cached comment count by delta.
func (r *PostRepository) IncrementCommentCount(ctx context.Context, id uuid.UUID, delta int) error {
	return r.db.WithContext(ctx).Model(&domain.Post{}).
		Where("id = ?", id).
		UpdateColumn("comment_count", gorm.Expr("comment_count + ?", delta)).Error
}

// CountByStatus returns live post counts keyed by status.
func (r *PostRepository) CountByStatus(ctx context.Context) (map[domain.PostStatus]int64, error) {
	var rows []struct {
		Status domain.PostStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&domain.Post{}).
		Select("status, COUNT(*) AS count").
		Where("deleted_at IS NULL").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make(map[domain.PostStatus]int64, len(rows))
	for _, row := range rows {
		result[row.Status] = row.Count
	}
	return result, nil
}
