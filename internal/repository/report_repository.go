package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/travellinq/backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) Create(ctx context.Context, report *domain.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *ReportRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Report, error) {
	var report domain.Report
	err := r.db.WithContext(ctx).Preload("Reporter").Where("id = ?", id).First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// HasOpenReport reports whether the user already has a pending report on the target.
func (r *ReportRepository) HasOpenReport(ctx context.Context, reporterID uuid.UUID, target domain.ReportTarget, targetID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Report{}).
		Where("reporter_id = ? AND target_type = ? AND target_id = ? AND status = ?",
			reporterID, target, targetID, domain.ReportStatusPending).
		Count(&count).Error
	return count > 0, err
}

func (r *ReportRepository) Update(ctx context.Context, report *domain.Report) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(report).Error
}

func (r *ReportRepository) List(ctx context.Context, status, targetType string, page, limit int) ([]domain.Report, int64, error) {
	var reports []domain.Report
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Report{})

	if status != "" {
		query = query.Where("status = ?", status)
	}

	if targetType != "" {
		query = query.Where("target_type = ?", targetType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Preload("Reporter").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&reports).Error
	if err != nil {
		return nil, 0, err
	}

	return reports, total, nil
}

func (r *ReportRepository) GetStats(ctx context.Context) (total, pending, reviewed, resolved int64, err error) {
	db := r.db.WithContext(ctx)

	err = db.Model(&domain.Report{}).Count(&total).Error
	if err != nil {
		return
	}

	err = db.Model(&domain.Report{}).Where("status = ?", domain.ReportStatusPending).Count(&pending).Error
	if err != nil {
		return
	}

	err = db.Model(&domain.Report{}).Where("status = ?", domain.ReportStatusReviewed).Count(&reviewed).Error
	if err != nil {
		return
	}

	err = db.Model(&domain.Report{}).Where("status = ?", domain.ReportStatusResolved).Count(&resolved).Error
	return
}
