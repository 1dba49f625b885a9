package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/travellinq/backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LocationRepository struct {
	db *gorm.DB
}

func NewLocationRepository(db *gorm.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// Upsert stores the user's latest position, replacing any earlier one.
func (r *LocationRepository) Upsert(ctx context.Context, userID uuid.UUID, lat, lng float64) error {
	loc := &domain.UserLocation{
		UserID:    userID,
		Latitude:  lat,
		Longitude: lng,
		UpdatedAt: time.Now(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"latitude", "longitude", "updated_at"}),
	}).Create(loc).Error
}

func (r *LocationRepository) FindByUserIDs(ctx context.Context, userIDs []uuid.UUID) ([]domain.UserLocation, error) {
	var locations []domain.UserLocation
	if len(userIDs) == 0 {
		return locations, nil
	}
	err := r.db.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&locations).Error
	return locations, err
}
