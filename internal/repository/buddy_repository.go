package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/travellinq/backend/internal/domain"
	"gorm.io/gorm"
)

type BuddyRepository struct {
	db *gorm.DB
}

func NewBuddyRepository(db *gorm.DB) *BuddyRepository {
	return &BuddyRepository{db: db}
}

// Request creates a pending connection from requester to addressee.
func (r *BuddyRepository) Request(ctx context.Context, requesterID, addresseeID uuid.UUID, radiusKm float64) (*domain.BuddyConnection, error) {
	conn := &domain.BuddyConnection{
		RequesterID:    requesterID,
		AddresseeID:    addresseeID,
		Status:         domain.BuddyPending,
		NotifyRadiusKm: radiusKm,
	}
	if err := r.db.WithContext(ctx).Create(conn).Error; err != nil {
		return nil, err
	}
	return conn, nil
}

// FindBetween finds the connection between two users in either direction.
func (r *BuddyRepository) FindBetween(ctx context.Context, userA, userB uuid.UUID) (*domain.BuddyConnection, error) {
	var conn domain.BuddyConnection
	err := r.db.WithContext(ctx).
		Where("((requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?))",
			userA, userB, userB, userA).
		Where("deleted_at IS NULL").
		First(&conn).Error
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

func (r *BuddyRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.BuddyConnection, error) {
	var conn domain.BuddyConnection
	err := r.db.WithContext(ctx).Preload("Requester").Preload("Addressee").
		Where("id = ? AND deleted_at IS NULL", id).
		First(&conn).Error
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

// UpdateStatus moves a connection to status. Accepting stamps AcceptedAt.
func (r *BuddyRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BuddyStatus) error {
	now := time.Now()
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": now,
	}
	if status == domain.BuddyAccepted {
		updates["accepted_at"] = now
	}
	return r.db.WithContext(ctx).Model(&domain.BuddyConnection{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *BuddyRepository) Remove(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.BuddyConnection{}, "id = ?", id).Error
}

// ListAccepted returns the user's accepted connections with both profiles.
func (r *BuddyRepository) ListAccepted(ctx context.Context, userID uuid.UUID) ([]domain.BuddyConnection, error) {
	var conns []domain.BuddyConnection
	err := r.db.WithContext(ctx).Preload("Requester").Preload("Addressee").
		Where("(requester_id = ? OR addressee_id = ?) AND status = ? AND deleted_at IS NULL",
			userID, userID, domain.BuddyAccepted).
		Order("accepted_at DESC").
		Find(&conns).Error
	return conns, err
}

// ListPending returns requests waiting on the user's answer.
func (r *BuddyRepository) ListPending(ctx context.Context, userID uuid.UUID) ([]domain.BuddyConnection, error) {
	var conns []domain.BuddyConnection
	err := r.db.WithContext(ctx).Preload("Requester").
		Where("addressee_id = ? AND status = ? AND deleted_at IS NULL", userID, domain.BuddyPending).
		Order("created_at DESC").
		Find(&conns).Error
	return conns, err
}

func (r *BuddyRepository) SetRadius(ctx context.Context, id uuid.UUID, radiusKm float64) error {
	return r.db.WithContext(ctx).Model(&domain.BuddyConnection{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"notify_radius_km": radiusKm,
			"updated_at":       time.Now(),
		}).Error
}

// TouchNotified records when a proximity notification last went out.
func (r *BuddyRepository) TouchNotified(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.BuddyConnection{}).
		Where("id = ?", id).
		UpdateColumn("last_notified_at", at).Error
}
