package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/travellinq/backend/internal/config"
	"github.com/travellinq/backend/internal/domain"
	"github.com/travellinq/backend/internal/geo"
	"github.com/travellinq/backend/internal/logger"
	"github.com/travellinq/backend/internal/metrics"
	"github.com/travellinq/backend/internal/realtime"
	"github.com/travellinq/backend/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Positions older than this are ignored when checking proximity.
const locationStaleAfter = 24 * time.Hour

type BuddyService struct {
	buddyRepo           *repository.BuddyRepository
	locationRepo        *repository.LocationRepository
	userRepo            *repository.UserRepository
	notificationService *NotificationService
	publisher           Publisher
	cfg                 config.ProximityConfig

	now func() time.Time
}

func NewBuddyService(
	buddyRepo *repository.BuddyRepository,
	locationRepo *repository.LocationRepository,
	userRepo *repository.UserRepository,
	notificationService *NotificationService,
	publisher Publisher,
	cfg config.ProximityConfig,
) *BuddyService {
	return &BuddyService{
		buddyRepo:           buddyRepo,
		locationRepo:        locationRepo,
		userRepo:            userRepo,
		notificationService: notificationService,
		publisher:           publisher,
		cfg:                 cfg,
		now:                 time.Now,
	}
}

// Request asks addresseeID to become a buddy. A previously declined pair may
// ask again.
func (s *BuddyService) Request(ctx context.Context, requesterID, addresseeID uuid.UUID) (*domain.BuddyConnection, error) {
	if requesterID == addresseeID {
		return nil, invalid("cannot add yourself as a buddy")
	}
	if _, err := s.userRepo.FindByID(ctx, addresseeID); err != nil {
		return nil, notFound(err, "user")
	}

	existing, err := s.buddyRepo.FindBetween(ctx, requesterID, addresseeID)
	switch {
	case err == nil && existing.Status == domain.BuddyDeclined:
		if err := s.buddyRepo.Remove(ctx, existing.ID); err != nil {
			return nil, err
		}
	case err == nil:
		return nil, ErrConflict
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	conn, err := s.buddyRepo.Request(ctx, requesterID, addresseeID, s.cfg.DefaultRadiusKm)
	if err != nil {
		return nil, err
	}

	if requester, err := s.userRepo.FindByID(ctx, requesterID); err == nil {
		_ = s.notificationService.NotifyBuddyRequest(ctx, requester, conn)
	}
	return conn, nil
}

// Respond accepts or declines a pending request addressed to userID.
func (s *BuddyService) Respond(ctx context.Context, userID, connID uuid.UUID, accept bool) (*domain.BuddyConnection, error) {
	conn, err := s.buddyRepo.FindByID(ctx, connID)
	if err != nil {
		return nil, notFound(err, "buddy request")
	}
	if conn.AddresseeID != userID {
		return nil, ErrForbidden
	}
	if conn.Status != domain.BuddyPending {
		return nil, ErrConflict
	}

	status := domain.BuddyDeclined
	if accept {
		status = domain.BuddyAccepted
	}
	if err := s.buddyRepo.UpdateStatus(ctx, connID, status); err != nil {
		return nil, err
	}

	if accept && conn.Addressee != nil {
		_ = s.notificationService.NotifyBuddyAccepted(ctx, conn.Addressee, conn)
	}
	return s.buddyRepo.FindByID(ctx, connID)
}

// SetRadius changes how close the pair must be before they hear about it.
func (s *BuddyService) SetRadius(ctx context.Context, userID, connID uuid.UUID, radiusKm float64) error {
	if radiusKm <= 0 || radiusKm > s.cfg.MaxRadiusKm {
		return invalid("radius must be between 0 and %.0f km", s.cfg.MaxRadiusKm)
	}
	conn, err := s.buddyRepo.FindByID(ctx, connID)
	if err != nil {
		return notFound(err, "buddy connection")
	}
	if !conn.Involves(userID) {
		return ErrForbidden
	}
	return s.buddyRepo.SetRadius(ctx, connID, radiusKm)
}

// Remove ends a connection or withdraws a request. Either side may do it.
func (s *BuddyService) Remove(ctx context.Context, userID, connID uuid.UUID) error {
	conn, err := s.buddyRepo.FindByID(ctx, connID)
	if err != nil {
		return notFound(err, "buddy connection")
	}
	if !conn.Involves(userID) {
		return ErrForbidden
	}
	return s.buddyRepo.Remove(ctx, connID)
}

func (s *BuddyService) List(ctx context.Context, userID uuid.UUID) ([]domain.BuddyConnection, error) {
	return s.buddyRepo.ListAccepted(ctx, userID)
}

func (s *BuddyService) Pending(ctx context.Context, userID uuid.UUID) ([]domain.BuddyConnection, error) {
	return s.buddyRepo.ListPending(ctx, userID)
}

// UpdateLocation stores the user's position and tells every accepted buddy
// within range, at most once per cooldown per pair. It returns how many
// buddies were notified.
func (s *BuddyService) UpdateLocation(ctx context.Context, userID uuid.UUID, lat, lng float64) (int, error) {
	here := geo.Point{Lat: lat, Lng: lng}
	if err := here.Validate(); err != nil {
		return 0, invalid("%v", err)
	}
	if err := s.locationRepo.Upsert(ctx, userID, lat, lng); err != nil {
		return 0, err
	}

	conns, err := s.buddyRepo.ListAccepted(ctx, userID)
	if err != nil {
		return 0, err
	}
	if len(conns) == 0 {
		return 0, nil
	}

	buddyIDs := make([]uuid.UUID, len(conns))
	for i := range conns {
		buddyIDs[i] = conns[i].Other(userID)
	}
	locs, err := s.locationRepo.FindByUserIDs(ctx, buddyIDs)
	if err != nil {
		return 0, err
	}
	byUser := make(map[uuid.UUID]domain.UserLocation, len(locs))
	for _, l := range locs {
		byUser[l.UserID] = l
	}

	now := s.now()
	notified := 0
	for i := range conns {
		conn := &conns[i]
		buddyID := conn.Other(userID)

		loc, ok := byUser[buddyID]
		if !ok || now.Sub(loc.UpdatedAt) > locationStaleAfter {
			continue
		}
		if conn.LastNotifiedAt != nil && now.Sub(*conn.LastNotifiedAt) < s.cfg.Cooldown {
			continue
		}

		distance := geo.DistanceKm(here, geo.Point{Lat: loc.Latitude, Lng: loc.Longitude})
		if distance > math.Min(conn.NotifyRadiusKm, s.cfg.MaxRadiusKm) {
			continue
		}

		if err := s.buddyRepo.TouchNotified(ctx, conn.ID, now); err != nil {
			logger.Log.Warn("failed to record proximity notification",
				zap.String("connection_id", conn.ID.String()), zap.Error(err))
			continue
		}
		s.notifyNearby(ctx, conn, userID, buddyID, distance)
		notified++
	}

	return notified, nil
}

func (s *BuddyService) notifyNearby(ctx context.Context, conn *domain.BuddyConnection, userID, buddyID uuid.UUID, distance float64) {
	me, buddy := conn.Requester, conn.Addressee
	if conn.RequesterID != userID {
		me, buddy = buddy, me
	}
	if me != nil && buddy != nil {
		_ = s.notificationService.NotifyBuddyNearby(ctx, userID, buddy, distance)
		_ = s.notificationService.NotifyBuddyNearby(ctx, buddyID, me, distance)
	}

	if s.publisher != nil {
		s.publisher.SendToUsers([]uuid.UUID{userID, buddyID}, realtime.Event{
			Type: realtime.EventBuddyNearby,
			Payload: map[string]interface{}{
				"connection_id": conn.ID,
				"distance_km":   math.Round(distance*10) / 10,
			},
		})
	}
	metrics.Get().ProximityNotifications.Inc()
}
