package service

import (
	"context"
	"time"

	"locationapp-backend/internal/logger"
	"locationapp-backend/internal/repository"
)

type availabilityService struct {
	roomRepo repository.RoomRepository
	now      func() time.Time
}

func NewAvailabilityService(roomRepo repository.RoomRepository) AvailabilityService {
	return &availabilityService{roomRepo: roomRepo, now: time.Now}
}

// ReleaseExpiredRooms returns every overdue en_location room to libre. The
// predicate is evaluated fresh on each call, so a failed run is caught up by
// the next one.
func (s *availabilityService) ReleaseExpiredRooms(ctx context.Context) ([]string, error) {
	now := s.now()
	logger.EnterMethod("availabilityService.ReleaseExpiredRooms", "now", now)

	ids, err := s.roomRepo.ReleaseExpired(ctx, now)
	if err != nil {
		logger.ExitMethodWithError("availabilityService.ReleaseExpiredRooms", err)
		return nil, err
	}

	if len(ids) > 0 {
		logger.Info("Released expired rooms", "count", len(ids), "roomIDs", ids)
	}
	logger.ExitMethod("availabilityService.ReleaseExpiredRooms", "released", len(ids))
	return ids, nil
}
