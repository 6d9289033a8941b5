package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"locationapp-backend/internal/domain"
	"locationapp-backend/internal/logger"
	"locationapp-backend/internal/repository"
)

const roomKeyPrefix = "room:"

func roomKey(id string) string { return roomKeyPrefix + id }

// roomRepository serves GetByID from the cache and drops entries on every
// write that goes through it, including the reconciliation release.
// Cache failures fall back to the store.
type roomRepository struct {
	repository.RoomRepository
	cache Cache
	ttl   time.Duration
}

func NewRoomRepository(inner repository.RoomRepository, c Cache, ttl time.Duration) repository.RoomRepository {
	return &roomRepository{RoomRepository: inner, cache: c, ttl: ttl}
}

func (r *roomRepository) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	if b, err := r.cache.Get(ctx, roomKey(id)); err == nil {
		var rec domain.RoomRecord
		if err := json.Unmarshal(b, &rec); err == nil {
			if room, err := rec.Room(); err == nil {
				return room, nil
			}
		}
		logger.Warn("Discarding unreadable cached room", "roomID", id)
	} else if !errors.Is(err, ErrMiss) {
		logger.Warn("Room cache read failed", "roomID", id, "error", err)
	}

	room, err := r.RoomRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.store(ctx, room)
	return room, nil
}

func (r *roomRepository) Update(ctx context.Context, id string, patch domain.RoomPatch) (*domain.Room, error) {
	room, err := r.RoomRepository.Update(ctx, id, patch)
	r.invalidate(ctx, id)
	return room, err
}

func (r *roomRepository) Delete(ctx context.Context, id string) error {
	err := r.RoomRepository.Delete(ctx, id)
	r.invalidate(ctx, id)
	return err
}

func (r *roomRepository) ReleaseExpired(ctx context.Context, now time.Time) ([]string, error) {
	ids, err := r.RoomRepository.ReleaseExpired(ctx, now)
	if len(ids) > 0 {
		r.invalidate(ctx, ids...)
	}
	return ids, err
}

func (r *roomRepository) store(ctx context.Context, room *domain.Room) {
	b, err := json.Marshal(room.Record())
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, roomKey(room.ID), b, r.ttl); err != nil {
		logger.Warn("Room cache write failed", "roomID", room.ID, "error", err)
	}
}

func (r *roomRepository) invalidate(ctx context.Context, ids ...string) {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = roomKey(id)
	}
	if err := r.cache.Delete(context.WithoutCancel(ctx), keys...); err != nil {
		logger.Warn("Room cache invalidation failed", "roomIDs", ids, "error", err)
	}
}
