package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"locationapp-backend/internal/domain"
	"locationapp-backend/internal/repository/memory"
	"locationapp-backend/internal/service"
)

type mapCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	gets    int
	hits    int
	failing bool
}

func newMapCache() *mapCache { return &mapCache{entries: map[string][]byte{}} }

func (c *mapCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.failing {
		return nil, errors.New("connection refused")
	}
	b, ok := c.entries[key]
	if !ok {
		return nil, ErrMiss
	}
	c.hits++
	return b, nil
}

func (c *mapCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failing {
		return errors.New("connection refused")
	}
	c.entries[key] = value
	return nil
}

func (c *mapCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}

var now = time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

func seed(t *testing.T, repo interface {
	Create(context.Context, *domain.Room) error
}, availability domain.Availability) *domain.Room {
	t.Helper()
	room := &domain.Room{
		Title:         "Studio",
		Address:       domain.Address{City: "Lomé"},
		PricePerMonth: 40000,
		Currency:      domain.DefaultCurrency,
		Images:        []string{"https://img/1.jpg"},
		Availability:  availability,
	}
	require.NoError(t, repo.Create(context.Background(), room))
	return room
}

func TestRoomRepository_ReadThrough(t *testing.T) {
	ctx := context.Background()
	inner := memory.NewRoomRepository(func() time.Time { return now })
	c := newMapCache()
	repo := NewRoomRepository(inner, c, time.Minute)

	room := seed(t, inner, domain.Available())

	first, err := repo.GetByID(ctx, room.ID)
	require.NoError(t, err)
	second, err := repo.GetByID(ctx, room.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, c.hits)
	assert.Equal(t, first.Title, second.Title)
	assert.Equal(t, first.Images, second.Images)
	assert.True(t, first.CreatedAt.Equal(second.CreatedAt))

	t.Run("Update invalidates", func(t *testing.T) {
		title := "Studio meublé"
		_, err := repo.Update(ctx, room.ID, domain.RoomPatch{Title: &title})
		require.NoError(t, err)

		got, err := repo.GetByID(ctx, room.ID)
		require.NoError(t, err)
		assert.Equal(t, "Studio meublé", got.Title)
	})

	t.Run("Delete invalidates", func(t *testing.T) {
		_, err := repo.GetByID(ctx, room.ID)
		require.NoError(t, err)
		require.NoError(t, repo.Delete(ctx, room.ID))

		_, err = repo.GetByID(ctx, room.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestRoomRepository_ReleaseInvalidates(t *testing.T) {
	ctx := context.Background()
	inner := memory.NewRoomRepository(func() time.Time { return now })
	c := newMapCache()
	repo := NewRoomRepository(inner, c, time.Minute)

	occupied, err := domain.Occupied(now.Add(-time.Hour))
	require.NoError(t, err)
	room := seed(t, inner, occupied)

	cached, err := repo.GetByID(ctx, room.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RoomStatusOccupied, cached.Availability.Status())

	ids, err := repo.ReleaseExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, []string{room.ID}, ids)

	got, err := repo.GetByID(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoomStatusAvailable, got.Availability.Status())
}

func TestRoomRepository_ReleaseFromOtherProcess(t *testing.T) {
	ctx := context.Background()
	inner := memory.NewRoomRepository(func() time.Time { return now })
	c := newMapCache()
	serverRooms := NewRoomRepository(inner, c, time.Minute)
	jobRooms := NewRoomRepository(inner, c, time.Minute)

	occupied, err := domain.Occupied(time.Now().AddDate(0, 0, -2))
	require.NoError(t, err)
	room := seed(t, inner, occupied)

	cached, err := serverRooms.GetByID(ctx, room.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RoomStatusOccupied, cached.Availability.Status())

	released, err := service.NewAvailabilityService(jobRooms).ReleaseExpiredRooms(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{room.ID}, released)

	got, err := serverRooms.GetByID(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoomStatusAvailable, got.Availability.Status())
	assert.Nil(t, got.Availability.ReleaseDatePtr())
}

func TestRoomRepository_CacheDownFallsBack(t *testing.T) {
	ctx := context.Background()
	inner := memory.NewRoomRepository(func() time.Time { return now })
	c := newMapCache()
	c.failing = true
	repo := NewRoomRepository(inner, c, time.Minute)

	room := seed(t, inner, domain.Available())
	got, err := repo.GetByID(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, room.ID, got.ID)
}
