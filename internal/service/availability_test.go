package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"locationapp-backend/internal/domain"
	"locationapp-backend/internal/repository/memory"
)

func TestAvailabilityService_ReleaseExpiredRooms(t *testing.T) {
	ctx := context.Background()

	t.Run("Releases overdue rooms only", func(t *testing.T) {
		repo := memory.NewRoomRepository(tickingClock(serviceNow))
		overdue, _ := domain.Occupied(serviceNow.AddDate(0, 0, -1))
		future, _ := domain.Occupied(serviceNow.AddDate(0, 0, 7))

		a := &domain.Room{Title: "A", Address: domain.Address{City: "Lomé"}, PricePerMonth: 1, Availability: overdue}
		b := &domain.Room{Title: "B", Address: domain.Address{City: "Lomé"}, PricePerMonth: 1, Availability: future}
		c := &domain.Room{Title: "C", Address: domain.Address{City: "Lomé"}, PricePerMonth: 1, Availability: domain.Reserved()}
		for _, r := range []*domain.Room{a, b, c} {
			require.NoError(t, repo.Create(ctx, r))
		}

		svc := NewAvailabilityService(repo).(*availabilityService)
		svc.now = fixedClock(serviceNow)

		ids, err := svc.ReleaseExpiredRooms(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{a.ID}, ids)

		got, err := repo.GetByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RoomStatusAvailable, got.Availability.Status())
		assert.Nil(t, got.Availability.ReleaseDatePtr())

		got, err = repo.GetByID(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RoomStatusOccupied, got.Availability.Status())

		again, err := svc.ReleaseExpiredRooms(ctx)
		require.NoError(t, err)
		assert.Empty(t, again)
	})

	t.Run("Concurrent runs apply once", func(t *testing.T) {
		repo := memory.NewRoomRepository(tickingClock(serviceNow))
		overdue, _ := domain.Occupied(serviceNow.Add(-time.Hour))
		require.NoError(t, repo.Create(ctx, &domain.Room{Title: "A", Address: domain.Address{City: "Lomé"}, PricePerMonth: 1, Availability: overdue}))

		svc := NewAvailabilityService(repo).(*availabilityService)
		svc.now = fixedClock(serviceNow)

		var mu sync.Mutex
		total := 0
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ids, err := svc.ReleaseExpiredRooms(ctx)
				assert.NoError(t, err)
				mu.Lock()
				total += len(ids)
				mu.Unlock()
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, total)
	})

	t.Run("Store failure is returned", func(t *testing.T) {
		repo := new(MockRoomRepo)
		repo.On("ReleaseExpired", mock.Anything, mock.Anything).Return(nil, domain.ErrUnavailable)

		_, err := NewAvailabilityService(repo).ReleaseExpiredRooms(ctx)
		assert.ErrorIs(t, err, domain.ErrUnavailable)
	})
}
