package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"locationapp-backend/internal/domain"
	"locationapp-backend/internal/repository"
)

// tickingClock returns a strictly increasing server clock.
func tickingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	t := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func newRoom(title, city string, price int64, availability domain.Availability) *domain.Room {
	return &domain.Room{
		Title:         title,
		Address:       domain.Address{Country: "Togo", Region: "Maritime", City: city},
		PricePerMonth: price,
		Currency:      domain.DefaultCurrency,
		Availability:  availability,
	}
}

func TestRoomRepository_FilterPredicates(t *testing.T) {
	ctx := context.Background()
	repo := NewRoomRepository(tickingClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))

	lome := newRoom("Studio Bè", "Lomé", 50000, domain.Available())
	require.NoError(t, repo.Create(ctx, lome))

	t.Run("ScenarioA_BudgetAbovePrice", func(t *testing.T) {
		budget := int64(60000)
		page, err := repo.Query(ctx, repository.RoomQuery{
			Filter: domain.ListingFilter{City: "Lomé", BudgetMax: &budget},
			SortBy: repository.SortByCreatedAt,
			Limit:  12,
		})
		require.NoError(t, err)
		require.Len(t, page.Rooms, 1)
		assert.Equal(t, lome.ID, page.Rooms[0].ID)
	})

	t.Run("ScenarioA_BudgetBelowPrice", func(t *testing.T) {
		budget := int64(40000)
		page, err := repo.Query(ctx, repository.RoomQuery{
			Filter: domain.ListingFilter{BudgetMax: &budget},
			SortBy: repository.SortByCreatedAt,
			Limit:  12,
		})
		require.NoError(t, err)
		assert.Empty(t, page.Rooms)
	})

	t.Run("CityIsExactMatch", func(t *testing.T) {
		page, err := repo.Query(ctx, repository.RoomQuery{
			Filter: domain.ListingFilter{City: "lomé"},
			SortBy: repository.SortByCreatedAt,
			Limit:  12,
		})
		require.NoError(t, err)
		assert.Empty(t, page.Rooms)
	})
}

func seedRooms(t *testing.T, repo repository.RoomRepository, n int) {
	t.Helper()
	cities := []string{"Lomé", "Kara", "Sokodé"}
	for i := 0; i < n; i++ {
		availability := domain.Available()
		if i%4 == 1 {
			availability = domain.Reserved()
		}
		room := newRoom(fmt.Sprintf("Room %02d", i), cities[i%len(cities)], int64(20000+i*1000), availability)
		require.NoError(t, repo.Create(context.Background(), room))
	}
}

func TestRoomRepository_PaginationCoversResultSet(t *testing.T) {
	ctx := context.Background()
	repo := NewRoomRepository(tickingClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
	seedRooms(t, repo, 40)

	budget := int64(50000)
	filter := domain.ListingFilter{Status: domain.RoomStatusAvailable, BudgetMax: &budget}

	all, err := repo.Query(ctx, repository.RoomQuery{Filter: filter, SortBy: repository.SortByCreatedAt})
	require.NoError(t, err)
	require.NotEmpty(t, all.Rooms)

	var paged []domain.Room
	var after *repository.Position
	for {
		page, err := repo.Query(ctx, repository.RoomQuery{Filter: filter, SortBy: repository.SortByCreatedAt, Limit: 5, After: after})
		require.NoError(t, err)
		for _, r := range page.Rooms {
			assert.True(t, filter.Matches(&r), "room %s violates the filter", r.ID)
		}
		paged = append(paged, page.Rooms...)
		if page.Next == nil {
			break
		}
		after = page.Next
	}

	require.Len(t, paged, len(all.Rooms))
	seen := make(map[string]bool)
	for i, r := range paged {
		assert.False(t, seen[r.ID], "duplicate id %s", r.ID)
		seen[r.ID] = true
		assert.Equal(t, all.Rooms[i].ID, r.ID)
		if i > 0 {
			assert.False(t, r.CreatedAt.After(paged[i-1].CreatedAt), "pages must be descending")
		}
	}
}

func TestRoomRepository_ScenarioD_DisjointPages(t *testing.T) {
	ctx := context.Background()
	repo := NewRoomRepository(tickingClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
	seedRooms(t, repo, 30)

	q := repository.RoomQuery{SortBy: repository.SortByUpdatedAt, Limit: 12}
	first, err := repo.Query(ctx, q)
	require.NoError(t, err)
	require.NotNil(t, first.Next)

	q.After = first.Next
	second, err := repo.Query(ctx, q)
	require.NoError(t, err)
	require.NotNil(t, second.Next)

	q.After = second.Next
	third, err := repo.Query(ctx, q)
	require.NoError(t, err)
	assert.Nil(t, third.Next)
	assert.Len(t, third.Rooms, 6)

	ids := make(map[string]bool)
	for _, page := range [][]domain.Room{first.Rooms, second.Rooms, third.Rooms} {
		for _, r := range page {
			assert.False(t, ids[r.ID])
			ids[r.ID] = true
		}
	}
	assert.True(t, first.Rooms[11].UpdatedAt.After(second.Rooms[0].UpdatedAt))
}

func TestRoomRepository_TieBreakOnID(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := NewRoomRepository(func() time.Time { return fixed })
	for _, id := range []string{"a", "c", "b"} {
		room := newRoom("Room "+id, "Lomé", 30000, domain.Available())
		room.ID = id
		require.NoError(t, repo.Create(ctx, room))
	}

	first, err := repo.Query(ctx, repository.RoomQuery{SortBy: repository.SortByCreatedAt, Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Rooms, 2)
	assert.Equal(t, "c", first.Rooms[0].ID)
	assert.Equal(t, "b", first.Rooms[1].ID)

	rest, err := repo.Query(ctx, repository.RoomQuery{SortBy: repository.SortByCreatedAt, Limit: 2, After: first.Next})
	require.NoError(t, err)
	require.Len(t, rest.Rooms, 1)
	assert.Equal(t, "a", rest.Rooms[0].ID)
}

func TestRoomRepository_ReleaseExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := NewRoomRepository(tickingClock(now))

	yesterday, _ := domain.Occupied(now.AddDate(0, 0, -1))
	exactlyNow, _ := domain.Occupied(now)
	tomorrow, _ := domain.Occupied(now.AddDate(0, 0, 1))

	overdue := newRoom("Overdue", "Lomé", 40000, yesterday)
	boundary := newRoom("Boundary", "Lomé", 40000, exactlyNow)
	future := newRoom("Future", "Lomé", 40000, tomorrow)
	reserved := newRoom("Reserved", "Lomé", 40000, domain.Reserved())
	for _, r := range []*domain.Room{overdue, boundary, future, reserved} {
		require.NoError(t, repo.Create(ctx, r))
	}

	released, err := repo.ReleaseExpired(ctx, now)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{overdue.ID, boundary.ID}, released)

	got, err := repo.GetByID(ctx, overdue.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoomStatusAvailable, got.Availability.Status())
	assert.Nil(t, got.Availability.ReleaseDatePtr())
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))

	got, err = repo.GetByID(ctx, future.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoomStatusOccupied, got.Availability.Status())

	got, err = repo.GetByID(ctx, reserved.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoomStatusReservation, got.Availability.Status())

	again, err := repo.ReleaseExpired(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestRoomRepository_ConcurrentReleaseAppliesOnce(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := NewRoomRepository(tickingClock(now))
	for i := 0; i < 10; i++ {
		occ, _ := domain.Occupied(now.Add(-time.Duration(i+1) * time.Hour))
		require.NoError(t, repo.Create(ctx, newRoom(fmt.Sprintf("R%d", i), "Lomé", 30000, occ)))
	}

	var wg sync.WaitGroup
	results := make([][]string, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = repo.ReleaseExpired(ctx, now)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 10, len(results[0])+len(results[1]))
}

func TestRoomRepository_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewRoomRepository(tickingClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
	room := newRoom("Studio", "Lomé", 30000, domain.Available())
	require.NoError(t, repo.Create(ctx, room))

	title := "Studio meublé"
	updated, err := repo.Update(ctx, room.ID, domain.RoomPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, "Lomé", updated.Address.City)
	assert.True(t, updated.UpdatedAt.After(room.UpdatedAt))
	assert.Equal(t, room.CreatedAt, updated.CreatedAt)

	_, err = repo.Update(ctx, "missing", domain.RoomPatch{Title: &title})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, repo.Delete(ctx, room.ID))
	_, err = repo.GetByID(ctx, room.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
