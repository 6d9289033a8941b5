package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"locationapp-backend/internal/domain"
	"locationapp-backend/internal/repository"
	"locationapp-backend/internal/repository/memory"
)

func seedRooms(t *testing.T, repo repository.RoomRepository, n int) []string {
	t.Helper()
	ids := make([]string, 0, n)
	cities := []string{"Lomé", "Kara", "Sokodé"}
	for i := 0; i < n; i++ {
		r := &domain.Room{
			Title:         fmt.Sprintf("Chambre %d", i),
			Address:       domain.Address{City: cities[i%len(cities)]},
			PricePerMonth: int64(20000 + i*5000),
			Currency:      domain.DefaultCurrency,
			Availability:  domain.Available(),
		}
		require.NoError(t, repo.Create(context.Background(), r))
		ids = append(ids, r.ID)
	}
	return ids
}

func TestListingService_Browse(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRoomRepository(tickingClock(serviceNow))
	ids := seedRooms(t, repo, 30)
	svc := NewListingService(repo, 0, 0)

	t.Run("Pages cover everything once, newest first", func(t *testing.T) {
		var got []string
		cursor := ""
		pages := 0
		for {
			page, err := svc.Browse(ctx, domain.ListingFilter{}, cursor)
			require.NoError(t, err)
			assert.LessOrEqual(t, len(page.Rooms), DefaultBrowsePageSize)
			for _, r := range page.Rooms {
				got = append(got, r.ID)
			}
			pages++
			if page.NextCursor == "" {
				break
			}
			cursor = page.NextCursor
		}

		assert.Equal(t, 3, pages)
		require.Len(t, got, len(ids))
		for i := range ids {
			assert.Equal(t, ids[len(ids)-1-i], got[i])
		}
	})

	t.Run("Every room satisfies the filters", func(t *testing.T) {
		budget := int64(80000)
		f := domain.ListingFilter{City: "Lomé", BudgetMax: &budget, Status: domain.RoomStatusAvailable}
		page, err := svc.Browse(ctx, f, "")
		require.NoError(t, err)
		require.NotEmpty(t, page.Rooms)
		for _, r := range page.Rooms {
			assert.True(t, f.Matches(&r), r.ID)
		}
	})

	t.Run("Cursor rejected after filter change", func(t *testing.T) {
		page, err := svc.Browse(ctx, domain.ListingFilter{}, "")
		require.NoError(t, err)
		require.NotEmpty(t, page.NextCursor)

		_, err = svc.Browse(ctx, domain.ListingFilter{City: "Kara"}, page.NextCursor)
		assert.ErrorIs(t, err, domain.ErrInvalidCursor)
	})

	t.Run("Cursor rejected on the admin surface", func(t *testing.T) {
		page, err := svc.Browse(ctx, domain.ListingFilter{}, "")
		require.NoError(t, err)

		_, err = svc.AdminList(ctx, domain.ListingFilter{}, page.NextCursor)
		assert.ErrorIs(t, err, domain.ErrInvalidCursor)
	})

	t.Run("Empty result", func(t *testing.T) {
		page, err := svc.Browse(ctx, domain.ListingFilter{City: "Atakpamé"}, "")
		require.NoError(t, err)
		assert.Empty(t, page.Rooms)
		assert.NotNil(t, page.Rooms)
		assert.Empty(t, page.NextCursor)
	})
}

func TestListingService_AdminList(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRoomRepository(tickingClock(serviceNow))
	ids := seedRooms(t, repo, 25)
	svc := NewListingService(repo, 12, 20)

	// touching the oldest room moves it to the top of the admin listing
	title := "Rénovée"
	_, err := repo.Update(ctx, ids[0], domain.RoomPatch{Title: &title})
	require.NoError(t, err)

	page, err := svc.AdminList(ctx, domain.ListingFilter{}, "")
	require.NoError(t, err)
	assert.Len(t, page.Rooms, 20)
	assert.Equal(t, ids[0], page.Rooms[0].ID)
	require.NotEmpty(t, page.NextCursor)

	next, err := svc.AdminList(ctx, domain.ListingFilter{}, page.NextCursor)
	require.NoError(t, err)
	assert.Len(t, next.Rooms, 5)
	assert.Empty(t, next.NextCursor)
}

func TestListingService_StoreErrors(t *testing.T) {
	ctx := context.Background()
	budget := int64(60000)
	f := domain.ListingFilter{City: "Lomé", BudgetMax: &budget}

	t.Run("Missing index is kept distinct", func(t *testing.T) {
		repo := new(MockRoomRepo)
		missing := &domain.MissingIndexError{Hint: "https://console.firebase.google.com/project/x/firestore/indexes?create_composite=abc"}
		repo.On("Query", mock.Anything, mock.Anything).Return(nil, missing)

		_, err := NewListingService(repo, 12, 20).Browse(ctx, f, "")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrMissingIndex)
		assert.NotErrorIs(t, err, domain.ErrUnavailable)

		var mi *domain.MissingIndexError
		require.ErrorAs(t, err, &mi)
		assert.Contains(t, mi.Hint, "create_composite")
	})

	t.Run("Unavailable", func(t *testing.T) {
		repo := new(MockRoomRepo)
		repo.On("Query", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("%w: timeout", domain.ErrUnavailable))

		_, err := NewListingService(repo, 12, 20).Browse(ctx, f, "")
		assert.ErrorIs(t, err, domain.ErrUnavailable)
		assert.NotErrorIs(t, err, domain.ErrMissingIndex)
	})
}

func TestBuildRoomQuery(t *testing.T) {
	budget := int64(45000)
	f := domain.ListingFilter{City: "Lomé", BudgetMax: &budget, Status: domain.RoomStatusOccupied}

	t.Run("Browse", func(t *testing.T) {
		q, err := BuildRoomQuery(SurfaceBrowse, 12, f, "")
		require.NoError(t, err)
		assert.Equal(t, repository.SortByCreatedAt, q.SortBy)
		assert.Equal(t, 12, q.Limit)
		assert.Nil(t, q.After)
		assert.True(t, q.Filter.Equal(f))
	})

	t.Run("Admin resumes after cursor", func(t *testing.T) {
		pos := repository.Position{SortValue: serviceNow, ID: "room-9"}
		cursor, err := EncodeCursor(SurfaceAdmin, f, pos)
		require.NoError(t, err)

		q, err := BuildRoomQuery(SurfaceAdmin, 20, f, cursor)
		require.NoError(t, err)
		assert.Equal(t, repository.SortByUpdatedAt, q.SortBy)
		require.NotNil(t, q.After)
		assert.Equal(t, "room-9", q.After.ID)
		assert.True(t, q.After.SortValue.Equal(serviceNow))
	})
}

func TestDecodeCursor(t *testing.T) {
	f := domain.ListingFilter{City: "Lomé"}
	pos := repository.Position{SortValue: time.Date(2026, 1, 2, 3, 4, 5, 600, time.UTC), ID: "abc"}
	token, err := EncodeCursor(SurfaceBrowse, f, pos)
	require.NoError(t, err)

	t.Run("Round trip keeps nanoseconds", func(t *testing.T) {
		got, err := DecodeCursor(token, SurfaceBrowse, f)
		require.NoError(t, err)
		assert.True(t, got.SortValue.Equal(pos.SortValue))
		assert.Equal(t, "abc", got.ID)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := DecodeCursor("!!not-a-cursor", SurfaceBrowse, f)
		assert.ErrorIs(t, err, domain.ErrInvalidCursor)
	})

	t.Run("Budget change invalidates", func(t *testing.T) {
		budget := int64(1000)
		_, err := DecodeCursor(token, SurfaceBrowse, domain.ListingFilter{City: "Lomé", BudgetMax: &budget})
		assert.ErrorIs(t, err, domain.ErrInvalidCursor)
	})
}
