package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"locationapp-backend/internal/domain"
)

func TestHTTPFetcher_Fetch(t *testing.T) {
	var lastQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lastQuery = map[string]string{}
		for k := range r.URL.Query() {
			lastQuery[k] = r.URL.Query().Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("city") {
		case "Index":
			w.WriteHeader(http.StatusConflict)
			_ = json.NewEncoder(w).Encode(apiError{Error: "index required", Code: "missing_index", Hint: "https://console.firebase.google.com/x"})
		case "Down":
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(apiError{Error: "store unavailable", Code: "unavailable"})
		case "Cursor":
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(apiError{Error: "filters changed", Code: "invalid_cursor"})
		default:
			_ = json.NewEncoder(w).Encode(Page{Rooms: []domain.RoomRecord{{ID: "r1", City: "Lomé"}}, NextCursor: "next"})
		}
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.URL+"/", srv.Client())
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		budget := int64(60000)
		page, err := f.Fetch(ctx, domain.ListingFilter{City: "Lomé", BudgetMax: &budget, Status: domain.RoomStatusAvailable}, "abc")
		require.NoError(t, err)
		require.Len(t, page.Rooms, 1)
		assert.Equal(t, "next", page.NextCursor)
		assert.Equal(t, map[string]string{"city": "Lomé", "budgetMax": "60000", "status": "libre", "cursor": "abc"}, lastQuery)
	})

	t.Run("Missing index", func(t *testing.T) {
		_, err := f.Fetch(ctx, domain.ListingFilter{City: "Index"}, "")
		var mi *domain.MissingIndexError
		require.ErrorAs(t, err, &mi)
		assert.Equal(t, "https://console.firebase.google.com/x", mi.Hint)
	})

	t.Run("Unavailable", func(t *testing.T) {
		_, err := f.Fetch(ctx, domain.ListingFilter{City: "Down"}, "")
		assert.ErrorIs(t, err, domain.ErrUnavailable)
	})

	t.Run("Invalid cursor", func(t *testing.T) {
		_, err := f.Fetch(ctx, domain.ListingFilter{City: "Cursor"}, "old")
		assert.ErrorIs(t, err, domain.ErrInvalidCursor)
	})
}

func TestFilterPrefs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "browse", "filters.json")

	raw, err := LoadFilter(path)
	require.NoError(t, err)
	assert.Equal(t, domain.RawListingFilter{}, raw)

	want := domain.RawListingFilter{City: "Lomé", BudgetMax: "60 000", Status: "libre"}
	require.NoError(t, SaveFilter(path, want))

	got, err := LoadFilter(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
