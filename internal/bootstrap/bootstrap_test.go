package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"locationapp-backend/internal/config"
	"locationapp-backend/internal/domain"
	"locationapp-backend/internal/security"
)

func memoryConfig(t *testing.T) *config.Config {
	t.Helper()
	hash, err := security.HashPassword("pw")
	require.NoError(t, err)
	cfg := &config.Config{
		Server:  config.ServerConfig{Port: 8080, BaseURL: "http://localhost:8080"},
		Store:   config.StoreConfig{Driver: "memory"},
		Storage: config.StorageConfig{Type: "mock", UploadDir: t.TempDir()},
		Auth: config.AuthConfig{
			Provider:          "local",
			AdminEmail:        "admin@example.com",
			AdminPasswordHash: hash,
			JWTSecret:         "0123456789abcdef0123456789abcdef",
		},
	}
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestBuild_Memory(t *testing.T) {
	ctx := context.Background()
	app, err := Build(ctx, memoryConfig(t))
	require.NoError(t, err)
	defer app.Close()

	require.NotNil(t, app.Files)
	session, err := app.Auth.Login(ctx, "admin@example.com", "pw")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)

	room, err := app.Rooms.CreateRoom(ctx, &domain.Room{
		Title:         "Chambre",
		Address:       domain.Address{City: "Lomé"},
		PricePerMonth: 25000,
		Availability:  domain.Available(),
	}, nil, nil)
	require.NoError(t, err)

	page, err := app.Listing.Browse(ctx, domain.ListingFilter{}, "")
	require.NoError(t, err)
	require.Len(t, page.Rooms, 1)
	assert.Equal(t, room.ID, page.Rooms[0].ID)

	released, err := app.Availability.ReleaseExpiredRooms(ctx)
	require.NoError(t, err)
	assert.Empty(t, released)
}

func TestBuild_UnknownDriver(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.Store.Driver = "mongo"
	_, err := Build(context.Background(), cfg)
	assert.Error(t, err)
}

func TestBuildAvailability_OpensRoomCache(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.Cache.Enabled = true
	cfg.Cache.Addr = "127.0.0.1:1"

	_, err := BuildAvailability(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Redis")
}
