// Package bootstrap assembles the stores, storage and services selected by
// configuration. Both binaries share it.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	firebase "firebase.google.com/go/v4"
	_ "github.com/lib/pq"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	"locationapp-backend/internal/cache"
	"locationapp-backend/internal/config"
	"locationapp-backend/internal/logger"
	"locationapp-backend/internal/repository"
	fsrepo "locationapp-backend/internal/repository/firestore"
	"locationapp-backend/internal/repository/memory"
	"locationapp-backend/internal/repository/postgres"
	"locationapp-backend/internal/security"
	"locationapp-backend/internal/service"
	"locationapp-backend/internal/storage"
)

// App holds the wired services. Close releases every client it opened.
type App struct {
	Rooms        service.RoomService
	Listing      service.ListingService
	Inquiries    service.InquiryService
	Auth         service.AuthService
	Availability service.AvailabilityService

	// Files is set when images live on the local filesystem.
	Files *storage.MockStorageService

	closers []func() error
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.Warn("Failed to close resource", "error", err)
		}
	}
}

type stores struct {
	rooms     repository.RoomRepository
	inquiries repository.InquiryRepository
}

// Build opens the configured backends and wires the services on top.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{}
	ok := false
	defer func() {
		if !ok {
			app.Close()
		}
	}()

	fb, err := firebaseApp(ctx, cfg)
	if err != nil {
		return nil, err
	}

	st, err := app.openRooms(ctx, cfg, fb)
	if err != nil {
		return nil, err
	}

	files, err := app.openStorage(ctx, cfg, fb)
	if err != nil {
		return nil, err
	}

	identity, err := identityProvider(ctx, cfg, fb)
	if err != nil {
		return nil, err
	}

	loc := cfg.Location()
	app.Rooms = service.NewRoomService(st.rooms, files, loc, cfg.DefaultOccupancy())
	app.Listing = service.NewListingService(st.rooms, cfg.Listing.BrowsePageSize, cfg.Listing.AdminPageSize)
	app.Availability = service.NewAvailabilityService(st.rooms)
	app.Auth = service.NewAuthService(identity, security.NewTokenManager(cfg.Auth.JWTSecret, cfg.SessionTTL()))
	app.Inquiries = service.NewInquiryService(
		st.inquiries,
		st.rooms,
		service.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName),
		service.InquiryServiceConfig{
			OperatorPhone: cfg.Inquiry.OperatorPhone,
			OperatorEmail: cfg.Inquiry.OperatorEmail,
			Location:      loc,
		},
	)

	ok = true
	return app, nil
}

// BuildAvailability wires only what the reconciliation job needs.
func BuildAvailability(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{}
	fb, err := firebaseApp(ctx, cfg)
	if err != nil {
		return nil, err
	}
	st, err := app.openRooms(ctx, cfg, fb)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Availability = service.NewAvailabilityService(st.rooms)
	return app, nil
}

// openRooms opens the store with the room cache in front when enabled. The
// server and the cron job both open rooms here, so releases made by the job
// drop the server's cached entries.
func (a *App) openRooms(ctx context.Context, cfg *config.Config, fb *firebase.App) (*stores, error) {
	st, err := a.openStore(ctx, cfg, fb)
	if err != nil {
		return nil, err
	}
	if !cfg.Cache.Enabled {
		return st, nil
	}
	rc, err := cache.ConnectRedis(ctx, cfg.Cache.Addr, cfg.Cache.Password, cfg.Cache.DB)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, rc.Close)
	st.rooms = cache.NewRoomRepository(st.rooms, rc, time.Duration(cfg.Cache.TTLSeconds)*time.Second)
	return st, nil
}

func needsFirebase(cfg *config.Config) bool {
	return cfg.Store.Driver == "firestore" || cfg.Storage.Type == "firebase" || cfg.Auth.Provider == "firebase"
}

func firebaseApp(ctx context.Context, cfg *config.Config) (*firebase.App, error) {
	if !needsFirebase(cfg) {
		return nil, nil
	}
	var opts []option.ClientOption
	if cfg.Store.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.Store.CredentialsFile))
	}
	fb, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     cfg.Store.ProjectID,
		StorageBucket: cfg.Storage.Bucket,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase: %w", err)
	}
	return fb, nil
}

func (a *App) openStore(ctx context.Context, cfg *config.Config, fb *firebase.App) (*stores, error) {
	switch cfg.Store.Driver {
	case "firestore":
		client, err := fb.Firestore(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to open firestore: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		s := fsrepo.NewStore(client)
		logger.Info("Using Firestore store", "project", cfg.Store.ProjectID)
		return &stores{rooms: s.RoomRepository, inquiries: s.InquiryRepository}, nil

	case "postgres":
		db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		if err := db.PingContext(ctx); err != nil {
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			return nil, err
		}
		s := postgres.NewStore(db)
		logger.Info("Using PostgreSQL store", "host", cfg.Store.Host, "database", cfg.Store.Database)
		return &stores{rooms: s.RoomRepository, inquiries: s.InquiryRepository}, nil

	case "memory":
		s := memory.NewStore(nil)
		logger.Warn("Using in-memory store; data is lost on restart")
		return &stores{rooms: s.RoomRepository, inquiries: s.InquiryRepository}, nil
	}
	return nil, fmt.Errorf("unknown store driver: %q", cfg.Store.Driver)
}

func (a *App) openStorage(ctx context.Context, cfg *config.Config, fb *firebase.App) (storage.StorageInterface, error) {
	if cfg.Storage.Type == "firebase" {
		logger.Info("Using Firebase Storage", "bucket", cfg.Storage.Bucket)
		return storage.NewFirebaseStorageService(ctx, fb, cfg.Storage.Bucket)
	}
	logger.Info("Using mock storage (local filesystem)", "upload_dir", cfg.Storage.UploadDir)
	files, err := storage.NewMockStorageService(cfg.Storage.BaseURL, cfg.Storage.UploadDir)
	if err != nil {
		return nil, err
	}
	a.Files = files
	return files, nil
}

func identityProvider(ctx context.Context, cfg *config.Config, fb *firebase.App) (security.IdentityProvider, error) {
	if cfg.Auth.Provider != "firebase" {
		return security.NewLocalProvider(cfg.Auth.AdminEmail, cfg.Auth.AdminPasswordHash), nil
	}
	toolkit, err := identitytoolkit.NewService(ctx, option.WithAPIKey(cfg.Auth.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create identity toolkit client: %w", err)
	}
	authClient, err := fb.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create firebase auth client: %w", err)
	}
	return security.NewFirebaseProvider(toolkit, authClient, cfg.Auth.AdminEmail), nil
}
