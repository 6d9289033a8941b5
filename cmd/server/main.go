package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	grpcapi "locationapp-backend/internal/api/grpc"
	httpapi "locationapp-backend/internal/api/http"
	"locationapp-backend/internal/bootstrap"
	"locationapp-backend/internal/config"
	"locationapp-backend/internal/logger"
	"locationapp-backend/internal/security"
)

func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	hashPassword := flag.String("hash-password", "", "Print the bcrypt hash of a password for auth.admin_password_hash and exit")
	flag.Parse()

	if *hashPassword != "" {
		hash, err := security.HashPassword(*hashPassword)
		if err != nil {
			log.Fatalf("Failed to hash password: %v", err)
		}
		fmt.Println(hash)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting room listing backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "http", cfg.GetServerAddress(), "grpc", cfg.GetGRPCAddress())
	logger.Info("Store configuration", "driver", cfg.Store.Driver, "storage", cfg.Storage.Type, "auth", cfg.Auth.Provider, "cache", cfg.Cache.Enabled)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize services", "error", err)
		log.Fatalf("Failed to initialize services: %v", err)
	}
	defer app.Close()

	api := httpapi.NewServer(httpapi.Services{
		Rooms:     app.Rooms,
		Listing:   app.Listing,
		Inquiries: app.Inquiries,
		Auth:      app.Auth,
	}, app.Files, cfg)

	httpServer := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("HTTP server listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	grpcServer, health := grpcapi.NewServer(app.Auth, grpcapi.NewOpsHandler(app.Availability, app.Rooms))
	if cfg.Server.GRPCPort > 0 {
		lis, err := net.Listen("tcp", cfg.GetGRPCAddress())
		if err != nil {
			logger.Error("Failed to listen", "error", err, "address", cfg.GetGRPCAddress())
			log.Fatalf("Failed to listen: %v", err)
		}
		go func() {
			logger.Info("gRPC server listening", "address", cfg.GetGRPCAddress())
			if err := grpcServer.Serve(lis); err != nil {
				logger.Error("Failed to serve gRPC", "error", err)
				stop()
			}
		}()
	}

	<-ctx.Done()
	logger.Info("Shutting down...")
	health.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown error", "error", err)
	}
	grpcServer.GracefulStop()
	logger.Info("Server stopped. Goodbye!")
}
