package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"locationapp-backend/internal/bootstrap"
	"locationapp-backend/internal/config"
	"locationapp-backend/internal/jobs"
	"locationapp-backend/internal/logger"
	"locationapp-backend/internal/scheduler"
)

func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'release-expired-rooms')")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting room listing cronjob runner...", "log_level", cfg.Log.Level, "store", cfg.Store.Driver)

	app, err := bootstrap.BuildAvailability(context.Background(), cfg)
	if err != nil {
		logger.Error("Failed to initialize store", "error", err)
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer app.Close()

	jobRunner := jobs.NewJobRunner(&jobs.Services{Availability: app.Availability}, cfg)

	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		if err := jobRunner.RunJob(*runOnce); err != nil {
			logger.Error("Job failed", "job", *runOnce, "error", err)
			fmt.Printf("Available jobs:\n  - %s\n", strings.Join(jobRunner.JobNames(), "\n  - "))
			app.Close()
			os.Exit(1)
		}
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	cronScheduler, err := scheduler.NewScheduler(jobRunner, cfg.Location())
	if err != nil {
		logger.Error("Failed to create scheduler", "error", err)
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.", "location", cfg.Location().String())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}
