// Command sweep archives rooms whose expiration passed the grace window.
// It runs once with -once, or on an interval from SWEEP_INTERVAL.
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"vaultroom/internal/access"
	"vaultroom/internal/config"
	"vaultroom/internal/database"
	"vaultroom/internal/lifecycle"
	"vaultroom/internal/repository"
	"vaultroom/internal/service"
)

func main() {
	once := flag.Bool("once", false, "run a single sweep and exit")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	roomRepo := repository.NewDataRoomRepository(db)
	folderRepo := repository.NewFolderRepository(db)
	grantRepo := repository.NewGrantRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	evaluator := access.NewEvaluator(grantRepo, folderRepo)
	lifecycleEval := lifecycle.NewEvaluator(cfg.ExpiringWindowDays)
	activityService := service.NewActivityService(activityRepo, roomRepo, evaluator)
	roomService := service.NewRoomService(
		roomRepo, folderRepo, evaluator, lifecycleEval,
		activityService, cfg.ArchiveGraceDays)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sweep := func() {
		archived, err := roomService.ArchiveExpired(ctx)
		if err != nil {
			log.Printf("Sweep failed: %v", err)
			return
		}
		log.Printf("Sweep archived %d rooms", archived)
	}

	sweep()
	if *once {
		return
	}

	interval := time.Hour
	if cfg.SweepInterval != "" {
		parsed, err := time.ParseDuration(cfg.SweepInterval)
		if err != nil {
			log.Fatalf("Invalid SWEEP_INTERVAL %q: %v", cfg.SweepInterval, err)
		}
		interval = parsed
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Sweep shutting down")
			return
		case <-ticker.C:
			sweep()
		}
	}
}
