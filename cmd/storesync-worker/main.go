package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/lottoworks/storesync-worker/internal/cloud"
	"github.com/lottoworks/storesync-worker/internal/config"
	"github.com/lottoworks/storesync-worker/internal/database"
	"github.com/lottoworks/storesync-worker/internal/engine"
	"github.com/lottoworks/storesync-worker/internal/logger"
	"github.com/lottoworks/storesync-worker/internal/models"
	"github.com/lottoworks/storesync-worker/internal/repository"
	"github.com/lottoworks/storesync-worker/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "worker error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer log.Sync()

	db, err := database.Connect(cfg.DatabasePath, log)
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	defer sqlDB.Close()

	if err := database.RunMigrations(sqlDB, log); err != nil {
		return err
	}

	// Repositories
	queueRepo := repository.NewQueueItemRepository(db)
	runRepo := repository.NewSyncRunRepository(db)
	storeRepo := repository.NewStoreConfigRepository(db)
	dayRepo := repository.NewDayRepository(db)
	userRepo := repository.NewUserRepository(db)
	gameRepo := repository.NewGameRepository(db)

	// Cloud client
	cloudClient := cloud.NewClient(cfg.CloudAPIURL, cfg.CloudTokenURL, cfg.CloudClientID, cfg.CloudClientSecret)
	if cfg.CloudClientID == "" {
		log.Warn("CLOUD_CLIENT_ID not set, cloud calls will be unauthenticated")
	}

	// Entity pushers
	pushers := map[models.EntityType]service.Pusher{
		models.EntityEmployee: service.NewEmployeePusher(userRepo, cloudClient, log),
		models.EntityShift:    service.NewShiftPusher(cloudClient, log),
		models.EntityPack:     service.NewPackPusher(gameRepo, cloudClient, log),
		models.EntityDayOpen:  service.NewDayOpenPusher(cloudClient, log),
		models.EntityDayClose: service.NewDayCloseCoordinator(dayRepo, cloudClient, log),
	}

	eng := engine.New(queueRepo, runRepo, storeRepo, cloudClient, pushers, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interval := time.Duration(cfg.SyncIntervalMs) * time.Millisecond
	if err := eng.Start(ctx, interval); err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info("shutdown signal received")
	eng.Stop()
	cancel()

	if !eng.WaitIdle(time.Duration(cfg.ShutdownTimeout) * time.Second) {
		log.Warn("shutdown timeout exceeded, exiting with cycle in flight")
	}

	log.Info("worker stopped", zap.String("database", cfg.DatabasePath))
	return nil
}
