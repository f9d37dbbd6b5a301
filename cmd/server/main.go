package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"stratus-server/internal/config"
	"stratus-server/internal/domain"
	"stratus-server/internal/engine"
	"stratus-server/internal/infrastructure/storage"
	"stratus-server/internal/network"
	"stratus-server/internal/server"
	"stratus-server/internal/skills"
	"stratus-server/internal/version"
	"stratus-server/pkg/logger"
)

func init() {
	logger.Init()
}

func main() {
	// 1. Конфигурация: окружение, затем флаги
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		logger.Log.WithError(err).Fatal("Invalid configuration")
	}

	logger.Log.Info("Starting Stratus combat server...")
	logger.Log.Info(version.String())

	// 2. Каталог навыков, брони и юнитов
	catalog, err := loadCatalog(cfg.Catalog)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to load catalog")
	}

	// 3. Арена и рассылка событий
	ecfg := cfg.Engine()
	logger.Log.WithFields(logrus.Fields{
		"seed":      ecfg.Seed,
		"explicit":  cfg.Seed != 0,
		"tick_rate": ecfg.TickRate.String(),
	}).Info("Using master seed")

	hub := network.NewBroadcaster()
	arena := engine.NewArena(ecfg, catalog, hub)
	arena.SetNotifier(hub.Broadcast)

	// Реплей пишется сегментами по ReplayChunk записей
	var store *storage.ReplayService
	if cfg.Record {
		if store, err = storage.NewReplayService(cfg.ReplayDir); err != nil {
			logger.Log.WithError(err).Fatal("Replay storage unavailable")
		}
		arena.SetReplaySink(func(s *domain.ReplaySession) {
			if _, err := store.Save(s); err != nil {
				logger.Log.WithError(err).Error("Replay segment not saved")
			}
		})
	}

	if err := arena.Populate(); err != nil {
		logger.Log.WithError(err).Fatal("Failed to populate arena")
	}

	// Graceful Shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := arena.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Log.WithError(err).Error("Arena loop failed")
		}
	}()

	// 4. Запуск сервера
	srv := server.New(arena, hub, cfg.Addr)
	if err := srv.Run(ctx); err != nil {
		logger.Log.WithError(err).Fatal("Server error")
	}

	logger.Log.Info("Shutting down...")

	if replay := arena.Replay(); replay != nil && store != nil {
		if _, err := store.Save(replay); err != nil {
			logger.Log.WithError(err).Error("Replay not saved")
		}
	}

	logger.Log.Info("Done.")
}

func loadCatalog(path string) (*skills.Catalog, error) {
	if path == "" {
		return skills.DefaultCatalog()
	}
	return skills.LoadCatalog(path)
}
