package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"nateiva/internal/api"
	"nateiva/internal/config"
	"nateiva/internal/database"
	"nateiva/internal/events"
	"nateiva/internal/export"
	"nateiva/internal/logging"
	"nateiva/internal/metrics"
	"nateiva/internal/notify"
	"nateiva/internal/service"
	"nateiva/internal/snapshot"
	"nateiva/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}
	logger := logging.Component(baseLogger, "engine")

	if err := prepareDirectories(cfg); err != nil {
		logger.Error().Err(err).Msg("failed to prepare directories")
		return err
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to initialize database")
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	snapStore := initSnapshotStore(ctx, cfg, &logger)
	eventBus := events.NewEventBus()

	confirmWorker := worker.NewConfirmWorker(&logger)
	defer confirmWorker.Stop()

	bookingService := service.NewBookingService(db, eventBus, confirmWorker, cfg.Booking, &logger)
	confirmWorker.SetConfirmer(bookingService)

	snapshotter := service.NewSnapshotter(db, snapStore, &logger)
	userService := service.NewUserService(db, snapshotter, &logger)
	membershipService := service.NewMembershipService(db, eventBus, snapshotter, &logger)
	availabilityService := service.NewAvailabilityService(db, &logger)

	if err := snapshotter.Restore(ctx); err != nil {
		logger.Warn().Err(err).Msg("snapshot restore failed")
	}
	if err := snapshotter.Write(ctx); err != nil {
		logger.Warn().Err(err).Msg("initial snapshot write failed")
	}

	if cfg.API.Enabled {
		apiLogger := logging.Component(baseLogger, "api")
		apiServer := api.NewHTTPServer(cfg.API, api.Services{
			Bookings:     bookingService,
			Availability: availabilityService,
			Memberships:  membershipService,
			Users:        userService,
		}, &apiLogger)
		go func() {
			if err := apiServer.Start(); err != nil {
				apiLogger.Error().Err(err).Msg("http api server error")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := apiServer.Shutdown(shutdownCtx); err != nil {
				apiLogger.Error().Err(err).Msg("http api shutdown error")
			}
		}()
	}

	initNotifiers(cfg, eventBus, baseLogger)

	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
		go serveMetrics(cfg.Monitoring.PrometheusPort, &logger)
	}

	if cfg.Backup.Enabled {
		backupService := database.NewBackupService(cfg.Database.Path, cfg.Backup, &logger)
		go backupService.Start(ctx)
	}

	agenda := export.NewAgenda(bookingService, db, cfg.Exports, &logger)
	go exportLoop(ctx, agenda, &logger)

	logger.Info().Str("env", cfg.App.Environment).Msg("engine started")
	<-ctx.Done()
	logger.Info().Msg("shutdown complete")
	return nil
}

func prepareDirectories(cfg *config.Config) error {
	dirs := []string{
		filepath.Dir(cfg.Database.Path),
		filepath.Dir(cfg.Snapshot.Path),
		cfg.Exports.Path,
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// initSnapshotStore picks the snapshot backend: redis with a file fallback
// when redis is configured, a plain file store otherwise.
func initSnapshotStore(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) snapshot.Store {
	fileStore := snapshot.NewFileStore(cfg.Snapshot.Path)
	if !cfg.Redis.Enabled {
		return fileStore
	}

	client := snapshot.NewRedisClient(cfg.Redis)
	if err := snapshot.Ping(ctx, client); err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, snapshots fall back to file")
	}
	return snapshot.NewFailoverStore(snapshot.NewRedisStore(client), fileStore, logger)
}

func initNotifiers(cfg *config.Config, bus *events.EventBus, baseLogger *zerolog.Logger) {
	logLogger := logging.Component(baseLogger, "notify")
	notify.Subscribe(bus, notify.NewLogNotifier(&logLogger), &logLogger)

	if !cfg.Telegram.Enabled {
		return
	}

	retry := notify.DeliveryRetry{Attempts: 5, BaseDelay: 2 * time.Second, Cap: time.Minute, Factor: 2}
	tg, err := notify.NewTelegramNotifier(cfg.Telegram, retry, &logLogger)
	if err != nil {
		logLogger.Error().Err(err).Msg("telegram notifier disabled")
		return
	}
	notify.Subscribe(bus, tg, &logLogger)
}

func serveMetrics(port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	addr := fmt.Sprintf(":%d", port)
	logger.Info().Str("addr", addr).Msg("metrics endpoint listening")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error().Err(err).Msg("metrics server error")
	}
}

// exportLoop writes the coming week's agenda once a day.
func exportLoop(ctx context.Context, agenda *export.Agenda, logger *zerolog.Logger) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	exportWeek := func() {
		start := time.Now()
		if _, err := agenda.Export(ctx, start, start.AddDate(0, 0, 7)); err != nil {
			logger.Error().Err(err).Msg("agenda export failed")
		}
	}

	exportWeek()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			exportWeek()
		}
	}
}
