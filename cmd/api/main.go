package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	badgerstore "github.com/samirrijal/markermap/internal/adapters/badger"
	"github.com/samirrijal/markermap/internal/adapters/http"
	"github.com/samirrijal/markermap/internal/adapters/memory"
	natsadapter "github.com/samirrijal/markermap/internal/adapters/nats"
	"github.com/samirrijal/markermap/internal/adapters/postgres"
	"github.com/samirrijal/markermap/internal/adapters/valkey"
	"github.com/samirrijal/markermap/internal/core/domain"
	"github.com/samirrijal/markermap/internal/core/ports"
	"github.com/samirrijal/markermap/internal/core/usecases"
	"github.com/samirrijal/markermap/internal/pkg/config"
	"github.com/samirrijal/markermap/internal/pkg/logging"
	"github.com/samirrijal/markermap/internal/pkg/telemetry"
)

var version = "dev"

func main() {
	cfg, err := config.Load("markermap-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logFormat := os.Getenv("LOG_FORMAT")
	if logFormat == "" {
		logFormat = "json"
	}
	logging.Setup(logLevel, logFormat)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("store %s: %v", cfg.Store.Driver, err)
	}
	defer store.Close()

	// NATS is optional; without it the service runs with no event feed.
	var (
		publisher ports.EventPublisher
		broker    http.BrokerStatus
	)
	if cfg.NATS.Enabled {
		nc, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable", "error", err)
		} else {
			defer nc.Close()
			publisher = nc
			broker = nc
		}
	}

	markers := usecases.NewMarkerService(store, publisher, cfg.Store.Key)
	if err := markers.Load(ctx); err != nil {
		if !errors.Is(err, domain.ErrCorruptSnapshot) {
			log.Fatalf("load markers: %v", err)
		}
		// Keep the defaults and leave the stored blob alone until the next save.
		slog.Warn("saved markers unreadable, starting from defaults", "key", cfg.Store.Key, "error", err)
	}

	deps := &http.Dependencies{
		Markers:     markers,
		Store:       store,
		StoreDriver: cfg.Store.Driver,
		Broker:      broker,
		Map:         cfg.Map,
		Version:     version,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Markermap",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("markermap starting", "addr", addr, "store", cfg.Store.Driver, "markers", len(markers.State().Markers))
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

// openStore connects the snapshot backend selected by store.driver.
func openStore(ctx context.Context, cfg *config.Config) (ports.SnapshotStore, error) {
	switch cfg.Store.Driver {
	case "badger":
		return badgerstore.Open(cfg.Store.Path)
	case "valkey":
		return valkey.New(cfg.Valkey.Addr, "markermap:")
	case "postgres":
		db, err := postgres.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, err
		}
		return postgres.NewSnapshotRepo(db), nil
	case "memory":
		slog.Warn("memory store selected, saved markers are lost on restart")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown driver %q", cfg.Store.Driver)
	}
}
