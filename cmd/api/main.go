package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angelmondragon/hotelops-backend/api/routes"
	"github.com/angelmondragon/hotelops-backend/internal/coordinator"
	"github.com/angelmondragon/hotelops-backend/internal/guests"
	"github.com/angelmondragon/hotelops-backend/internal/inventory"
	"github.com/angelmondragon/hotelops-backend/internal/reservations"
	"github.com/angelmondragon/hotelops-backend/internal/rooms"
	"github.com/angelmondragon/hotelops-backend/internal/staff"
	"github.com/angelmondragon/hotelops-backend/internal/tasks"
	"github.com/angelmondragon/hotelops-backend/pkg/config"
	"github.com/angelmondragon/hotelops-backend/pkg/db"
	"github.com/angelmondragon/hotelops-backend/pkg/logger"
	"github.com/angelmondragon/hotelops-backend/pkg/metrics"
	"github.com/angelmondragon/hotelops-backend/pkg/migrate"
	"github.com/angelmondragon/hotelops-backend/pkg/outbox"
	"github.com/angelmondragon/hotelops-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	var (
		redisClient  *redis.Client
		stagingStore redis.ListStore
	)
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		stagingStore = redisClient
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	} else {
		logg.Warn(context.Background(), "redis not configured, idempotent replay disabled")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	opMetrics := metrics.NewOperationMetrics(reg)

	conn := dbClient.DB()
	emitter := outbox.NewService(outbox.NewRepository(conn), logg)

	roomService, err := rooms.NewService(rooms.NewRepository(conn), dbClient, logg)
	requireService(logg, "rooms", err)
	if cfg.FeatureFlags.SeedRooms {
		created, err := roomService.SeedGrid(context.Background(), cfg.Hotel.Floors, cfg.Hotel.RoomsPerFloor)
		if err != nil {
			logg.Error(context.Background(), "failed to seed rooms", err)
			os.Exit(1)
		}
		logg.Info(logg.WithField(context.Background(), "created", created), "room grid seeded")
	}

	guestService, err := guests.NewService(guests.NewRepository(conn))
	requireService(logg, "guests", err)

	inventoryService, err := inventory.NewService(inventory.NewRepository(conn), dbClient, emitter, opMetrics)
	requireService(logg, "inventory", err)

	reservationService, err := reservations.NewService(reservations.NewRepository(conn), roomService)
	requireService(logg, "reservations", err)

	staffService, err := staff.NewService(staff.NewRepository(conn))
	requireService(logg, "staff", err)

	staging, err := tasks.NewStaging(cfg.Tasks, stagingStore)
	requireService(logg, "task staging", err)
	taskService, err := tasks.NewService(tasks.NewRepository(conn), roomService, inventoryService, staging)
	requireService(logg, "tasks", err)

	coord, err := coordinator.New(coordinator.Params{
		Tx:           dbClient,
		Rooms:        roomService,
		Guests:       guestService,
		Reservations: reservationService,
		Staff:        staffService,
		Tasks:        taskService,
		Inventory:    inventoryService,
		Outbox:       emitter,
		Metrics:      opMetrics,
		Logger:       logg,
	})
	requireService(logg, "coordinator", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
		"dialect":  dbClient.Dialect(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg, logg, dbClient, redisClient, reg, coord,
			roomService, guestService, reservationService, staffService, taskService, inventoryService,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-sigCtx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

func requireService(logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to build "+name+" service", err)
	os.Exit(1)
}
