package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"incident-training-service/internal/app"
	"incident-training-service/internal/config"
	"incident-training-service/internal/infra/memory"
	"incident-training-service/internal/infra/postgres"
	rediscache "incident-training-service/internal/infra/redis"
	"incident-training-service/internal/logger"
	transport "incident-training-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the training service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// backend is the set of stores the services are built on.
type backend interface {
	app.ScenarioStore
	app.DirectoryStore
	app.IncidentStore
	app.SnapshotLoader
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return err
	}
	defer log.Sync()

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	services, cleanup, err := buildServices(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     transport.NewServer(services, log),
		ReadTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting incident training service", "port", finalPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// buildServices wires Postgres when configured and falls back to a seeded
// in-memory store otherwise. Redis, when configured, backs the scenario cache
// and feed liveness markers.
func buildServices(ctx context.Context, cfg config.Config, log *logger.Logger) (transport.Services, func(), error) {
	var (
		store    backend
		loader   memory.ScenarioLoader
		cleanups []func()
	)
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return transport.Services{}, func() {}, err
		}
		db := postgres.OpenDB(cfg.Postgres.URL)
		cleanups = append(cleanups, func() { _ = db.Close() })

		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			cleanup()
			return transport.Services{}, func() {}, err
		}
		cleanups = append(cleanups, pool.Close)

		store = postgres.NewStore(db)
		loader = postgres.NewScenarioLoader(pool)
		log.Info("using postgres store")
	} else {
		mem := memory.NewStore()
		store = mem
		loader = mem
		log.Info("using in-memory store with demo data")
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		cleanups = append(cleanups, func() { _ = redisClient.Close() })
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)
	scenarioTTL := config.TTLDuration(cfg.Scenario.TTL, 10*time.Minute)

	var cache app.ScenarioRepository
	var feeds app.FeedRepository
	if redisClient != nil {
		cache = rediscache.NewScenarioRepository(redisClient, loader, scenarioTTL)
		feeds = rediscache.NewFeedStore(redisClient, redisTTL)
	} else {
		cache = memory.NewScenarioRepository(loader, scenarioTTL)
		feeds = memory.NewFeedStore()
	}

	reports := app.NewReportService(store, store, store)
	feedService := app.NewFeedService(feeds, reports, log.With("component", "feed"))
	services := transport.Services{
		Scenarios: app.NewScenarioService(store, cache, store),
		Directory: app.NewDirectoryService(store),
		Incidents: app.NewIncidentService(store, cache, store, feedService),
		Reports:   reports,
		Feeds:     feedService,
	}

	if cfg.Postgres.URL == "" {
		if err := seedDemo(ctx, services); err != nil {
			cleanup()
			return transport.Services{}, func() {}, err
		}
	}
	return services, cleanup, nil
}
