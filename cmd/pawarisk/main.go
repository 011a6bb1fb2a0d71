// Command pawarisk wires and runs the scraping pipeline: config load,
// durable store, mapping catalogue, odds cache, write queue, watchdog,
// cache warmup, and the cycle scheduler. Grounded on
// cmd/mercury/main.go's connect-then-ping-then-construct-then-signal
// shape, generalised to the larger component graph this pipeline needs.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/pawapay/pawarisk/internal/broadcaster"
	"github.com/pawapay/pawarisk/internal/config"
	"github.com/pawapay/pawarisk/internal/coordinator"
	"github.com/pawapay/pawarisk/internal/mapper"
	"github.com/pawapay/pawarisk/internal/mapping"
	"github.com/pawapay/pawarisk/internal/oddscache"
	"github.com/pawapay/pawarisk/internal/platformclient"
	"github.com/pawapay/pawarisk/internal/store"
	"github.com/pawapay/pawarisk/internal/streammirror"
	"github.com/pawapay/pawarisk/internal/warmup"
	"github.com/pawapay/pawarisk/internal/watchdog"
	"github.com/pawapay/pawarisk/internal/writequeue"
	"github.com/pawapay/pawarisk/pkg/contracts"
	"github.com/pawapay/pawarisk/pkg/models"
)

const (
	writeQueueCapacity   = 128
	settingsRefreshEvery = 30 * time.Second
	watchdogSweepEvery   = 1 * time.Minute
	shutdownTimeout      = 10 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	logger := newLogger(cfg.LogLevel)

	db, err := store.Open(ctx, cfg.DSN())
	if err != nil {
		logger.Fatal().Err(err).Msg("connect postgres")
	}
	defer db.Close()
	logger.Info().Msg("connected to postgres")

	if err := runMigrations(cfg.DSN(), cfg.MigrationsPath, logger); err != nil {
		logger.Fatal().Err(err).Msg("run migrations")
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr()})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("connect redis")
	}
	logger.Info().Msg("connected to redis")

	pg := store.New(db)

	settings := config.NewSettingsWatcher(pg, settingsRefreshEvery)
	if err := settings.Refresh(ctx); err != nil {
		logger.Warn().Err(err).Msg("initial settings refresh failed, using defaults")
	}
	go settings.Run(ctx, func(err error) {
		logger.Warn().Err(err).Msg("settings refresh failed")
	})

	mappingStore := mapping.NewRedisAcceleratedStore(pg, redisClient)
	mappingCache := mapping.New(mappingStore)

	oddsCache := oddscache.New()
	bus := broadcaster.New()

	warmupRunner := warmup.New(mappingCache, oddsCache, pg, pg, logger.With().Str("component", "warmup").Logger())
	if err := warmupRunner.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("cache warmup")
	}

	wd := watchdog.New(pg, settings, watchdogSweepEvery, logger.With().Str("component", "watchdog").Logger())
	if err := wd.RecoverOnStartup(ctx); err != nil {
		logger.Fatal().Err(err).Msg("recover stale runs on startup")
	}
	go wd.Run(ctx)

	queue := writequeue.New(writeQueueCapacity)
	handler := writequeue.NewHandler(queue, pg, bus)
	handler.OnDrop(func(batch models.WriteBatch, err error) {
		logger.Error().Err(err).Str("scrape_run_id", batch.ScrapeRunID).Msg("write batch dropped after retries")
	})
	handler.WithMirror(streammirror.New(redisClient), func(batch models.WriteBatch, err error) {
		logger.Warn().Err(err).Str("scrape_run_id", batch.ScrapeRunID).Msg("stream mirror failed")
	})
	go handler.Run(ctx)

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	deps := coordinator.Deps{
		Clients: map[models.Platform]contracts.PlatformClient{
			models.PlatformBetPawa:   platformclient.NewBetPawaClient(cfg.BetPawaBaseURL, httpClient),
			models.PlatformSportyBet: platformclient.NewSportyBetClient(cfg.SportyBetBaseURL, httpClient),
			models.PlatformBet9ja:    platformclient.NewBet9jaClient(cfg.Bet9jaBaseURL, httpClient),
		},
		Mappers: map[models.Platform]contracts.PlatformMapper{
			models.PlatformBetPawa:   mapper.BetPawaMapper{},
			models.PlatformSportyBet: mapper.SportyBetMapper{},
			models.PlatformBet9ja:    mapper.Bet9jaMapper{},
		},
		MappingCache: mappingCache,
		MappingStore: mappingStore,
		OddsCache:    oddsCache,
		WriteQueue:   queue,
		Publisher:    bus,
		Runs:         pg,
		Settings:     settings,
	}
	coord := coordinator.New(deps)

	logger.Info().Msg("pawarisk started")
	runScheduler(ctx, coord, settings, logger)
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	<-shutdownCtx.Done()
	logger.Info().Msg("pawarisk stopped")
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).Level(lvl).With().Timestamp().Logger()
}

func runMigrations(dsn, migrationsPath string, logger zerolog.Logger) error {
	m, err := migrate.New(fmt.Sprintf("file://%s", migrationsPath), dsn)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migrate up: %w", err)
	}

	version, dirty, _ := m.Version()
	logger.Info().Uint("version", uint(version)).Bool("dirty", dirty).Msg("migrations applied")
	return nil
}
