package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cinematch/cinematch/internal/api"
	"github.com/cinematch/cinematch/internal/catalog"
	"github.com/cinematch/cinematch/internal/config"
	"github.com/cinematch/cinematch/internal/database"
	"github.com/cinematch/cinematch/internal/logger"
	"github.com/cinematch/cinematch/internal/metadata"
	"github.com/cinematch/cinematch/internal/metadata/mock"
	"github.com/cinematch/cinematch/internal/recommend"
	"github.com/cinematch/cinematch/internal/scheduler"
	"github.com/cinematch/cinematch/internal/scheduler/tasks"
	"github.com/cinematch/cinematch/internal/session"
)

const rateLimitCleanupCron = "*/10 * * * *"

func main() {
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging, logger.WithDeveloperMode(cfg.DeveloperMode))
	defer log.Close()

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	log.Info().
		Str("version", api.Version).
		Str("logLevel", cfg.Logging.Level).
		Bool("developerMode", cfg.DeveloperMode).
		Msg("starting CineMatch")

	cat, err := catalog.Load(cfg.Catalog.MoviesPath, cfg.Catalog.SimilarityPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load catalog")
	}
	log.Info().Int("movies", cat.Len()).Msg("catalog loaded")

	ctx := context.Background()

	db, err := database.New(ctx, cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	log.Info().Msg("running database migrations")
	if err := db.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	var meta *metadata.Service
	if cfg.DeveloperMode {
		log.Warn().Msg("developer mode: serving canned metadata")
		meta = metadata.NewServiceWithClient(mock.NewTMDBClient(), cfg.TMDB.IDCacheSize, log.WithComponent("metadata"))
	} else {
		meta = metadata.NewService(cfg.TMDB, log.WithComponent("metadata"))
	}

	go func() {
		testCtx, cancel := context.WithTimeout(ctx, cfg.TMDB.RequestTimeout())
		defer cancel()
		if err := meta.Test(testCtx); err != nil {
			log.Warn().Err(err).Msg("TMDB is unreachable, pages will render without metadata")
		}
	}()

	engine := recommend.NewEngine(cat, meta, recommend.Config{
		Count:   cfg.Recommend.Count,
		Workers: cfg.Recommend.Workers,
	}, log.Logger)

	sessions := session.NewService(
		session.NewSQLStore(db.Conn(), cfg.Session.HistorySize),
		cfg.Session.HistorySize,
		log.Logger,
	)

	sched, err := scheduler.New(log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create scheduler")
	}

	server := api.NewServer(cfg, api.Deps{
		Catalog:   cat,
		Metadata:  meta,
		Engine:    engine,
		Sessions:  sessions,
		Scheduler: sched,
	}, log.Logger)

	if err := tasks.RegisterTrendingRefreshTask(sched, meta, cfg.Trending.Cron); err != nil {
		log.Fatal().Err(err).Msg("failed to register trending refresh task")
	}
	if err := tasks.RegisterSessionPurgeTask(sched, sessions, cfg.Session.PurgeCron, cfg.Session.MaxAge); err != nil {
		log.Fatal().Err(err).Msg("failed to register session purge task")
	}
	if err := tasks.RegisterRateLimitCleanupTask(sched, server, rateLimitCleanupCron); err != nil {
		log.Fatal().Err(err).Msg("failed to register rate limit cleanup task")
	}

	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}

	go func() {
		if err := server.Start(cfg.Server.Address()); err != nil {
			log.Info().Err(err).Msg("server stopped")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}
	if err := sched.Stop(); err != nil {
		log.Error().Err(err).Msg("scheduler shutdown error")
	}

	log.Info().Msg("CineMatch stopped")
}
