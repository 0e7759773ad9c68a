package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/speedial/speedial/internal/backup"
	"github.com/speedial/speedial/internal/config"
	"github.com/speedial/speedial/internal/githubsync"
	"github.com/speedial/speedial/internal/httpserver"
	"github.com/speedial/speedial/internal/httpserver/deps"
	"github.com/speedial/speedial/internal/logger"
	"github.com/speedial/speedial/internal/redis"
	"github.com/speedial/speedial/internal/scheduler"
	"github.com/speedial/speedial/internal/state"
	"github.com/speedial/speedial/internal/store/sqlite"
	"github.com/speedial/speedial/internal/thumb"
	"github.com/speedial/speedial/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	db          *sqlite.DB
	redisClient *goredis.Client
	dailySync   *scheduler.DailySyncer
}

func New() (*App, error) {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Embedded database - fail fast if it cannot be opened.
	db, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	loggerClient.Info("database opened", logger.String("path", cfg.DBPath))

	groupStore := sqlite.NewGroupStore(db)
	dialStore := sqlite.NewDialStore(db)
	todoStore := sqlite.NewTodoStore(db)

	ctx := context.Background()
	seeded, err := sqlite.Seed(ctx, groupStore, dialStore)
	if err != nil {
		return nil, fmt.Errorf("seed database: %w", err)
	}
	if seeded {
		loggerClient.Info("first run detected, seeded default groups and dials")
	}

	// Thumbnail cache is optional; a missing Redis only disables caching.
	var redisClient *goredis.Client
	var thumbCache *thumb.Cache
	if cfg.ThumbCacheEnabled() {
		redisClient, err = redis.Connect(cfg, loggerClient)
		if err != nil {
			loggerClient.Warn("thumbnail cache unavailable, fetching without cache",
				logger.Error(err))
			redisClient = nil
		} else {
			thumbCache = thumb.NewCache(redisClient, cfg.ThumbCacheTTL)
		}
	}
	fetcher := thumb.NewFetcher(cfg.ThumbTimeout, cfg.ThumbMaxSize, thumbCache, loggerClient)

	manager := state.NewManager(groupStore, dialStore, fetcher, loggerClient)
	if err := manager.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("hydrate state mirror: %w", err)
	}
	loggerClient.Info("state mirror hydrated",
		logger.Int("groups", len(manager.Groups())),
		logger.Int("dials", len(manager.Dials())))

	codec := backup.NewCodec(groupStore, dialStore, loggerClient)

	// Remote sync is optional and only active with a valid config file.
	var syncer *githubsync.Syncer
	var syncCfg *githubsync.Config
	var dailySync *scheduler.DailySyncer
	var syncTrigger chan struct{}
	if cfg.SyncConfigFile != "" {
		syncCfg, err = githubsync.LoadConfigFile(cfg.SyncConfigFile)
		if err != nil {
			loggerClient.Error("failed to load sync config, sync disabled",
				logger.String("file", cfg.SyncConfigFile),
				logger.Error(err))
		} else {
			syncer = githubsync.NewSyncer(codec, syncCfg, loggerClient)
			if cfg.AutoSync {
				syncTrigger = make(chan struct{}, 1)
				dailySync = scheduler.NewDailySyncer(syncer, loggerClient, syncTrigger)
			}
		}
	} else {
		loggerClient.Info("no sync config file, remote sync disabled")
	}

	d := deps.Deps{
		Logger:      loggerClient,
		StartTime:   time.Now(),
		Version:     version.Version,
		Commit:      version.Commit,
		BuildDate:   version.BuildDate,
		GoVersion:   version.GoVersion,
		TimeNow:     time.Now,
		DB:          db,
		State:       manager,
		Todos:       todoStore,
		Codec:       codec,
		Syncer:      syncer,
		RedisClient: redisClient,
		SyncConfig:  syncCfg,
		SyncTrigger: syncTrigger,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		db:          db,
		redisClient: redisClient,
		dailySync:   dailySync,
	}, nil
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting speedial %s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("speedial %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.dailySync != nil {
		if err := a.dailySync.Start(ctx); err != nil {
			return fmt.Errorf("failed to start daily sync: %w", err)
		}
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	if a.dailySync != nil {
		a.dailySync.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		}
	}

	if err := a.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	a.logger.Info("✅ speedial stopped cleanly")
	return nil
}
