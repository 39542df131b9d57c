package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	appcfg "github.com/mkarhu/chessmatch/internal/config"
	"github.com/mkarhu/chessmatch/internal/archive"
	"github.com/mkarhu/chessmatch/internal/delivery"
	"github.com/mkarhu/chessmatch/internal/engine"
	"github.com/mkarhu/chessmatch/internal/match"
	"github.com/mkarhu/chessmatch/internal/obslog"
	"github.com/mkarhu/chessmatch/internal/store"
)

func main() {
	cfg, err := appcfg.Load("")
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()
	defer func() { _ = logger.Sync() }()

	eng := engine.NewEngine()
	manager, err := match.NewManager(eng, logger, match.ManagerConfig{
		DefaultLevel: cfg.DefaultLevel,
		WaitTimeout:  time.Duration(cfg.WaitTimeoutSec) * time.Second,
		MaxSessions:  cfg.MaxSessions,
	})
	if err != nil {
		logger.Fatal("manager init error", zap.Error(err))
	}

	if cfg.RedisURL != "" {
		snapshots, err := store.NewRedisStore(cfg.RedisURL)
		if err != nil {
			logger.Fatal("redis init error", zap.Error(err))
		}
		defer func() { _ = snapshots.Close() }()
		manager.AttachSnapshots(snapshots)
		logger.Info("snapshot_mirror_enabled")
	}

	var games archive.Archive
	if cfg.DatabaseURL != "" {
		pg, err := archive.NewPostgresArchive(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("archive init error", zap.Error(err))
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := pg.EnsureSchema(ctx); err != nil {
			cancel()
			logger.Fatal("archive schema error", zap.Error(err))
		}
		cancel()
		games = pg
		logger.Info("archive_enabled", zap.String("backend", "postgres"))
	} else {
		games = archive.NewMemoryArchive()
		logger.Info("archive_enabled", zap.String("backend", "memory"))
	}
	defer func() { _ = games.Close() }()
	manager.AttachArchive(games)

	srv := delivery.NewServer(manager, games, logger)
	httpServer := &fasthttp.Server{
		Handler:      srv.Handler,
		Name:         "chessmatchd",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 90 * time.Second, // long polls are held up to the wait timeout
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server_listening", zap.String("addr", cfg.ListenAddr))
		errCh <- httpServer.ListenAndServe(cfg.ListenAddr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutting_down", zap.String("signal", sig.String()))
		if err := httpServer.Shutdown(); err != nil {
			logger.Warn("shutdown error", zap.Error(err))
		}
	case err := <-errCh:
		if err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	}
}
