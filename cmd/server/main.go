package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/mcoot/rightsquest/internal/api"
	"github.com/mcoot/rightsquest/internal/config"
	"github.com/mcoot/rightsquest/internal/factory"
	redisstorage "github.com/mcoot/rightsquest/internal/storage/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func run(cfg config.Config, logger *slog.Logger) error {
	// Build factory config from environment
	factoryCfg := factory.Config{
		Logger:         logger,
		StorageType:    cfg.StorageType,
		Payment:        cfg.Payment(),
		ConfirmTimeout: cfg.ConfirmTimeout,
		ConfirmDelay:   cfg.ConfirmDelay,
	}
	if cfg.StorageType == config.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		factoryCfg.RedisConfig = &redisCfg
	}

	app, err := factory.New(factoryCfg)
	if err != nil {
		return err
	}
	if closer, ok := app.Storage.(io.Closer); ok {
		defer closer.Close()
	}

	router := api.NewRouter(api.RouterConfig{
		Logger:      logger,
		Catalog:     app.Catalog,
		UserService: app.UserService,
		Sessions:    app.Sessions,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Port = cfg.Port
	if cfg.ConfirmTimeout*2 > serverConfig.WriteTimeout {
		serverConfig.WriteTimeout = cfg.ConfirmTimeout * 2
	}
	server := api.NewServer(router, serverConfig, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutdown signal received")
		return server.Shutdown(context.Background())
	})

	return g.Wait()
}
