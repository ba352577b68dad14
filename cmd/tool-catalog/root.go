package main

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/ashwinyue/tool-catalog/internal/config"
	"github.com/ashwinyue/tool-catalog/internal/database"
	"github.com/ashwinyue/tool-catalog/internal/logger"
	"github.com/ashwinyue/tool-catalog/internal/metrics"
	"github.com/ashwinyue/tool-catalog/internal/repository"
	"github.com/ashwinyue/tool-catalog/internal/service"
)

type cliOptions struct {
	configPath string
}

func newRootCommand() *cobra.Command {
	opts := cliOptions{configPath: os.Getenv("CONFIG_PATH")}

	root := &cobra.Command{
		Use:           "tool-catalog",
		Short:         "Trust-scored tool catalog service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", opts.configPath, "config file (defaults to $CONFIG_PATH)")

	root.AddCommand(
		newServeCmd(&opts),
		newSeedCmd(&opts),
		newCategoriesCmd(&opts),
		newSearchCmd(&opts),
		newHashPasswordCmd(),
	)
	return root
}

// app 命令共用的依赖
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	db       *database.DB
	redis    *redis.Client
	registry *prometheus.Registry
	services *service.Services
}

func newApp(ctx context.Context, opts *cliOptions) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}
	log.Info("database connected", "driver", cfg.Database.Driver)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	redisClient := service.NewRedisClient(ctx, &cfg.Redis, log)
	services, err := service.NewServices(repository.NewRepositories(db.DB), cfg, service.Infra{
		Cache:   service.NewCache(redisClient),
		Indexer: service.NewIndexer(&cfg.Elastic, log),
		Metrics: metrics.New(registry),
		Logger:  log,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	return &app{
		cfg:      cfg,
		log:      log,
		db:       db,
		redis:    redisClient,
		registry: registry,
		services: services,
	}, nil
}

func (a *app) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if err := a.db.Close(); err != nil {
		a.log.Warn("failed to close database", "error", err)
	}
	a.log.Sync()
}
